package message

// Well-known encoding identifiers used in MCAP channel and schema records.
const (
	EncodingJSON       = "json"
	EncodingJSONSchema = "jsonschema"
	EncodingProtobuf   = "protobuf"
)

// Message is the capability a payload type must provide to be recordable.
type Message interface {
	// Topic returns the name of the logical stream. It must return the same
	// value for every instance belonging to the same stream.
	Topic() string

	// Channel returns the channel descriptor for the topic. It is called once
	// per topic for the lifetime of a logger and treated as authoritative.
	Channel() (Channel, error)

	// Message serializes the value in the encoding declared by Channel.
	Message() ([]byte, error)
}

// Schema describes the shape of the payloads on a channel.
type Schema struct {
	// Name identifies the schema, e.g. a type or message full name
	Name string

	// Encoding is the schema encoding, e.g. "jsonschema" or "protobuf"
	Encoding string

	// Data is the opaque schema content
	Data []byte
}

// Channel is the recording configuration for a topic.
type Channel struct {
	// Topic is the unique key of the channel
	Topic string

	// Schema is optional; nil means schemaless
	Schema *Schema

	// MessageEncoding is the payload encoding, e.g. "json" or "protobuf"
	MessageEncoding string

	// Metadata is free-form key-value metadata stored with the channel
	Metadata map[string]string
}

// Copy returns a deep copy of the Channel.
func (c Channel) Copy() Channel {
	out := Channel{
		Topic:           c.Topic,
		MessageEncoding: c.MessageEncoding,
		Metadata:        make(map[string]string, len(c.Metadata)),
	}
	for k, v := range c.Metadata {
		out.Metadata[k] = v
	}
	if c.Schema != nil {
		data := make([]byte, len(c.Schema.Data))
		copy(data, c.Schema.Data)
		out.Schema = &Schema{
			Name:     c.Schema.Name,
			Encoding: c.Schema.Encoding,
			Data:     data,
		}
	}
	return out
}

// Header is the envelope a message is written under.
type Header struct {
	// ChannelID is the channel-registration-id assigned by the container
	ChannelID uint16

	// Sequence is the per-topic message counter, starting at 0
	Sequence uint32

	// LogTime is nanoseconds since the Unix epoch when the message was recorded
	LogTime uint64

	// PublishTime is nanoseconds since the Unix epoch when the message was published
	PublishTime uint64
}

// copyMetadata returns a private copy of metadata, or nil when it is empty.
func copyMetadata(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
