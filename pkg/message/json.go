package message

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// JSON adapts any JSON-encodable Go value to the Message contract.
// The channel schema is a JSON Schema reflected from the value's type.
type JSON struct {
	topic    string
	value    any
	metadata map[string]string
}

// NewJSON creates a JSON message for the given topic and value.
func NewJSON(topic string, value any) *JSON {
	return &JSON{
		topic: topic,
		value: value,
	}
}

// WithMetadata sets the channel metadata recorded with the topic.
func (j *JSON) WithMetadata(metadata map[string]string) *JSON {
	j.metadata = copyMetadata(metadata)
	return j
}

// Topic returns the topic the value is recorded on.
func (j *JSON) Topic() string {
	return j.topic
}

// Channel returns a channel with a reflected JSON Schema and json message encoding.
func (j *JSON) Channel() (Channel, error) {
	schema, err := JSONSchema(j.value)
	if err != nil {
		return Channel{}, err
	}
	return Channel{
		Topic:           j.topic,
		Schema:          schema,
		MessageEncoding: EncodingJSON,
		Metadata:        copyMetadata(j.metadata),
	}, nil
}

// Message returns the JSON encoding of the value.
func (j *JSON) Message() ([]byte, error) {
	data, err := json.Marshal(j.value)
	if err != nil {
		return nil, fmt.Errorf("json encode %s: %w", j.topic, err)
	}
	return data, nil
}

// Value returns the wrapped value.
func (j *JSON) Value() any {
	return j.value
}

func (j *JSON) String() string {
	return fmt.Sprintf("%s %+v", j.topic, j.value)
}

// JSONSchema reflects a JSON Schema from the type of value. The schema is
// named after the Go type, with pointers dereferenced.
func JSONSchema(value any) (*Schema, error) {
	if value == nil {
		return nil, ErrNilValue
	}

	reflector := &jsonschema.Reflector{DoNotReference: true}
	data, err := json.Marshal(reflector.Reflect(value))
	if err != nil {
		return nil, fmt.Errorf("marshal json schema: %w", err)
	}

	return &Schema{
		Name:     typeName(value),
		Encoding: EncodingJSONSchema,
		Data:     data,
	}, nil
}

func typeName(value any) string {
	t := reflect.TypeOf(value)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}

var _ Message = (*JSON)(nil)
