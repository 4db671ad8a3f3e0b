package message

import (
	"fmt"

	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Proto adapts a protobuf message to the Message contract.
// The channel schema is a FileDescriptorSet holding the message's file and
// every file it transitively imports.
type Proto struct {
	topic    string
	msg      proto.Message
	metadata map[string]string
}

// NewProto creates a protobuf message for the given topic.
func NewProto(topic string, msg proto.Message) *Proto {
	return &Proto{
		topic: topic,
		msg:   msg,
	}
}

// WithMetadata sets the channel metadata recorded with the topic.
func (p *Proto) WithMetadata(metadata map[string]string) *Proto {
	p.metadata = copyMetadata(metadata)
	return p
}

// Topic returns the topic the message is recorded on.
func (p *Proto) Topic() string {
	return p.topic
}

// Channel returns a channel with a protobuf schema and message encoding.
func (p *Proto) Channel() (Channel, error) {
	schema, err := ProtoSchema(p.msg)
	if err != nil {
		return Channel{}, err
	}
	return Channel{
		Topic:           p.topic,
		Schema:          schema,
		MessageEncoding: EncodingProtobuf,
		Metadata:        copyMetadata(p.metadata),
	}, nil
}

// Message returns the protobuf wire encoding of the message.
func (p *Proto) Message() ([]byte, error) {
	if p.msg == nil {
		return nil, ErrNilValue
	}
	data, err := proto.Marshal(p.msg)
	if err != nil {
		return nil, fmt.Errorf("proto encode %s: %w", p.topic, err)
	}
	return data, nil
}

func (p *Proto) String() string {
	if p.msg == nil {
		return p.topic + " <nil>"
	}
	return fmt.Sprintf("%s {%s}", p.topic, prototext.MarshalOptions{}.Format(p.msg))
}

// ProtoSchema builds the MCAP protobuf schema for msg: the message full name and
// a serialized FileDescriptorSet with dependencies listed before dependents.
func ProtoSchema(msg proto.Message) (*Schema, error) {
	if msg == nil {
		return nil, ErrNilValue
	}

	desc := msg.ProtoReflect().Descriptor()
	set := &descriptorpb.FileDescriptorSet{}
	seen := make(map[string]struct{})

	var add func(fd protoreflect.FileDescriptor)
	add = func(fd protoreflect.FileDescriptor) {
		if _, ok := seen[fd.Path()]; ok {
			return
		}
		seen[fd.Path()] = struct{}{}
		imports := fd.Imports()
		for i := 0; i < imports.Len(); i++ {
			add(imports.Get(i).FileDescriptor)
		}
		set.File = append(set.File, protodesc.ToFileDescriptorProto(fd))
	}
	add(desc.ParentFile())

	data, err := proto.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("marshal descriptor set: %w", err)
	}

	return &Schema{
		Name:     string(desc.FullName()),
		Encoding: EncodingProtobuf,
		Data:     data,
	}, nil
}

var _ Message = (*Proto)(nil)
