// Package message defines the contract a payload type implements to be recorded
// by an MCAP event logger.
//
// A Message provides three things:
//   - Topic: the stable name of the logical stream the value belongs to
//   - Channel: the channel descriptor (schema + encodings + metadata) for that topic
//   - Message: the value serialized in the channel's message encoding
//
// Channel is requested only once per topic, the first time a value on that topic
// is recorded, so it may be expensive (schema reflection, descriptor marshalling).
//
// Two ready-made adapters are provided:
//
//	// JSON payload with a reflected JSON Schema
//	msg := message.NewJSON("pose", Pose{X: 1, Y: 2, Z: 3})
//
//	// Protobuf payload with a FileDescriptorSet schema
//	msg := message.NewProto("ticks", timestamppb.Now())
//
// Types can also implement Message directly when they need full control over the
// schema or encoding.
package message
