// Package mcaplog records typed events into a topic-partitioned MCAP file.
//
// This package defines the event logger component:
//   - EventLogger: Interface for recording events and finalizing the output
//   - McapLogger: Implementation over an MCAP container writer
//   - ChannelWriter: The container collaborator (register channel, append message, finish)
//   - Config: Container layout, level gate, logger and clock
//
// The first event on a topic registers the topic's channel (schema + encoding) and is
// written with sequence 0. Later events on the topic reuse the channel and advance the
// sequence by one. All appends share one ordered stream and are serialized by a single
// mutex, so concurrent first events on a topic register exactly one channel.
//
// Example usage:
//
//	f, err := os.Create("out.mcap")
//	if err != nil {
//		return err
//	}
//	defer f.Close()
//
//	logger, err := mcaplog.NewEventLogger(f, mcaplog.NewConfig())
//	if err != nil {
//		return err
//	}
//
//	header, err := logger.Event(zapcore.InfoLevel, message.NewJSON("pose", pose))
//	if err != nil {
//		return err
//	}
//
//	// Seal the file: flush the open chunk and write the summary and footer
//	return logger.Close()
//
// Close is not idempotent. Calling Close twice, or Event after Close, returns ErrClosed.
package mcaplog
