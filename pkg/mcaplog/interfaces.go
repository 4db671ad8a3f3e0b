package mcaplog

import (
	"io"

	"go.uber.org/zap/zapcore"

	"github.com/rmacdonaldsmith/mcaplog-go/pkg/message"
)

// EventLogger records events into a topic-partitioned container.
type EventLogger interface {
	io.Closer

	// Event appends msg on its topic. The first event on a topic registers the
	// topic's channel; the returned header carries the assigned sequence.
	Event(level zapcore.Level, msg message.Message) (message.Header, error)

	// Enabled reports whether events at level are recorded.
	Enabled(level zapcore.Level) bool

	// Header returns the header of the most recent message on topic.
	Header(topic string) (message.Header, bool)

	// Statistics returns overall statistics about the recorded events.
	Statistics() Statistics
}

// ChannelWriter is the container format collaborator the logger appends through.
// Implementations need not be safe for concurrent use.
type ChannelWriter interface {
	io.Closer

	// AddChannel registers ch and returns its channel-registration-id.
	AddChannel(ch message.Channel) (uint16, error)

	// WriteMessage appends data under header on a registered channel.
	WriteMessage(header message.Header, data []byte) error
}

// Statistics provides aggregate statistics about a logger
type Statistics struct {
	TotalMessages int64            // Total messages across all topics
	TopicCounts   map[string]int64 // Messages per topic
	ChannelCount  int              // Channels registered
}
