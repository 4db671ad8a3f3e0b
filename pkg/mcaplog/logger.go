package mcaplog

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rmacdonaldsmith/mcaplog-go/internal/container"
	"github.com/rmacdonaldsmith/mcaplog-go/pkg/message"
)

var (
	// ErrSerialization is returned when a message cannot be encoded
	ErrSerialization = errors.New("message serialization failed")
	// ErrChannelRegistration is returned when a topic's channel cannot be registered
	ErrChannelRegistration = errors.New("channel registration failed")
	// ErrAppend is returned when the container rejects a message write
	ErrAppend = errors.New("message append failed")
	// ErrFinalize is returned when the container cannot be finalized
	ErrFinalize = errors.New("finalize failed")
	// ErrClosed is returned for any operation after Close
	ErrClosed = errors.New("event logger is closed")
	// ErrTopicMismatch is returned when a channel descriptor names a different topic than its message
	ErrTopicMismatch = errors.New("channel topic does not match message topic")
	// ErrNilMessage is returned when a nil message is provided
	ErrNilMessage = errors.New("message cannot be nil")
	// ErrNilWriter is returned when a nil output is provided
	ErrNilWriter = errors.New("writer cannot be nil")
)

// McapLogger implements EventLogger on top of a ChannelWriter.
// Each topic has its own sequence starting from 0. It is safe for concurrent use.
type McapLogger struct {
	mu       sync.RWMutex
	writer   ChannelWriter
	channels map[string]uint16         // topic -> channel-registration-id
	headers  map[string]message.Header // topic -> header of the last appended message
	counts   map[string]int64          // topic -> messages appended
	total    int64
	closed   bool

	level zapcore.LevelEnabler
	log   *zap.Logger
	clock clockwork.Clock
}

// NewEventLogger creates an McapLogger writing an MCAP file to w.
// The MCAP header is written immediately; w is never closed by the logger.
func NewEventLogger(w io.WriteSeeker, config *Config) (*McapLogger, error) {
	if w == nil {
		return nil, ErrNilWriter
	}

	cfg, err := prepareConfig(config)
	if err != nil {
		return nil, err
	}

	cw, err := container.NewWriter(w, cfg.containerOptions())
	if err != nil {
		return nil, err
	}

	return newMcapLogger(cw, cfg), nil
}

// NewEventLoggerWithWriter creates an McapLogger over an existing ChannelWriter.
// The container layout fields of config are ignored.
func NewEventLoggerWithWriter(w ChannelWriter, config *Config) (*McapLogger, error) {
	if w == nil {
		return nil, ErrNilWriter
	}

	cfg, err := prepareConfig(config)
	if err != nil {
		return nil, err
	}

	return newMcapLogger(w, cfg), nil
}

func prepareConfig(config *Config) (*Config, error) {
	if config == nil {
		config = NewConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Make a copy and set defaults
	configCopy := *config
	configCopy.SetDefaults()
	return &configCopy, nil
}

func newMcapLogger(w ChannelWriter, cfg *Config) *McapLogger {
	return &McapLogger{
		writer:   w,
		channels: make(map[string]uint16),
		headers:  make(map[string]message.Header),
		counts:   make(map[string]int64),
		level:    cfg.Level,
		log:      cfg.Logger.Named("mcaplog"),
		clock:    cfg.Clock,
	}
}

// Enabled reports whether events at level pass the configured level gate.
func (l *McapLogger) Enabled(level zapcore.Level) bool {
	return l.level.Enabled(level)
}

// Event appends msg on its topic and returns the header it was written under.
// Events below the level gate are dropped without a write and return a zero
// header and nil error. On error the topic's stored header is unchanged.
func (l *McapLogger) Event(level zapcore.Level, msg message.Message) (message.Header, error) {
	if msg == nil {
		return message.Header{}, ErrNilMessage
	}
	if !l.Enabled(level) {
		return message.Header{}, nil
	}

	topic := msg.Topic()
	header, err := l.append(topic, msg)
	if err != nil {
		if !errors.Is(err, ErrClosed) {
			l.log.Warn("mcap event failed", zap.String("topic", topic), zap.Error(err))
		}
		return message.Header{}, err
	}

	// Fatal and panic levels would terminate the caller; record those at error.
	diagLevel := level
	if diagLevel > zapcore.ErrorLevel {
		diagLevel = zapcore.ErrorLevel
	}
	if ce := l.log.Check(diagLevel, "mcap message"); ce != nil {
		ce.Write(
			zap.String("topic", topic),
			zap.Uint16("channel_id", header.ChannelID),
			zap.Uint32("sequence", header.Sequence),
			zap.Any("payload", msg),
		)
	}

	return header, nil
}

// append runs lookup-or-register, header update and the byte append as one
// critical section shared by all topics.
func (l *McapLogger) append(topic string, msg message.Message) (message.Header, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return message.Header{}, ErrClosed
	}

	// Serialize before touching the registry so a bad payload registers nothing.
	data, err := msg.Message()
	if err != nil {
		return message.Header{}, fmt.Errorf("%w: topic %q: %w", ErrSerialization, topic, err)
	}

	channelID, err := l.channelFor(topic, msg)
	if err != nil {
		return message.Header{}, err
	}

	header, seen := l.headers[topic]
	now := l.now()
	if seen {
		header.Sequence++
		if now < header.LogTime {
			now = header.LogTime
		}
	} else {
		header = message.Header{ChannelID: channelID}
	}
	header.LogTime = now
	header.PublishTime = now

	if err := l.writer.WriteMessage(header, data); err != nil {
		return message.Header{}, fmt.Errorf("%w: topic %q: %w", ErrAppend, topic, err)
	}

	l.headers[topic] = header
	l.counts[topic]++
	l.total++

	return header, nil
}

// channelFor returns the topic's channel-registration-id, registering the
// message's channel on first use. Must be called with mu held.
func (l *McapLogger) channelFor(topic string, msg message.Message) (uint16, error) {
	if id, ok := l.channels[topic]; ok {
		return id, nil
	}

	ch, err := msg.Channel()
	if err != nil {
		return 0, fmt.Errorf("%w: topic %q: %w", ErrChannelRegistration, topic, err)
	}
	if ch.Topic != topic {
		return 0, fmt.Errorf("%w: topic %q: %w: %q", ErrChannelRegistration, topic, ErrTopicMismatch, ch.Topic)
	}

	id, err := l.writer.AddChannel(ch.Copy())
	if err != nil {
		return 0, fmt.Errorf("%w: topic %q: %w", ErrChannelRegistration, topic, err)
	}
	l.channels[topic] = id

	l.log.Debug("mcap channel registered",
		zap.String("topic", topic),
		zap.Uint16("channel_id", id),
		zap.String("message_encoding", ch.MessageEncoding),
	)

	return id, nil
}

// now returns the clock's time in nanoseconds since the Unix epoch.
func (l *McapLogger) now() uint64 {
	ns := l.clock.Now().UnixNano()
	if ns < 0 {
		return 0
	}
	return uint64(ns)
}

// Header returns the header of the most recent message appended on topic.
func (l *McapLogger) Header(topic string) (message.Header, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	header, ok := l.headers[topic]
	return header, ok
}

// Statistics returns overall statistics about the recorded events.
func (l *McapLogger) Statistics() Statistics {
	l.mu.RLock()
	defer l.mu.RUnlock()

	counts := make(map[string]int64, len(l.counts))
	for topic, n := range l.counts {
		counts[topic] = n
	}

	return Statistics{
		TotalMessages: l.total,
		TopicCounts:   counts,
		ChannelCount:  len(l.channels),
	}
}

// Close finalizes the container. It is not idempotent: a second call returns
// ErrClosed. The logger is closed even when finalizing fails, in which case the
// output holds a data section without a valid summary or footer.
func (l *McapLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	l.closed = true

	if err := l.writer.Close(); err != nil {
		l.log.Warn("mcap finalize failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrFinalize, err)
	}

	l.log.Debug("mcap log finalized",
		zap.Int64("messages", l.total),
		zap.Int("channels", len(l.channels)),
	)
	return nil
}

// Verify that McapLogger implements the EventLogger interface at compile time
var _ EventLogger = (*McapLogger)(nil)

var _ ChannelWriter = (*container.Writer)(nil)
