package mcaplog

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rmacdonaldsmith/mcaplog-go/pkg/message"
)

var errInjected = errors.New("injected failure")

type writtenMessage struct {
	header message.Header
	data   []byte
}

// fakeWriter records every call and fails on demand.
type fakeWriter struct {
	mu         sync.Mutex
	channels   []message.Channel
	messages   []writtenMessage
	addErr     error
	writeErr   error
	closeErr   error
	closeCalls int
}

func (w *fakeWriter) AddChannel(ch message.Channel) (uint16, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.addErr != nil {
		return 0, w.addErr
	}
	w.channels = append(w.channels, ch)
	return uint16(len(w.channels)), nil
}

func (w *fakeWriter) WriteMessage(header message.Header, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writeErr != nil {
		return w.writeErr
	}
	w.messages = append(w.messages, writtenMessage{header: header, data: data})
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeCalls++
	return w.closeErr
}

func (w *fakeWriter) channelCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.channels)
}

func (w *fakeWriter) written() []writtenMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]writtenMessage, len(w.messages))
	copy(out, w.messages)
	return out
}

// testMessage is a Message whose failures are controlled by the test.
type testMessage struct {
	topic        string
	payload      string
	channelTopic string
	channelErr   error
	messageErr   error
	channelCalls *atomic.Int32
}

func newTestMessage(topic, payload string) *testMessage {
	return &testMessage{topic: topic, payload: payload}
}

func (m *testMessage) Topic() string {
	return m.topic
}

func (m *testMessage) Channel() (message.Channel, error) {
	if m.channelCalls != nil {
		m.channelCalls.Add(1)
	}
	if m.channelErr != nil {
		return message.Channel{}, m.channelErr
	}
	topic := m.topic
	if m.channelTopic != "" {
		topic = m.channelTopic
	}
	return message.Channel{
		Topic:           topic,
		Schema:          &message.Schema{Name: "Text", Encoding: "text", Data: []byte("utf-8")},
		MessageEncoding: "text",
	}, nil
}

func (m *testMessage) Message() ([]byte, error) {
	if m.messageErr != nil {
		return nil, m.messageErr
	}
	return []byte(m.payload), nil
}

func (m *testMessage) String() string {
	return fmt.Sprintf("%s:%s", m.topic, m.payload)
}

// rewindingClock returns the queued times in order, then repeats the last one.
type rewindingClock struct {
	clockwork.Clock
	mu    sync.Mutex
	times []time.Time
}

func (c *rewindingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return now
}
