// Package container binds channel registration and message appends to the MCAP
// container format.
package container

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/foxglove/mcap/go/mcap"

	"github.com/rmacdonaldsmith/mcaplog-go/pkg/message"
)

var (
	// ErrTooManyChannels is returned when every non-zero uint16 channel id has been assigned
	ErrTooManyChannels = errors.New("channel ids exhausted")
	// ErrTooManySchemas is returned when every non-zero uint16 schema id has been assigned
	ErrTooManySchemas = errors.New("schema ids exhausted")
	// ErrWriterClosed is returned when the writer has already been finished
	ErrWriterClosed = errors.New("container writer is closed")
)

// Options controls how the MCAP file is laid out.
type Options struct {
	Profile     string
	Library     string
	Chunked     bool
	ChunkSize   int64
	Compression string
	IncludeCRC  bool
}

// Writer appends schemas, channels and messages to an MCAP stream.
// Schema ids start at 1 (0 means schemaless); channel ids start at 1.
// Writer is not safe for concurrent use.
type Writer struct {
	out      *mcap.Writer
	schemas  map[schemaKey]uint16
	channels int
	closed   bool
}

type schemaKey struct {
	name     string
	encoding string
	data     string
}

// NewWriter creates a Writer over w and writes the MCAP header.
func NewWriter(w io.Writer, opts Options) (*Writer, error) {
	out, err := mcap.NewWriter(w, &mcap.WriterOptions{
		IncludeCRC:  opts.IncludeCRC,
		Chunked:     opts.Chunked,
		ChunkSize:   opts.ChunkSize,
		Compression: mcap.CompressionFormat(opts.Compression),
	})
	if err != nil {
		return nil, fmt.Errorf("create mcap writer: %w", err)
	}

	if err := out.WriteHeader(&mcap.Header{
		Profile: opts.Profile,
		Library: opts.Library,
	}); err != nil {
		return nil, fmt.Errorf("write mcap header: %w", err)
	}

	return &Writer{
		out:     out,
		schemas: make(map[schemaKey]uint16),
	}, nil
}

// AddChannel writes the channel record, and its schema record when the schema has
// not been written before, and returns the new channel id.
func (w *Writer) AddChannel(ch message.Channel) (uint16, error) {
	if w.closed {
		return 0, ErrWriterClosed
	}
	if w.channels >= math.MaxUint16 {
		return 0, ErrTooManyChannels
	}

	schemaID, err := w.addSchema(ch.Schema)
	if err != nil {
		return 0, err
	}

	id := uint16(w.channels + 1)
	if err := w.out.WriteChannel(&mcap.Channel{
		ID:              id,
		SchemaID:        schemaID,
		Topic:           ch.Topic,
		MessageEncoding: ch.MessageEncoding,
		Metadata:        ch.Metadata,
	}); err != nil {
		return 0, fmt.Errorf("write channel %s: %w", ch.Topic, err)
	}
	w.channels++

	return id, nil
}

func (w *Writer) addSchema(schema *message.Schema) (uint16, error) {
	if schema == nil {
		return 0, nil
	}

	key := schemaKey{name: schema.Name, encoding: schema.Encoding, data: string(schema.Data)}
	if id, ok := w.schemas[key]; ok {
		return id, nil
	}
	if len(w.schemas) >= math.MaxUint16 {
		return 0, ErrTooManySchemas
	}

	id := uint16(len(w.schemas) + 1)
	if err := w.out.WriteSchema(&mcap.Schema{
		ID:       id,
		Name:     schema.Name,
		Encoding: schema.Encoding,
		Data:     schema.Data,
	}); err != nil {
		return 0, fmt.Errorf("write schema %s: %w", schema.Name, err)
	}
	w.schemas[key] = id

	return id, nil
}

// WriteMessage appends data under header to an already added channel.
func (w *Writer) WriteMessage(header message.Header, data []byte) error {
	if w.closed {
		return ErrWriterClosed
	}
	if err := w.out.WriteMessage(&mcap.Message{
		ChannelID:   header.ChannelID,
		Sequence:    header.Sequence,
		LogTime:     header.LogTime,
		PublishTime: header.PublishTime,
		Data:        data,
	}); err != nil {
		return fmt.Errorf("write message on channel %d: %w", header.ChannelID, err)
	}
	return nil
}

// Close flushes any open chunk and writes the summary section and footer.
// The underlying io.Writer is not closed.
func (w *Writer) Close() error {
	if w.closed {
		return ErrWriterClosed
	}
	w.closed = true
	if err := w.out.Close(); err != nil {
		return fmt.Errorf("finish mcap: %w", err)
	}
	return nil
}
