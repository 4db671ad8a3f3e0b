package mcaplog

import (
	"errors"

	"github.com/foxglove/mcap/go/mcap"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rmacdonaldsmith/mcaplog-go/internal/container"
)

const (
	// DefaultLibrary is written to the MCAP header when no library is configured
	DefaultLibrary = "mcaplog-go"
	// DefaultChunkSize is the target uncompressed chunk size
	DefaultChunkSize = 1024 * 1024
)

var (
	// ErrInvalidCompression is returned for a compression other than none, lz4 or zstd
	ErrInvalidCompression = errors.New("compression must be empty, lz4 or zstd")
	// ErrNegativeChunkSize is returned when chunk size is negative
	ErrNegativeChunkSize = errors.New("chunk size cannot be negative")
)

// Config holds configuration for an McapLogger
type Config struct {
	// Profile is the MCAP profile written to the header, e.g. "ros2", or empty
	Profile string

	// Library identifies the writer in the MCAP header
	Library string

	// Chunked groups records into (optionally compressed) chunks with message indexes
	Chunked bool

	// ChunkSize is the uncompressed size at which a chunk is flushed
	ChunkSize int64

	// Compression is the chunk compression: "", "lz4" or "zstd"
	Compression string

	// IncludeCRC adds CRCs to chunks, the data section and the summary
	IncludeCRC bool

	// Level gates which event levels are recorded. Nil records every level.
	Level zapcore.LevelEnabler

	// Logger receives diagnostics for recorded events
	Logger *zap.Logger

	// Clock stamps log and publish times
	Clock clockwork.Clock
}

// NewConfig creates a configuration with chunked, zstd-compressed output that
// records events at every level.
func NewConfig() *Config {
	return &Config{
		Library:     DefaultLibrary,
		Chunked:     true,
		ChunkSize:   DefaultChunkSize,
		Compression: string(mcap.CompressionZSTD),
		IncludeCRC:  true,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch mcap.CompressionFormat(c.Compression) {
	case mcap.CompressionNone, mcap.CompressionLZ4, mcap.CompressionZSTD:
	default:
		return ErrInvalidCompression
	}
	if c.ChunkSize < 0 {
		return ErrNegativeChunkSize
	}
	return nil
}

// SetDefaults sets default values for unset configuration fields
func (c *Config) SetDefaults() {
	if c.Library == "" {
		c.Library = DefaultLibrary
	}
	if c.Chunked && c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Level == nil {
		c.Level = zapcore.DebugLevel
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
}

// WithLevel sets the level gate
func (c *Config) WithLevel(level zapcore.LevelEnabler) *Config {
	c.Level = level
	return c
}

// WithLogger sets the diagnostics logger
func (c *Config) WithLogger(logger *zap.Logger) *Config {
	c.Logger = logger
	return c
}

// WithClock sets the clock used for message timestamps
func (c *Config) WithClock(clock clockwork.Clock) *Config {
	c.Clock = clock
	return c
}

// WithCompression sets the chunk compression
func (c *Config) WithCompression(compression string) *Config {
	c.Compression = compression
	return c
}

// WithChunking enables or disables chunked output with the given chunk size
func (c *Config) WithChunking(chunked bool, chunkSize int64) *Config {
	c.Chunked = chunked
	c.ChunkSize = chunkSize
	return c
}

func (c *Config) containerOptions() container.Options {
	return container.Options{
		Profile:     c.Profile,
		Library:     c.Library,
		Chunked:     c.Chunked,
		ChunkSize:   c.ChunkSize,
		Compression: c.Compression,
		IncludeCRC:  c.IncludeCRC,
	}
}
