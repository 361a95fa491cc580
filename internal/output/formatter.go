// Package output provides formatting and output functionality for TTL readings.
package output

import (
	"time"

	"github.com/KilimcininKorOglu/ttlctl/internal/sockopt"
	"github.com/KilimcininKorOglu/ttlctl/internal/ttl"
)

// Format represents the output format type.
type Format int

const (
	// FormatText is the plain two-line output
	FormatText Format = iota
	// FormatVerbose is the detailed table output
	FormatVerbose
	// FormatJSON is the host response envelope
	FormatJSON
	// FormatCSV is CSV output
	FormatCSV
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatVerbose:
		return "verbose"
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// Snapshot is what the formatters render: the kernel parameter values and,
// optionally, what a fresh socket inherits.
type Snapshot struct {
	Backend   string
	Reading   ttl.Reading
	Observed  *sockopt.Observation
	Timestamp time.Time
}

// Consistent reports whether the observed socket defaults match the kernel
// parameters. It is true when nothing was observed.
func (s *Snapshot) Consistent() bool {
	if s.Observed == nil {
		return true
	}
	o := s.Observed
	if o.IPv4Err == nil && o.IPv4 != s.Reading.IPv4 {
		return false
	}
	if o.IPv6Err == nil && o.IPv6 != s.Reading.IPv6 {
		return false
	}
	return true
}

// Formatter defines the interface for output formatters.
type Formatter interface {
	// Format converts a Snapshot to formatted output bytes.
	Format(snapshot *Snapshot) ([]byte, error)
}

// Config holds configuration for formatters.
type Config struct {
	// Colors enables ANSI color output
	Colors bool

	// ShowKeys prints the sysctl key next to each value
	ShowKeys bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Colors: true,
	}
}

// NewFormatter creates a formatter based on the specified format.
func NewFormatter(format Format, config Config) Formatter {
	switch format {
	case FormatText:
		return NewTextFormatter(config)
	case FormatVerbose:
		return NewTableFormatter(config)
	case FormatJSON:
		return NewJSONFormatter(config)
	case FormatCSV:
		return NewCSVFormatter(config)
	default:
		return NewTextFormatter(config)
	}
}
