package output

import (
	"bytes"
	"fmt"

	"github.com/fatih/color"

	"github.com/KilimcininKorOglu/ttlctl/internal/ttl"
)

// TextFormatter formats snapshots as short labelled lines.
type TextFormatter struct {
	config Config
	colors *ColorScheme
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(config Config) *TextFormatter {
	var colors *ColorScheme
	if config.Colors {
		colors = DefaultColorScheme()
	}

	return &TextFormatter{
		config: config,
		colors: colors,
	}
}

// Format formats the snapshot as text.
func (f *TextFormatter) Format(snapshot *Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	f.formatLine(&buf, "Current IPv4 TTL:", ttl.KeyIPv4, snapshot.Reading.IPv4)
	f.formatLine(&buf, "Current IPv6 TTL:", ttl.KeyIPv6, snapshot.Reading.IPv6)

	if o := snapshot.Observed; o != nil {
		buf.WriteString("\n")
		f.formatObserved(&buf, "IPv4 socket default:", o.IPv4, o.IPv4Err, snapshot.Reading.IPv4)
		f.formatObserved(&buf, "IPv6 socket default:", o.IPv6, o.IPv6Err, snapshot.Reading.IPv6)
	}

	return buf.Bytes(), nil
}

// FormatMessage renders a status line such as the result of a set.
func (f *TextFormatter) FormatMessage(ok bool, msg string) string {
	if f.colors == nil {
		return msg + "\n"
	}
	if ok {
		return f.colors.Success.Sprint(msg) + "\n"
	}
	return f.colors.Failure.Sprint(msg) + "\n"
}

func (f *TextFormatter) formatLine(buf *bytes.Buffer, label, key string, value int) {
	label = fmt.Sprintf("%-22s", label)
	valueStr := fmt.Sprintf("%d", value)
	if f.colors != nil {
		label = f.colors.Label.Sprint(label)
		valueStr = f.colors.Value.Sprint(valueStr)
	}

	buf.WriteString(label)
	buf.WriteString(valueStr)
	if f.config.ShowKeys {
		k := "  (" + key + ")"
		if f.colors != nil {
			k = f.colors.Key.Sprint(k)
		}
		buf.WriteString(k)
	}
	buf.WriteString("\n")
}

func (f *TextFormatter) formatObserved(buf *bytes.Buffer, label string, value int, err error, want int) {
	label = fmt.Sprintf("%-22s", label)
	if f.colors != nil {
		label = f.colors.Label.Sprint(label)
	}
	buf.WriteString(label)

	switch {
	case err != nil:
		msg := "unavailable (" + err.Error() + ")"
		if f.colors != nil {
			msg = f.colors.Key.Sprint(msg)
		}
		buf.WriteString(msg)
	case value == want:
		msg := fmt.Sprintf("%d ok", value)
		if f.colors != nil {
			msg = f.colors.Success.Sprint(msg)
		}
		buf.WriteString(msg)
	default:
		msg := fmt.Sprintf("%d mismatch", value)
		if f.colors != nil {
			msg = f.colors.Failure.Sprint(msg)
		}
		buf.WriteString(msg)
	}
	buf.WriteString("\n")
}

// ColorScheme defines colors for different output elements.
type ColorScheme struct {
	Label   *color.Color
	Value   *color.Color
	Key     *color.Color
	Success *color.Color
	Failure *color.Color
	Header  *color.Color
}

// DefaultColorScheme returns the default color scheme.
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Label:   color.New(color.FgCyan, color.Bold),
		Value:   color.New(color.FgWhite, color.Bold),
		Key:     color.New(color.FgHiBlack),
		Success: color.New(color.FgGreen),
		Failure: color.New(color.FgRed, color.Bold),
		Header:  color.New(color.FgWhite, color.Bold),
	}
}
