package output

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/KilimcininKorOglu/ttlctl/internal/ttl"
)

// TableFormatter formats snapshots as a detailed table.
type TableFormatter struct {
	config Config
	colors *ColorScheme
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(config Config) *TableFormatter {
	var colors *ColorScheme
	if config.Colors {
		colors = DefaultColorScheme()
	}

	return &TableFormatter{
		config: config,
		colors: colors,
	}
}

// Format formats the snapshot as a detailed table.
func (f *TableFormatter) Format(snapshot *Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	f.writeHeader(&buf, snapshot)

	table := tablewriter.NewWriter(&buf)
	f.configureTable(table)
	table.SetHeader(f.getHeaders(snapshot))

	table.Append(f.formatRow(snapshot, "IPv4", ttl.KeyIPv4, snapshot.Reading.IPv4, observedIPv4(snapshot)))
	table.Append(f.formatRow(snapshot, "IPv6", ttl.KeyIPv6, snapshot.Reading.IPv6, observedIPv6(snapshot)))

	table.Render()

	return buf.Bytes(), nil
}

// writeHeader writes the backend and timestamp line.
func (f *TableFormatter) writeHeader(buf *bytes.Buffer, snapshot *Snapshot) {
	header := fmt.Sprintf("Backend: %s", snapshot.Backend)
	if !snapshot.Timestamp.IsZero() {
		header += fmt.Sprintf(" | Time: %s", snapshot.Timestamp.Format("2006-01-02 15:04:05"))
	}
	header += "\n\n"

	if f.colors != nil {
		header = f.colors.Header.Sprint(header)
	}
	buf.WriteString(header)
}

// configureTable sets up the table appearance.
func (f *TableFormatter) configureTable(table *tablewriter.Table) {
	table.SetBorder(true)
	table.SetRowLine(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("│")
	table.SetColumnSeparator("│")
	table.SetRowSeparator("─")
	table.SetHeaderLine(true)
	table.SetTablePadding(" ")
}

// getHeaders returns the column headers.
func (f *TableFormatter) getHeaders(snapshot *Snapshot) []string {
	headers := []string{"Family", "Kernel Parameter", "Value"}
	if snapshot.Observed != nil {
		headers = append(headers, "Socket Default")
	}
	return headers
}

// observed is a per-family view of an Observation.
type observed struct {
	value int
	err   error
}

func observedIPv4(s *Snapshot) *observed {
	if s.Observed == nil {
		return nil
	}
	return &observed{value: s.Observed.IPv4, err: s.Observed.IPv4Err}
}

func observedIPv6(s *Snapshot) *observed {
	if s.Observed == nil {
		return nil
	}
	return &observed{value: s.Observed.IPv6, err: s.Observed.IPv6Err}
}

// formatRow formats one address family as a table row.
func (f *TableFormatter) formatRow(snapshot *Snapshot, family, key string, value int, obs *observed) []string {
	row := []string{family, key, strconv.Itoa(value)}
	if snapshot.Observed == nil {
		return row
	}

	switch {
	case obs.err != nil:
		row = append(row, "-")
	case obs.value == value:
		cell := strconv.Itoa(obs.value)
		if f.colors != nil {
			cell = f.colors.Success.Sprint(cell)
		}
		row = append(row, cell)
	default:
		cell := strconv.Itoa(obs.value) + " (mismatch)"
		if f.colors != nil {
			cell = f.colors.Failure.Sprint(cell)
		}
		row = append(row, cell)
	}
	return row
}
