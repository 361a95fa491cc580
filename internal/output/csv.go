package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/KilimcininKorOglu/ttlctl/internal/ttl"
)

// CSVFormatter formats snapshots as CSV, one row per address family.
type CSVFormatter struct {
	config Config
}

var csvHeader = []string{"family", "key", "value", "socket_default"}

// NewCSVFormatter creates a new CSV formatter.
func NewCSVFormatter(config Config) *CSVFormatter {
	return &CSVFormatter{config: config}
}

// Format formats the snapshot as CSV.
func (f *CSVFormatter) Format(snapshot *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	rows := [][]string{
		csvHeader,
		f.formatRow("ipv4", ttl.KeyIPv4, snapshot.Reading.IPv4, observedIPv4(snapshot)),
		f.formatRow("ipv6", ttl.KeyIPv6, snapshot.Reading.IPv6, observedIPv6(snapshot)),
	}
	if err := writer.WriteAll(rows); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// formatRow formats a single family as a CSV row. The socket_default column
// is empty when nothing was observed.
func (f *CSVFormatter) formatRow(family, key string, value int, obs *observed) []string {
	socket := ""
	if obs != nil && obs.err == nil {
		socket = strconv.Itoa(obs.value)
	}
	return []string{family, key, strconv.Itoa(value), socket}
}
