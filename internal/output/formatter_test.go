package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/KilimcininKorOglu/ttlctl/internal/sockopt"
	"github.com/KilimcininKorOglu/ttlctl/internal/ttl"
)

// Helper function to create a sample snapshot
func sampleSnapshot() *Snapshot {
	return &Snapshot{
		Backend:   "sysctl",
		Reading:   ttl.Reading{IPv4: 64, IPv6: 128},
		Timestamp: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
}

func sampleObservedSnapshot() *Snapshot {
	s := sampleSnapshot()
	s.Observed = &sockopt.Observation{
		IPv4:    64,
		IPv6Err: errors.New("address family not supported"),
	}
	return s
}

func TestTextFormatter(t *testing.T) {
	formatter := NewTextFormatter(Config{Colors: false})

	data, err := formatter.Format(sampleSnapshot())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := string(data)
	if !strings.Contains(output, "Current IPv4 TTL:") || !strings.Contains(output, "64") {
		t.Errorf("Output should contain IPv4 line, got %q", output)
	}
	if !strings.Contains(output, "Current IPv6 TTL:") || !strings.Contains(output, "128") {
		t.Errorf("Output should contain IPv6 line, got %q", output)
	}
	if strings.Contains(output, "net.ipv4") {
		t.Error("Keys should be hidden unless ShowKeys is set")
	}
	if strings.Contains(output, "socket default") {
		t.Error("Observed section should be absent")
	}
}

func TestTextFormatter_ShowKeys(t *testing.T) {
	formatter := NewTextFormatter(Config{ShowKeys: true})

	data, err := formatter.Format(sampleSnapshot())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := string(data)
	if !strings.Contains(output, "(net.ipv4.ip_default_ttl)") {
		t.Error("Output should contain IPv4 key")
	}
	if !strings.Contains(output, "(net.ipv6.conf.all.hop_limit)") {
		t.Error("Output should contain IPv6 key")
	}
}

func TestTextFormatter_Observed(t *testing.T) {
	formatter := NewTextFormatter(Config{})

	s := sampleObservedSnapshot()
	s.Observed.IPv4 = 65
	data, err := formatter.Format(s)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := string(data)
	if !strings.Contains(output, "65 mismatch") {
		t.Errorf("Output should flag IPv4 mismatch, got %q", output)
	}
	if !strings.Contains(output, "unavailable (address family not supported)") {
		t.Errorf("Output should report IPv6 observation error, got %q", output)
	}
}

func TestTextFormatter_FormatMessage(t *testing.T) {
	formatter := NewTextFormatter(Config{})

	if got := formatter.FormatMessage(true, "done"); got != "done\n" {
		t.Errorf("FormatMessage() = %q, want %q", got, "done\n")
	}
}

func TestTableFormatter(t *testing.T) {
	formatter := NewTableFormatter(Config{Colors: false})

	data, err := formatter.Format(sampleSnapshot())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := string(data)
	if !strings.Contains(output, "Backend: sysctl") {
		t.Error("Output should contain backend")
	}
	if !strings.Contains(output, "2026-10-19 12:00:00") {
		t.Error("Output should contain timestamp")
	}
	if !strings.Contains(output, "FAMILY") || !strings.Contains(output, "KERNEL PARAMETER") {
		t.Error("Output should contain column headers")
	}
	if strings.Contains(output, "SOCKET DEFAULT") {
		t.Error("Socket column should be absent without observation")
	}
	if !strings.Contains(output, "net.ipv6.conf.all.hop_limit") {
		t.Error("Output should contain IPv6 key")
	}
}

func TestTableFormatter_Observed(t *testing.T) {
	formatter := NewTableFormatter(Config{Colors: false})

	data, err := formatter.Format(sampleObservedSnapshot())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := string(data)
	if !strings.Contains(output, "SOCKET DEFAULT") {
		t.Error("Output should contain socket column")
	}
	if strings.Contains(output, "mismatch") {
		t.Error("Matching IPv4 value should not be flagged")
	}
}

func TestJSONFormatter(t *testing.T) {
	formatter := NewJSONFormatter(Config{})

	data, err := formatter.Format(sampleSnapshot())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed struct {
		Success bool        `json:"success"`
		Result  JSONReading `json:"result"`
		Backend string      `json:"backend"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("JSON parsing error: %v", err)
	}

	if !parsed.Success {
		t.Error("Success should be true")
	}
	if parsed.Result.IPv4 != 64 || parsed.Result.IPv6 != 128 {
		t.Errorf("Result = %+v, want {64 128}", parsed.Result)
	}
	if parsed.Backend != "sysctl" {
		t.Errorf("Backend = %q, want sysctl", parsed.Backend)
	}
	if strings.Contains(string(data), "observed") {
		t.Error("observed should be omitted")
	}
}

func TestJSONFormatter_Observed(t *testing.T) {
	formatter := NewJSONFormatterCompact(Config{})

	data, err := formatter.Format(sampleObservedSnapshot())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed JSONOutput
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("JSON parsing error: %v", err)
	}

	obs := parsed.Observed
	if obs == nil {
		t.Fatal("Observed should be present")
	}
	if obs.IPv4 == nil || *obs.IPv4 != 64 {
		t.Errorf("Observed.IPv4 = %v, want 64", obs.IPv4)
	}
	if obs.IPv6 != nil {
		t.Errorf("Observed.IPv6 = %v, want nil", *obs.IPv6)
	}
	if obs.IPv6Error == "" {
		t.Error("Observed.IPv6Error should be set")
	}
	if !obs.Consistent {
		t.Error("Observed.Consistent should be true")
	}
}

func TestJSONFormatter_FormatError(t *testing.T) {
	formatter := NewJSONFormatterCompact(Config{})

	data, err := formatter.FormatError(errors.New("Failed to get TTL values: boom"))
	if err != nil {
		t.Fatalf("FormatError() error = %v", err)
	}

	want := `{"success":false,"result":"Failed to get TTL values: boom"}` + "\n"
	if string(data) != want {
		t.Errorf("FormatError() = %q, want %q", data, want)
	}
}

func TestJSONFormatterCompact(t *testing.T) {
	formatter := NewJSONFormatterCompact(Config{})

	data, err := formatter.Format(sampleSnapshot())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	// Compact JSON should be a single line plus trailing newline
	lines := strings.Split(string(data), "\n")
	if len(lines) != 2 || lines[1] != "" {
		t.Error("Compact JSON should be on single line")
	}
}

func TestCSVFormatter(t *testing.T) {
	formatter := NewCSVFormatter(Config{})

	data, err := formatter.Format(sampleObservedSnapshot())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("CSV parsing error: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	if records[0][0] != "family" {
		t.Errorf("Header[0] = %q, want family", records[0][0])
	}
	if records[1][2] != "64" || records[1][3] != "64" {
		t.Errorf("IPv4 row = %v", records[1])
	}
	if records[2][2] != "128" || records[2][3] != "" {
		t.Errorf("IPv6 row = %v", records[2])
	}
}

func TestSnapshot_Consistent(t *testing.T) {
	s := sampleSnapshot()
	if !s.Consistent() {
		t.Error("Snapshot without observation should be consistent")
	}

	s.Observed = &sockopt.Observation{IPv4: 64, IPv6: 128}
	if !s.Consistent() {
		t.Error("Matching observation should be consistent")
	}

	s.Observed.IPv6 = 64
	if s.Consistent() {
		t.Error("IPv6 mismatch should be inconsistent")
	}

	s.Observed.IPv6Err = errors.New("no ipv6")
	if !s.Consistent() {
		t.Error("Unobserved family should not count as mismatch")
	}
}

func TestNewFormatter(t *testing.T) {
	config := DefaultConfig()

	tests := []struct {
		format   Format
		expected string
	}{
		{FormatText, "*output.TextFormatter"},
		{FormatVerbose, "*output.TableFormatter"},
		{FormatJSON, "*output.JSONFormatter"},
		{FormatCSV, "*output.CSVFormatter"},
		{Format(99), "*output.TextFormatter"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			formatter := NewFormatter(tt.format, config)
			if got := fmt.Sprintf("%T", formatter); got != tt.expected {
				t.Errorf("NewFormatter() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterTo(&buf, FormatJSON, DefaultConfig())

	if w.IsTTY() {
		t.Error("bytes.Buffer should not be a TTY")
	}
	if err := w.Write(sampleSnapshot()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"success": true`) {
		t.Errorf("Write() output = %q", buf.String())
	}

	buf.Reset()
	written, err := w.WriteError(errors.New("Failed to set TTL value: denied"))
	if err != nil || !written {
		t.Fatalf("WriteError() = %v, %v", written, err)
	}
	if !strings.Contains(buf.String(), `"success": false`) {
		t.Errorf("WriteError() output = %q", buf.String())
	}

	text := NewWriterTo(&buf, FormatText, DefaultConfig())
	if written, _ := text.WriteError(errors.New("x")); written {
		t.Error("Text writer should leave error reporting to the caller")
	}
}
