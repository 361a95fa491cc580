package output

import (
	"encoding/json"
)

// JSONFormatter formats snapshots as the host response envelope
// {"success": true, "result": {"ipv4": n, "ipv6": n}}.
type JSONFormatter struct {
	config Config
	pretty bool
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(config Config) *JSONFormatter {
	return &JSONFormatter{
		config: config,
		pretty: true, // Default to pretty-printed
	}
}

// NewJSONFormatterCompact creates a JSON formatter with compact output.
func NewJSONFormatterCompact(config Config) *JSONFormatter {
	return &JSONFormatter{
		config: config,
		pretty: false,
	}
}

// JSONOutput is the JSON-serializable representation of a snapshot.
type JSONOutput struct {
	Success  bool          `json:"success"`
	Result   interface{}   `json:"result,omitempty"`
	Backend  string        `json:"backend,omitempty"`
	Observed *JSONObserved `json:"observed,omitempty"`
}

// JSONReading is the success payload.
type JSONReading struct {
	IPv4 int `json:"ipv4"`
	IPv6 int `json:"ipv6"`
}

// JSONObserved holds socket defaults; a family that could not be observed
// carries an error string instead.
type JSONObserved struct {
	IPv4       *int   `json:"ipv4,omitempty"`
	IPv6       *int   `json:"ipv6,omitempty"`
	IPv4Error  string `json:"ipv4_error,omitempty"`
	IPv6Error  string `json:"ipv6_error,omitempty"`
	Consistent bool   `json:"consistent"`
}

// Format formats the snapshot as JSON.
func (f *JSONFormatter) Format(snapshot *Snapshot) ([]byte, error) {
	return f.marshal(f.toJSONOutput(snapshot))
}

// FormatError formats a failure as {"success": false, "result": "<message>"}.
func (f *JSONFormatter) FormatError(err error) ([]byte, error) {
	return f.marshal(&JSONOutput{Success: false, Result: err.Error()})
}

func (f *JSONFormatter) marshal(v interface{}) ([]byte, error) {
	var data []byte
	var err error
	if f.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// toJSONOutput converts a Snapshot to JSONOutput.
func (f *JSONFormatter) toJSONOutput(snapshot *Snapshot) *JSONOutput {
	out := &JSONOutput{
		Success: true,
		Result: JSONReading{
			IPv4: snapshot.Reading.IPv4,
			IPv6: snapshot.Reading.IPv6,
		},
		Backend: snapshot.Backend,
	}

	if o := snapshot.Observed; o != nil {
		obs := &JSONObserved{Consistent: snapshot.Consistent()}
		if o.IPv4Err != nil {
			obs.IPv4Error = o.IPv4Err.Error()
		} else {
			v := o.IPv4
			obs.IPv4 = &v
		}
		if o.IPv6Err != nil {
			obs.IPv6Error = o.IPv6Err.Error()
		} else {
			v := o.IPv6
			obs.IPv6 = &v
		}
		out.Observed = obs
	}

	return out
}
