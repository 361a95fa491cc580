package output

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Writer handles output formatting and writing.
type Writer struct {
	formatter Formatter
	output    io.Writer
	isTTY     bool
}

// NewWriterTo creates a writer to out. Colors are disabled when out is not a
// terminal.
func NewWriterTo(out io.Writer, format Format, config Config) *Writer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = isTerminal(f)
	}
	if !isTTY {
		config.Colors = false
	}

	return &Writer{
		formatter: NewFormatter(format, config),
		output:    out,
		isTTY:     isTTY,
	}
}

// Write formats and writes the snapshot.
func (w *Writer) Write(snapshot *Snapshot) error {
	data, err := w.formatter.Format(snapshot)
	if err != nil {
		return err
	}

	_, err = w.output.Write(data)
	return err
}

// WriteError writes a failure in the writer's format. Only JSON output has a
// structured failure form; other formats write nothing and leave reporting
// to the caller.
func (w *Writer) WriteError(err error) (bool, error) {
	jf, ok := w.formatter.(*JSONFormatter)
	if !ok {
		return false, nil
	}

	data, ferr := jf.FormatError(err)
	if ferr != nil {
		return false, ferr
	}
	_, werr := w.output.Write(data)
	return werr == nil, werr
}

// IsTTY returns whether the output is a terminal.
func (w *Writer) IsTTY() bool {
	return w.isTTY
}

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isTerminal(f)
}
