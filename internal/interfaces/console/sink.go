package console

import (
	"fmt"
	"io"
	"os"
	"time"

	"wmrecon/internal/application/port"
)

type Sink struct {
	w io.Writer
}

func NewSink() port.Sink { return &Sink{w: os.Stdout} }

func NewSinkTo(w io.Writer) port.Sink { return &Sink{w: w} }

func (s *Sink) WriteProgress(line string) error {
	_, err := fmt.Fprint(s.w, line) // no newline
	return err
}

// WriteReport clears the progress line before printing.
func (s *Sink) WriteReport(ts time.Time, line string) error {
	_, err := fmt.Fprintf(s.w, "\r\033[K%s %s\n", ts.Format("2006-01-02 15:04:05"), line)
	return err
}

func (s *Sink) NewLine() error {
	_, err := fmt.Fprint(s.w, "\n")
	return err
}
