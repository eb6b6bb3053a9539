package port

import "time"

type Sink interface {
	// Progress line: overwrite last line (no newline)
	WriteProgress(line string) error
	// Report line: append a line with timestamp
	WriteReport(ts time.Time, line string) error
	// Normal newline
	NewLine() error
}
