package reconcile

import (
	"fmt"
	"strings"
	"time"

	"wmrecon/internal/domain/model"
)

const (
	ansiReset    = "\033[0m"
	ansiRed      = "\033[31m"
	ansiGreen    = "\033[32m"
	ansiYellow   = "\033[33m"
	ansiDim      = "\033[2m"
	ansiClearEOL = "\033[K"
)

type Formatter struct {
	Color bool
}

func NewFormatter(color bool) *Formatter {
	return &Formatter{Color: color}
}

func (f *Formatter) colorize(s, c string) string {
	if !f.Color {
		return s
	}
	return c + s + ansiReset
}

// Progress renders the overwritable line shown while a check runs.
func (f *Formatter) Progress(n, total int, portfolio, check string) string {
	var sb strings.Builder
	sb.WriteString("\r")
	sb.WriteString(f.colorize("[WMRECON] ", ansiDim))
	sb.WriteString(fmt.Sprintf("%d/%d %s ", n, total, portfolio))
	sb.WriteString(f.colorize(check, ansiYellow))
	if f.Color {
		sb.WriteString(ansiClearEOL)
	}
	return sb.String()
}

// Result renders a finished check followed by one line per failed step.
func (f *Formatter) Result(res *model.CheckResult) string {
	var sb strings.Builder
	if res.Passed() {
		sb.WriteString(f.colorize("PASS", ansiGreen))
	} else {
		sb.WriteString(f.colorize("FAIL", ansiRed))
	}
	sb.WriteString(fmt.Sprintf(" %s %s %s (%s)", res.Portfolio, res.Check, res.Summary(), res.Duration.Round(time.Millisecond)))
	for _, msg := range res.Failures {
		sb.WriteString("\n    ")
		sb.WriteString(f.colorize(msg, ansiDim))
	}
	return sb.String()
}

// Summary renders the closing line of a run.
func (f *Formatter) Summary(run *model.Run) string {
	line := fmt.Sprintf("run %s: %d checks, %d failed", run.ID, run.Checks, run.Failed)
	if run.Passed() {
		return f.colorize(line, ansiGreen)
	}
	return f.colorize(line, ansiRed)
}
