package report

import (
	"fmt"
	"os"
)

// Reporter accumulates compile messages during a compilation session.  It is
// append-only: messages are recorded in the order they are produced, which the
// analyzer guarantees to be source order within a file and import order across
// files.  User errors never abort the session; they are collected and flushed
// at the end of compilation.  A session with one reporter corresponds to one
// compilation.
type Reporter struct {
	// The selected log level of the reporter.  This must be one of the
	// enumerated log levels below.
	logLevel int

	// The accumulated compile messages, in emission order.
	messages []*Message

	// The count of accumulated errors (not warnings).
	errorCount int
}

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarn           // Displays only warnings and errors to the user.
	LogLevelVerbose        // Displays all compilation messages to the user (default).
)

// NewReporter creates a new reporter with the given log level.
func NewReporter(logLevel int) *Reporter {
	return &Reporter{logLevel: logLevel}
}

// -----------------------------------------------------------------------------

// ReportCompileError reports a compilation error: ie. erroneous input code.
// The absPath is the absolute path to the erroneous source file.  The reprPath
// is the representative path to the erroneous source file.  The span may be
// nil in which case no position information will be attached.
func (r *Reporter) ReportCompileError(absPath, reprPath string, span *TextSpan, message string, args ...interface{}) {
	r.messages = append(r.messages, &Message{
		AbsPath:  absPath,
		ReprPath: reprPath,
		Span:     span,
		Text:     fmt.Sprintf(message, args...),
	})
	r.errorCount++
}

// ReportCompileWarning reports a compilation warning.  The arguments are of
// the same form as those to ReportCompileError.
func (r *Reporter) ReportCompileWarning(absPath, reprPath string, span *TextSpan, message string, args ...interface{}) {
	r.messages = append(r.messages, &Message{
		AbsPath:   absPath,
		ReprPath:  reprPath,
		Span:      span,
		Text:      fmt.Sprintf(message, args...),
		IsWarning: true,
	})
}

// ReportStdError reports a non-fatal, standard Go error associated with a
// file.
func (r *Reporter) ReportStdError(reprPath string, err error) {
	r.messages = append(r.messages, &Message{
		ReprPath: reprPath,
		Text:     err.Error(),
	})
	r.errorCount++
}

// ReportICE reports an internal compiler error.  These are errors that
// specifically result from a bug or unexpected condition occurring within the
// compiler: they are not intended to ever happen.  These errors are always
// displayed regardless of log level and abort the process.
func (r *Reporter) ReportICE(message string, args ...interface{}) {
	displayICE(fmt.Sprintf(message, args...))
	os.Exit(-1)
}

// ReportFatal reports a fatal error.  These are errors that should cause all
// compilation to stop immediately.  However, they are expected errors that
// generally result from invalid configuration of some form: missing
// SABLE_PATH, can't find requisite tools, etc.
func (r *Reporter) ReportFatal(message string, args ...interface{}) {
	if r.logLevel > LogLevelSilent {
		displayFatal(fmt.Sprintf(message, args...))
	}

	os.Exit(1)
}

// -----------------------------------------------------------------------------

// ShouldProceed returns whether no errors have been detected so far.
func (r *Reporter) ShouldProceed() bool {
	return r.errorCount == 0
}

// ErrorCount returns the number of accumulated errors.
func (r *Reporter) ErrorCount() int {
	return r.errorCount
}

// WarningCount returns the number of accumulated warnings.
func (r *Reporter) WarningCount() int {
	return len(r.messages) - r.errorCount
}

// Messages returns the accumulated messages in emission order.
func (r *Reporter) Messages() []*Message {
	return r.messages
}

// Flush displays all accumulated messages respecting the reporter's log level.
func (r *Reporter) Flush() {
	if r.logLevel == LogLevelSilent {
		return
	}

	for _, msg := range r.messages {
		if msg.IsWarning && r.logLevel < LogLevelWarn {
			continue
		}

		displayCompileMessage(msg)
	}
}

// -----------------------------------------------------------------------------

// CatchErrors catches any errors thrown by a `panic` during a stage of
// compilation.  In effect, this handler determines when any errors
// "unrecoverable" within a given subsection of the compiler should stop
// bubbling.
// NB: This function must ALWAYS be deferred.
func (r *Reporter) CatchErrors(absPath, reprPath string) {
	if x := recover(); x != nil {
		if cerr, ok := x.(*LocalCompileError); ok {
			r.ReportCompileError(absPath, reprPath, cerr.Span, cerr.Message)
		} else if serr, ok := x.(error); ok {
			r.ReportStdError(reprPath, serr)
		} else {
			r.ReportFatal("%s", x)
		}
	}
}
