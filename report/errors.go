package report

import "fmt"

// LocalCompileError is a compilation error that occurs in a context in which
// the file is known by the error handler and thus doesn't need to be passed
// along with the error.  The lexer and parser raise these via `panic` to
// abandon the file being parsed; a deferred handler (Parser.ParseFile's own,
// or CatchErrors) converts them into ordinary reported errors.
type LocalCompileError struct {
	// The error message.
	Message string

	// The span over which the error occurs.
	Span *TextSpan
}

func (lce *LocalCompileError) Error() string {
	return lce.Message
}

// Raise creates a new local compile error.
func Raise(span *TextSpan, msg string, args ...interface{}) *LocalCompileError {
	return &LocalCompileError{Message: fmt.Sprintf(msg, args...), Span: span}
}

// -----------------------------------------------------------------------------

// Message is a single accumulated compile message: an error or a warning.
type Message struct {
	// The absolute path of the erroneous source file.  Used to excerpt source
	// text when the message is displayed.
	AbsPath string

	// The representative path of the erroneous source file: the path as it
	// should be shown to the user.
	ReprPath string

	// The span over which the message occurs.  May be nil for file-level
	// messages.
	Span *TextSpan

	// The message text.
	Text string

	// Whether the message is a warning rather than an error.
	IsWarning bool
}

func (m *Message) String() string {
	label := "error"
	if m.IsWarning {
		label = "warning"
	}

	if m.Span == nil {
		return fmt.Sprintf("%s: %s: %s", m.ReprPath, label, m.Text)
	}

	return fmt.Sprintf("%s:%d:%d: %s: %s",
		m.ReprPath, m.Span.StartLine+1, m.Span.StartCol+1, label, m.Text)
}
