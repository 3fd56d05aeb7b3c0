package report

import (
	"errors"
	"testing"
)

func TestReporterAccumulation(t *testing.T) {
	rep := NewReporter(LogLevelSilent)

	if !rep.ShouldProceed() {
		t.Fatalf("fresh reporter should proceed")
	}

	rep.ReportCompileError("/abs/a.sbl", "a.sbl", &TextSpan{StartLine: 1, StartCol: 2, EndLine: 1, EndCol: 4},
		"expected type '%s', got '%s'", "i32", "bool")
	rep.ReportCompileWarning("/abs/a.sbl", "a.sbl", nil, "unused label")
	rep.ReportCompileError("/abs/b.sbl", "b.sbl", nil, "second error")

	if rep.ShouldProceed() {
		t.Errorf("reporter with errors should not proceed")
	}

	if rep.ErrorCount() != 2 {
		t.Errorf("ErrorCount = %d, want 2", rep.ErrorCount())
	}

	if rep.WarningCount() != 1 {
		t.Errorf("WarningCount = %d, want 1", rep.WarningCount())
	}

	msgs := rep.Messages()
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}

	// Messages keep emission order.
	if msgs[0].Text != "expected type 'i32', got 'bool'" || msgs[2].Text != "second error" {
		t.Errorf("messages out of order")
	}

	want := "a.sbl:2:3: error: expected type 'i32', got 'bool'"
	if msgs[0].String() != want {
		t.Errorf("String() = %q, want %q", msgs[0].String(), want)
	}

	if !msgs[1].IsWarning {
		t.Errorf("warning not flagged")
	}
}

func TestCatchErrors(t *testing.T) {
	rep := NewReporter(LogLevelSilent)

	func() {
		defer rep.CatchErrors("/abs/a.sbl", "a.sbl")
		panic(Raise(&TextSpan{}, "undefined symbol: '%s'", "x"))
	}()

	if rep.ErrorCount() != 1 {
		t.Fatalf("raised error not caught")
	}

	if rep.Messages()[0].Text != "undefined symbol: 'x'" {
		t.Errorf("caught message = %q", rep.Messages()[0].Text)
	}

	// Ordinary Go errors are caught as well.
	func() {
		defer rep.CatchErrors("/abs/a.sbl", "a.sbl")
		panic(errors.New("boom"))
	}()

	if rep.ErrorCount() != 2 {
		t.Errorf("std error not caught")
	}
}

func TestSpanOver(t *testing.T) {
	start := &TextSpan{StartLine: 1, StartCol: 5, EndLine: 1, EndCol: 7}
	end := &TextSpan{StartLine: 3, StartCol: 0, EndLine: 3, EndCol: 2}

	over := NewSpanOver(start, end)
	if over.StartLine != 1 || over.StartCol != 5 || over.EndLine != 3 || over.EndCol != 2 {
		t.Errorf("NewSpanOver = %+v", over)
	}
}
