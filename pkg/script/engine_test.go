package script

import (
	"context"
	"strings"
	"testing"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/pkg/errors"
)

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine(Options{})

	for _, src := range []string{"", "   \n\t  \n  "} {
		res, evalErrs, err := eng.Evaluate(src)
		if err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("unexpected eval errors: %v", evalErrs)
		}
		if res == nil {
			t.Fatal("expected non-nil result")
		}
		if len(res.Scenes) != 0 {
			t.Errorf("expected no scenes, got %d", len(res.Scenes))
		}
	}
}

func TestEvaluateValidExpression(t *testing.T) {
	eng := NewEngine(Options{})

	res, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if res.Value != "3" {
		t.Errorf("value = %q, want 3", res.Value)
	}
	if len(res.Scenes) != 0 {
		t.Errorf("expected no scenes, got %d", len(res.Scenes))
	}
}

func TestEvaluateMultipleExpressions(t *testing.T) {
	eng := NewEngine(Options{})

	source := `
(def x 10)
(def y 20)
(+ x y)
`
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if res.Value != "30" {
		t.Errorf("value = %q, want 30", res.Value)
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := NewEngine(Options{})

	// Unmatched paren is a parse error.
	res, evalErrs, err := eng.Evaluate("(+ 1 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil result on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := NewEngine(Options{})

	res, evalErrs, err := eng.Evaluate("(+ 1 undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil result on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	e2 := EvalError{Message: "no location"}
	if strings.Contains(e2.Error(), "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", e2.Error())
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine(Options{})

	source := `(scene "tri" (node :vertices [0 0 0  1 0 0  0 1 0]))`
	for i := 0; i < 5; i++ {
		res, evalErrs, err := eng.Evaluate(source)
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("iteration %d: unexpected eval errors: %v", i, evalErrs)
		}
		if len(res.Scenes) != 1 {
			t.Fatalf("iteration %d: expected 1 scene, got %d", i, len(res.Scenes))
		}
		if got := res.Scenes[0].NodeCount(); got != 1 {
			t.Errorf("iteration %d: expected 1 node, got %d", i, got)
		}
	}
}

func TestEvaluateTimeout(t *testing.T) {
	eng := NewEngine(Options{Timeout: 20 * time.Millisecond})
	ch := make(chan evalResult) // never sends

	done := make(chan error, 1)
	go func() {
		_, _, err := eng.wait(ch, 0)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrTimeout) {
			t.Fatalf("expected ErrTimeout, got: %v", err)
		}
		if !strings.Contains(err.Error(), "timed out") {
			t.Errorf("expected timeout error message, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("test itself timed out waiting for evaluation timeout")
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	eng := NewEngine(Options{})
	eng.generation = 2

	ch := make(chan evalResult, 1)
	ch <- evalResult{result: &Result{}}

	_, _, err := eng.wait(ch, 1)
	if !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got: %v", err)
	}
}

func TestBuiltinsStopAfterCancel(t *testing.T) {
	calls := 0
	fn := interruptible(context.Background(), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		calls++
		return zygo.SexpNull, nil
	})
	if _, err := fn(nil, "node", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stopped := interruptible(ctx, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		calls++
		return zygo.SexpNull, nil
	})
	_, err := stopped(nil, "node", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDefaultOptions(t *testing.T) {
	eng := NewEngine(Options{})
	if eng.timeout != DefaultTimeout {
		t.Errorf("timeout = %s, want %s", eng.timeout, DefaultTimeout)
	}
	if eng.kernel == nil {
		t.Error("expected a default kernel")
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
		{
			name:     "short line format",
			msg:      "line 3: bad form",
			wantLine: 3,
			wantMsg:  "bad form",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
