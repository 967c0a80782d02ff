package main

import (
	"strings"
	"testing"

	"github.com/chazu/mirage/pkg/variant"
)

// ---------------------------------------------------------------------------
// 1. Empty editor: empty string -> 0 errors, examples stay on screen.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := testApp()
	result := app.Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Scenes == nil {
		t.Error("Scenes should be non-nil, got nil")
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax errors leave the published scenes alone.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := testApp()
	app.Evaluate(`(scene "kept")`)

	// Valid code on line 1, broken code on line 2 so line info is meaningful.
	result := app.Evaluate("(+ 1 2)\n(scene \"broken\"")
	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)

	if len(result.Scenes) != 1 || result.Scenes[0].Name != "kept" {
		t.Errorf("expected the previous scene to stay published, got %+v", result.Scenes)
	}
}

func TestE2EBuiltinErrorReported(t *testing.T) {
	app := testApp()
	result := app.Evaluate(`(scene "bad" (node :vertices [0 0 0] :type "hexagon"))`)
	if len(result.Errors) == 0 {
		t.Fatal("expected an eval error for an unknown primitive type")
	}
	if !strings.Contains(result.Errors[0].Message, "hexagon") {
		t.Errorf("message = %q, want the offending type", result.Errors[0].Message)
	}
}

func TestE2EUndefinedFunction(t *testing.T) {
	app := testApp()
	result := app.Evaluate(`(undefined-func 1 2 3)`)
	if len(result.Errors) == 0 {
		t.Fatal("expected an eval error for an undefined function")
	}
}

// ---------------------------------------------------------------------------
// 3. Rapid evaluation: no panics.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Alternates between valid and invalid sources rapidly.
	// Ensures the engine recovers cleanly between error and success states.
	app := testApp()

	sources := []string{
		`(scene "ok" (node :vertices (regular-polygon 5)))`,
		`(scene "broken"`,
		``,
		`(show 42)`,
		`(scene "also-ok" (node :vertices (grid 4 4) :type "line"))`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(mesh (sphere -1))`,
		`(undefined-func 1 2 3)`,
		`(scene "last" (node :vertices (cone 6)))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			app.Evaluate(source)
			app.Frame()
		}()
	}

	scenes := app.Scenes()
	if len(scenes) != 1 || scenes[0].Name != "last" {
		t.Errorf("expected the last good scene on screen, got %+v", scenes)
	}
}

// ---------------------------------------------------------------------------
// 4. Comments and whitespace.
// ---------------------------------------------------------------------------

func TestE2ECommentsOnly(t *testing.T) {
	app := testApp()
	result := app.Evaluate(";; just a comment\n; another\n")
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors for comments only, got %v", result.Errors)
	}
}

func TestE2ENestedArithmeticDef(t *testing.T) {
	app := testApp()
	result := app.Evaluate(`
(def sides (+ 2 (* 2 2)))
(scene "hex" (node :vertices (regular-polygon sides)))
`)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	frame := app.Frame()
	if len(frame.Draws) != 2 {
		t.Fatalf("expected ground and hexagon draws, got %d", len(frame.Draws))
	}
	if frame.Draws[1].Vertices != 18 {
		t.Errorf("hexagon vertices = %d, want 18", frame.Draws[1].Vertices)
	}
	if !frame.Draws[1].Lit {
		t.Error("triangle nodes should carry normals")
	}
}

// ---------------------------------------------------------------------------
// 5. Scene selection and the control surface.
// ---------------------------------------------------------------------------

func TestE2EExamplesPublishedAtStartup(t *testing.T) {
	app := testApp()
	scenes := app.Scenes()
	if len(scenes) == 0 {
		t.Fatal("expected example scenes at startup")
	}
	for i := range scenes {
		if err := app.SelectScene(i); err != nil {
			t.Fatal(err)
		}
		frame := app.Frame()
		if len(frame.Diagnostics) != 0 {
			t.Errorf("example %q: diagnostics %v", frame.Scene, frame.Diagnostics)
		}
		if len(frame.Draws) == 0 {
			t.Errorf("example %q: nothing drawn", frame.Scene)
		}
	}
}

func TestE2ESelectSceneOutOfRange(t *testing.T) {
	app := testApp()
	if err := app.SelectScene(len(app.Scenes())); err == nil {
		t.Error("expected an error selecting past the last scene")
	}
	if err := app.SelectScene(-1); err == nil {
		t.Error("expected an error selecting a negative index")
	}
}

func TestE2EParametersRoundTrip(t *testing.T) {
	app := testApp()
	source := `
(def size (control :name "Size" :value 0.5 :min 0 :max 2))
(scene "sized" :controls (list size)
  (node :vertices (regular-polygon 4) :position (list (param "Size" 0.5) 0 0)))
`
	if result := app.Evaluate(source); len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	params, err := app.Parameters()
	if err != nil {
		t.Fatal(err)
	}
	if len(params) != 1 || params[0].Name != "Size" || params[0].Control != "slider" {
		t.Fatalf("params = %+v", params)
	}
	if params[0].Max != 2 {
		t.Errorf("max = %g, want 2", params[0].Max)
	}

	if err := app.SetParameter("Size", variant.Float(1.5)); err != nil {
		t.Fatal(err)
	}
	params, _ = app.Parameters()
	if !params[0].Value.Equal(variant.Float(1.5)) {
		t.Errorf("value = %s, want 1.5", params[0].Value)
	}

	// The value survives re-evaluation and reaches the script.
	if result := app.Evaluate(source); len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	params, _ = app.Parameters()
	if !params[0].Value.Equal(variant.Float(1.5)) {
		t.Errorf("value after re-evaluation = %s, want 1.5", params[0].Value)
	}
	frame := app.Frame()
	if got := frame.Draws[1].Model[12]; got != 1.5 {
		t.Errorf("node x translation = %g, want 1.5", got)
	}
}

func TestE2ESetUnknownParameter(t *testing.T) {
	app := testApp()
	app.Evaluate(`(scene "plain")`)
	if err := app.SetParameter("missing", variant.Int(1)); err == nil {
		t.Error("expected an error for an unknown parameter")
	}
}

// ---------------------------------------------------------------------------
// 6. Invalid nodes are reported per frame, the rest still draws.
// ---------------------------------------------------------------------------

func TestE2EInvalidNodeDiagnostic(t *testing.T) {
	app := testApp()
	result := app.Evaluate(`
(scene "mixed"
  (node :vertices [0 0 0  1 0 0  0 1 0])
  (node :vertices [0 0 0  1 0 0  0 1 0] :colors [1 0 0 1]))
`)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	for i := 0; i < 2; i++ {
		frame := app.Frame()
		if len(frame.Draws) != 2 {
			t.Errorf("frame %d: %d draws, want 2 (ground and valid node)", i, len(frame.Draws))
		}
		if len(frame.Diagnostics) != 1 || !strings.HasPrefix(frame.Diagnostics[0], "node 1:") {
			t.Errorf("frame %d: diagnostics = %v", i, frame.Diagnostics)
		}
	}
}

func TestE2EFrameReusesBuffers(t *testing.T) {
	app := testApp()
	app.Evaluate(`(scene "tri" (node :vertices [0 0 0  1 0 0  0 1 0] :colors (cycle-colors 3)))`)
	first := app.Frame()
	second := app.Frame()
	if first.LiveBuffers == 0 {
		t.Fatal("expected buffers after the first frame")
	}
	if second.LiveBuffers != first.LiveBuffers || second.UsedBytes != first.UsedBytes {
		t.Errorf("second frame allocated: %d -> %d buffers", first.LiveBuffers, second.LiveBuffers)
	}
}
