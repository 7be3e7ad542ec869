package main

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// 1. Empty editor: empty string -> 0 meshes, 0 errors.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %d", len(result.Warnings))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Meshes == nil {
		t.Error("Meshes should be non-nil empty slice, got nil")
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Warnings == nil {
		t.Error("Warnings should be non-nil empty slice, got nil")
	}
	if result.Menu.Buttons == nil {
		t.Error("Menu.Buttons should be non-nil empty slice, got nil")
	}
}

func TestE2EWhitespaceOnly(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("   \n\t\n  ")
	if len(result.Errors) != 0 || len(result.Meshes) != 0 {
		t.Errorf("whitespace: %d errors, %d meshes", len(result.Errors), len(result.Meshes))
	}
}

func TestE2ECommentsOnly(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(";; a menu will go here\n;; :segments 4\n")
	if len(result.Errors) != 0 || len(result.Meshes) != 0 {
		t.Errorf("comments: %v errors, %d meshes", result.Errors, len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax errors: unmatched parens -> eval error, 0 meshes.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := NewApp()

	// Put valid code on line 1, broken code on line 2 so line info is meaningful.
	source := "(+ 1 2)\n(defsegment \"test\""
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on syntax error, got %d", len(result.Meshes))
	}
	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

func TestE2EUndefinedFunction(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(undefined-func 1 2 3)`)
	if len(result.Errors) == 0 {
		t.Fatal("expected error for an undefined function")
	}
}

// ---------------------------------------------------------------------------
// 3. Bad references: buttons naming missing segments.
// ---------------------------------------------------------------------------

func TestE2EUndefinedButton(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(radial "ring" (button "missing"))`)

	if len(result.Errors) == 0 {
		t.Fatal("expected error for an undefined button")
	}
	if !strings.Contains(result.Errors[0].Message, "missing") {
		t.Errorf("error %q does not name the missing segment", result.Errors[0].Message)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// 4. Invalid shapes are reported by validation with a suggestion.
// ---------------------------------------------------------------------------

func TestE2EIndivisibleParts(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(defsegment "fifth" (segment :segments 5 :parts 36))`)

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "try :parts 40") {
		t.Errorf("error %q does not suggest 40 parts", result.Errors[0].Message)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

func TestE2ENormalizedParts(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(defsegment "fifth" (segment :segments 5 :parts 36 :normalize true))`)
	if len(result.Errors) > 0 {
		t.Fatalf("errors: %v", result.Errors)
	}
	// 40 parts over 5 segments: 8 slices.
	if got := len(result.Meshes[0].Vertices) / 3; got != 36 {
		t.Errorf("vertices = %d, want 36", got)
	}
}

func TestE2EZeroDepth(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(defsegment "flat" (segment :depth 0))`)
	if len(result.Errors) == 0 {
		t.Fatal("expected error for zero depth")
	}
	if !strings.Contains(result.Errors[0].Message, "depth") {
		t.Errorf("error %q does not mention depth", result.Errors[0].Message)
	}
}

func TestE2EInvertedRadii(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(defsegment "inside-out" (segment :inner 0.2 :outer 0.1))`)
	if len(result.Errors) == 0 {
		t.Fatal("expected error for inner radius beyond outer")
	}
}

func TestE2ETooManySegments(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(defsegment "many" (segment :segments 18 :parts 36))`)
	if len(result.Errors) == 0 {
		t.Fatal("expected error for 18 segments")
	}
}

// ---------------------------------------------------------------------------
// 5. Layout warnings do not block meshing.
// ---------------------------------------------------------------------------

func TestE2EPartialRingWarns(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`
(defsegment "q" (segment :segments 4 :parts 40))
(radial "ring" (button "q") :count 3)
`)
	if len(result.Errors) > 0 {
		t.Fatalf("errors: %v", result.Errors)
	}
	if len(result.Meshes) != 3 {
		t.Errorf("expected 3 meshes, got %d", len(result.Meshes))
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0].Message, "270") {
		t.Errorf("warnings = %v", result.Warnings)
	}
}

func TestE2EOverlapWarns(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`
(defsegment "q" (segment :segments 4 :parts 40))
(radial "ring" (button "q") :step 45)
`)
	if len(result.Errors) > 0 {
		t.Fatalf("errors: %v", result.Errors)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w.Message, "overlap") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an overlap warning, got %v", result.Warnings)
	}
}

// ---------------------------------------------------------------------------
// 6. Rapid evaluation: the editor re-evaluates on every keystroke.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluation(t *testing.T) {
	// Calls are sequential: zygomys has internal global state that is not
	// safe for concurrent sandbox creation.
	app := NewApp()

	sources := []string{
		`(defsegment "a" (segment :segments 4 :parts 40))`,
		`(defsegment "b" (segment :segments 3 :parts 42))`,
		`(+ 1 2)`,
		``,
		`(defsegment "c" (segment :segments 6 :parts 42))`,
		`(defsegment "d" (segment :segments 5 :parts 36))`,
		`(defsegment "broken"`,
		`(button "missing")`,
		`;; just a comment`,
		`(defsegment "e" (segment)) (radial "r" (button "e"))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}

	// The last source leaves a two button menu behind.
	if st := app.menuState(); len(st.Buttons) != 2 {
		t.Errorf("menu has %d buttons after the last evaluation", len(st.Buttons))
	}
}

func TestE2EFailedEvaluationKeepsMenu(t *testing.T) {
	app := NewApp()
	app.Evaluate(`(defsegment "e" (segment)) (radial "r" (button "e"))`)
	app.Evaluate(`(defsegment "broken"`)
	if st := app.menuState(); len(st.Buttons) != 2 {
		t.Errorf("a failed evaluation replaced the menu: %+v", st)
	}
}

// ---------------------------------------------------------------------------
// 7. Arithmetic: zygomys expressions feed segment parameters.
// ---------------------------------------------------------------------------

func TestE2ENestedArithmeticDef(t *testing.T) {
	app := NewApp()

	source := `
(def n 4)
(defsegment "computed"
  (segment :segments n :parts (* n 10) :outer (+ 0.08 0.02)))
(radial "ring" (button "computed"))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}
	if len(result.Meshes) != 4 {
		t.Fatalf("expected 4 meshes, got %d", len(result.Meshes))
	}
	if result.Meshes[0].PartName != "computed" {
		t.Errorf("expected part name 'computed', got %q", result.Meshes[0].PartName)
	}
}

// ---------------------------------------------------------------------------
// 8. Palette: more meshes than colors.
// ---------------------------------------------------------------------------

func TestE2EColorPaletteWrapping(t *testing.T) {
	app := NewApp()

	// A 17 segment ring has more buttons than the palette has colors.
	result := app.Evaluate(`
(defsegment "thin" (segment :segments 17 :parts 51))
(radial "ring" (button "thin"))
`)
	if len(result.Errors) > 0 {
		t.Fatalf("errors: %v", result.Errors)
	}
	if len(result.Meshes) != 17 {
		t.Fatalf("expected 17 meshes, got %d", len(result.Meshes))
	}
	for i, m := range result.Meshes {
		if m.Color == "" {
			t.Errorf("mesh %q should have a color assigned (palette wrapping)", m.PartName)
		}
		if i >= 8 && m.Color != result.Meshes[i-8].Color {
			t.Errorf("mesh %d color %s, want %s", i, m.Color, result.Meshes[i-8].Color)
		}
	}
}
