package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "L001",
			wantMsg: "loadable requires a Loading view",
			wantCat: CategoryConfig,
		},
		{
			name:    "runtime error",
			code:    "L020",
			wantMsg: "loader panicked",
			wantCat: CategoryRuntime,
		},
		{
			name:    "hydration error",
			code:    "L040",
			wantMsg: "malformed preloadables payload",
			wantCat: CategoryHydration,
		},
		{
			name:    "unknown error code",
			code:    "L999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	sentinel := New("L001")
	err := New("L001").WithDetail("dashboard")

	if !stderrors.Is(err, sentinel) {
		t.Error("errors with the same code should match")
	}
	if stderrors.Is(err, New("L002")) {
		t.Error("errors with different codes should not match")
	}
	if stderrors.Is(err, Newf(CategoryRuntime, "no code")) {
		t.Error("codeless target should never match")
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := New("L021").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause should be reachable")
	}
	if got := err.Error(); got != "L021: module fetch failed: connection reset" {
		t.Errorf("Error() = %q", got)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "L021") != nil {
		t.Error("FromError(nil) should be nil")
	}

	le := New("L040")
	if FromError(le, "L021") != le {
		t.Error("FromError should return existing LoadableError unchanged")
	}

	wrapped := FromError(stderrors.New("boom"), "L021")
	if wrapped.Code != "L021" {
		t.Errorf("Code = %q, want L021", wrapped.Code)
	}
}

func TestFormat(t *testing.T) {
	out := New("L001").
		WithDetail("loadable \"chart\" has no Loading view").
		WithSuggestion("set Options.Loading").
		Format()

	for _, want := range []string{"ERROR L001", "chart", "Hint: set Options.Loading"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in %q", want, out)
		}
	}
}

func TestAllCodesHaveTemplates(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok {
			t.Fatalf("missing template for %s", code)
		}
		if tmpl.Message == "" {
			t.Errorf("%s has empty message", code)
		}
		if !strings.HasPrefix(code, "L") {
			t.Errorf("%s should use the L prefix", code)
		}
	}
}
