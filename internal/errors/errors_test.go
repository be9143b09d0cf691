package errors

import (
	stderrors "errors"
	"fmt"
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
			name:    "pattern error",
			code:    "E100",
			wantMsg: "Invalid route pattern",
			wantCat: CategoryPattern,
		},
		{
			name:    "fragment error",
			code:    "E110",
			wantMsg: "Invalid percent escape in fragment",
			wantCat: CategoryFragment,
		},
		{
			name:    "bridge error",
			code:    "E140",
			wantMsg: "Invalid bridge frame",
			wantCat: CategoryBridge,
		},
		{
			name:    "unknown error code",
			code:    "E999",
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

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "pattern %q is empty", "")
	if err.Message != `pattern "" is empty` {
		t.Errorf("Message = %q, want %q", err.Message, `pattern "" is empty`)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestFragmentError_Error(t *testing.T) {
	err := New("E100")
	if got, want := err.Error(), "E100: Invalid route pattern"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err2 := &FragmentError{Message: "test error"}
	if err2.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "test error")
	}

	wrapped := New("E131").Wrap(fmt.Errorf("status 404"))
	if got, want := wrapped.Error(), "E131: Partial fetch failed: status 404"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestFragmentError_Builders(t *testing.T) {
	err := New("E100").
		WithLocation("/user/:id(", 9).
		WithDetail("custom detail").
		WithSuggestion("close the group")

	if err.Location == nil || err.Location.Offset != 9 || err.Location.Input != "/user/:id(" {
		t.Fatalf("Location = %+v", err.Location)
	}
	if err.Detail != "custom detail" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Suggestion != "close the group" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
}

func TestFragmentError_IsAndUnwrap(t *testing.T) {
	inner := stderrors.New("missing paren")
	err := fmt.Errorf("register: %w", New("E100").Wrap(inner))

	if !stderrors.Is(err, New("E100")) {
		t.Error("errors.Is should match by code")
	}
	if stderrors.Is(err, New("E110")) {
		t.Error("errors.Is should not match a different code")
	}
	if !stderrors.Is(err, inner) {
		t.Error("errors.Is should reach the wrapped error")
	}
	if !HasCode(err, "E100") {
		t.Error("HasCode should find E100 through fmt wrapping")
	}
	if HasCode(inner, "E100") {
		t.Error("HasCode should be false for plain errors")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E100") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	fe := New("E100")
	if FromError(fe, "E131") != fe {
		t.Error("FromError should return FragmentError as-is")
	}

	std := stderrors.New("boom")
	result := FromError(std, "E131")
	if result.Wrapped != std {
		t.Error("standard error should be wrapped")
	}
	if result.Code != "E131" {
		t.Errorf("Code = %q, want E131", result.Code)
	}
}

func TestLocation_String(t *testing.T) {
	var nilLoc *Location
	if nilLoc.String() != "" {
		t.Errorf("nil String() = %q, want empty", nilLoc.String())
	}
	loc := &Location{Input: "/a/:b(", Offset: 5}
	if got, want := loc.String(), `"/a/:b(" at offset 5`; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E100").
		WithLocation("/user/:id(", 9).
		WithSuggestion("Close the custom capture group")

	out := err.Format()
	for _, want := range []string{
		"ERROR E100: Invalid route pattern",
		"  /user/:id(\n",
		"           ^\n",
		"Hint: Close the custom capture group",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E110").WithLocation("/a%zz", 2)
	if got, want := err.FormatCompact(), `"/a%zz" at offset 2: E110: Invalid percent escape in fragment`; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E100").WithLocation("/x(", 2)
	got := err.FormatJSON()
	if !strings.HasPrefix(got, `{"code":"E100","category":"pattern","message":"Invalid route pattern"`) {
		t.Errorf("FormatJSON() = %s", got)
	}
	if !strings.Contains(got, `"location":{"input":"/x(","offset":2}`) {
		t.Errorf("FormatJSON() missing location: %s", got)
	}
}

func TestWrapText(t *testing.T) {
	if lines := wrapText("", 10); lines != nil {
		t.Errorf("wrapText(empty) = %v, want nil", lines)
	}
	lines := wrapText("one two three four five", 9)
	for _, l := range lines {
		if len(l) > 9 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five" {
		t.Errorf("wrapText lost words: %v", lines)
	}
}

func TestRegistryCodes(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok {
			t.Fatalf("GetTemplate(%q) not found", code)
		}
		if tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("template %s incomplete: %+v", code, tmpl)
		}
	}

	Register("E199", ErrorTemplate{Category: CategoryCLI, Message: "custom"})
	defer delete(registry, "E199")
	if New("E199").Message != "custom" {
		t.Error("Register did not add template")
	}
}
