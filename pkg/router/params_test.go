package router

import (
	"testing"

	"github.com/vango-dev/fragment/internal/errors"
	"github.com/vango-dev/fragment/pkg/pattern"
)

func TestParamParserKinds(t *testing.T) {
	type Params struct {
		Name   string   `param:"name"`
		ID     int64    `param:"id"`
		Count  uint     `param:"count"`
		Price  float64  `param:"price"`
		Active bool     `param:"active"`
		Slug   []string `param:"slug"`
		Skip   string
	}

	params := map[string]string{
		"name":   "kit",
		"id":     "9223372036854775807",
		"count":  "42",
		"price":  "19.99",
		"active": "1",
		"slug":   "a/b/c",
	}

	var p Params
	if err := NewParamParser().Parse(params, &p); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if p.Name != "kit" {
		t.Errorf("Name = %q, want kit", p.Name)
	}
	if p.ID != 9223372036854775807 {
		t.Errorf("ID = %d", p.ID)
	}
	if p.Count != 42 {
		t.Errorf("Count = %d, want 42", p.Count)
	}
	if p.Price != 19.99 {
		t.Errorf("Price = %f, want 19.99", p.Price)
	}
	if !p.Active {
		t.Error("Active = false, want true")
	}
	if len(p.Slug) != 3 || p.Slug[0] != "a" || p.Slug[2] != "c" {
		t.Errorf("Slug = %v, want [a b c]", p.Slug)
	}
}

func TestParamParserErrors(t *testing.T) {
	type Params struct {
		ID int `param:"id"`
	}
	parser := NewParamParser()

	tests := []struct {
		name   string
		params map[string]string
		target any
	}{
		{"invalid int", map[string]string{"id": "notanumber"}, &Params{}},
		{"not a pointer", map[string]string{"id": "1"}, Params{}},
		{"pointer to non-struct", map[string]string{"id": "1"}, new(int)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := parser.Parse(tt.params, tt.target); err == nil {
				t.Error("Parse() should fail")
			}
		})
	}

	if err := parser.Parse(map[string]string{"id": "1"}, nil); err != nil {
		t.Errorf("Parse(nil) error: %v", err)
	}
}

func TestBind(t *testing.T) {
	type Params struct {
		User  string   `param:"user"`
		Page  int      `param:"page"`
		Rest  []string `param:"*"`
		Other string   `param:"other"`
	}

	p := pattern.MustCompile("/u/:user/:page?/files/*", false)
	m := p.Match("/u/j%C3%B6rg/files/docs/a%20b")
	if m == nil {
		t.Fatal("pattern should match")
	}

	var got Params
	if err := Bind(m, &got); err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	if got.User != "jörg" {
		t.Errorf("User = %q, want jörg", got.User)
	}
	if got.Page != 0 {
		t.Errorf("Page = %d, want 0 for unmatched optional", got.Page)
	}
	if len(got.Rest) != 2 || got.Rest[1] != "a b" {
		t.Errorf("Rest = %v, want [docs a b]", got.Rest)
	}
}

func TestBindRejectsEncodedSlash(t *testing.T) {
	type Params struct {
		User string `param:"user"`
	}

	m := pattern.MustCompile("/u/:user", false).Match("/u/a%2Fb")
	if m == nil {
		t.Fatal("pattern should match")
	}

	var got Params
	err := Bind(m, &got)
	if !errors.HasCode(err, "E111") {
		t.Errorf("Bind() error = %v, want E111", err)
	}
}

func TestBindNilMatch(t *testing.T) {
	var got struct {
		ID string `param:"id"`
	}
	if err := Bind(nil, &got); err != nil {
		t.Errorf("Bind(nil) error: %v", err)
	}
}
