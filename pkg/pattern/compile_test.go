package pattern

import (
	stderrors "errors"
	"reflect"
	"regexp/syntax"
	"testing"

	"github.com/vango-dev/fragment/internal/errors"
)

func TestCompileExpr(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		strict bool
		want   string
	}{
		{
			name: "empty pattern",
			raw:  "",
			want: `^\/?$`,
		},
		{
			name: "static path",
			raw:  "/about",
			want: `^\/about\/?$`,
		},
		{
			name:   "static path strict",
			raw:    "/about",
			strict: true,
			want:   `^\/about$`,
		},
		{
			name: "required param",
			raw:  "/user/:id",
			want: `^\/user\/(?:(?P<p0>[^\/]+?))\/?$`,
		},
		{
			name: "optional param moves slash inside group",
			raw:  "/user/:id?",
			want: `^\/user(?:\/(?P<p0>[^\/]+?))?\/?$`,
		},
		{
			name: "dot param",
			raw:  "/file/:name.:ext",
			want: `^\/file\/(?:(?P<p0>[^\/]+?))(?:\.(?P<p1>[^\/\.]+?))\/?$`,
		},
		{
			name: "custom capture",
			raw:  `/user/:id(\d+)`,
			want: `^\/user\/(?:(?P<p0>\d+))\/?$`,
		},
		{
			name: "custom capture is not escaped",
			raw:  `/n/:rest(.+)`,
			want: `^\/n\/(?:(?P<p0>.+))\/?$`,
		},
		{
			name: "non-capturing custom capture is wrapped",
			raw:  `/:kind(?:a|b)`,
			want: `^\/(?:(?P<p0>(?:a|b)))\/?$`,
		},
		{
			name: "wildcard",
			raw:  "/files/*",
			want: `^\/files\/(?P<w0>.*)\/?$`,
		},
		{
			name: "slash paren opens non-capturing group",
			raw:  "/user/(edit)?",
			want: `^\/user(?:\/edit)?\/?$`,
		},
		{
			name: "colon without name stays literal",
			raw:  "/a/:/b",
			want: `^\/a\/:\/b\/?$`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.raw, tt.strict)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tt.raw, err)
			}
			if p.Expr() != tt.want {
				t.Errorf("Expr() = %s, want %s", p.Expr(), tt.want)
			}
			if p.Raw() != tt.raw || p.String() != tt.raw {
				t.Errorf("Raw() = %q, want %q", p.Raw(), tt.raw)
			}
			if p.Strict() != tt.strict {
				t.Errorf("Strict() = %v, want %v", p.Strict(), tt.strict)
			}
		})
	}
}

func TestCompileParams(t *testing.T) {
	p := MustCompile("/user/:id/:action?/*", false)

	want := []ParamDescriptor{
		{Name: "id", Optional: false},
		{Name: "action", Optional: true},
	}
	if got := p.Params(); !reflect.DeepEqual(got, want) {
		t.Errorf("Params() = %+v, want %+v", got, want)
	}
	if p.NumWildcards() != 1 {
		t.Errorf("NumWildcards() = %d, want 1", p.NumWildcards())
	}

	// Params returns a copy.
	p.Params()[0].Name = "mutated"
	if p.Params()[0].Name != "id" {
		t.Error("Params() exposed internal state")
	}
}

func TestCompileMalformed(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantOffset int
	}{
		{name: "unclosed custom capture", raw: `/user/:id(\d+`, wantOffset: 9},
		{name: "stray closing paren", raw: "/user)", wantOffset: 5},
		{name: "unclosed group", raw: "/a(b", wantOffset: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.raw, false)
			if err == nil {
				t.Fatalf("Compile(%q) = %s, want error", tt.raw, p.Expr())
			}

			var perr *PatternError
			if !stderrors.As(err, &perr) {
				t.Fatalf("error %T is not *PatternError", err)
			}
			if perr.Pattern != tt.raw {
				t.Errorf("Pattern = %q, want %q", perr.Pattern, tt.raw)
			}
			if !errors.HasCode(err, "E100") {
				t.Errorf("error %v does not carry E100", err)
			}

			var fe *errors.FragmentError
			if !stderrors.As(err, &fe) || fe.Location == nil {
				t.Fatalf("expected located FragmentError, got %v", err)
			}
			if fe.Location.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", fe.Location.Offset, tt.wantOffset)
			}

			var serr *syntax.Error
			if !stderrors.As(err, &serr) {
				t.Errorf("expected wrapped *syntax.Error, got %v", err)
			}
		})
	}
}

func TestCompileReservedGroupNames(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantOffset int
	}{
		{name: "param name out of range", raw: `/n-(?P<p2>\d+)`, wantOffset: 3},
		{name: "param name with no params", raw: `/x-(?P<p3>\d+)`, wantOffset: 3},
		{name: "nested in custom capture", raw: `/a/:id((?P<p9>\d+))`, wantOffset: 7},
		{name: "duplicates builder param", raw: `/a/:id-(?P<p0>\d+)`, wantOffset: 7},
		{name: "wildcard name", raw: `/f-(?P<w0>.*)`, wantOffset: 3},
		{name: "duplicates builder wildcard", raw: `/f/*-(?P<w0>x)`, wantOffset: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.raw, false)
			if err == nil {
				t.Fatalf("Compile(%q) = %s, want error", tt.raw, p.Expr())
			}

			var perr *PatternError
			if !stderrors.As(err, &perr) {
				t.Fatalf("error %T is not *PatternError", err)
			}
			if !errors.HasCode(err, "E100") {
				t.Errorf("error %v does not carry E100", err)
			}

			var fe *errors.FragmentError
			if !stderrors.As(err, &fe) || fe.Location == nil {
				t.Fatalf("expected located FragmentError, got %v", err)
			}
			if fe.Location.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", fe.Location.Offset, tt.wantOffset)
			}
		})
	}
}

func TestCompileUserNamedGroupsArePositional(t *testing.T) {
	tests := []struct {
		raw       string
		candidate string
	}{
		{raw: `/y-(?P<year>\d+)`, candidate: "/y-12"},
		{raw: `/n-(?P<p01>\d+)`, candidate: "/n-12"},
		{raw: `/n-(?P<px>\d+)`, candidate: "/n-12"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p, err := Compile(tt.raw, false)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tt.raw, err)
			}
			m := p.Match(tt.candidate)
			if m == nil {
				t.Fatalf("%q did not match %q", tt.raw, tt.candidate)
			}
			if len(m.Params) != 0 {
				t.Errorf("Params = %v, want empty", m.Params)
			}
			if m.Values[1] != "12" {
				t.Errorf("Values[1] = %q, want 12", m.Values[1])
			}
		})
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile should panic on malformed pattern")
		}
	}()
	MustCompile("/a(", false)
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("/user/:id(\\d+)?.:ext/x")
	if len(tokens) != 4 {
		t.Fatalf("len(tokens) = %d, want 4: %+v", len(tokens), tokens)
	}

	if tokens[0].kind != tokenLiteral || tokens[0].text != "/user" {
		t.Errorf("tokens[0] = %+v", tokens[0])
	}

	id := tokens[1]
	if id.kind != tokenParam || id.name != "id" || !id.slash || id.dot ||
		id.capture != `(\d+)` || !id.optional || id.offset != 5 {
		t.Errorf("tokens[1] = %+v", id)
	}

	ext := tokens[2]
	if ext.kind != tokenParam || ext.name != "ext" || ext.slash || !ext.dot || ext.optional {
		t.Errorf("tokens[2] = %+v", ext)
	}

	if tokens[3].text != "/x" || tokens[3].offset != 20 {
		t.Errorf("tokens[3] = %+v", tokens[3])
	}
}

func TestUnbalancedOffset(t *testing.T) {
	tests := map[string]int{
		"/a/b":        -1,
		"/a(b)":       -1,
		`/a\(b`:       -1,
		"/a(b":        2,
		"/a)":         2,
		"/(a(b)":      1,
		`/:id(\d+`:    4,
		"/x(y)(z":     5,
		"(((balanced": 2,
	}
	for raw, want := range tests {
		if got := unbalancedOffset(raw); got != want {
			t.Errorf("unbalancedOffset(%q) = %d, want %d", raw, got, want)
		}
	}
}
