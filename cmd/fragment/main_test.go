package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/fragment/internal/config"
	"github.com/vango-dev/fragment/internal/errors"
	"github.com/vango-dev/fragment/pkg/bridge"
	"github.com/vango-dev/fragment/pkg/pattern"
	"github.com/vango-dev/fragment/pkg/router"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompileCommand(t *testing.T) {
	out, err := execute(t, "compile", "--json", "/user/:id/:tab?")
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	var got compileOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Pattern != "/user/:id/:tab?" {
		t.Errorf("Pattern = %q", got.Pattern)
	}
	if len(got.Params) != 2 || got.Params[0].Name != "id" || got.Params[1].Name != "tab" || !got.Params[1].Optional {
		t.Errorf("Params = %+v", got.Params)
	}
	if got.Expr == "" {
		t.Error("Expr is empty")
	}
}

func TestCompileCommandInvalidPattern(t *testing.T) {
	_, err := execute(t, "compile", "/n/:id(")
	if !errors.HasCode(err, "E100") {
		t.Errorf("error = %v, want E100", err)
	}
}

func TestMatchCommand(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		input     string
		wantParam string
		wantValue string
		wantWild  string
	}{
		{"named", "/user/:id", "/user/42", "id", "42", ""},
		{"from url", "/files/*", "https://example.com/#/files/a/b.txt", "", "", "a/b.txt"},
		{"optional absent", "/list/:page?", "/list", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "match", "--json", tt.pattern, tt.input)
			if err != nil {
				t.Fatalf("match error: %v", err)
			}
			var got matchOutput
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("invalid JSON %q: %v", out, err)
			}
			if !got.Matched {
				t.Fatal("Matched = false")
			}
			if tt.wantParam != "" && got.Params[tt.wantParam] != tt.wantValue {
				t.Errorf("Params[%s] = %q, want %q", tt.wantParam, got.Params[tt.wantParam], tt.wantValue)
			}
			if tt.wantWild != "" && (len(got.Wildcards) != 1 || got.Wildcards[0] != tt.wantWild) {
				t.Errorf("Wildcards = %v, want [%s]", got.Wildcards, tt.wantWild)
			}
		})
	}
}

func TestMatchCommandText(t *testing.T) {
	out, err := execute(t, "match", "/user/:id", "/user/42")
	if err != nil {
		t.Fatalf("match error: %v", err)
	}
	if !strings.Contains(out, "id = 42") {
		t.Errorf("output missing param:\n%s", out)
	}
}

func TestMatchCommandNoMatch(t *testing.T) {
	if _, err := execute(t, "match", "--strict", "/user/:id", "/user/42/"); err == nil {
		t.Error("expected error for strict trailing slash")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version = %q, want %q", out, version)
	}
}

func writeProject(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	if err := os.MkdirAll(filepath.Join(dir, "partials"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "partials", "user.html"), []byte("<h1>user</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}

	raw := `{
  "partials": {"baseURL": "file:///", "root": "partials"},
  "routes": [{"pattern": "/user/:id", "target": "#main", "url": "user.html"}],
  "telemetry": {"metrics": true}
}`
	path := filepath.Join(dir, config.ConfigFileName)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	return cfg
}

func TestBuildHandler(t *testing.T) {
	cfg := writeProject(t)
	handler, srv, err := buildHandler(context.Background(), cfg, quietLogger())
	if err != nil {
		t.Fatalf("buildHandler() error: %v", err)
	}
	t.Cleanup(srv.Close)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	t.Run("client script", func(t *testing.T) {
		resp, err := http.Get(ts.URL + cfg.Server.ClientPath)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK || string(body) != bridge.ClientScript {
			t.Errorf("status = %d, body length = %d", resp.StatusCode, len(body))
		}
	})

	t.Run("bridge loads configured partial", func(t *testing.T) {
		wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + cfg.Server.WSPath
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("Dial() error: %v", err)
		}
		defer conn.Close()

		if err := conn.WriteJSON(bridge.Frame{Type: bridge.FrameHashChange, Href: "http://example.com/#/user/7"}); err != nil {
			t.Fatal(err)
		}
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var f bridge.Frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("ReadJSON() error: %v", err)
		}
		if f.Type != bridge.FramePartial || f.Target != "#main" || f.HTML != "<h1>user</h1>" {
			t.Errorf("frame = %+v", f)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(ts.URL + cfg.Server.MetricsPath)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if !strings.Contains(string(body), "fragment_bridge_connections") {
			t.Error("metrics output missing fragment_bridge_connections")
		}
	})
}

func TestLoadServeConfigFallsBackToDefaults(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadServeConfig("")
	if err != nil {
		t.Fatalf("loadServeConfig() error: %v", err)
	}
	if cfg.Server.Port != config.DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Server.Port, config.DefaultPort)
	}
}

func dispatchErrors(t *testing.T, pat, code string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	for _, f := range families {
		if f.GetName() != "fragment_route_dispatch_errors_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["pattern"] == pat && labels["code"] == code {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRouterOptionsCountPanics(t *testing.T) {
	cfg := config.New()
	cfg.Telemetry.Metrics = true
	cfg.Telemetry.Tracing = true

	w := router.NewWindow("http://x/#/")
	r := router.New(append(routerOptions(cfg, quietLogger()), router.WithWindow(w))...)
	if _, err := r.On("/serve-panic", func(context.Context, map[string]string, *pattern.MatchResult) error {
		panic("broken")
	}); err != nil {
		t.Fatal(err)
	}

	before := dispatchErrors(t, "/serve-panic", "E106")
	err := w.SetFragment(context.Background(), "/serve-panic")
	if !errors.HasCode(err, "E106") {
		t.Fatalf("SetFragment() error = %v, want E106", err)
	}
	if got := dispatchErrors(t, "/serve-panic", "E106") - before; got != 1 {
		t.Errorf("E106 dispatch errors = %v, want 1", got)
	}
}

func TestNewS3Client(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))

	client, err := newS3Client(context.Background(), config.S3Config{
		Region:       "eu-west-1",
		Endpoint:     "http://localhost:9000",
		UsePathStyle: true,
	})
	if err != nil {
		t.Fatalf("newS3Client() error: %v", err)
	}

	opts := client.Options()
	if opts.Region != "eu-west-1" {
		t.Errorf("Region = %q, want eu-west-1", opts.Region)
	}
	if !opts.UsePathStyle {
		t.Error("UsePathStyle = false, want true")
	}
	if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://localhost:9000" {
		t.Errorf("BaseEndpoint = %v, want http://localhost:9000", opts.BaseEndpoint)
	}
	if opts.Credentials == nil {
		t.Error("Credentials not resolved from the default chain")
	}
}
