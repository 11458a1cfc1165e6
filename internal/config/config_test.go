package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func defaults(t *testing.T, args ...string) *Options {
	t.Helper()
	o := &Options{}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	register(fs, o)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	o.EnvFile = ""
	return o
}

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	o := defaults(t)
	if err := load(o, env(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.APIBaseURL != "http://localhost:8000" {
		t.Errorf("unexpected base url %q", o.APIBaseURL)
	}
	if o.SessionBackend != BackendFile || o.MediaProvider != MediaCloudinary {
		t.Errorf("unexpected backends %q %q", o.SessionBackend, o.MediaProvider)
	}
	if o.LogLevel != "warn" {
		t.Errorf("expected warn, got %q", o.LogLevel)
	}
	if o.SessionRetention != 30*24*time.Hour {
		t.Errorf("unexpected retention %v", o.SessionRetention)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"api_base_url":"https://file.example","log_level":"info","session_backend":"sqlite","session_dsn":"file.db"}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	o := defaults(t, "-c", path, "-url", "https://flag.example")
	err := load(o, env(map[string]string{
		"LOG_LEVEL":           "debug",
		"TRUEFIT_SESSION_KEY": "k",
		"SESSION_RETENTION":   "2h",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.APIBaseURL != "https://file.example" {
		t.Errorf("config file should override flag, got %q", o.APIBaseURL)
	}
	if o.LogLevel != "debug" {
		t.Errorf("env should override config file, got %q", o.LogLevel)
	}
	if o.SessionBackend != BackendSQLite || o.SessionDSN != "file.db" {
		t.Errorf("unexpected session settings %q %q", o.SessionBackend, o.SessionDSN)
	}
	if o.SessionKey != "k" || o.SessionRetention != 2*time.Hour {
		t.Errorf("unexpected key/retention %q %v", o.SessionKey, o.SessionRetention)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TRUEFIT_TEST_CLOUD=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TRUEFIT_TEST_CLOUD", "")
	os.Unsetenv("TRUEFIT_TEST_CLOUD")

	o := defaults(t)
	o.EnvFile = path
	if err := load(o, os.Getenv); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("TRUEFIT_TEST_CLOUD"); got != "from-dotenv" {
		t.Errorf("expected .env to be loaded, got %q", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"missing config file", []string{"-config", "/nonexistent/config.json"}, nil},
		{"bad retention", nil, map[string]string{"SESSION_RETENTION": "forever"}},
		{"unknown backend", []string{"-session", "redis"}, nil},
		{"sql without dsn", []string{"-session", "postgres"}, nil},
		{"s3 without bucket", []string{"-media", "s3"}, nil},
		{"unknown media", nil, map[string]string{"MEDIA_PROVIDER": "imgur"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaults(t, tt.args...)
			if err := load(o, env(tt.env)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
