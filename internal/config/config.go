// Package config provides functionality for managing configuration options
// for the client using command-line flags, an optional JSON file, a .env
// file and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Session backends.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Media providers.
const (
	MediaCloudinary = "cloudinary"
	MediaS3         = "s3"
)

// Options holds the configuration values for the client.
type Options struct {
	// APIBaseURL is the backend root every endpoint path is joined to.
	APIBaseURL string `json:"api_base_url"`
	// APICAFile is an optional PEM bundle trusted for the backend.
	APICAFile string `json:"api_ca_file"`

	SessionBackend string `json:"session_backend"`
	SessionFile    string `json:"session_file"`
	SessionDSN     string `json:"session_dsn"`
	SessionProfile string `json:"session_profile"`
	// SessionKey seals the token in the session file when set.
	SessionKey string `json:"-"`
	// SessionRetention is how long an untouched SQL session row survives.
	SessionRetention time.Duration `json:"-"`

	MediaProvider    string `json:"media_provider"`
	CloudinaryURL    string `json:"cloudinary_url_base"`
	CloudinaryCloud  string `json:"cloudinary_cloud"`
	CloudinaryPreset string `json:"cloudinary_preset"`
	AWSRegion        string `json:"aws_region"`
	AWSBucket        string `json:"aws_bucket_name"`

	OAuthCallbackAddr string `json:"oauth_callback_addr"`
	LogLevel          string `json:"log_level"`

	// Config is the path to the config file.
	Config string `json:"-"`
	// EnvFile is the .env file loaded before the environment is read.
	EnvFile string `json:"-"`
}

// options holds the current configuration values.
var options = &Options{}

// init registers command-line flags with their defaults.
func init() {
	register(flag.CommandLine, options)
}

func register(fs *flag.FlagSet, o *Options) {
	fs.StringVar(&o.APIBaseURL, "url", "http://localhost:8000", "backend base URL")
	fs.StringVar(&o.APICAFile, "ca", "", "path to a CA cert trusted for the backend")
	fs.StringVar(&o.SessionBackend, "session", BackendFile, "session backend: file | sqlite | postgres")
	fs.StringVar(&o.SessionFile, "session-file", "", "session file (default $HOME/.truefit/session.json)")
	fs.StringVar(&o.SessionDSN, "d", "", "session database DSN or SQLite path")
	fs.StringVar(&o.SessionProfile, "profile", "default", "session profile name for SQL backends")
	fs.DurationVar(&o.SessionRetention, "retention", 30*24*time.Hour, "drop SQL sessions untouched for this long")
	fs.StringVar(&o.MediaProvider, "media", MediaCloudinary, "media provider: cloudinary | s3")
	fs.StringVar(&o.OAuthCallbackAddr, "oauth-addr", "127.0.0.1:8085", "loopback address for the OAuth redirect")
	fs.StringVar(&o.LogLevel, "log-level", "warn", "log level: debug | info | warn | error")
	fs.StringVar(&o.Config, "config", "", "path to config file")
	fs.StringVar(&o.Config, "c", "", "path to config file (shorthand)")
	fs.StringVar(&o.EnvFile, "env", ".env", "path to .env file")
}

// Parse parses the command-line flags, then applies the config file and
// finally environment variables, which win over both. A .env file is
// loaded into the environment first; variables already set are kept.
func Parse() *Options {
	flag.Parse()
	if err := load(options, os.Getenv); err != nil {
		log.Fatalf("error while loading config: %v", err)
	}
	return options
}

// Args returns the positional arguments left after the flags.
func Args() []string {
	return flag.Args()
}

func load(o *Options, getenv func(string) string) error {
	if o.EnvFile != "" {
		if _, err := os.Stat(o.EnvFile); err == nil {
			if err := godotenv.Load(o.EnvFile); err != nil {
				return fmt.Errorf("read env file: %w", err)
			}
		}
	}

	if configPath := getenv("CONFIG"); configPath != "" {
		o.Config = configPath
	}

	if o.Config != "" {
		data, err := os.ReadFile(o.Config)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(data, o); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
	}

	str := map[string]*string{
		"API_BASE_URL":        &o.APIBaseURL,
		"API_CA_FILE":         &o.APICAFile,
		"SESSION_BACKEND":     &o.SessionBackend,
		"SESSION_FILE":        &o.SessionFile,
		"SESSION_DSN":         &o.SessionDSN,
		"SESSION_PROFILE":     &o.SessionProfile,
		"TRUEFIT_SESSION_KEY": &o.SessionKey,
		"MEDIA_PROVIDER":      &o.MediaProvider,
		"CLOUDINARY_URL_BASE": &o.CloudinaryURL,
		"CLOUDINARY_CLOUD":    &o.CloudinaryCloud,
		"CLOUDINARY_PRESET":   &o.CloudinaryPreset,
		"AWS_REGION":          &o.AWSRegion,
		"AWS_BUCKET_NAME":     &o.AWSBucket,
		"OAUTH_CALLBACK_ADDR": &o.OAuthCallbackAddr,
		"LOG_LEVEL":           &o.LogLevel,
	}
	for key, dst := range str {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	if v := getenv("SESSION_RETENTION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse SESSION_RETENTION: %w", err)
		}
		o.SessionRetention = d
	}

	return o.validate()
}

func (o *Options) validate() error {
	switch o.SessionBackend {
	case BackendFile:
	case BackendSQLite, BackendPostgres:
		if o.SessionDSN == "" {
			return fmt.Errorf("session backend %s needs a DSN", o.SessionBackend)
		}
	default:
		return fmt.Errorf("unknown session backend %q", o.SessionBackend)
	}

	switch o.MediaProvider {
	case MediaCloudinary:
	case MediaS3:
		if o.AWSBucket == "" {
			return fmt.Errorf("media provider s3 needs AWS_BUCKET_NAME")
		}
	default:
		return fmt.Errorf("unknown media provider %q", o.MediaProvider)
	}
	return nil
}
