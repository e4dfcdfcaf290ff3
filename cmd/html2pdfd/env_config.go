package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-html2pdf/internal/config"
)

const envPrefix = "HTML2PDF_"

// envConfig holds configuration from environment variables.
// Empty strings and nil pointers mean "not set".
type envConfig struct {
	ConfigPath string // HTML2PDF_CONFIG

	// Deployment
	Environment string // HTML2PDF_ENV, or "production" when VERCEL_ENV=production
	Addr        string // HTML2PDF_ADDR
	LogLevel    string // HTML2PDF_LOG_LEVEL

	// Browser
	Engine     string // HTML2PDF_ENGINE
	BrowserBin string // HTML2PDF_BROWSER_BIN, then ROD_BROWSER_BIN
	CacheDir   string // HTML2PDF_CACHE_DIR
	ManagedDir string // HTML2PDF_MANAGED_DIR
	Isolate    *bool  // HTML2PDF_ISOLATE

	// Render
	NavigationTimeout string  // HTML2PDF_NAVIGATION_TIMEOUT
	OperationTimeout  string  // HTML2PDF_OPERATION_TIMEOUT
	MaxHTMLBytes      int     // HTML2PDF_MAX_HTML_BYTES
	DebugOutput       *string // HTML2PDF_DEBUG_OUTPUT; "-" disables the copy
	Locale            string  // HTML2PDF_LOCALE
	Timezone          string  // HTML2PDF_TIMEZONE
	Style             string  // HTML2PDF_STYLE
}

// knownEnvVars lists valid HTML2PDF_* environment variables.
var knownEnvVars = map[string]bool{
	"HTML2PDF_CONFIG":             true,
	"HTML2PDF_ENV":                true,
	"HTML2PDF_ADDR":               true,
	"HTML2PDF_LOG_LEVEL":          true,
	"HTML2PDF_ENGINE":             true,
	"HTML2PDF_BROWSER_BIN":        true,
	"HTML2PDF_CACHE_DIR":          true,
	"HTML2PDF_MANAGED_DIR":        true,
	"HTML2PDF_ISOLATE":            true,
	"HTML2PDF_NAVIGATION_TIMEOUT": true,
	"HTML2PDF_OPERATION_TIMEOUT":  true,
	"HTML2PDF_MAX_HTML_BYTES":     true,
	"HTML2PDF_DEBUG_OUTPUT":       true,
	"HTML2PDF_LOCALE":             true,
	"HTML2PDF_TIMEZONE":           true,
	"HTML2PDF_STYLE":              true,
	"HTML2PDF_CONTAINER":          true, // read by doctor
}

// loadEnvConfig reads the recognized variables. Malformed numbers and
// booleans are reported, not ignored.
func loadEnvConfig(getenv func(string) string) (*envConfig, error) {
	cfg := &envConfig{
		ConfigPath:        getenv("HTML2PDF_CONFIG"),
		Environment:       getenv("HTML2PDF_ENV"),
		Addr:              getenv("HTML2PDF_ADDR"),
		LogLevel:          getenv("HTML2PDF_LOG_LEVEL"),
		Engine:            getenv("HTML2PDF_ENGINE"),
		BrowserBin:        getenv("HTML2PDF_BROWSER_BIN"),
		CacheDir:          getenv("HTML2PDF_CACHE_DIR"),
		ManagedDir:        getenv("HTML2PDF_MANAGED_DIR"),
		NavigationTimeout: getenv("HTML2PDF_NAVIGATION_TIMEOUT"),
		OperationTimeout:  getenv("HTML2PDF_OPERATION_TIMEOUT"),
		Locale:            getenv("HTML2PDF_LOCALE"),
		Timezone:          getenv("HTML2PDF_TIMEZONE"),
		Style:             getenv("HTML2PDF_STYLE"),
	}

	// Compatibility with the hosting platform and with rod's own variable.
	if cfg.Environment == "" && getenv("VERCEL_ENV") == config.EnvProduction {
		cfg.Environment = config.EnvProduction
	}
	if cfg.BrowserBin == "" {
		cfg.BrowserBin = getenv("ROD_BROWSER_BIN")
	}

	if v := getenv("HTML2PDF_ISOLATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: HTML2PDF_ISOLATE: %q is not a boolean", config.ErrInvalidValue, v)
		}
		cfg.Isolate = &b
	}
	if v := getenv("HTML2PDF_MAX_HTML_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: HTML2PDF_MAX_HTML_BYTES: %q is not a positive integer", config.ErrInvalidValue, v)
		}
		cfg.MaxHTMLBytes = n
	}
	if v, ok := lookup(getenv, "HTML2PDF_DEBUG_OUTPUT"); ok {
		cfg.DebugOutput = &v
	}

	return cfg, nil
}

// lookup reads key, treating "-" as an explicit empty value.
func lookup(getenv func(string) string, key string) (string, bool) {
	v := getenv(key)
	switch v {
	case "":
		return "", false
	case "-":
		return "", true
	}
	return v, true
}

// warnUnknownEnvVars prints a warning for each unrecognized HTML2PDF_* variable.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overrides config file values with the variables that are set.
// Flags are applied afterwards, giving: flags > env > file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setString(&cfg.Environment, env.Environment)
	setString(&cfg.Server.Addr, env.Addr)
	setString(&cfg.Log.Level, env.LogLevel)
	setString(&cfg.Browser.Engine, env.Engine)
	setString(&cfg.Browser.Bin, env.BrowserBin)
	setString(&cfg.Browser.CacheDir, env.CacheDir)
	setString(&cfg.Browser.ManagedDir, env.ManagedDir)
	setString(&cfg.Page.NavigationTimeout, env.NavigationTimeout)
	setString(&cfg.Page.OperationTimeout, env.OperationTimeout)
	setString(&cfg.Document.Locale, env.Locale)
	setString(&cfg.Document.Timezone, env.Timezone)
	setString(&cfg.Document.Style, env.Style)

	if env.Isolate != nil {
		isolate := *env.Isolate
		cfg.Browser.Isolate = &isolate
	}
	if env.MaxHTMLBytes > 0 {
		cfg.Render.MaxHTMLBytes = env.MaxHTMLBytes
	}
	if env.DebugOutput != nil {
		cfg.Render.DebugOutput = *env.DebugOutput
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
