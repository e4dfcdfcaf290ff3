package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/alnah/go-html2pdf/internal/fileutil"
	"github.com/alnah/go-html2pdf/internal/units"
	"github.com/alnah/go-html2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Environments.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Engines.
const (
	EngineRod      = "rod"
	EngineChromedp = "chromedp"
)

// Field length limits.
const (
	MaxTitleLength  = 200
	MaxBrandLength  = 200
	MaxURLLength    = 2048
	MaxPathLength   = 4096
	MaxExtraArgs    = 32
	MaxLocaleLength = 35 // BCP 47 practical limit
)

// Config holds the service configuration.
type Config struct {
	Environment string         `yaml:"environment"`
	Server      ServerConfig   `yaml:"server"`
	Browser     BrowserConfig  `yaml:"browser"`
	Page        PageConfig     `yaml:"page"`
	Render      RenderConfig   `yaml:"render"`
	Document    DocumentConfig `yaml:"document"`
	Assets      AssetsConfig   `yaml:"assets"`
	Log         LogConfig      `yaml:"log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"readTimeout"`
	WriteTimeout    string `yaml:"writeTimeout"`
	ShutdownTimeout string `yaml:"shutdownTimeout"`
}

// BrowserConfig defines executable discovery and process launch.
type BrowserConfig struct {
	Engine        string   `yaml:"engine"`     // "rod" or "chromedp"
	Bin           string   `yaml:"bin"`        // explicit executable, must exist when set
	CacheDir      string   `yaml:"cacheDir"`   // managed download dir outside production
	ManagedDir    string   `yaml:"managedDir"` // managed download dir in production
	LaunchTimeout string   `yaml:"launchTimeout"`
	Isolate       *bool    `yaml:"isolate"` // nil follows the environment
	ExtraArgs     []string `yaml:"extraArgs"`
}

// PageConfig defines per-page timeouts.
type PageConfig struct {
	NavigationTimeout string `yaml:"navigationTimeout"`
	OperationTimeout  string `yaml:"operationTimeout"`
	IdleWindow        string `yaml:"idleWindow"`
}

// RenderConfig defines request limits and artifact handling.
type RenderConfig struct {
	MaxHTMLBytes int    `yaml:"maxHTMLBytes"`
	DebugOutput  string `yaml:"debugOutput"` // written outside production, "" disables
	Verify       bool   `yaml:"verify"`
}

// DocumentConfig defines the document shell around the rendered fragment.
type DocumentConfig struct {
	Locale     string        `yaml:"locale"`
	Timezone   string        `yaml:"timezone"` // IANA name, "" = local
	Title      string        `yaml:"title"`
	BrandText  string        `yaml:"brandText"`
	BrandLabel string        `yaml:"brandLabel"`
	BrandURL   string        `yaml:"brandURL"`
	Style      string        `yaml:"style"` // embedded style name or CSS file path
	DateFormat string        `yaml:"dateFormat"`
	PageSize   string        `yaml:"pageSize"`
	Margins    MarginsConfig `yaml:"margins"`
}

// MarginsConfig holds CSS lengths ("50px", "1cm").
type MarginsConfig struct {
	Top    string `yaml:"top"`
	Right  string `yaml:"right"`
	Bottom string `yaml:"bottom"`
	Left   string `yaml:"left"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// LogConfig defines logging options.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Timeouts holds every duration of the configuration, parsed.
type Timeouts struct {
	Read       time.Duration
	Write      time.Duration
	Shutdown   time.Duration
	Launch     time.Duration
	Navigation time.Duration
	Operation  time.Duration
	IdleWindow time.Duration
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Server: ServerConfig{
			Addr:            ":3000",
			ReadTimeout:     "30s",
			WriteTimeout:    "180s",
			ShutdownTimeout: "10s",
		},
		Browser: BrowserConfig{
			Engine:        EngineRod,
			CacheDir:      filepath.Join(".cache", "chromium"),
			LaunchTimeout: "60s",
		},
		Page: PageConfig{
			NavigationTimeout: "120s",
			OperationTimeout:  "60s",
			IdleWindow:        "500ms",
		},
		Render: RenderConfig{
			MaxHTMLBytes: 500000,
			DebugOutput:  filepath.Join("output", "generated.pdf"),
			Verify:       true,
		},
		Document: DocumentConfig{
			Locale:     "fa-IR",
			Title:      "Generated Document",
			BrandText:  "تهیه شده در ربات تلگرام",
			BrandLabel: "@Gemini3chatbot",
			BrandURL:   "https://t.me/Gemini3chatbot",
			Style:      "default",
			DateFormat: "long",
			PageSize:   "A4",
			Margins: MarginsConfig{
				Top:    "50px",
				Right:  "30px",
				Bottom: "80px",
				Left:   "30px",
			},
		},
		Log: LogConfig{Level: "info"},
	}
}

// IsProduction reports whether the production environment is selected.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Isolation reports whether each render gets its own browser process.
// Unset, it follows the environment.
func (c *Config) Isolation() bool {
	if c.Browser.Isolate != nil {
		return *c.Browser.Isolate
	}
	return c.IsProduction()
}

// Timeouts parses the duration fields.
func (c *Config) Timeouts() (Timeouts, error) {
	var t Timeouts
	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"server.readTimeout", c.Server.ReadTimeout, &t.Read},
		{"server.writeTimeout", c.Server.WriteTimeout, &t.Write},
		{"server.shutdownTimeout", c.Server.ShutdownTimeout, &t.Shutdown},
		{"browser.launchTimeout", c.Browser.LaunchTimeout, &t.Launch},
		{"page.navigationTimeout", c.Page.NavigationTimeout, &t.Navigation},
		{"page.operationTimeout", c.Page.OperationTimeout, &t.Operation},
		{"page.idleWindow", c.Page.IdleWindow, &t.IdleWindow},
	}
	for _, f := range fields {
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return Timeouts{}, fmt.Errorf("%w: %s: %v", ErrInvalidValue, f.name, err)
		}
		if d <= 0 {
			return Timeouts{}, fmt.Errorf("%w: %s: must be positive, got %s", ErrInvalidValue, f.name, f.value)
		}
		*f.dst = d
	}
	return t, nil
}

// Location resolves document.timezone; empty means time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Document.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Document.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: document.timezone: %v", ErrInvalidValue, err)
	}
	return loc, nil
}

// Validate checks enumerations, limits, durations and lengths.
// Called by LoadConfig; callers building a Config by hand should call it too.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvProduction, EnvDevelopment:
	default:
		return fmt.Errorf("%w: environment: %q (must be production or development)", ErrInvalidValue, c.Environment)
	}

	switch c.Browser.Engine {
	case EngineRod, EngineChromedp:
	default:
		return fmt.Errorf("%w: browser.engine: %q (must be rod or chromedp)", ErrInvalidValue, c.Browser.Engine)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level: %q", ErrInvalidValue, c.Log.Level)
	}

	if c.Render.MaxHTMLBytes <= 0 {
		return fmt.Errorf("%w: render.maxHTMLBytes: must be positive, got %d", ErrInvalidValue, c.Render.MaxHTMLBytes)
	}
	if len(c.Browser.ExtraArgs) > MaxExtraArgs {
		return fmt.Errorf("%w: browser.extraArgs: %d entries (max %d)", ErrInvalidValue, len(c.Browser.ExtraArgs), MaxExtraArgs)
	}
	for i, arg := range c.Browser.ExtraArgs {
		if !strings.HasPrefix(arg, "--") {
			return fmt.Errorf("%w: browser.extraArgs[%d]: %q must start with --", ErrInvalidValue, i, arg)
		}
	}

	lengths := []struct {
		name  string
		value string
		max   int
	}{
		{"browser.bin", c.Browser.Bin, MaxPathLength},
		{"browser.cacheDir", c.Browser.CacheDir, MaxPathLength},
		{"browser.managedDir", c.Browser.ManagedDir, MaxPathLength},
		{"render.debugOutput", c.Render.DebugOutput, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"document.style", c.Document.Style, MaxPathLength},
		{"document.locale", c.Document.Locale, MaxLocaleLength},
		{"document.title", c.Document.Title, MaxTitleLength},
		{"document.brandText", c.Document.BrandText, MaxBrandLength},
		{"document.brandLabel", c.Document.BrandLabel, MaxBrandLength},
		{"document.brandURL", c.Document.BrandURL, MaxURLLength},
	}
	for _, f := range lengths {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if _, err := language.Parse(c.Document.Locale); err != nil {
		return fmt.Errorf("%w: document.locale: %v", ErrInvalidValue, err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := units.PaperSize(c.Document.PageSize); err != nil {
		return fmt.Errorf("%w: document.pageSize: %v", ErrInvalidValue, err)
	}
	margins := map[string]string{
		"document.margins.top":    c.Document.Margins.Top,
		"document.margins.right":  c.Document.Margins.Right,
		"document.margins.bottom": c.Document.Margins.Bottom,
		"document.margins.left":   c.Document.Margins.Left,
	}
	for name, value := range margins {
		if _, err := units.Inches(value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, name, err)
		}
	}

	if _, err := c.Timeouts(); err != nil {
		return err
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name, on top of
// DefaultConfig. A name without a path separator is searched in the current
// directory, then in the user config directory. A missing file is an error.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath tries {name}.yaml and {name}.yml in the current
// directory, then in the user config directory under go-html2pdf/.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-html2pdf", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
