package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var extensionRe = regexp.MustCompile(`^\.[A-Za-z0-9]+$`)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Content    ContentConfig     `yaml:"content"`
	Navigation NavigationConfig  `yaml:"navigation"`
	Markdown   MarkdownConfig    `yaml:"markdown"`
	Events     EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if err := c.Navigation.Validate(); err != nil {
		return fmt.Errorf("navigation: %w", err)
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

// ContentConfig locates the post files.
//
// Path is the directory scanned for posts; it may be absent, in which case
// the catalog is empty. Extensions lists the file suffixes treated as posts.
// AssetsDir, when set, is served read-only under /assets.
type ContentConfig struct {
	Path       string   `yaml:"path"`
	Extensions []string `yaml:"extensions"`
	AssetsDir  string   `yaml:"assets_dir"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Extensions, validation.Required,
			validation.Each(validation.Required, validation.Match(extensionRe).Error("must look like .md"))),
	)
}

// NavigationConfig tunes the derived reading navigation.
type NavigationConfig struct {
	ActiveThreshold float64 `yaml:"active_threshold"`
	WordsPerMinute  int     `yaml:"words_per_minute"`
}

// Validate validates the navigation configuration.
func (c *NavigationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ActiveThreshold, validation.Required, validation.Min(1.0)),
		validation.Field(&c.WordsPerMinute, validation.Required, validation.Min(1)),
	)
}

// MarkdownConfig holds body rendering options.
type MarkdownConfig struct {
	UnsafeHTML bool `yaml:"unsafe_html"`
	HardWraps  bool `yaml:"hard_wraps"`
}

// EventsConfig controls change notifications over SSE.
type EventsConfig struct {
	Watch           bool          `yaml:"watch"`
	CatalogThrottle time.Duration `yaml:"catalog_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CatalogThrottle, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:            8080,
				ShutdownTimeout: 10 * time.Second,
			},
		},
		Content: ContentConfig{
			Path:       "./content/blog",
			Extensions: []string{".md"},
			AssetsDir:  "./content/assets",
		},
		Navigation: NavigationConfig{
			ActiveThreshold: 100,
			WordsPerMinute:  200,
		},
		Events: EventsConfig{
			Watch:           true,
			CatalogThrottle: 2 * time.Second,
		},
	}
}
