// Package config loads settings from defaults, an optional freakfont.yaml,
// a .env file and FREAKFONT_* environment variables, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/blixt/freakfont/glyph"
	"github.com/blixt/freakfont/normalize"
)

const (
	DefaultStyle          = "script"
	DefaultDebounce       = 100 * time.Millisecond
	DefaultToastDuration  = 3 * time.Second
	DefaultLogLevel       = "warn"
	DefaultAnimate        = true
	DefaultReportUnmapped = true

	envPrefix = "FREAKFONT"
)

var ErrConfiguration = errors.New("configuration error")

type Config struct {
	Style          string        `mapstructure:"style" validate:"required,glyphstyle"`
	MaxLength      int           `mapstructure:"max_length" validate:"min=1,max=1000000"`
	Debounce       time.Duration `mapstructure:"debounce" validate:"min=0,max=10s"`
	ToastDuration  time.Duration `mapstructure:"toast_duration" validate:"min=0,max=1m"`
	LogLevel       string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error disabled"`
	LogFile        string        `mapstructure:"log_file"`
	Animate        bool          `mapstructure:"animate"`
	ReportUnmapped bool          `mapstructure:"report_unmapped"`
}

// Options controls where Load looks. The zero value uses the working
// directory.
type Options struct {
	// Dir is searched for freakfont.yaml and .env.
	Dir string
}

// Load reads and validates the configuration.
func Load(opts Options) (*Config, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	if err := loadDotEnv(filepath.Join(dir, ".env")); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("freakfont")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine, defaults apply.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return cfg, nil
}

// loadDotEnv loads a .env file if there is one. Variables already set in the
// environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("style", DefaultStyle)
	v.SetDefault("max_length", normalize.MaxLength)
	v.SetDefault("debounce", DefaultDebounce)
	v.SetDefault("toast_duration", DefaultToastDuration)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("animate", DefaultAnimate)
	v.SetDefault("report_unmapped", DefaultReportUnmapped)
}

// Validate checks every field, including that the style names a built-in
// glyph table.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("glyphstyle", func(fl validator.FieldLevel) bool {
		_, ok := glyph.ByName(fl.Field().String())
		return ok
	}); err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// Table returns the glyph table named by Style.
func (c *Config) Table() *glyph.Table {
	if t, ok := glyph.ByName(c.Style); ok {
		return t
	}
	return glyph.Default()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "glyphstyle":
		return fmt.Sprintf("style %q is not one of %s", fe.Value(), strings.Join(glyph.Names(), ", "))
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	}
}
