package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/foomo/docsite-mcp/siteconfig"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultConfigFile = ".vitepress/config.yaml"
	DefaultSelector   = "main"
	DefaultEndpoint   = "/mcp"

	envPrefix = "DOCSITE"
)

// Settings configure the docsite process. Every key can be set by flag, by a
// DOCSITE_ prefixed env var or in a docsite.yaml settings file.
type Settings struct {
	ConfigFile       string   `mapstructure:"config"`
	ContentDir       string   `mapstructure:"content-dir"`
	BaseURL          string   `mapstructure:"base-url"`
	Selector         string   `mapstructure:"selector"`
	Icons            []string `mapstructure:"icons"`
	Duplicates       bool     `mapstructure:"duplicates"`
	ProbeConcurrency int      `mapstructure:"probe-concurrency"`
	Debug            bool     `mapstructure:"debug"`

	// validate
	JSON   bool `mapstructure:"json"`
	Strict bool `mapstructure:"strict"`
	Probe  bool `mapstructure:"probe"`

	// serve
	HTTPAddr string `mapstructure:"http"`
	Endpoint string `mapstructure:"endpoint"`
	Watch    bool   `mapstructure:"watch"`

	ContentServer ContentServer `mapstructure:",squash"`
}

// ContentServer points to a foomo content server the sidebar is imported from
type ContentServer struct {
	URL       string   `mapstructure:"contentserver-url"`
	Root      string   `mapstructure:"contentserver-root"`
	Dimension string   `mapstructure:"contentserver-dimension"`
	MimeTypes []string `mapstructure:"contentserver-mime-types"`
}

// Enabled reports whether a sidebar import is configured
func (c ContentServer) Enabled() bool {
	return c.URL != "" && c.Root != ""
}

// RegisterFlags adds the flags shared by all commands
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("settings", "", "settings file (default is ./docsite.yaml)")
	fs.StringP("config", "c", DefaultConfigFile, "site config file (.yaml, .yml or .json)")
	fs.String("content-dir", "", "markdown source tree to check internal links against")
	fs.String("base-url", "", "rendered site, e.g. http://localhost:5173")
	fs.String("selector", DefaultSelector, "CSS selector of the page content in the rendered site")
	fs.StringSlice("icons", nil, "social icons accepted in addition to "+strings.Join(siteconfig.KnownIcons(), ", "))
	fs.Bool("duplicates", false, "report links used more than once")
	fs.Int("probe-concurrency", 0, "parallel requests when probing links")
	fs.Bool("debug", false, "development logging")
	fs.String("contentserver-url", "", "content server to import the sidebar from")
	fs.String("contentserver-root", "", "content server node the sidebar is built from")
	fs.String("contentserver-dimension", "", "content server dimension")
	fs.StringSlice("contentserver-mime-types", nil, "content server mime types of sidebar items")
}

// Load reads the settings from the flags in fs, the environment and the settings file
func Load(fs *pflag.FlagSet) (Settings, error) {
	v := viper.New()
	v.SetDefault("config", DefaultConfigFile)
	v.SetDefault("selector", DefaultSelector)
	v.SetDefault("endpoint", DefaultEndpoint)

	settingsFile, _ := fs.GetString("settings")
	if settingsFile != "" {
		v.SetConfigFile(settingsFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("docsite")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return Settings{}, fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("unable to decode settings: %w", err)
	}
	return settings, nil
}
