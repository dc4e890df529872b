package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agentstation/tally/internal/loader"
	"github.com/agentstation/tally/pkg/constants"
	"github.com/agentstation/tally/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Datasets
	Sample          bool
	DataDir         string
	RegionsFile     string
	DepartmentsFile string
	ReferendumFile  string

	// Pipeline
	Denominator     string
	Duplicates      string
	StrictBallots   bool
	FailOnUnmatched bool

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by ApplyFlags)
// 2. Environment variables (TALLY_ prefix)
// 3. .env files
// 4. Config file (given path, or .tally.yaml in $HOME or the working directory)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.ConfigFileName)
	}

	if err := v.ReadInConfig(); err != nil {
		// An explicit file must exist; the search locations are optional.
		if _, notFound := err.(viper.ConfigFileNotFoundError); configFile != "" || !notFound {
			return nil, errors.NewConfigError("config", "reading config file", err)
		}
	}

	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Sample:          v.GetBool("sample"),
		DataDir:         v.GetString("data_dir"),
		RegionsFile:     v.GetString("regions_file"),
		DepartmentsFile: v.GetString("departments_file"),
		ReferendumFile:  v.GetString("referendum_file"),

		Denominator:     v.GetString("denominator"),
		Duplicates:      v.GetString("duplicates"),
		StrictBallots:   v.GetBool("strict_ballots"),
		FailOnUnmatched: v.GetBool("fail_on_unmatched"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	defaults := loader.DefaultFiles()
	v.SetDefault("data_dir", constants.DefaultDataDir)
	v.SetDefault("regions_file", defaults.Regions)
	v.SetDefault("departments_file", defaults.Departments)
	v.SetDefault("referendum_file", defaults.Referendum)
	v.SetDefault("denominator", "expressed")
	v.SetDefault("duplicates", "keep-first")
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// ApplyFlags updates config values from the flags set on the command
// line. Flags left at their default do not override the config file or
// the environment.
func (c *Config) ApplyFlags(flags *pflag.FlagSet) {
	flags.Visit(func(f *pflag.Flag) {
		value := f.Value.String()
		switch f.Name {
		case "verbose":
			c.Verbose = value == "true"
		case "quiet":
			c.Quiet = value == "true"
		case "no-color":
			c.NoColor = value == "true"
		case "format":
			c.Format = value
		case "log-level":
			c.LogLevel = value
		case "data-dir":
			c.DataDir = value
		case "sample":
			c.Sample = value == "true"
		}
	})
}

// Files returns the dataset file names.
func (c *Config) Files() loader.Files {
	return loader.Files{
		Regions:     c.RegionsFile,
		Departments: c.DepartmentsFile,
		Referendum:  c.ReferendumFile,
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}
