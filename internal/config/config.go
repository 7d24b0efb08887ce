// Package config loads the service configuration.
//
// Values are layered, each layer overriding the previous one:
// built-in defaults, an optional JSON file (CONFIG env or -c flag),
// environment variables, and finally command-line flags.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/thoas/go-funk"
)

// Config holds every tunable of the user directory service.
type Config struct {
	RunAddr         string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel        string        `env:"LOG_LEVEL" validate:"loglevel"`
	LogFile         string        `env:"LOG_FILE" validate:"omitempty,filepath"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," validate:"required,min=1,dive,url"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	DisableSeed     bool          `env:"DISABLE_SEED"`
}

// fileConfig mirrors Config in the JSON file. Durations are written as "10s".
type fileConfig struct {
	RunAddr         *string  `json:"server_address"`
	LogLevel        *string  `json:"log_level"`
	LogFile         *string  `json:"log_file"`
	AllowedOrigins  []string `json:"allowed_origins"`
	ShutdownTimeout *string  `json:"shutdown_timeout"`
	DisableSeed     *bool    `json:"disable_seed"`
}

var defaultConfig = Config{
	RunAddr:  "0.0.0.0:5000",
	LogLevel: "info",
	LogFile:  "",
	AllowedOrigins: []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	},
	ShutdownTimeout: 10 * time.Second,
	DisableSeed:     false,
}

func applyDefaults(values *Config, defaults Config) {
	if values.RunAddr == "" {
		values.RunAddr = defaults.RunAddr
	}
	if values.LogLevel == "" {
		values.LogLevel = defaults.LogLevel
	}
	if values.LogFile == "" {
		values.LogFile = defaults.LogFile
	}
	if len(values.AllowedOrigins) == 0 {
		values.AllowedOrigins = append([]string(nil), defaults.AllowedOrigins...)
	}
	if values.ShutdownTimeout == 0 {
		values.ShutdownTimeout = defaults.ShutdownTimeout
	}
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func (values *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(values)
}

func (values *Config) applyFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("in internal/config/config.go/applyFile(): error while `os.ReadFile()` calling: %w", err)
	}

	var fromFile fileConfig
	if err := json.Unmarshal(data, &fromFile); err != nil {
		return fmt.Errorf("in internal/config/config.go/applyFile(): error while `json.Unmarshal()` calling: %w", err)
	}

	if fromFile.RunAddr != nil {
		values.RunAddr = *fromFile.RunAddr
	}
	if fromFile.LogLevel != nil {
		values.LogLevel = *fromFile.LogLevel
	}
	if fromFile.LogFile != nil {
		values.LogFile = *fromFile.LogFile
	}
	if len(fromFile.AllowedOrigins) > 0 {
		values.AllowedOrigins = fromFile.AllowedOrigins
	}
	if fromFile.ShutdownTimeout != nil {
		timeout, err := time.ParseDuration(*fromFile.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("in internal/config/config.go/applyFile(): bad shutdown_timeout: %w", err)
		}
		values.ShutdownTimeout = timeout
	}
	if fromFile.DisableSeed != nil {
		values.DisableSeed = *fromFile.DisableSeed
	}

	return nil
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs sets the command-line arguments to parse instead of os.Args[1:].
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

type flagValues struct {
	configFile     string
	runAddr        string
	logLevel       string
	logFile        string
	allowedOrigins string
	set            map[string]bool
}

func parseFlags(args []string) (*flagValues, error) {
	values := &flagValues{set: map[string]bool{}}

	flagSet := flag.NewFlagSet("userdir", flag.ContinueOnError)
	flagSet.StringVar(&values.configFile, "c", "", "JSON config file name")
	flagSet.StringVar(&values.runAddr, "a", "", "address and port to run server")
	flagSet.StringVar(&values.logLevel, "l", "", "logger level")
	flagSet.StringVar(&values.logFile, "f", "", "log file name, rotated by size")
	flagSet.StringVar(&values.allowedOrigins, "o", "", "comma separated list of origins allowed to call /api")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	flagSet.Visit(func(f *flag.Flag) {
		values.set[f.Name] = true
	})

	return values, nil
}

func (values *Config) applyFlags(flags *flagValues) {
	if flags.set["a"] {
		values.RunAddr = flags.runAddr
	}
	if flags.set["l"] {
		values.LogLevel = flags.logLevel
	}
	if flags.set["f"] {
		values.LogFile = flags.logFile
	}
	if flags.set["o"] {
		values.AllowedOrigins = strings.Split(flags.allowedOrigins, ",")
	}
}

// New builds the configuration from all sources and validates it.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}
	if options.args == nil && len(os.Args) > 1 {
		options.args = os.Args[1:]
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	flags := &flagValues{set: map[string]bool{}}
	if !options.disableFlagsParsing {
		flags, err = parseFlags(options.args)
		if err != nil {
			return nil, err
		}
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	configFile := os.Getenv("CONFIG")
	if flags.set["c"] {
		configFile = flags.configFile
	}
	if configFile != "" {
		if err := values.applyFile(configFile); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(values); err != nil {
		return nil, err
	}

	values.applyFlags(flags)

	values.AllowedOrigins = normalizeOrigins(values.AllowedOrigins)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}

func normalizeOrigins(origins []string) []string {
	trimmed := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			trimmed = append(trimmed, origin)
		}
	}

	return funk.Uniq(trimmed).([]string)
}
