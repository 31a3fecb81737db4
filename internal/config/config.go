package config

import (
	"os"

	"github.com/akatsukimed/dialyctl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultInterval        = 100  // control cycle, ms
	defaultStatusInterval  = 1000 // STATUS heartbeat, ms
	defaultDisplayInterval = 500  // display refresh, ms

	defaultTempThreshold   = 38.0
	defaultBubbleThreshold = 400

	defaultRedMin   = 100
	defaultRedMax   = 255
	defaultGreenMax = 80
	defaultBlueMax  = 80

	defaultConfidenceWindow    = 5
	defaultConfidenceThreshold = 1

	defaultPumpSpeed = 180
	defaultLinkBuffer = 32
)

// Config holds every tunable of the safety core. Values come from the TOML
// config file (path via DIALYCTL_CONFIG or /etc/dialyctl.toml), overridden
// by command-line flags.
type Config struct {
	Interval        int `mapstructure:"interval"`
	StatusInterval  int `mapstructure:"status_interval"`
	DisplayInterval int `mapstructure:"display_interval"`

	TempThreshold   float64 `mapstructure:"temp_threshold"`
	BubbleThreshold int     `mapstructure:"bubble_threshold"`

	RedMin   int `mapstructure:"red_min"`
	RedMax   int `mapstructure:"red_max"`
	GreenMax int `mapstructure:"green_max"`
	BlueMax  int `mapstructure:"blue_max"`

	CalRedMin   int `mapstructure:"cal_red_min"`
	CalRedMax   int `mapstructure:"cal_red_max"`
	CalGreenMin int `mapstructure:"cal_green_min"`
	CalGreenMax int `mapstructure:"cal_green_max"`
	CalBlueMin  int `mapstructure:"cal_blue_min"`
	CalBlueMax  int `mapstructure:"cal_blue_max"`

	ConfidenceWindow    int `mapstructure:"confidence_window"`
	ConfidenceThreshold int `mapstructure:"confidence_threshold"`

	PumpASpeed int `mapstructure:"pump_a_speed"`
	PumpBSpeed int `mapstructure:"pump_b_speed"`

	Device     string `mapstructure:"device"`
	LinkBuffer int    `mapstructure:"link_buffer"`

	Telemetry   bool   `mapstructure:"telemetry"`
	TelemetryDB string `mapstructure:"database"`

	Broker string `mapstructure:"broker"`

	LogLevel string `mapstructure:"log_level"`
	Debug    bool   `mapstructure:"debug"`
	Verbose  bool   `mapstructure:"verbose"`
}

func Load() (*Config, error) {
	errFactory := errors.New()
	v := viper.New()

	flags := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.Int("interval", defaultInterval, "Control cycle interval in milliseconds")
	flags.Float64("temp-threshold", defaultTempThreshold, "High temperature alarm threshold in °C")
	flags.Int("bubble-threshold", defaultBubbleThreshold, "LDR reading below which the beam is occluded")
	flags.String("device", "", "Serial device path (empty uses stdin/stdout)")
	flags.Bool("telemetry", false, "Enable telemetry recording")
	flags.String("database", "", "Path to the telemetry database")
	flags.String("broker", "", "MQTT broker address (empty disables publishing)")
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v.SetDefault("interval", defaultInterval)
	v.SetDefault("status_interval", defaultStatusInterval)
	v.SetDefault("display_interval", defaultDisplayInterval)
	v.SetDefault("temp_threshold", defaultTempThreshold)
	v.SetDefault("bubble_threshold", defaultBubbleThreshold)
	v.SetDefault("red_min", defaultRedMin)
	v.SetDefault("red_max", defaultRedMax)
	v.SetDefault("green_max", defaultGreenMax)
	v.SetDefault("blue_max", defaultBlueMax)
	v.SetDefault("cal_red_min", 25)
	v.SetDefault("cal_red_max", 72)
	v.SetDefault("cal_green_min", 30)
	v.SetDefault("cal_green_max", 90)
	v.SetDefault("cal_blue_min", 25)
	v.SetDefault("cal_blue_max", 70)
	v.SetDefault("confidence_window", defaultConfidenceWindow)
	v.SetDefault("confidence_threshold", defaultConfidenceThreshold)
	v.SetDefault("pump_a_speed", defaultPumpSpeed)
	v.SetDefault("pump_b_speed", defaultPumpSpeed)
	v.SetDefault("link_buffer", defaultLinkBuffer)
	v.SetDefault("log_level", DefaultLogLevel)

	if path := os.Getenv("DIALYCTL_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("dialyctl")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
	}
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return nil, errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").WithData(err.Error())
		}
	}

	bind := map[string]string{
		"interval":         "interval",
		"temp-threshold":   "temp_threshold",
		"bubble-threshold": "bubble_threshold",
		"device":           "device",
		"telemetry":        "telemetry",
		"database":         "database",
		"broker":           "broker",
		"log-level":        "log_level",
		"debug":            "debug",
		"verbose":          "verbose",
	}
	flags.Visit(func(f *pflag.Flag) {
		if key, ok := bind[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.StatusInterval <= 0 || c.DisplayInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, "status_interval and display_interval must be positive")
	}
	if c.BubbleThreshold < 0 {
		return errFactory.WithData(errors.ErrInvalidThreshold, c.BubbleThreshold)
	}
	if c.ConfidenceWindow <= 0 || c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold > c.ConfidenceWindow {
		return errFactory.WithData(errors.ErrInvalidThreshold, "confidence_threshold must be within 1..confidence_window")
	}
	if c.PumpASpeed < 0 || c.PumpASpeed > 255 || c.PumpBSpeed < 0 || c.PumpBSpeed > 255 {
		return errFactory.WithData(errors.ErrInvalidThreshold, "pump speeds must be within 0..255")
	}
	if !isValidLogLevel(c.LogLevel) {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "telemetry enabled without a database path")
	}

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warning", "error":
		return true
	default:
		return false
	}
}
