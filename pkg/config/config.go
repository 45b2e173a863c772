// Package config loads the controller configuration from files, the
// environment and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/anggasct/tlc"
	"github.com/anggasct/tlc/pkg/controller"
	"github.com/anggasct/tlc/pkg/hal"
	"github.com/anggasct/tlc/pkg/telemetry"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// ApplicationName is the config file name, the environment prefix and the
// directory name under /etc and $HOME
const ApplicationName = "tlcd"

var envKeyReplacer = strings.NewReplacer(".", "_")

// Driver names
const (
	DriverSim    = "sim"
	DriverPeriph = "periph"
)

// ApproachPins is the wiring of one approach
type ApproachPins struct {
	Green   int   `mapstructure:"green"`
	Yellow  int   `mapstructure:"yellow"`
	Red     int   `mapstructure:"red"`
	Buttons []int `mapstructure:"buttons"`
	Buzzer  int   `mapstructure:"buzzer"`
	Walk    int   `mapstructure:"walk"`
}

// Crossing holds the pedestrian settings
type Crossing struct {
	Base            int   `mapstructure:"base"`
	Extension       int   `mapstructure:"extension"`
	WarnBelow       int   `mapstructure:"warnBelow"`
	BuzzerIntensity uint8 `mapstructure:"buzzerIntensity"`
}

// Telemetry holds the queue settings of the density pipeline
type Telemetry struct {
	Depth  int           `mapstructure:"depth"`
	Period time.Duration `mapstructure:"period"`
	Wait   time.Duration `mapstructure:"wait"`
}

// Log holds the logger settings
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Serial selects the telemetry stream device and its line rate
type Serial struct {
	Device string `mapstructure:"device"`
	Baud   int    `mapstructure:"baud"`
}

// Metrics holds the metrics endpoint settings
type Metrics struct {
	Addr string `mapstructure:"addr"`
}

// Sensor selects the density input
type Sensor struct {
	Path string `mapstructure:"path"`
}

// Config is the full process configuration
type Config struct {
	Orientation tlc.Orientation      `mapstructure:"orientation"`
	Driver      string               `mapstructure:"driver"`
	Pins        []ApproachPins       `mapstructure:"pins"`
	Density     telemetry.Mapping    `mapstructure:"density"`
	Timing      controller.Timings   `mapstructure:"timing"`
	Crossing    Crossing             `mapstructure:"crossing"`
	Telemetry   Telemetry            `mapstructure:"telemetry"`
	Serial      Serial               `mapstructure:"serial"`
	MQTT        telemetry.MQTTConfig `mapstructure:"mqtt"`
	Log         Log                  `mapstructure:"log"`
	Metrics     Metrics              `mapstructure:"metrics"`
	Sensor      Sensor               `mapstructure:"sensor"`
}

// DefaultPins returns the reference board wiring for an orientation
func DefaultPins(o tlc.Orientation) []ApproachPins {
	pins := []ApproachPins{
		{Green: 16, Yellow: 17, Red: 18, Buttons: []int{14, 15}, Buzzer: 25, Walk: 32},
		{Green: 19, Yellow: 21, Red: 22, Buttons: []int{12, 13}, Buzzer: 26, Walk: 33},
	}
	if o == tlc.EastWest {
		pins[0].Buttons = []int{12, 15}
		pins[1].Buttons = []int{13, 14}
	}
	return pins
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	timings := controller.DefaultTimings()
	mapping := telemetry.DefaultMapping()
	tele := telemetry.DefaultConfig()

	v.SetDefault("orientation", tlc.NorthSouth.String())
	v.SetDefault("driver", DriverSim)

	v.SetDefault("density.inMin", mapping.InMin)
	v.SetDefault("density.inMax", mapping.InMax)
	v.SetDefault("density.outMin", mapping.OutMin)
	v.SetDefault("density.outMax", mapping.OutMax)

	v.SetDefault("timing.quantum", timings.Quantum)
	v.SetDefault("timing.armDelay", timings.ArmDelay)
	v.SetDefault("timing.yellowHold", timings.YellowHold)
	v.SetDefault("timing.yellowBlink", timings.YellowBlink)
	v.SetDefault("timing.yellowBlinks", timings.YellowBlinks)
	v.SetDefault("timing.holdWindow", timings.HoldWindow)
	v.SetDefault("timing.haltCooldown", timings.HaltCooldown)
	v.SetDefault("timing.walkTick", timings.WalkTick)
	v.SetDefault("timing.warnBlink", timings.WarnBlink)
	v.SetDefault("timing.warnBlinks", timings.WarnBlinks)
	v.SetDefault("timing.buzzerPulse", timings.BuzzerPulse)

	v.SetDefault("crossing.base", tlc.DefaultCrossingTime)
	v.SetDefault("crossing.extension", tlc.DefaultExtensionTime)
	v.SetDefault("crossing.warnBelow", controller.DefaultWarnBelow)
	v.SetDefault("crossing.buzzerIntensity", controller.DefaultBuzzerIntensity)

	v.SetDefault("telemetry.depth", tele.Depth)
	v.SetDefault("telemetry.period", tele.Period)
	v.SetDefault("telemetry.wait", tele.Wait)

	v.SetDefault("mqtt.clientID", ApplicationName)
	v.SetDefault("mqtt.topic", ApplicationName+"/congestion")
	v.SetDefault("mqtt.qos", 0)

	v.SetDefault("serial.baud", hal.DefaultBaudRate)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// NewViper produces a Viper instance looking for tlcd.{yaml,json,toml} under
// /etc/tlcd, $HOME/.tlcd and the working directory, with TLCD_ environment
// overrides and every default registered.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(ApplicationName)
	v.AddConfigPath(fmt.Sprintf("/etc/%s", ApplicationName))
	v.AddConfigPath(fmt.Sprintf("$HOME/.%s", ApplicationName))
	v.AddConfigPath(".")

	v.SetEnvPrefix(ApplicationName)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	SetDefaults(v)
	return v
}

// FlagSet returns the command line flags understood by tlcd
func FlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("file", "f", "", "configuration file to read instead of searching the default paths")
	fs.String("orientation", tlc.NorthSouth.String(), "approach orientation: north-south or east-west")
	fs.String("driver", DriverSim, "hardware driver: sim or periph")
	fs.String("serial.device", "", "serial device for the telemetry stream (stdout when empty)")
	fs.Int("serial.baud", hal.DefaultBaudRate, "line rate of the serial device")
	fs.String("sensor.path", "", "sysfs IIO attribute for the density input")
	fs.String("metrics.addr", "", "listen address of the metrics endpoint")
	fs.String("mqtt.broker", "", "MQTT broker mirroring telemetry reports")
	fs.String("log.level", "info", "log level: debug, info, warn or error")
	fs.String("log.format", "json", "log format: json or console")
	fs.String("log.output", "", "log destination: stdout, stderr or a file (stderr when telemetry uses stdout)")
	fs.String("dot", "", "write the phase definition as Graphviz DOT to this file and exit")
	return fs
}

// ParseAndBind parses the given flag set using the supplied arguments and then
// binds the flag set to v. If arguments is nil, os.Args[1:] is used instead.
func ParseAndBind(v *viper.Viper, fs *pflag.FlagSet, arguments []string) error {
	if arguments == nil {
		arguments = os.Args[1:]
	}
	if err := fs.Parse(arguments); err != nil {
		return err
	}
	return v.BindPFlags(fs)
}

// Load reads the configuration file, if any, and decodes v
func Load(v *viper.Viper) (*Config, error) {
	if file := v.GetString("file"); file != "" {
		v.SetConfigFile(file)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg, viper.DecodeHook(DecodeHook())); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Pins) == 0 {
		cfg.Pins = DefaultPins(cfg.Orientation)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DecodeHook converts strings to durations and orientations
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		stringToOrientationHookFunc(),
	)
}

func stringToOrientationHookFunc() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(tlc.Orientation(0)) {
			return data, nil
		}
		return tlc.ParseOrientation(data.(string))
	}
}

// Validate checks every section and reports all problems at once
func (c *Config) Validate() error {
	var err error
	if c.Driver != DriverSim && c.Driver != DriverPeriph {
		err = multierr.Append(err, tlc.NewConfigurationError("Config", fmt.Sprintf("unknown driver %q", c.Driver)))
	}
	if len(c.Pins) != 2 {
		err = multierr.Append(err, tlc.NewConfigurationError("Config", fmt.Sprintf("need pins for 2 approaches, got %d", len(c.Pins))))
	}
	for i, p := range c.Pins {
		if len(p.Buttons) == 0 || len(p.Buttons) > 2 {
			err = multierr.Append(err, tlc.NewConfigurationError("Config", fmt.Sprintf("approach %d needs 1 or 2 buttons", i)))
		}
	}
	if c.Serial.Device != "" && c.Serial.Baud <= 0 {
		err = multierr.Append(err, tlc.NewConfigurationError("Config", fmt.Sprintf("invalid baud rate %d", c.Serial.Baud)))
	}
	if c.Crossing.Base <= 0 || c.Crossing.Extension < 0 {
		err = multierr.Append(err, tlc.NewConfigurationError("Config", "crossing base must be positive and extension not negative"))
	}
	err = multierr.Append(err, c.ControllerConfig().Validate())
	err = multierr.Append(err, c.TelemetryConfig().Validate())
	return err
}

// Approaches builds the approach wiring
func (c *Config) Approaches() [2]tlc.Approach {
	first, second := c.Orientation.Directions()
	dirs := [2]tlc.Direction{first, second}

	var approaches [2]tlc.Approach
	for i := range approaches {
		if i >= len(c.Pins) {
			break
		}
		p := c.Pins[i]
		a := tlc.Approach{
			Direction: dirs[i],
			Buzzer:    tlc.Pin(p.Buzzer),
			Walk:      tlc.Pin(p.Walk),
		}
		a.Lamps[tlc.Green] = tlc.Pin(p.Green)
		a.Lamps[tlc.Yellow] = tlc.Pin(p.Yellow)
		a.Lamps[tlc.Red] = tlc.Pin(p.Red)
		// a single button is wired to both inputs
		for j := range a.Buttons {
			if len(p.Buttons) > 0 {
				a.Buttons[j] = tlc.Pin(p.Buttons[j%len(p.Buttons)])
			}
		}
		approaches[i] = a
	}
	return approaches
}

// ControllerConfig returns the controller section
func (c *Config) ControllerConfig() controller.Config {
	return controller.Config{
		Timings:         c.Timing,
		WarnBelow:       c.Crossing.WarnBelow,
		BuzzerIntensity: c.Crossing.BuzzerIntensity,
	}
}

// TelemetryConfig returns the density pipeline section
func (c *Config) TelemetryConfig() telemetry.Config {
	return telemetry.Config{
		Mapping: c.Density,
		Depth:   c.Telemetry.Depth,
		Period:  c.Telemetry.Period,
		Wait:    c.Telemetry.Wait,
	}
}

// IntersectionOptions returns the options for tlc.NewIntersection
func (c *Config) IntersectionOptions() []tlc.Option {
	return []tlc.Option{tlc.WithCrossingTime(c.Crossing.Base, c.Crossing.Extension)}
}

// LogOutput returns where log records go. Telemetry falls back to stdout
// without a serial device, so logs move to stderr to keep the stream clean.
func (c *Config) LogOutput() string {
	if c.Log.Output != "" {
		return c.Log.Output
	}
	if c.Serial.Device == "" {
		return "stderr"
	}
	return "stdout"
}
