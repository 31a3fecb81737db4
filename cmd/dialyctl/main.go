package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/akatsukimed/dialyctl/internal/actuator"
	"github.com/akatsukimed/dialyctl/internal/config"
	"github.com/akatsukimed/dialyctl/internal/engine"
	"github.com/akatsukimed/dialyctl/internal/link"
	"github.com/akatsukimed/dialyctl/internal/logger"
	"github.com/akatsukimed/dialyctl/internal/mqtt"
	"github.com/akatsukimed/dialyctl/internal/sensor"
	"github.com/akatsukimed/dialyctl/internal/telemetry"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	device, err := openDevice(cfg.Device)
	if err != nil {
		logger.Fatal().Err(err).Str("device", cfg.Device).Msg("failed to open link device")
	}
	defer closeDevice(device)

	port := link.NewPort(device, cfg.LinkBuffer)

	collector, err := telemetry.NewService(telemetry.Config{
		DBPath:  cfg.TelemetryDB,
		Enabled: cfg.Telemetry,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close telemetry")
		}
	}()

	var publisher mqtt.Publisher
	if cfg.Broker != "" {
		real := mqtt.NewRealPublisher(cfg.Broker)
		defer real.Close()
		publisher = real
	}

	driver := actuator.LogDriver{}

	eng := engine.New(cfg, port, stubSensors(), driver, collector, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := eng.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("error in control loop")
	}
	shutdown(driver)
}

// openDevice returns the stream to the monitoring process: the configured
// serial device, or the process's own stdin/stdout when none is set.
func openDevice(path string) (io.ReadWriter, error) {
	if path == "" {
		return stdio{}, nil
	}

	return os.OpenFile(path, os.O_RDWR, 0)
}

func closeDevice(rw io.ReadWriter) {
	if c, ok := rw.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Debug().Err(err).Msg("failed to close link device")
		}
	}
}

type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

func stubSensors() sensor.Suite {
	// The pin-level samplers register themselves on real hardware; the
	// bench build runs against the nominal stubs.
	return sensor.StubSuite()
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

// shutdown leaves the machine in its safe state: pumps stopped, buzzer and
// indicator off.
func shutdown(driver actuator.Driver) {
	if err := driver.Apply(actuator.Command{}); err != nil {
		logger.Error().Err(err).Msg("failed to apply shutdown state")
	}
	logger.Info().Msg("Exiting...")
}
