// cmd/finch-bridge/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/tamzrod/finch-bridge/internal/api"
	"github.com/tamzrod/finch-bridge/internal/bridge"
	"github.com/tamzrod/finch-bridge/internal/clock"
	"github.com/tamzrod/finch-bridge/internal/config"
	"github.com/tamzrod/finch-bridge/internal/device"
	"github.com/tamzrod/finch-bridge/internal/logging"
	"github.com/tamzrod/finch-bridge/internal/publish"
	"github.com/tamzrod/finch-bridge/internal/rpc"
	"github.com/tamzrod/finch-bridge/internal/writer"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "finch-bridge: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagSet := pflag.NewFlagSet("finch-bridge", pflag.ContinueOnError)
	cfgPath := flagSet.StringP("config", "c", "config.yaml", "path to the YAML config file")
	frequency := flagSet.Int("frequency", 0, "start polling at this period in ms (0 = as fast as possible)")
	logLevel := flagSet.String("log-level", "", "override logging.level (debug|info|warn|error)")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if flagSet.Changed("frequency") {
		cfg.Poll.FrequencyMs = frequency
	}
	if flagSet.Changed("log-level") {
		cfg.Logging.Level = *logLevel
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	log, closeLog, err := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Robot
	// --------------------

	client, err := rpc.New(rpc.Config{
		URL:     cfg.Finch.URL,
		Service: cfg.Finch.Service,
		Timeout: time.Duration(cfg.Finch.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return err
	}

	dev, err := device.New(cfg.Finch.Name, client, clock.Real(), log)
	if err != nil {
		return err
	}
	defer dev.Close()

	// --------------------
	// Sinks (all optional)
	// --------------------

	var bcfg bridge.Config

	if cfg.Modbus.Endpoint != "" {
		sw, dw, closeMirror, err := writer.BuildMirror(cfg.Finch.Name, cfg.Modbus)
		if err != nil {
			return fmt.Errorf("modbus mirror failed: %w", err)
		}
		defer closeMirror()

		bcfg.Statuses = append(bcfg.Statuses, sw)
		bcfg.Samples = append(bcfg.Samples, dw)
		log.Info("modbus mirror enabled", "endpoint", cfg.Modbus.Endpoint, "unit_id", cfg.Modbus.UnitID, "base_slot", cfg.Modbus.BaseSlot)
	}

	if cfg.MQTT.Mode != "" {
		pub, err := buildPublisher(ctx, cfg.MQTT, log)
		if err != nil {
			return fmt.Errorf("mqtt failed: %w", err)
		}
		defer pub.Close()

		sink, err := publish.NewSink(pub, cfg.MQTT.TopicPrefix, cfg.MQTT.QoS)
		if err != nil {
			return err
		}
		bcfg.Statuses = append(bcfg.Statuses, sink)
		bcfg.Samples = append(bcfg.Samples, sink)
		log.Info("mqtt publishing enabled", "mode", cfg.MQTT.Mode, "topic", sink.SensorsTopic())
	}

	// --------------------
	// Orchestrator
	// --------------------

	b := bridge.New(bcfg, log)
	b.Attach(dev)

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Run(ctx)
	}()

	if cfg.Finch.Warmup != nil && *cfg.Finch.Warmup {
		dev.Warmup()
	}

	if cfg.Poll.FrequencyMs != nil {
		if err := dev.StartSensorDataCollection(*cfg.Poll.FrequencyMs); err != nil {
			return err
		}
		log.Info("polling started", "frequency_ms", *cfg.Poll.FrequencyMs)
	}

	// --------------------
	// HTTP control surface
	// --------------------

	if cfg.HTTP.Listen != "" {
		e := api.New(dev, b, log)
		go func() {
			if err := e.Start(cfg.HTTP.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server stopped", "error", err)
				stop()
			}
		}()
		log.Info("http listening", "addr", cfg.HTTP.Listen)

		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := e.Shutdown(sctx); err != nil {
				log.Warn("http shutdown", "error", err)
			}
		}()
	}

	<-ctx.Done()
	log.Info("shutting down")

	// Stop polling before the sinks go away.
	dev.StopSensorDataCollection()
	<-done
	return nil
}

func buildPublisher(ctx context.Context, m config.MQTTConfig, log *slog.Logger) (publish.Publisher, error) {
	switch m.Mode {
	case config.MQTTModeRemote:
		dctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		r, err := publish.DialRemote(dctx, publish.RemoteConfig{
			URL:      m.URL,
			ClientID: m.ClientID,
			Username: m.Username,
			Password: m.Password,
		}, log)
		if err != nil {
			return nil, err
		}
		return r, nil

	case config.MQTTModeEmbedded:
		emb, err := publish.StartEmbedded(publish.EmbeddedConfig{
			Listen:   m.Listen,
			Username: m.Username,
			Password: m.Password,
		}, log)
		if err != nil {
			return nil, err
		}
		return emb, nil

	default:
		return nil, fmt.Errorf("unknown mqtt mode %q", m.Mode)
	}
}
