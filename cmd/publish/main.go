// Command publish sends one soil-station reading to the MQTT broker, the way a
// field station would. Broker settings come from the same environment as the
// server; flags describe the reading.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/config"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/logging"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/mqtt"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/telemetry"
)

const (
	appName        = "publish"
	connectTimeout = 10 * time.Second
)

var version = "dev"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	reading, err := parseFlags(os.Args[1:], os.Stderr, time.Now)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	if err := publish(cfg, reading, logger); err != nil {
		logger.Error("publish failed", "err", err)
		os.Exit(1)
	}
}

// parseFlags builds a validated reading from the command line.
func parseFlags(args []string, output io.Writer, now func() time.Time) (telemetry.Reading, error) {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(output)

	station := fs.String("station", "station-1", "station id")
	ph := fs.Float64("ph", 6.5, "soil pH (0-14)")
	moisture := fs.Float64("moisture", 50, "soil moisture in percent (0-100)")
	temperature := fs.Float64("temp", 25, "temperature in °C")
	location := fs.String("location", "", "free-text location")
	topN := fs.Int("top-n", 0, "number of recommendations to request (0 = server default)")
	seq := fs.Int("seq", 0, "sequence number (0 = omit)")

	if err := fs.Parse(args); err != nil {
		return telemetry.Reading{}, err
	}
	if fs.NArg() > 0 {
		return telemetry.Reading{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	r := telemetry.Reading{
		StationID:    *station,
		Timestamp:    now().UTC(),
		PH:           ph,
		SoilMoisture: moisture,
		Temperature:  temperature,
		Location:     *location,
	}
	if *topN != 0 {
		r.TopN = topN
	}
	if *seq != 0 {
		r.Sequence = seq
	}
	if err := telemetry.Validate(r); err != nil {
		return telemetry.Reading{}, fmt.Errorf("invalid reading: %w", err)
	}
	return r, nil
}

func publish(cfg config.Config, reading telemetry.Reading, logger *slog.Logger) error {
	publisher := mqtt.NewPublisher(cfg, fmt.Sprintf("%s-%d", appName, os.Getpid()), logger)
	defer publisher.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := publisher.Connect(ctx); err != nil {
		return err
	}

	if err := publisher.PublishReading(reading); err != nil {
		return err
	}
	logger.Info("reading published",
		"topic", telemetry.Topic(reading.StationID),
		"station_id", reading.StationID,
		"ph", *reading.PH,
		"soil_moisture_pct", *reading.SoilMoisture,
		"temperature_c", *reading.Temperature,
	)
	return nil
}
