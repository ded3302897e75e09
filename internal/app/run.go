package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/config"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/db"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/httpapi"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/migrate"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/modules/recommendation"
	recommendationviews "github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/modules/recommendation/views"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/mqtt"
)

const (
	mqttConnectTimeout = 5 * time.Second
	shutdownTimeout    = 10 * time.Second
)

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"dbDriver", cfg.Driver,
		"sqlitePath", cfg.Path,
		"dbMaxOpenConns", cfg.MaxOpenConns,
		"dbMaxIdleConns", cfg.MaxIdleConns,
		"dbConnMaxLifetime", cfg.ConnMaxLifetime,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
		"datasetPath", cfg.DatasetPath,
		"scoringStrategy", cfg.ScoringStrategy,
		"defaultTopN", cfg.DefaultTopN,
	)

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(ctx, dbConn); err != nil {
		return err
	}
	logger.Info("database ready")

	if err := recommendationviews.LoadTemplates(); err != nil {
		return err
	}

	// The handler must be set before Connect: the broker may deliver queued
	// messages right after CONNACK.
	mqttSubscriber := mqtt.NewSubscriber(cfg, logger)
	mux := httpapi.NewMux(dbConn, mqttSubscriber, logger)
	recommendationService, err := recommendation.RegisterFeature(mux, dbConn, mqttSubscriber, cfg, logger)
	if err != nil {
		return err
	}

	if cfg.DatasetPath != "" {
		if _, err := recommendationService.LoadDataset(ctx); err != nil {
			logger.Warn("initial dataset load failed (continuing without dataset)", "path", cfg.DatasetPath, "error", err)
		}
	} else {
		logger.Warn("DATASET_PATH not set; recommendations unavailable until a dataset is loaded")
	}

	// A short connect timeout keeps startup going when the broker is down.
	connectCtx, connectCancel := context.WithTimeout(ctx, mqttConnectTimeout)
	err = mqttSubscriber.Connect(connectCtx)
	connectCancel()
	if err != nil {
		logger.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
	}

	srv := httpapi.NewServer(cfg, mux, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		mqttSubscriber.Disconnect()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("mqtt disconnecting")
	mqttSubscriber.Disconnect()

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
