package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edoardob90/runits/internal/api"
	"github.com/edoardob90/runits/internal/conversion"
	"github.com/edoardob90/runits/internal/infrastructure/influxdb"
	"github.com/edoardob90/runits/internal/infrastructure/mqtt"
	"github.com/edoardob90/runits/internal/responder"
)

func newServeCmd(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when enabled, the MQTT responder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), configPath())
			if err != nil {
				return err
			}
			return serve(cmd.Context(), a)
		},
	}
}

// serve runs until ctx is cancelled. Deferred closes run in reverse order:
// API, MQTT, InfluxDB, database.
func serve(ctx context.Context, a *app) error {
	log := a.log
	cfg := a.cfg
	log.Info("starting runits",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	defer func() {
		log.Info("closing database")
		if closeErr := a.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("unit registry published",
		"units", a.catalog.Store().Load().Len(),
		"system", cfg.Registry.System,
	)

	metrics := api.NewMetrics()
	recorders := conversion.Recorders{metrics}
	checks := map[string]api.HealthChecker{"database": a.db}

	// InfluxDB telemetry (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		influxClient.RecordRegistry(a.catalog.Store().Load().Len(), cfg.Registry.System, cfg.Registry.Policy)
		recorders = append(recorders, influxClient)
		checks["influxdb"] = influxClient
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}
	a.engine.SetRecorder(recorders)

	// MQTT responder (optional)
	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.Connect(ctx, cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		resp := responder.New(mqttClient, a.catalog.Parser(), a.engine, byte(cfg.MQTT.QoS)) // #nosec G115 -- QoS validated to 0..2
		resp.SetLogger(log)
		if err := resp.Start(); err != nil {
			return err
		}
		defer func() {
			if stopErr := resp.Stop(); stopErr != nil {
				log.Warn("stopping MQTT responder", "error", stopErr)
			}
		}()
		if err := resp.AnnounceRegistry(a.catalog.Store().Load().Len()); err != nil {
			log.Warn("registry announcement failed", "error", err)
		}
		checks["mqtt"] = mqttClient
		log.Info("MQTT responder started",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	server, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log,
		Catalog: a.catalog,
		Engine:  a.engine,
		Metrics: metrics,
		Checks:  checks,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")
	return nil
}
