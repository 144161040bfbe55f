// Attention Core - Classroom Attention Backend
//
// This is the main entry point for the Attention Core application: the
// REST backend collecting and serving classroom attention readings from
// deployed measurement devices.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/classense/attention-core/internal/api"
	"github.com/classense/attention-core/internal/auth"
	"github.com/classense/attention-core/internal/catalog"
	"github.com/classense/attention-core/internal/infrastructure/config"
	"github.com/classense/attention-core/internal/infrastructure/influxdb"
	"github.com/classense/attention-core/internal/infrastructure/logging"
	"github.com/classense/attention-core/internal/infrastructure/mqtt"
	"github.com/classense/attention-core/internal/ingest"
	"github.com/classense/attention-core/internal/reading"
	"github.com/classense/attention-core/internal/reqlog"
	"github.com/classense/attention-core/internal/store"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Attention Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to the document store
	db, err := store.Connect(ctx, cfg.SurrealDB, log)
	if err != nil {
		return fmt.Errorf("connecting to SurrealDB: %w", err)
	}
	defer func() {
		log.Info("closing store connection")
		if closeErr := db.Close(context.Background()); closeErr != nil {
			log.Error("error closing store", "error", closeErr)
		}
	}()
	log.Info("store connected", "url", cfg.SurrealDB.URL, "database", cfg.SurrealDB.Database)

	if schemaErr := db.EnsureSchema(ctx); schemaErr != nil {
		return fmt.Errorf("applying schema: %w", schemaErr)
	}
	log.Info("schema applied")

	// Repositories
	userRepo := auth.NewUserRepository(db)
	tagRepo := catalog.NewTagRepository(db)
	teacherRepo := catalog.NewTeacherRepository(db)
	courseRepo := catalog.NewCourseRepository(db)
	readingRepo := reading.NewRepository(db)
	logRepo := reqlog.NewRepository(db)

	// Bootstrap the administrator account and the outlier tag
	admin, err := auth.EnsureAdmin(ctx, userRepo, cfg.Security.Admin, log)
	if err != nil {
		return fmt.Errorf("bootstrapping administrator: %w", err)
	}
	if seedErr := seedOutlierTag(ctx, tagRepo, admin.ID); seedErr != nil {
		return fmt.Errorf("seeding outlier tag: %w", seedErr)
	}

	// Connect to InfluxDB (optional); readings are mirrored there for
	// dashboarding when enabled.
	var sampleWriter reading.SampleWriter
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
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
		sampleWriter = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	readingService := reading.NewService(readingRepo, sampleWriter, log)

	// Connect to MQTT and start the device ingest bridge (optional)
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			// Signal subscribers before the LWT-style offline status goes out.
			shutdown := fmt.Sprintf(`{"client_id":"%s","reason":"shutdown"}`, cfg.MQTT.Broker.ClientID)
			if pubErr := mqttClient.PublishString(mqtt.Topics{}.SystemShutdown(), shutdown, byte(cfg.MQTT.QoS), false); pubErr != nil {
				log.Warn("publishing shutdown signal", "error", pubErr)
			}
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		ingestService := ingest.New(mqttClient, readingService, userRepo, cfg.MQTT, log)
		if startErr := ingestService.Start(ctx); startErr != nil {
			return fmt.Errorf("starting ingest bridge: %w", startErr)
		}
		defer func() {
			log.Info("stopping ingest bridge")
			ingestService.Stop()
		}()
	} else {
		log.Info("MQTT disabled")
	}

	// Asynchronous request log writer
	recorder := reqlog.NewRecorder(logRepo, log)
	defer recorder.Close()

	// HTTP API server
	server, err := api.New(api.Deps{
		Config:   cfg.API,
		Security: cfg.Security,
		Logger:   log,
		Users:    userRepo,
		Tags:     tagRepo,
		Teachers: teacherRepo,
		Courses:  courseRepo,
		Readings: readingService,
		Log:      logRepo,
		Recorder: recorder,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	return nil
}

// seedOutlierTag creates the built-in tag used to mark anomalous readings.
// An existing tag is left untouched.
func seedOutlierTag(ctx context.Context, tags catalog.TagRepository, ownerID string) error {
	err := tags.Create(ctx, &catalog.Tag{ID: "outlier", Owner: ownerID})
	if err == nil {
		return nil
	}
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		// Already present from a previous start.
		return nil
	}
	return err
}

// getConfigPath returns the configuration file path.
// Uses ATTENTION_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ATTENTION_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
