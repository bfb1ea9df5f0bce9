// Switchboard - owner-scoped control of RF-switched devices.
//
// This is the main entry point. It loads configuration, migrates the
// database, connects to the MQTT broker and serves the HTTP API until
// interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nerrad567/switchboard/internal/api"
	"github.com/nerrad567/switchboard/internal/audit"
	"github.com/nerrad567/switchboard/internal/auth"
	"github.com/nerrad567/switchboard/internal/control"
	"github.com/nerrad567/switchboard/internal/device"
	"github.com/nerrad567/switchboard/internal/infrastructure/config"
	"github.com/nerrad567/switchboard/internal/infrastructure/database"
	"github.com/nerrad567/switchboard/internal/infrastructure/influxdb"
	"github.com/nerrad567/switchboard/internal/infrastructure/logging"
	"github.com/nerrad567/switchboard/internal/infrastructure/mqtt"
	"github.com/nerrad567/switchboard/internal/metrics"
	"github.com/nerrad567/switchboard/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// options are the command-line flags. Each may also be set through a
// SWITCHBOARD_ environment variable, e.g. SWITCHBOARD_CONFIG.
type options struct {
	configPath  string
	showVersion bool

	// issueToken, when non-zero, prints an access token for that user ID
	// and exits without starting the server.
	issueToken int64

	// migrateDown rolls back the most recent schema migration and exits.
	migrateDown bool
}

func main() {
	// Cancelled on Ctrl+C or SIGTERM for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("switchboard", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "path to the YAML configuration file")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	fs.Int64Var(&opts.issueToken, "issue-token", 0, "print an access token for this user ID and exit")
	fs.BoolVar(&opts.migrateDown, "migrate-down", false, "roll back the most recent schema migration and exit")

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("SWITCHBOARD")); err != nil {
		return options{}, err
	}
	return opts, nil
}

// run is the application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "switchboard %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	// Use default logger until config is loaded
	log := logging.Default()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	defer log.Close() //nolint:errcheck // Best effort flush on exit
	log.Info("starting Switchboard",
		"version", version,
		"commit", commit,
		"build_date", date,
		"config", opts.configPath,
	)

	defaultType, err := device.ParseTypeID(cfg.Devices.DefaultType)
	if err != nil {
		return fmt.Errorf("devices.default_type: %w", err)
	}

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if opts.migrateDown {
		if downErr := db.MigrateDown(ctx, migrations.FS); downErr != nil {
			return fmt.Errorf("rolling back migration: %w", downErr)
		}
		log.Warn("rolled back most recent migration", "path", cfg.Database.Path)
		return nil
	}

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	users := auth.NewUserRepository(db.DB)
	if _, seedErr := auth.SeedUser(ctx, users, cfg.Security.SeedUser.Name, cfg.Security.SeedUser.Email, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding user: %w", seedErr)
	}

	if opts.issueToken != 0 {
		return issueToken(ctx, users, opts.issueToken, cfg.Security.JWT, stdout)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	devices := device.NewRepository(db.DB, device.DefaultTypeRegistry())
	devices.SetLogger(log.With("component", "device"))
	devices.SetObserver(collector)
	owners := auth.NewAuthority(devices)

	// Audit writes are serialised through one goroutine. It outlives the
	// API server so queued entries are flushed on shutdown.
	auditRepo := audit.NewSQLiteRepository(db.DB)
	recorder := audit.NewRecorder(auditRepo, log.With("component", "audit").Logger)
	auditCtx, stopAudit := context.WithCancel(context.Background())
	go recorder.Run(auditCtx)
	defer func() {
		stopAudit()
		<-recorder.Done()
	}()

	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.With("component", "mqtt"))
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
		"payload_format", cfg.MQTT.PayloadFormat,
	)

	codec, err := control.CodecFor(cfg.MQTT.PayloadFormat)
	if err != nil {
		return err
	}
	publisher := control.NewPublisher(mqttClient, mqttClient.Topics(), codec, byte(cfg.MQTT.QoS))

	health := map[string]api.HealthChecker{
		"database": db,
		"mqtt":     mqttClient,
	}
	gatewayOpts := []control.GatewayOption{
		control.WithMetrics(collector),
		control.WithAudit(recorder),
		control.WithLogger(log.With("component", "control")),
	}

	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
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
		health["influxdb"] = influxClient
		gatewayOpts = append(gatewayOpts, control.WithHistory(influxClient))
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	gateway := control.NewGateway(owners, publisher, gatewayOpts...)

	server, err := api.New(api.Deps{
		Config:      cfg.API,
		Security:    cfg.Security,
		Logger:      log.With("component", "api"),
		DefaultType: defaultType,
		Devices:     devices,
		Owners:      owners,
		Controller:  gateway,
		Audit:       recorder,
		AuditLog:    auditRepo,
		Gatherer:    reg,
		Health:      health,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("Switchboard started successfully")
	<-ctx.Done()
	log.Info("shutdown signal received, stopping...")
	return nil
}

// issueToken prints a bearer token for an existing user.
func issueToken(ctx context.Context, users auth.UserRepository, userID int64, cfg config.JWTConfig, stdout io.Writer) error {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("issuing token for user %d: %w", userID, err)
	}
	token, err := auth.GenerateAccessToken(user.ID, cfg.Secret, cfg.AccessTokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, token)
	return nil
}
