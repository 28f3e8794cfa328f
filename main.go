package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdlog "log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/hrithikv/CourantInstituteNYUHyperloop/config"
	"github.com/hrithikv/CourantInstituteNYUHyperloop/database"
	"github.com/hrithikv/CourantInstituteNYUHyperloop/filewriter"
	"github.com/hrithikv/CourantInstituteNYUHyperloop/logger"
	"github.com/hrithikv/CourantInstituteNYUHyperloop/models"
	"github.com/hrithikv/CourantInstituteNYUHyperloop/scanner"
	"github.com/hrithikv/CourantInstituteNYUHyperloop/server"
)

func main() {
	if len(os.Args) < 2 {
		showHelp()
		return
	}

	command := os.Args[1]
	if command == "help" {
		showHelp()
		return
	}

	cfg := loadConfig()

	log, err := logger.New(cfg)
	if err != nil {
		stdlog.Fatalf("Failed to initialize logging: %v", err)
	}
	defer func() {
		if err := log.Close(); err != nil {
			stdlog.Printf("Failed to close log file: %v", err)
		}
	}()

	switch command {
	case "serve":
		serveCommand(cfg, log)
	case "connect":
		connectCommand(cfg, log)
	case "migrate":
		migrateCommand(cfg, log)
	case "migrate:create":
		if len(os.Args) < 3 {
			fmt.Println("Error: migration name required")
			fmt.Println("Usage: go run main.go migrate:create <migration_name>")
			return
		}
		createMigrationCommand(cfg, log, os.Args[2])
	case "migrate:status":
		migrationStatusCommand(cfg, log)
	case "db:info":
		dbInfoCommand(cfg, log)
	case "seed":
		seedCommand(cfg, log)
	case "clear":
		clearCommand(cfg, log)
	case "generate":
		if len(os.Args) < 3 {
			fmt.Println("Error: output directory required")
			fmt.Println("Usage: go run main.go generate <output_directory>")
			return
		}
		generateCommand(log, os.Args[2])
	case "import":
		if len(os.Args) < 4 {
			fmt.Println("Error: metric and directory required")
			fmt.Println("Usage: go run main.go import <temp|dist|speed> <directory>")
			return
		}
		importCommand(cfg, log, os.Args[2], os.Args[3])
	default:
		fmt.Printf("Unknown command: %s\n", command)
		showHelp()
	}
}

func showHelp() {
	fmt.Println("Hyperloop Pod Telemetry Service")
	fmt.Println("")
	fmt.Println("Usage: go run main.go <command> [arguments]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  serve                Start the HTTP telemetry service")
	fmt.Println("  connect              Test database connection")
	fmt.Println("  migrate              Run pending migrations")
	fmt.Println("  migrate:create <name> Create a new migration file")
	fmt.Println("  migrate:status       Show migration status")
	fmt.Println("  db:info              Show database information")
	fmt.Println("  seed                 Create metric tables and seed default readings")
	fmt.Println("  clear                Drop every table in the database")
	fmt.Println("  generate <directory> Generate CSV fixture files with synthetic readings")
	fmt.Println("  import <metric> <directory> Import reading CSV files into one metric")
	fmt.Println("  help                 Show this help message")
	fmt.Println("")
	fmt.Println("Configuration:")
	fmt.Println("  Edit config.yaml to configure database, server and logging settings")
	fmt.Println("")
	fmt.Println("CSV File Format:")
	fmt.Println("  Expected columns: sensorId,value,seqNum")
}

func loadConfig() *config.Config {
	cfg, err := config.Load("")
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

// serveCommand starts the HTTP service. A storage connection failure at
// startup is fatal: the service does not run degraded.
func serveCommand(cfg *config.Config, log *logger.Logger) {
	db := database.NewTelemetryDatabase(cfg, log)
	if err := db.Init(); err != nil {
		log.Fatalf("Failed to initialize telemetry database: %v", err)
	}
	defer db.Close()

	files, err := filewriter.New(cfg.Files.DataDir, log)
	if err != nil {
		log.Fatalf("Failed to initialize file writer: %v", err)
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(db, files, cfg, log),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("telemetry service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Shutdown failed: %v", err)
	}
}

func connectCommand(cfg *config.Config, log *logger.Logger) {
	log.Info("testing database connection")

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Connection failed: %v", err)
	}

	log.Infof("successfully connected to %s database", cfg.Database.Driver)

	// Show connection info
	info := database.GetDatabaseInfo(db, cfg)
	infoJSON, _ := json.MarshalIndent(info, "", "  ")
	log.Infof("connection info: %s", infoJSON)
}

func migrateCommand(cfg *config.Config, log *logger.Logger) {
	log.Info("running database migrations")

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	runner := database.NewMigrationRunner(db, cfg, log)

	if err := runner.RunMigrations(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
}

func createMigrationCommand(cfg *config.Config, log *logger.Logger, name string) {
	log.Infof("creating migration: %s", name)

	runner := database.NewMigrationRunner(nil, cfg, log) // Don't need DB connection to create files

	filePath, err := runner.CreateMigration(name)
	if err != nil {
		log.Fatalf("Failed to create migration: %v", err)
	}

	log.Infof("migration created: %s", filePath)
}

func migrationStatusCommand(cfg *config.Config, log *logger.Logger) {
	log.Info("checking migration status")

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	runner := database.NewMigrationRunner(db, cfg, log)

	migrations, err := runner.GetMigrationStatus()
	if err != nil {
		log.Fatalf("Failed to get migration status: %v", err)
	}

	if len(migrations) == 0 {
		fmt.Println("No migrations found")
		return
	}

	fmt.Printf("%-20s %-40s %s\n", "Version", "Name", "Status")
	fmt.Println("-------------------------------------------------------------------")

	for _, migration := range migrations {
		status := "Pending"
		if migration.Applied {
			status = "Applied"
		}
		fmt.Printf("%-20s %-40s %s\n", migration.Version, migration.Name, status)
	}
}

func dbInfoCommand(cfg *config.Config, log *logger.Logger) {
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	info := database.GetDatabaseInfo(db, cfg)

	fmt.Println("Database Information:")
	fmt.Printf("Database Type:     %v\n", info["driver"])
	fmt.Printf("Connected:         %v\n", info["connected"])

	switch cfg.Database.Driver {
	case "mysql", "postgres":
		fmt.Printf("Host:              %v\n", info["host"])
		fmt.Printf("Port:              %v\n", info["port"])
		fmt.Printf("Database:          %v\n", info["database"])
	case "sqlite":
		fmt.Printf("File Path:         %v\n", info["path"])
	}

	if info["connected"] == true {
		fmt.Println("\nConnection Pool:")
		fmt.Printf("  Max Connections: %v\n", info["max_open_connections"])
		fmt.Printf("  Open Connections:%v\n", info["open_connections"])
		fmt.Printf("  In Use:          %v\n", info["in_use"])
		fmt.Printf("  Idle:            %v\n", info["idle"])

		fmt.Println("\nReadings per metric:")
		for _, metric := range models.AllMetrics() {
			if !db.Migrator().HasTable(metric) {
				fmt.Printf("  %-12s (no table)\n", metric)
				continue
			}
			var count int64
			db.Table(metric).Count(&count)
			var sensorCount int64
			db.Table(metric).Distinct("sensor_id").Count(&sensorCount)
			fmt.Printf("  %-12s %d readings, %d sensors\n", metric, count, sensorCount)
		}
	}
}

func seedCommand(cfg *config.Config, log *logger.Logger) {
	log.Info("creating metric tables and seeding defaults")

	db := database.NewTelemetryDatabase(cfg, log)
	if err := db.Init(); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	defer db.Close()

	log.Info("seed completed")
}

func clearCommand(cfg *config.Config, log *logger.Logger) {
	db := database.NewTelemetryDatabase(cfg, log)
	if err := db.Init(); err != nil {
		log.Fatalf("Failed to initialize telemetry database: %v", err)
	}
	defer db.Close()

	if err := db.ClearAll(); err != nil {
		log.Fatalf("Clear failed: %v", err)
	}

	log.Info("all tables dropped")
}

func importCommand(cfg *config.Config, log *logger.Logger, metricArg, dir string) {
	metric, err := metricForArg(metricArg)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	db := database.NewTelemetryDatabase(cfg, log)
	if err := db.Init(); err != nil {
		log.Fatalf("Failed to initialize telemetry database: %v", err)
	}
	defer db.Close()

	csvScanner := scanner.NewCSVScanner(db.DB(), metric, log)
	if err := csvScanner.ScanDirectory(dir); err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Info("import completed")
}

// metricForArg maps the short route names to metric table names
func metricForArg(arg string) (string, error) {
	switch arg {
	case "temp":
		return models.MetricTemperature, nil
	case "dist":
		return models.MetricDistance, nil
	case "speed":
		return models.MetricSpeed, nil
	default:
		return "", fmt.Errorf("unknown metric %q (expected temp, dist or speed)", arg)
	}
}

// generateCommand writes one CSV fixture file per metric with synthetic
// readings for sensors 1-4
func generateCommand(log *logger.Logger, outputDir string) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	const rows = 100

	for _, metric := range models.AllMetrics() {
		path := filepath.Join(outputDir, metric+".csv")
		file, err := os.Create(path)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", path, err)
		}

		fmt.Fprintln(file, "sensorId,value,seqNum")
		for seq := 1; seq <= rows; seq++ {
			for sensor := 1; sensor <= 4; sensor++ {
				value := syntheticValue(metric, sensor, seq)
				fmt.Fprintf(file, "%d,%s,%d\n", sensor, value, seq)
			}
		}

		if err := file.Close(); err != nil {
			log.Fatalf("Failed to close %s: %v", path, err)
		}
		log.Infof("generated %s", path)
	}
}

// syntheticValue produces a plausible reading for the metric: temperatures
// oscillate around ambient, distance accumulates, speed follows a run profile
func syntheticValue(metric string, sensor, seq int) string {
	t := float64(seq) / 10.0
	switch metric {
	case models.MetricTemperature:
		return strconv.FormatFloat(22.0+5.0*math.Sin(t+float64(sensor)), 'f', 2, 64)
	case models.MetricDistance:
		return strconv.FormatFloat(float64(seq)*12.5, 'f', 2, 64)
	case models.MetricSpeed:
		return strconv.FormatFloat(math.Abs(120.0*math.Sin(t/4.0)), 'f', 2, 64)
	default:
		return "0"
	}
}
