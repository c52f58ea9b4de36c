package main

import (
	"context"
	"flag"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"pricelist-extractor/report"
	"pricelist-extractor/utils"
)

func main() {
	_ = godotenv.Load()

	env := report.DBConfigFromEnv()
	var (
		outDir   = flag.String("outdir", "", "Directory for the report CSVs (required)")
		host     = flag.String("host", env.Host, "MySQL host")
		port     = flag.Int("port", env.Port, "MySQL port")
		user     = flag.String("user", env.User, "MySQL user")
		password = flag.String("password", env.Password, "MySQL password")
		database = flag.String("database", env.Database, "MySQL database")
		timeout  = flag.Duration("timeout", 5*time.Minute, "Overall timeout")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := utils.NewLogger(*verbose)
	if *outDir == "" {
		logger.Fatal("--outdir is required")
	}

	cfg := env
	cfg.Host = *host
	cfg.Port = *port
	cfg.User = *user
	cfg.Password = *password
	cfg.Database = *database

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := report.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer db.Close()

	written, err := report.Generate(ctx, db, *outDir, logger)
	if err != nil {
		logger.Fatalf("Report generation failed: %v", err)
	}

	abs, _ := filepath.Abs(*outDir)
	logger.Infof("Done. %d CSVs written to %s", len(written), abs)
}
