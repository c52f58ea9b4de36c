package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"pricelist-extractor/extractor"
	"pricelist-extractor/internal/types"
	"pricelist-extractor/utils"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	defaults := types.DefaultConfig()
	var (
		credentialsFlag = flag.String("credentials", "credentials.json", "Credentials file (JSON/JSON5 with base_url, username, password)")
		downloadDir     = flag.String("download_dir", defaults.DownloadDir, "Directory the browser downloads into")
		outDir          = flag.String("outdir", defaults.OutputDir, "Directory for normalized xlsx files")
		headless        = flag.Bool("headless", defaults.Headless, "Run the browser headless")
		upload          = flag.Bool("upload", false, "Upload every normalized file")
		apiURL          = flag.String("api_url", defaults.UploadURL, "Upload endpoint")
		metricsFile     = flag.String("metrics-file", "", "Write run counters to this textfile")
		timeout         = flag.Duration("timeout", 30*time.Minute, "Overall run timeout")
		verbose         = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	base := utils.NewLogger(*verbose)
	logger := base.WithField("run", uuid.NewString())

	config := defaults
	config.DownloadDir = *downloadDir
	config.OutputDir = *outDir
	config.Headless = *headless
	config.Upload = *upload
	config.UploadURL = *apiURL
	config.MetricsFile = *metricsFile

	creds, err := utils.LoadCredentials(*credentialsFlag, config.BaseURL)
	if err != nil {
		logger.Fatalf("Failed to load credentials: %v", err)
	}
	if !creds.HasLogin() {
		logger.Info("No login credentials configured, login step disabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	browser, err := utils.NewBrowserClient(ctx, config, logger)
	if err != nil {
		logger.Fatalf("Failed to start browser: %v", err)
	}
	defer browser.Close()
	config.DownloadDir = browser.DownloadDir()

	var uploader extractor.Uploader
	if config.Upload {
		uploader = utils.NewUploader(config, logger)
	}
	metrics := utils.NewMetrics()

	reports, err := extractor.NewExtractor(browser, config, creds, logger, metrics, uploader).Run(ctx)
	if err != nil {
		// Fatalf exits without running deferred calls
		browser.Close()
		logger.Fatalf("Extraction failed: %v", err)
	}

	printSummary(reports)

	if config.MetricsFile != "" {
		if err := metrics.WriteTextfile(config.MetricsFile); err != nil {
			logger.Warnf("%v", err)
		}
	}
	logger.Infof("Done. %d supplier files in %s", len(reports), config.OutputDir)
}

func printSummary(reports []extractor.SupplierReport) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Supplier", "Family", "Output", "Rows", "Dropped", "Upload", "Error"})
	for _, r := range reports {
		output, upload := "", ""
		if r.OutputPath != "" {
			output = filepath.Base(r.OutputPath)
		}
		if r.UploadStatus != 0 {
			upload = strconv.Itoa(r.UploadStatus)
		}
		t.AppendRow(table.Row{r.Supplier, r.Family, output, r.Rows, r.Dropped, upload, r.Error})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
