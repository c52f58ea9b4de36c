package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"pricelist-extractor/internal/types"
	"pricelist-extractor/utils"
)

// Uploads already normalized files without running a browser
func main() {
	_ = godotenv.Load()

	config := types.DefaultConfig()
	var (
		apiURL  = flag.String("api_url", config.UploadURL, "Upload endpoint")
		timeout = flag.Duration("timeout", config.UploadTimeout, "Per-request timeout")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] file.xlsx...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := utils.NewLogger(*verbose)
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	config.UploadTimeout = *timeout

	uploader := utils.NewUploader(config, logger)
	failed := 0
	for _, path := range flag.Args() {
		status, body, err := uploader.Upload(context.Background(), *apiURL, path)
		if err != nil {
			logger.Errorf("%v", err)
			failed++
			continue
		}
		out, _ := json.Marshal(body)
		logger.Infof("%s -> %d %s", path, status, out)
	}
	if failed > 0 {
		logger.Fatalf("%d of %d uploads failed", failed, flag.NArg())
	}
}
