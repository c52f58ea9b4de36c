package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"pricelist-extractor/adapters"
	"pricelist-extractor/extractor"
	"pricelist-extractor/internal/types"
	"pricelist-extractor/utils"
)

// Lists the supplier cards the landing page exposes, without downloading
func main() {
	_ = godotenv.Load()

	config := types.DefaultConfig()
	var (
		baseURL  = flag.String("url", config.BaseURL, "Landing page")
		headless = flag.Bool("headless", true, "Run the browser headless")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := utils.NewLogger(*verbose)
	config.Headless = *headless

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	browser, err := utils.NewBrowserClient(ctx, config, logger)
	if err != nil {
		logger.Fatalf("Failed to start browser: %v", err)
	}
	defer browser.Close()

	if err := browser.Navigate(ctx, *baseURL); err != nil {
		browser.Close()
		logger.Fatalf("%v", err)
	}
	cards, err := extractor.DiscoverSuppliers(ctx, browser, config.Timeouts.Discover)
	if err != nil {
		browser.Close()
		logger.Fatalf("%v", err)
	}

	fmt.Printf("Suppliers found: %d\n", len(cards))
	for i, c := range cards {
		fmt.Printf("  %d: %-30s %s (family %s)\n", i+1, c.Name, c.Action, adapters.Classify(c.Name))
	}
}
