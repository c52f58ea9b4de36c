package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"pricelist-extractor/internal/types"
)

var (
	downloadButtonPrefix = regexp.MustCompile(`(?i)^#?download[-_]?button[-_]?`)
	nonAlphanumericRun   = regexp.MustCompile(`[^a-z0-9]+`)
)

// CleanSupplierName removes the landing-page button id prefix from a label
func CleanSupplierName(name string) string {
	return downloadButtonPrefix.ReplaceAllString(strings.TrimSpace(name), "")
}

// Slugify lowercases s and collapses every run of non-alphanumerics into one underscore
func Slugify(s string) string {
	return strings.Trim(nonAlphanumericRun.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

// OutputFileName returns {slug}_{YYYY-MM-DD}.xlsx for a supplier
func OutputFileName(supplier string, date time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", Slugify(CleanSupplierName(supplier)), date.Format("2006-01-02"))
}

// WriteCanonical writes table as an xlsx file in outDir and returns its path
func WriteCanonical(table types.CanonicalTable, outDir, supplier string, date time.Time) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(outDir, OutputFileName(supplier, date))

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return "", fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(types.CanonicalColumns))
	for i, col := range types.CanonicalColumns {
		header[i] = col
	}
	if err := sw.SetRow("A1", header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range table.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, []interface{}{row.Code, row.Description, row.Brand, row.Price}); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush rows: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	return path, nil
}
