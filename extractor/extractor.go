package extractor

import (
	"context"
	"fmt"
	"time"

	"pricelist-extractor/adapters"
	"pricelist-extractor/internal/types"
	"pricelist-extractor/utils"
)

// Uploader sends a finished file to an endpoint
type Uploader interface {
	Upload(ctx context.Context, endpoint, path string) (int, interface{}, error)
}

// SupplierReport summarizes what happened to one downloaded supplier file
type SupplierReport struct {
	Supplier     string `json:"supplier"`
	Family       string `json:"family"`
	DownloadPath string `json:"download_path"`
	OutputPath   string `json:"output_path,omitempty"`
	Rows         int    `json:"rows"`
	Dropped      int    `json:"dropped"`
	UploadStatus int    `json:"upload_status,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Extractor runs discovery, download, normalization and output for every supplier
type Extractor struct {
	session  types.Session
	config   *types.Config
	creds    types.Credentials
	logger   types.Logger
	metrics  *utils.Metrics
	uploader Uploader
	now      func() time.Time
}

// NewExtractor creates an extractor driving session; uploader may be nil
func NewExtractor(session types.Session, config *types.Config, creds types.Credentials, logger types.Logger, metrics *utils.Metrics, uploader Uploader) *Extractor {
	if metrics == nil {
		metrics = utils.NewMetrics()
	}
	return &Extractor{
		session:  session,
		config:   config,
		creds:    creds,
		logger:   logger,
		metrics:  metrics,
		uploader: uploader,
		now:      time.Now,
	}
}

// Run processes every supplier on the landing page. It fails only when the
// landing page cannot be used; per-supplier failures land in the reports.
func (e *Extractor) Run(ctx context.Context) ([]SupplierReport, error) {
	startTime := e.now()
	e.logger.Infof("Opening landing page %s", e.creds.BaseURL)

	if err := e.session.Navigate(ctx, e.creds.BaseURL); err != nil {
		return nil, fmt.Errorf("failed to open landing page: %w", err)
	}

	cards, err := DiscoverSuppliers(ctx, e.session, e.config.Timeouts.Discover)
	if err != nil {
		return nil, err
	}
	e.metrics.SuppliersDiscovered.Add(float64(len(cards)))
	e.logger.Infof("Found %d suppliers", len(cards))

	downloader := NewDownloader(e.session, e.config, e.creds, e.logger)
	downloader.now = e.now
	results := downloader.DownloadAll(ctx, cards)
	for _, r := range results {
		e.metrics.Downloads.WithLabelValues("ok", r.Strategy).Inc()
	}
	if failed := len(cards) - len(results); failed > 0 {
		e.metrics.Downloads.WithLabelValues("failed", "").Add(float64(failed))
	}

	reports := make([]SupplierReport, 0, len(results))
	for _, r := range results {
		reports = append(reports, e.process(ctx, r))
	}

	e.logger.Infof("Processed %d/%d suppliers in %v", len(results), len(cards), e.now().Sub(startTime))
	return reports, nil
}

// process normalizes one downloaded file, writes it and optionally uploads it
func (e *Extractor) process(ctx context.Context, r types.DownloadResult) SupplierReport {
	family := adapters.Classify(r.SupplierName)
	report := SupplierReport{
		Supplier:     r.SupplierName,
		Family:       family.String(),
		DownloadPath: r.FilePath,
	}

	mapping := adapters.Normalize(r.SupplierName, r.FilePath, e.logger)
	report.Rows = mapping.Table.Len()
	report.Dropped = mapping.Dropped
	for _, sheet := range mapping.SkippedSheets {
		e.logger.Debugf("[%s] Sheet %q skipped", r.SupplierName, sheet)
	}

	slug := utils.Slugify(r.SupplierName)
	e.metrics.RowsWritten.WithLabelValues(slug).Add(float64(report.Rows))
	e.metrics.RowsDropped.WithLabelValues(slug).Add(float64(report.Dropped))

	out, err := utils.WriteCanonical(mapping.Table, e.config.OutputDir, r.SupplierName, e.now())
	if err != nil {
		e.logger.Errorf("[%s] %v", r.SupplierName, err)
		report.Error = err.Error()
		return report
	}
	report.OutputPath = out
	e.logger.Infof("[%s] Wrote %d rows to %s", r.SupplierName, report.Rows, out)

	if !e.config.Upload || e.uploader == nil {
		return report
	}
	status, body, err := e.uploader.Upload(ctx, e.config.UploadURL, out)
	if err != nil {
		e.logger.Errorf("[%s] %v", r.SupplierName, err)
		report.Error = err.Error()
		return report
	}
	report.UploadStatus = status
	e.logger.Infof("[%s] Uploaded to %s: status=%d resp=%v", r.SupplierName, e.config.UploadURL, status, body)
	return report
}
