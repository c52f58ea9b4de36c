package types

import (
	"context"
	"time"
)

// Canonical column names, in output order
const (
	ColumnCode        = "CODIGO"
	ColumnDescription = "DESCRIPCIÓN"
	ColumnBrand       = "MARCA"
	ColumnPrice       = "PRECIO"
)

// CanonicalColumns is the fixed column order of every normalized table
var CanonicalColumns = []string{ColumnCode, ColumnDescription, ColumnBrand, ColumnPrice}

// LocatorKind tells the session how to interpret a Locator query
type LocatorKind int

const (
	ByCSS LocatorKind = iota
	ByXPath
)

// Locator references an element on the current page
type Locator struct {
	Query string
	Kind  LocatorKind
}

// CSS builds a CSS selector locator
func CSS(query string) Locator {
	return Locator{Query: query, Kind: ByCSS}
}

// XPath builds an XPath locator
func XPath(query string) Locator {
	return Locator{Query: query, Kind: ByXPath}
}

func (l Locator) String() string {
	if l.Kind == ByXPath {
		return "xpath:" + l.Query
	}
	return l.Query
}

// SupplierCard is one download action discovered on the landing page
type SupplierCard struct {
	Name   string  `json:"name"`
	Action Locator `json:"-"`
}

// DownloadResult links a supplier to the file it produced
type DownloadResult struct {
	SupplierName string `json:"supplier_name"`
	FilePath     string `json:"file_path"`
	Strategy     string `json:"strategy,omitempty"` // waterfall step that found the file
}

// CanonicalRow is one normalized price-list entry
type CanonicalRow struct {
	Code        string  `json:"CODIGO"`
	Description string  `json:"DESCRIPCIÓN"`
	Brand       string  `json:"MARCA"`
	Price       float64 `json:"PRECIO"`
}

// CanonicalTable is the terminal artifact of normalization
type CanonicalTable struct {
	Rows []CanonicalRow `json:"rows"`
}

// Len returns the number of rows
func (t CanonicalTable) Len() int {
	return len(t.Rows)
}

// Credentials holds the landing page URL and the optional login
type Credentials struct {
	BaseURL  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// HasLogin reports whether both username and password were supplied
func (c Credentials) HasLogin() bool {
	return c.Username != "" && c.Password != ""
}

// Timeouts bounds every wait of the download waterfall
type Timeouts struct {
	Discover      time.Duration // landing buttons to appear
	Click         time.Duration // element to become interactable
	AfterClick    time.Duration // file after the landing click
	LoginRedirect time.Duration // URL to leave the login path
	AfterLogin    time.Duration // file after a successful login
	ProviderPage  time.Duration // file after a secondary-page click
	TextButton    time.Duration // "download" text button to appear
	NovelFile     time.Duration // last-resort filename diff
	PageSettle    time.Duration // pause after each navigation
}

// DefaultTimeouts returns the waterfall timeouts used in production
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Discover:      20 * time.Second,
		Click:         15 * time.Second,
		AfterClick:    35 * time.Second,
		LoginRedirect: 30 * time.Second,
		AfterLogin:    20 * time.Second,
		ProviderPage:  20 * time.Second,
		TextButton:    5 * time.Second,
		NovelFile:     25 * time.Second,
		PageSettle:    700 * time.Millisecond,
	}
}

// Config holds the configuration for the pipeline
type Config struct {
	BaseURL       string
	DownloadDir   string
	OutputDir     string
	Headless      bool
	UserAgent     string
	PollInterval  time.Duration
	PartialSuffix string
	Timeouts      Timeouts
	Upload        bool
	UploadURL     string
	UploadTimeout time.Duration
	MetricsFile   string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "https://desafiodataentryait.vercel.app/",
		DownloadDir:   "./data/raw",
		OutputDir:     "./data/processed",
		Headless:      true,
		UserAgent:     "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		PollInterval:  200 * time.Millisecond,
		PartialSuffix: ".crdownload",
		Timeouts:      DefaultTimeouts(),
		UploadURL:     "https://desafio.somosait.com/api/upload/",
		UploadTimeout: 60 * time.Second,
	}
}

// Session is the browser capability the orchestrator drives.
// Implementations must be usable from a single goroutine only.
type Session interface {
	// Navigate loads url in the current tab
	Navigate(ctx context.Context, url string) error

	// CurrentURL returns the URL of the current page
	CurrentURL(ctx context.Context) (string, error)

	// PageHTML returns the outer HTML of the current document
	PageHTML(ctx context.Context) (string, error)

	// WaitPresent blocks until at least one element matches loc
	WaitPresent(ctx context.Context, loc Locator, timeout time.Duration) error

	// Count returns how many elements currently match loc
	Count(ctx context.Context, loc Locator) (int, error)

	// Click waits for loc to be interactable, scrolls it into view and clicks it,
	// falling back to a programmatic click
	Click(ctx context.Context, loc Locator, timeout time.Duration) error

	// SetValue clears the first element matching loc and types value into it
	SetValue(ctx context.Context, loc Locator, value string) error

	// CheckAll ticks every visible, enabled, unchecked checkbox matching loc
	// and returns how many boxes matched
	CheckAll(ctx context.Context, loc Locator) (int, error)
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
