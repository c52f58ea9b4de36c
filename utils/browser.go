package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"pricelist-extractor/internal/types"
)

// hides the navigator.webdriver flag some landing pages check before rendering
const hideWebdriverScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

// BrowserClient owns the single headless browser session of a run
type BrowserClient struct {
	config      *types.Config
	logger      types.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	downloadDir string
	opTimeout   time.Duration
}

var _ types.Session = (*BrowserClient)(nil)

// NewBrowserClient starts a browser that downloads silently into config.DownloadDir.
// A browser that cannot start is returned as an error; callers treat it as fatal.
func NewBrowserClient(ctx context.Context, config *types.Config, logger types.Logger) (*BrowserClient, error) {
	// Suppress chromedp debug logging
	log.SetOutput(io.Discard)

	downloadDir, err := filepath.Abs(config.DownloadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve download dir: %w", err)
	}
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", config.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("log-level", "3"),
		chromedp.WindowSize(1400, 900),
		chromedp.UserAgent(config.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		browserCancel()
		allocCancel()
	}

	err = chromedp.Run(browserCtx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(downloadDir).
			WithEventsEnabled(true),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(hideWebdriverScript).Do(ctx)
			return err
		}),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Debugf("Browser started (headless=%v), downloads go to %s", config.Headless, downloadDir)

	return &BrowserClient{
		config:      config,
		logger:      logger,
		ctx:         browserCtx,
		cancel:      cancel,
		downloadDir: downloadDir,
		opTimeout:   30 * time.Second,
	}, nil
}

// DownloadDir returns the absolute directory the browser saves files into
func (b *BrowserClient) DownloadDir() string {
	return b.downloadDir
}

// scoped derives a browser context bounded by timeout that also ends with ctx
func (b *BrowserClient) scoped(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	tctx, cancel := context.WithTimeout(b.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return tctx, func() {
		stop()
		cancel()
	}
}

func (b *BrowserClient) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	tctx, cancel := b.scoped(ctx, timeout)
	defer cancel()
	return chromedp.Run(tctx, actions...)
}

// Navigate loads url and lets the page settle
func (b *BrowserClient) Navigate(ctx context.Context, url string) error {
	err := b.run(ctx, b.opTimeout,
		chromedp.Navigate(url),
		chromedp.Sleep(b.config.Timeouts.PageSettle),
	)
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// CurrentURL returns the location of the current page
func (b *BrowserClient) CurrentURL(ctx context.Context) (string, error) {
	var location string
	if err := b.run(ctx, b.opTimeout, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("failed to read current url: %w", err)
	}
	return location, nil
}

// PageHTML returns the rendered document
func (b *BrowserClient) PageHTML(ctx context.Context) (string, error) {
	var html string
	if err := b.run(ctx, b.opTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}
	b.logger.Debugf("Retrieved page content (%d bytes)", len(html))
	return html, nil
}

// WaitPresent waits for loc to exist in the DOM
func (b *BrowserClient) WaitPresent(ctx context.Context, loc types.Locator, timeout time.Duration) error {
	if err := b.run(ctx, timeout, chromedp.WaitReady(loc.Query, queryOption(loc))); err != nil {
		return fmt.Errorf("failed to wait for element %s: %w", loc, err)
	}
	return nil
}

// Count returns the number of elements matching loc right now
func (b *BrowserClient) Count(ctx context.Context, loc types.Locator) (int, error) {
	var n int
	script := fmt.Sprintf(`(%s).length`, elementsExpr(loc))
	if err := b.run(ctx, b.opTimeout, chromedp.Evaluate(script, &n)); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", loc, err)
	}
	return n, nil
}

// Click tries a native click on a visible element and falls back to element.click()
func (b *BrowserClient) Click(ctx context.Context, loc types.Locator, timeout time.Duration) error {
	opt := queryOption(loc)
	err := b.run(ctx, timeout,
		chromedp.WaitVisible(loc.Query, opt),
		chromedp.ScrollIntoView(loc.Query, opt),
		chromedp.Click(loc.Query, opt, chromedp.NodeVisible),
	)
	if err == nil {
		return nil
	}
	b.logger.Debugf("Native click on %s failed, trying script click: %v", loc, err)

	var clicked bool
	script := fmt.Sprintf(`(function(){var el=%s;if(!el){return false;}el.click();return true;})()`, elementExpr(loc))
	if err := b.run(ctx, b.opTimeout, chromedp.Evaluate(script, &clicked)); err != nil {
		return fmt.Errorf("failed to click %s: %w", loc, err)
	}
	if !clicked {
		return fmt.Errorf("failed to click %s: element not found", loc)
	}
	return nil
}

// SetValue clears the field at loc and types value
func (b *BrowserClient) SetValue(ctx context.Context, loc types.Locator, value string) error {
	opt := queryOption(loc)
	err := b.run(ctx, b.opTimeout,
		chromedp.WaitVisible(loc.Query, opt),
		chromedp.Clear(loc.Query, opt),
		chromedp.SendKeys(loc.Query, value, opt),
	)
	if err != nil {
		return fmt.Errorf("failed to fill %s: %w", loc, err)
	}
	return nil
}

// CheckAll ticks every usable checkbox at loc
func (b *BrowserClient) CheckAll(ctx context.Context, loc types.Locator) (int, error) {
	var n int
	script := fmt.Sprintf(`(function(){
		var boxes=%s;
		boxes.forEach(function(cb){
			try {
				if (cb.offsetParent !== null && !cb.disabled && !cb.checked) {
					cb.scrollIntoView({block:'center'});
					cb.click();
				}
			} catch (e) {}
		});
		return boxes.length;
	})()`, elementsExpr(loc))
	if err := b.run(ctx, b.opTimeout, chromedp.Evaluate(script, &n)); err != nil {
		return 0, fmt.Errorf("failed to check boxes %s: %w", loc, err)
	}
	return n, nil
}

// Close shuts the browser down; errors are only logged. Calling it again is a no-op.
func (b *BrowserClient) Close() {
	if b == nil || b.cancel == nil {
		return
	}
	if err := chromedp.Cancel(b.ctx); err != nil {
		b.logger.Debugf("Browser close: %v", err)
	}
	b.cancel()
	b.cancel = nil
}

func queryOption(loc types.Locator) chromedp.QueryOption {
	if loc.Kind == types.ByXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

// jsString quotes s as a JavaScript string literal
func jsString(s string) string {
	quoted, _ := json.Marshal(s)
	return string(quoted)
}

// elementExpr is a JS expression that yields the first element matching loc or null
func elementExpr(loc types.Locator) string {
	if loc.Kind == types.ByXPath {
		return fmt.Sprintf(`document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue`, jsString(loc.Query))
	}
	return fmt.Sprintf(`document.querySelector(%s)`, jsString(loc.Query))
}

// elementsExpr is a JS expression that yields an array of every element matching loc
func elementsExpr(loc types.Locator) string {
	if loc.Kind == types.ByXPath {
		return fmt.Sprintf(`(function(){var r=document.evaluate(%s, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null),a=[];for(var i=0;i<r.snapshotLength;i++){a.push(r.snapshotItem(i));}return a;})()`, jsString(loc.Query))
	}
	return fmt.Sprintf(`Array.from(document.querySelectorAll(%s))`, jsString(loc.Query))
}
