package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pricelist-extractor/internal/types"
	"pricelist-extractor/utils"
)

var (
	landingExts  = []string{".xlsx", ".xls", ".csv"}
	providerExts = []string{".xlsx", ".xls"}

	loginURLKeywords = []string{"/login", "signin", "ingresar", "acceder"}

	passwordField = types.CSS("#password, input[type='password']")

	usernameSelectors = []string{"#username", "[name='username']", "[name='email']", "input[type='email']", "input[type='text']"}
	passwordSelectors = []string{"#password", "[name='password']", "input[type='password']"}
	submitSelectors   = []string{"#login-form button[type='submit']", "button[type='submit']"}

	brandCheckboxes = types.CSS("#brands-checkboxes input[type='checkbox']")
	priceListSubmit = types.CSS("form button[type='submit'], #price-list-form button[type='submit'], #price-list-form button")

	// tried in this order on the supplier's own page
	providerButtons = []types.Locator{
		types.CSS("button.download-button"),
		types.XPath("//*[@id='root']/div/div/main/div/div/div[1]/section[1]/div/div/div/div[2]/button"),
	}
	priceListTextButton = types.XPath("//button[contains(normalize-space(),'Descargar lista de precios')]")
)

var errLoginForm = errors.New("login form incomplete")

// strategy is one step of the download waterfall
type strategy struct {
	name string
	run  func(ctx context.Context) (string, bool)
}

// Downloader triggers each supplier's download and resolves the file it produced
type Downloader struct {
	session types.Session
	watcher *utils.FileWatcher
	config  *types.Config
	creds   types.Credentials
	logger  types.Logger
	dir     string
	now     func() time.Time
}

// NewDownloader creates a downloader saving into config.DownloadDir
func NewDownloader(session types.Session, config *types.Config, creds types.Credentials, logger types.Logger) *Downloader {
	return &Downloader{
		session: session,
		watcher: utils.NewFileWatcher(config.PollInterval, config.PartialSuffix),
		config:  config,
		creds:   creds,
		logger:  logger,
		dir:     config.DownloadDir,
		now:     time.Now,
	}
}

// DownloadAll processes cards in order; failed suppliers are logged and left out
func (d *Downloader) DownloadAll(ctx context.Context, cards []types.SupplierCard) []types.DownloadResult {
	var results []types.DownloadResult
	for i, card := range cards {
		if ctx.Err() != nil {
			break
		}
		d.logger.Infof("[%s] Downloading (%d/%d)...", card.Name, i+1, len(cards))
		result, ok := d.Download(ctx, card)
		if !ok {
			d.logger.Errorf("[%s] Could not download the price list, skipping", card.Name)
			continue
		}
		d.logger.Infof("[%s] Downloaded %s (via %s)", card.Name, result.FilePath, result.Strategy)
		results = append(results, result)
	}
	return results
}

// Download runs the waterfall for one card
func (d *Downloader) Download(ctx context.Context, card types.SupplierCard) (types.DownloadResult, bool) {
	if err := d.session.Navigate(ctx, d.creds.BaseURL); err != nil {
		d.logger.Warnf("[%s] %v", card.Name, err)
	}

	t0 := d.now()
	before := d.watcher.Snapshot(d.dir)

	if err := d.trigger(ctx, card); err != nil {
		d.logger.Warnf("[%s] Download button did not respond: %v", card.Name, err)
		return types.DownloadResult{}, false
	}

	for _, s := range d.strategies(t0, before) {
		path, ok := s.run(ctx)
		if ok {
			return types.DownloadResult{SupplierName: card.Name, FilePath: path, Strategy: s.name}, true
		}
		d.logger.Debugf("[%s] Strategy %s found no file", card.Name, s.name)
	}
	return types.DownloadResult{}, false
}

func (d *Downloader) strategies(t0 time.Time, before map[string]struct{}) []strategy {
	t := d.config.Timeouts
	loginTried := false

	return []strategy{
		{"after-click", func(ctx context.Context) (string, bool) {
			return d.watcher.WaitSince(ctx, d.dir, t0, landingExts, t.AfterClick)
		}},
		{"login", func(ctx context.Context) (string, bool) {
			if !d.creds.HasLogin() || !d.loginPresent(ctx) {
				return "", false
			}
			loginTried = true
			return d.loginAndDownload(ctx)
		}},
		{"provider-page", func(ctx context.Context) (string, bool) {
			if loginTried {
				return "", false
			}
			return d.providerPageDownload(ctx)
		}},
		{"novel-file", func(ctx context.Context) (string, bool) {
			return d.watcher.WaitNovel(ctx, d.dir, before, t.NovelFile)
		}},
	}
}

// trigger clicks the card's button, reloading the landing page once on failure
func (d *Downloader) trigger(ctx context.Context, card types.SupplierCard) error {
	err := d.click(ctx, card.Action)
	if err == nil {
		return nil
	}
	d.logger.Warnf("[%s] Click failed, reloading and retrying: %v", card.Name, err)

	if err := d.session.Navigate(ctx, d.creds.BaseURL); err != nil {
		return err
	}
	return d.click(ctx, card.Action)
}

func (d *Downloader) click(ctx context.Context, loc types.Locator) error {
	if err := d.session.WaitPresent(ctx, loc, d.config.Timeouts.Click); err != nil {
		return err
	}
	return d.session.Click(ctx, loc, d.config.Timeouts.Click)
}

// loginPresent reports whether the current page asks for credentials.
// Inspection errors count as no login form.
func (d *Downloader) loginPresent(ctx context.Context) bool {
	if n, err := d.session.Count(ctx, passwordField); err == nil && n > 0 {
		return true
	}
	current, err := d.session.CurrentURL(ctx)
	if err != nil {
		return false
	}
	current = strings.ToLower(current)
	for _, k := range loginURLKeywords {
		if strings.Contains(current, k) {
			return true
		}
	}
	return false
}

func (d *Downloader) loginAndDownload(ctx context.Context) (string, bool) {
	if err := d.login(ctx); err != nil {
		d.logger.Warnf("Login failed: %v", err)
	}
	if path, ok := d.watcher.WaitSince(ctx, d.dir, d.now(), landingExts, d.config.Timeouts.AfterLogin); ok {
		return path, true
	}
	return d.providerPageDownload(ctx)
}

// login fills the first matching username and password fields, submits and
// waits for the browser to leave the login path
func (d *Downloader) login(ctx context.Context) error {
	user, ok := d.firstPresent(ctx, usernameSelectors)
	if !ok {
		return fmt.Errorf("%w: no username field", errLoginForm)
	}
	pass, ok := d.firstPresent(ctx, passwordSelectors)
	if !ok {
		return fmt.Errorf("%w: no password field", errLoginForm)
	}
	if err := d.session.SetValue(ctx, user, d.creds.Username); err != nil {
		return err
	}
	if err := d.session.SetValue(ctx, pass, d.creds.Password); err != nil {
		return err
	}

	submit, ok := d.firstPresent(ctx, submitSelectors)
	if !ok {
		return fmt.Errorf("%w: no submit button", errLoginForm)
	}
	if err := d.session.Click(ctx, submit, d.config.Timeouts.Click); err != nil {
		return fmt.Errorf("failed to submit login: %w", err)
	}
	return d.waitLeaveLogin(ctx, d.config.Timeouts.LoginRedirect)
}

func (d *Downloader) waitLeaveLogin(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		current, err := d.session.CurrentURL(ctx)
		if err == nil && !strings.Contains(strings.ToLower(current), "/login") {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("still on the login page after %v", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.config.PollInterval):
		}
	}
}

func (d *Downloader) firstPresent(ctx context.Context, selectors []string) (types.Locator, bool) {
	for _, sel := range selectors {
		loc := types.CSS(sel)
		if n, err := d.session.Count(ctx, loc); err == nil && n > 0 {
			return loc, true
		}
	}
	return types.Locator{}, false
}

// providerPageDownload handles suppliers whose button leads to a page of
// their own: tick every brand and submit the form, or else press the first
// download button that can be found
func (d *Downloader) providerPageDownload(ctx context.Context) (string, bool) {
	timeouts := d.config.Timeouts

	if n, err := d.session.CheckAll(ctx, brandCheckboxes); err == nil && n > 0 {
		d.logger.Debugf("Selected %d brand checkboxes", n)
		if forms, err := d.session.Count(ctx, priceListSubmit); err == nil && forms > 0 {
			since := d.now()
			if err := d.session.Click(ctx, priceListSubmit, timeouts.Click); err == nil {
				return d.watcher.WaitSince(ctx, d.dir, since, providerExts, timeouts.ProviderPage)
			}
		}
	}

	for _, loc := range providerButtons {
		if n, err := d.session.Count(ctx, loc); err != nil || n == 0 {
			continue
		}
		since := d.now()
		if err := d.session.Click(ctx, loc, timeouts.Click); err == nil {
			return d.watcher.WaitSince(ctx, d.dir, since, providerExts, timeouts.ProviderPage)
		}
	}

	since := d.now()
	if err := d.session.Click(ctx, priceListTextButton, timeouts.TextButton); err == nil {
		return d.watcher.WaitSince(ctx, d.dir, since, providerExts, timeouts.ProviderPage)
	}
	return "", false
}
