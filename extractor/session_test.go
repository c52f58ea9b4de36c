package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"pricelist-extractor/internal/types"
)

// stubSession is a scripted browser keyed by locator query
type stubSession struct {
	url  string
	html string

	counts    map[string]int
	failClick map[string]int
	onClick   map[string]func()

	waitErr  error
	countErr error
	urlErr   error

	navigations []string
	clicks      []string
	timeouts    map[string]time.Duration
	values      map[string]string
}

func newStubSession() *stubSession {
	return &stubSession{
		counts:    make(map[string]int),
		failClick: make(map[string]int),
		onClick:   make(map[string]func()),
		timeouts:  make(map[string]time.Duration),
		values:    make(map[string]string),
	}
}

func (s *stubSession) Navigate(ctx context.Context, url string) error {
	s.navigations = append(s.navigations, url)
	s.url = url
	return nil
}

func (s *stubSession) CurrentURL(ctx context.Context) (string, error) {
	return s.url, s.urlErr
}

func (s *stubSession) PageHTML(ctx context.Context) (string, error) {
	return s.html, nil
}

func (s *stubSession) WaitPresent(ctx context.Context, loc types.Locator, timeout time.Duration) error {
	return s.waitErr
}

func (s *stubSession) Count(ctx context.Context, loc types.Locator) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.counts[loc.Query], nil
}

func (s *stubSession) Click(ctx context.Context, loc types.Locator, timeout time.Duration) error {
	s.clicks = append(s.clicks, loc.Query)
	s.timeouts[loc.Query] = timeout
	if s.failClick[loc.Query] > 0 {
		s.failClick[loc.Query]--
		return errors.New("element not interactable")
	}
	if fn, ok := s.onClick[loc.Query]; ok {
		fn()
	}
	return nil
}

func (s *stubSession) SetValue(ctx context.Context, loc types.Locator, value string) error {
	s.values[loc.Query] = value
	return nil
}

func (s *stubSession) CheckAll(ctx context.Context, loc types.Locator) (int, error) {
	return s.Count(ctx, loc)
}

// testConfig keeps every wait short enough for unit tests
func testConfig(t *testing.T) *types.Config {
	t.Helper()
	config := types.DefaultConfig()
	config.DownloadDir = t.TempDir()
	config.OutputDir = t.TempDir()
	config.PollInterval = 5 * time.Millisecond
	config.Timeouts = types.Timeouts{
		Discover:      30 * time.Millisecond,
		Click:         30 * time.Millisecond,
		AfterClick:    30 * time.Millisecond,
		LoginRedirect: 30 * time.Millisecond,
		AfterLogin:    30 * time.Millisecond,
		ProviderPage:  30 * time.Millisecond,
		TextButton:    30 * time.Millisecond,
		NovelFile:     30 * time.Millisecond,
	}
	return config
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	return logger
}

// dropFile simulates a finished browser download with the given mtime
func dropFile(t *testing.T, dir, name, content string, mtime time.Time) func() {
	return func() {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
}

// fresh is safely after any timestamp the downloader records during a test
func fresh() time.Time {
	return time.Now().Add(time.Hour)
}
