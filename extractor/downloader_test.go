package extractor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pricelist-extractor/internal/types"
)

const baseURL = "https://proveedores.test/"

var testCreds = types.Credentials{BaseURL: baseURL}

func card(id string) types.SupplierCard {
	return types.SupplierCard{Name: id, Action: types.CSS(`button[id="download-button-` + id + `"]`)}
}

func TestDownloader_DirectDownload(t *testing.T) {
	config := testConfig(t)
	session := newStubSession()
	c := card("autofix")
	session.onClick[c.Action.Query] = dropFile(t, config.DownloadDir, "autofix.xlsx", "x", fresh())

	result, ok := NewDownloader(session, config, testCreds, testLogger()).Download(context.Background(), c)

	require.True(t, ok)
	assert.Equal(t, filepath.Join(config.DownloadDir, "autofix.xlsx"), result.FilePath)
	assert.Equal(t, "after-click", result.Strategy)
	assert.Equal(t, "autofix", result.SupplierName)
	assert.Equal(t, []string{baseURL}, session.navigations)
}

func TestDownloader_NovelFileAfterTimestampMiss(t *testing.T) {
	config := testConfig(t)
	session := newStubSession()
	c := card("repcar")
	dropFile(t, config.DownloadDir, "old.xlsx", "x", time.Now().Add(-2*time.Hour))()
	// the browser preserved a server-side mtime older than the click
	session.onClick[c.Action.Query] = dropFile(t, config.DownloadDir, "repcar.csv", "x", time.Now().Add(-time.Hour))

	result, ok := NewDownloader(session, config, testCreds, testLogger()).Download(context.Background(), c)

	require.True(t, ok)
	assert.Equal(t, filepath.Join(config.DownloadDir, "repcar.csv"), result.FilePath)
	assert.Equal(t, "novel-file", result.Strategy)
}

func TestDownloader_PartialDownloadIgnored(t *testing.T) {
	config := testConfig(t)
	session := newStubSession()
	c := card("slow")
	session.onClick[c.Action.Query] = dropFile(t, config.DownloadDir, "slow.xlsx.crdownload", "x", fresh())

	_, ok := NewDownloader(session, config, testCreds, testLogger()).Download(context.Background(), c)

	assert.False(t, ok)
}

func TestDownloader_LoginFlow(t *testing.T) {
	config := testConfig(t)
	session := newStubSession()
	c := card("express")
	creds := types.Credentials{BaseURL: baseURL, Username: "ana", Password: "secreto"}

	session.onClick[c.Action.Query] = func() {
		session.url = baseURL + "login"
		session.counts[passwordField.Query] = 1
		session.counts["#username"] = 1
		session.counts["#password"] = 1
		session.counts["#login-form button[type='submit']"] = 1
	}
	session.onClick["#login-form button[type='submit']"] = func() {
		session.url = baseURL + "proveedor/express"
		dropFile(t, config.DownloadDir, "express.xlsx", "x", fresh())()
	}

	result, ok := NewDownloader(session, config, creds, testLogger()).Download(context.Background(), c)

	require.True(t, ok)
	assert.Equal(t, "login", result.Strategy)
	assert.Equal(t, filepath.Join(config.DownloadDir, "express.xlsx"), result.FilePath)
	assert.Equal(t, "ana", session.values["#username"])
	assert.Equal(t, "secreto", session.values["#password"])
}

func TestDownloader_LoginSkippedWithoutCredentials(t *testing.T) {
	config := testConfig(t)
	session := newStubSession()
	c := card("express")
	session.onClick[c.Action.Query] = func() {
		session.url = baseURL + "login"
		session.counts[passwordField.Query] = 1
		session.counts["#username"] = 1
	}

	_, ok := NewDownloader(session, config, testCreds, testLogger()).Download(context.Background(), c)

	assert.False(t, ok)
	assert.Empty(t, session.values)
}

func TestDownloader_ProviderPageBrandForm(t *testing.T) {
	config := testConfig(t)
	session := newStubSession()
	c := card("automax")
	session.onClick[c.Action.Query] = func() {
		session.url = baseURL + "proveedor/automax"
		session.counts[brandCheckboxes.Query] = 3
		session.counts[priceListSubmit.Query] = 1
	}
	session.onClick[priceListSubmit.Query] = dropFile(t, config.DownloadDir, "automax.xlsx", "x", fresh())

	result, ok := NewDownloader(session, config, testCreds, testLogger()).Download(context.Background(), c)

	require.True(t, ok)
	assert.Equal(t, "provider-page", result.Strategy)
	assert.Contains(t, session.clicks, priceListSubmit.Query)
}

func TestDownloader_ProviderPageButton(t *testing.T) {
	config := testConfig(t)
	session := newStubSession()
	c := card("automax")
	session.onClick[c.Action.Query] = func() {
		session.counts[providerButtons[1].Query] = 1
	}
	session.onClick[providerButtons[1].Query] = dropFile(t, config.DownloadDir, "automax.xls", "x", fresh())

	result, ok := NewDownloader(session, config, testCreds, testLogger()).Download(context.Background(), c)

	require.True(t, ok)
	assert.Equal(t, "provider-page", result.Strategy)
	assert.NotContains(t, session.clicks, providerButtons[0].Query)
}

func TestDownloader_ProviderPageCSSButtonBeforeStructural(t *testing.T) {
	config := testConfig(t)
	session := newStubSession()
	c := card("automax")
	session.onClick[c.Action.Query] = func() {
		session.counts[providerButtons[0].Query] = 1
		session.counts[providerButtons[1].Query] = 1
	}
	session.onClick[providerButtons[0].Query] = dropFile(t, config.DownloadDir, "automax.xlsx", "x", fresh())
	session.onClick[providerButtons[1].Query] = dropFile(t, config.DownloadDir, "structural.xlsx", "x", fresh())

	result, ok := NewDownloader(session, config, testCreds, testLogger()).Download(context.Background(), c)

	require.True(t, ok)
	assert.Equal(t, "provider-page", result.Strategy)
	assert.Equal(t, filepath.Join(config.DownloadDir, "automax.xlsx"), result.FilePath)
	assert.Contains(t, session.clicks, providerButtons[0].Query)
	assert.NotContains(t, session.clicks, providerButtons[1].Query)
	assert.NotContains(t, session.clicks, priceListTextButton.Query)
}

func TestDownloader_ProviderPageTextButton(t *testing.T) {
	config := testConfig(t)
	config.Timeouts.TextButton = 17 * time.Millisecond
	session := newStubSession()
	c := card("automax")
	session.onClick[priceListTextButton.Query] = dropFile(t, config.DownloadDir, "lista.xlsx", "x", fresh())

	result, ok := NewDownloader(session, config, testCreds, testLogger()).Download(context.Background(), c)

	require.True(t, ok)
	assert.Equal(t, "provider-page", result.Strategy)
	assert.Equal(t, filepath.Join(config.DownloadDir, "lista.xlsx"), result.FilePath)
	assert.Equal(t, 17*time.Millisecond, session.timeouts[priceListTextButton.Query])
	assert.NotContains(t, session.clicks, providerButtons[0].Query)
	assert.NotContains(t, session.clicks, providerButtons[1].Query)
}

func TestDownloader_ClickRetriesOnceAfterReload(t *testing.T) {
	config := testConfig(t)
	session := newStubSession()
	c := card("autofix")
	session.failClick[c.Action.Query] = 1
	session.onClick[c.Action.Query] = dropFile(t, config.DownloadDir, "autofix.xlsx", "x", fresh())

	result, ok := NewDownloader(session, config, testCreds, testLogger()).Download(context.Background(), c)

	require.True(t, ok)
	assert.Equal(t, "after-click", result.Strategy)
	assert.Equal(t, []string{baseURL, baseURL}, session.navigations)
}

func TestDownloader_ClickFailsTwice(t *testing.T) {
	config := testConfig(t)
	session := newStubSession()
	c := card("autofix")
	session.failClick[c.Action.Query] = 2

	_, ok := NewDownloader(session, config, testCreds, testLogger()).Download(context.Background(), c)

	assert.False(t, ok)
	assert.Len(t, session.navigations, 2)
	assert.Equal(t, []string{c.Action.Query, c.Action.Query}, session.clicks)
}

func TestDownloader_DownloadAllContinuesAfterFailure(t *testing.T) {
	config := testConfig(t)
	session := newStubSession()
	broken, good := card("broken"), card("good")
	session.failClick[broken.Action.Query] = 2
	session.onClick[good.Action.Query] = dropFile(t, config.DownloadDir, "good.xlsx", "x", fresh())

	results := NewDownloader(session, config, testCreds, testLogger()).DownloadAll(context.Background(), []types.SupplierCard{broken, good})

	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].SupplierName)
}

func TestDownloader_DownloadAllStopsOnCancel(t *testing.T) {
	config := testConfig(t)
	session := newStubSession()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewDownloader(session, config, testCreds, testLogger()).DownloadAll(ctx, []types.SupplierCard{card("a"), card("b")})

	assert.Empty(t, results)
	assert.Empty(t, session.clicks)
}

func TestDownloader_LoginPresent(t *testing.T) {
	config := testConfig(t)
	session := newStubSession()
	d := NewDownloader(session, config, testCreds, testLogger())
	ctx := context.Background()

	session.url = baseURL
	assert.False(t, d.loginPresent(ctx))

	session.url = baseURL + "Ingresar"
	assert.True(t, d.loginPresent(ctx))

	session.url = baseURL
	session.counts[passwordField.Query] = 1
	assert.True(t, d.loginPresent(ctx))

	session.countErr = errors.New("target closed")
	session.urlErr = errors.New("target closed")
	assert.False(t, d.loginPresent(ctx))
}
