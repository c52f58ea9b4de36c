package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"
	"pricelist-extractor/internal/types"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Uploader sends finished price lists to the ingestion endpoint
type Uploader struct {
	client *resty.Client
	config *types.Config
	logger types.Logger
}

// NewUploader creates an uploader using the configured timeout and user agent
func NewUploader(config *types.Config, logger types.Logger) *Uploader {
	client := resty.New()
	client.SetTimeout(config.UploadTimeout)
	client.SetHeader("User-Agent", config.UserAgent)

	return &Uploader{
		client: client,
		config: config,
		logger: logger,
	}
}

// Upload posts path as the multipart field "file" in a single request.
// The body is decoded as JSON when possible, otherwise returned as {"text": raw}.
func (u *Uploader) Upload(ctx context.Context, endpoint, path string) (int, interface{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	u.logger.Debugf("Uploading %s to %s", filepath.Base(path), endpoint)

	resp, err := u.client.R().
		SetContext(ctx).
		SetMultipartField("file", filepath.Base(path), xlsxContentType, f).
		Post(endpoint)
	if err != nil {
		return 0, nil, fmt.Errorf("upload failed: %w", err)
	}

	var body interface{}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		body = map[string]string{"text": resp.String()}
	}

	u.logger.Debugf("Upload of %s answered %d", filepath.Base(path), resp.StatusCode())
	return resp.StatusCode(), body, nil
}
