package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/titanous/json5"
	"pricelist-extractor/internal/types"
)

// LoadCredentials reads {base_url, username, password} from path.
// PRICELIST_* environment variables override the file; a missing base_url
// falls back to defaultBaseURL.
func LoadCredentials(path, defaultBaseURL string) (types.Credentials, error) {
	var creds types.Credentials

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json5.Unmarshal(data, &creds); err != nil {
			return types.Credentials{}, fmt.Errorf("failed to parse credentials %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// environment only
	default:
		return types.Credentials{}, fmt.Errorf("failed to read credentials %s: %w", path, err)
	}

	if v := os.Getenv("PRICELIST_BASE_URL"); v != "" {
		creds.BaseURL = v
	}
	if v := os.Getenv("PRICELIST_USERNAME"); v != "" {
		creds.Username = v
	}
	if v := os.Getenv("PRICELIST_PASSWORD"); v != "" {
		creds.Password = v
	}

	creds.BaseURL = strings.TrimSpace(creds.BaseURL)
	creds.Username = strings.TrimSpace(creds.Username)
	creds.Password = strings.TrimSpace(creds.Password)
	if creds.BaseURL == "" {
		creds.BaseURL = defaultBaseURL
	}
	return creds, nil
}
