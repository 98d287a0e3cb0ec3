// Package catalog retrieves and parses the extension index that lists the
// sources to be checked.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"sourcecheck/internal/scan"
)

// DefaultIndexURL is the published extension index checked when no catalog
// location is configured.
const DefaultIndexURL = "https://raw.githubusercontent.com/keiyoushi/extensions/refs/heads/repo/index.min.json"

// Source is one network location an extension fetches content from.
type Source struct {
	Name    string `json:"name"`
	Lang    string `json:"lang"`
	ID      string `json:"id"`
	BaseURL string `json:"baseUrl"`
}

// Extension is one catalog entry. An extension may list several sources.
type Extension struct {
	Name    string   `json:"name"`
	Pkg     string   `json:"pkg"`
	Apk     string   `json:"apk"`
	Lang    string   `json:"lang"`
	Code    int      `json:"code"`
	Version string   `json:"version"`
	NSFW    int      `json:"nsfw"`
	Sources []Source `json:"sources"`
}

// Client fetches the catalog index over HTTP.
type Client struct {
	HTTP *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{HTTP: &http.Client{Timeout: timeout}}
}

// Fetch downloads and parses the index at url.
func (c *Client) Fetch(ctx context.Context, url string) ([]Extension, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog fetch: unexpected status %s", resp.Status)
	}
	return Parse(resp.Body)
}

// Load parses a catalog index from a local file.
func Load(path string) ([]Extension, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes the index JSON.
func Parse(r io.Reader) ([]Extension, error) {
	var exts []Extension
	if err := json.NewDecoder(r).Decode(&exts); err != nil {
		return nil, fmt.Errorf("catalog parse: %w", err)
	}
	return exts, nil
}

// Records flattens extensions into the ordered source records the scan
// engine consumes. lang, when non-empty, keeps only extensions of that
// language. The owner id is the extension package name, falling back to the
// display name for entries without one.
func Records(exts []Extension, lang string) []scan.SourceRecord {
	var recs []scan.SourceRecord
	for _, ext := range exts {
		if lang != "" && ext.Lang != lang {
			continue
		}
		owner := ext.Pkg
		if owner == "" {
			owner = ext.Name
		}
		for _, src := range ext.Sources {
			recs = append(recs, scan.SourceRecord{OwnerID: owner, Location: src.BaseURL})
		}
	}
	return recs
}
