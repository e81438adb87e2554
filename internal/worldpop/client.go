// Package worldpop looks up population-dataset metadata from the WorldPop REST API.
package worldpop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/umoja/ujenzi/internal/models"
)

// DefaultBaseURL lists the WorldPop global population datasets.
const DefaultBaseURL = "https://www.worldpop.org/rest/data/pop/wpgp"

// defaultCitation is used when an API entry carries no citation string.
const defaultCitation = "WorldPop Global Population Dataset"

// Client queries the WorldPop API. Every lookup is bounded by the client
// timeout so a degraded service cannot stall an answer.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a WorldPop client. baseURL falls back to DefaultBaseURL
// and timeout to 5 seconds when unset.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// datasetEntry mirrors one element of the API's data array.
type datasetEntry struct {
	PopYear  int    `json:"popyear"`
	Title    string `json:"title"`
	Country  string `json:"country"`
	Citation string `json:"citation"`
}

// Lookup returns population-dataset metadata for an ISO-3166 alpha-3 code.
// An entry matching the requested year wins; otherwise the most recent
// available year is used. Timeouts, non-200 responses, malformed bodies,
// and empty datasets are all returned as errors; the caller owns the
// decision to degrade rather than fail.
func (c *Client) Lookup(ctx context.Context, iso3 string, year int) (*models.PopulationRecord, error) {
	reqURL := fmt.Sprintf("%s?iso3=%s", c.baseURL, url.QueryEscape(iso3))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("worldpop request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("worldpop returned status %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		Data []datasetEntry `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parse worldpop response: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("no population data for %s", iso3)
	}

	selected := payload.Data[0]
	exact := false
	for _, entry := range payload.Data {
		if entry.PopYear == year {
			selected = entry
			exact = true
			break
		}
	}
	if !exact {
		for _, entry := range payload.Data[1:] {
			if entry.PopYear > selected.PopYear {
				selected = entry
			}
		}
	}

	rec := &models.PopulationRecord{
		Title:    selected.Title,
		Country:  selected.Country,
		Year:     selected.PopYear,
		Citation: selected.Citation,
	}
	if rec.Year == 0 {
		rec.Year = year
	}
	if rec.Citation == "" {
		rec.Citation = defaultCitation
	}
	return rec, nil
}
