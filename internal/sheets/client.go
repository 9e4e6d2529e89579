package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"qms-document-control/internal/domain"
)

// Client talks to the spreadsheet-backed storage API. The protocol is an
// opaque get/set of the full snapshot blob; each write carries the whole
// current state and a later write supersedes an earlier one.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Store interface {
	Fetch(ctx context.Context) (*domain.Snapshot, error)
	Store(ctx context.Context, snapshot *domain.Snapshot) error
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Fetch loads the full snapshot blob. A 404 means no snapshot has been
// stored yet and yields nil, nil.
func (c *Client) Fetch(ctx context.Context) (*domain.Snapshot, error) {
	url := fmt.Sprintf("%s/storage/snapshot", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf(
			"sheet store fetch error: status=%d body=%s",
			resp.StatusCode,
			string(b),
		)
	}

	var snapshot domain.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

// Store replaces the remote snapshot blob with the given state.
func (c *Client) Store(ctx context.Context, snapshot *domain.Snapshot) error {
	url := fmt.Sprintf("%s/storage/snapshot", c.baseURL)

	body, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPut,
		url,
		bytes.NewReader(body),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf(
			"sheet store write error: status=%d body=%s",
			resp.StatusCode,
			string(b),
		)
	}

	return nil
}
