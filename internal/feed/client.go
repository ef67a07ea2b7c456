package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client fetches a game's event feed from the upstream event API
// (the reference's Eventually-style endpoint).
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a Client against the given upstream base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchGame retrieves every event for gameID, sorted into feed order.
// It does not itself check for completeness; callers check IsComplete
// before handing the result to the replay engine.
func (c *Client) FetchGame(ctx context.Context, gameID uuid.UUID) ([]*Event, error) {
	url := fmt.Sprintf("%s/events?gameTags=%s&sortby=%%7Bcreated%%7D", c.baseURL, gameID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed for game %s: %w", gameID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("feed upstream status %d for game %s: %s", resp.StatusCode, gameID, string(body))
	}

	var events []*Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode feed for game %s: %w", gameID, err)
	}

	SortEvents(events)
	return events, nil
}
