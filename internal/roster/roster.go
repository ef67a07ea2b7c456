// Package roster resolves a team's identity and active lineup as of a
// given point in time, memoized through a content-addressed Redis
// cache keyed on (team_id, valid_from), with an HTTP fetch against the
// upstream entity API on a confirmed miss.
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldnotes/boxscore/internal/cache"
)

// Roster is the resolved team identity and lineup as of a point in
// time, decoded from the upstream entity representation.
type Roster struct {
	TeamID    uuid.UUID
	FullName  string
	Nickname  string
	Shorthand string
	Emoji     string
	Lineup    []uuid.UUID

	ValidFrom int64
	ValidTo   int64
}

// Resolver loads rosters through the cache, falling back to the
// upstream entity API on a miss.
type Resolver struct {
	cache   *cache.Client
	ttl     time.Duration
	baseURL string
	http    *http.Client
}

// NewResolver builds a Resolver against the given cache client and
// upstream base URL (the Chronicler-style versioned entity API).
func NewResolver(c *cache.Client, baseURL string, ttl time.Duration) *Resolver {
	return &Resolver{
		cache:   c,
		ttl:     ttl,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Load returns the roster in effect for teamID at atTime. It first
// consults the sorted-set index for a predecessor version, and only
// falls back to an upstream fetch when no cached version covers
// atTime.
func (r *Resolver) Load(ctx context.Context, teamID uuid.UUID, atTime time.Time) (*Roster, error) {
	unixAt := atTime.Unix()
	indexKey := r.cache.RosterIndexKey(teamID.String())

	validFrom, ok, err := r.cache.LookupPredecessor(ctx, indexKey, unixAt)
	if err != nil {
		return nil, fmt.Errorf("roster predecessor lookup for team %s: %w", teamID, err)
	}
	if ok {
		key := r.cache.RosterKey(teamID.String(), validFrom)
		var cached Roster
		if r.cache.Get(ctx, key, &cached) && cached.ValidFrom <= unixAt && unixAt < cached.ValidTo {
			return &cached, nil
		}
	}

	fetched, err := r.fetch(ctx, teamID, atTime)
	if err != nil {
		return nil, fmt.Errorf("fetch roster for team %s at %s: %w", teamID, atTime, err)
	}

	key := r.cache.RosterKey(teamID.String(), fetched.ValidFrom)
	if err := r.cache.Set(ctx, key, fetched, r.ttl); err != nil {
		return nil, fmt.Errorf("cache roster for team %s: %w", teamID, err)
	}
	if err := r.cache.IndexRosterVersion(ctx, indexKey, fetched.ValidFrom); err != nil {
		return nil, fmt.Errorf("index roster for team %s: %w", teamID, err)
	}

	return fetched, nil
}

type entityResponse struct {
	Items []struct {
		EntityID  uuid.UUID       `json:"entityId"`
		ValidFrom time.Time       `json:"validFrom"`
		ValidTo   *time.Time      `json:"validTo"`
		Data      json.RawMessage `json:"data"`
	} `json:"items"`
}

type entityData struct {
	FullName  string      `json:"fullName"`
	Nickname  string      `json:"nickname"`
	Shorthand string      `json:"shorthand"`
	Emoji     string      `json:"emoji"`
	Lineup    []uuid.UUID `json:"lineup"`
}

func (r *Resolver) fetch(ctx context.Context, teamID uuid.UUID, atTime time.Time) (*Roster, error) {
	url := fmt.Sprintf("%s/v2/entities?type=team&id=%s&at=%s",
		r.baseURL, teamID, atTime.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("upstream status %d: %s", resp.StatusCode, string(body))
	}

	responseTime := parseDateHeader(resp.Header.Get("Date"))

	var decoded entityResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode entity response: %w", err)
	}
	if len(decoded.Items) == 0 {
		return nil, fmt.Errorf("no roster version covers %s", atTime)
	}

	item := decoded.Items[0]
	var data entityData
	if err := json.Unmarshal(item.Data, &data); err != nil {
		return nil, fmt.Errorf("decode roster entity data: %w", err)
	}

	validTo := responseTime
	if item.ValidTo != nil {
		validTo = *item.ValidTo
	}

	return &Roster{
		TeamID:    teamID,
		FullName:  data.FullName,
		Nickname:  data.Nickname,
		Shorthand: data.Shorthand,
		Emoji:     DecodeEmoji(data.Emoji),
		Lineup:    data.Lineup,
		ValidFrom: item.ValidFrom.Unix(),
		ValidTo:   validTo.Unix(),
	}, nil
}

// DecodeEmoji interprets the upstream emoji field, which is either a
// literal unicode string or a "0x..." hex-encoded codepoint.
func DecodeEmoji(raw string) string {
	if !strings.HasPrefix(raw, "0x") {
		return raw
	}
	codepoint, err := strconv.ParseInt(raw[2:], 16, 32)
	if err != nil {
		return raw
	}
	return string(rune(codepoint))
}

func parseDateHeader(value string) time.Time {
	if value == "" {
		return time.Now().UTC()
	}
	t, err := time.Parse(time.RFC1123, value)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}
