// Package beatleader is a thin client for the slice of the BeatLeader API
// the bot queries: player profiles, the player search, and the weighted pp
// graph behind the rank-up math.
package beatleader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.beatleader.com"

	defaultTimeout = 10 * time.Second
)

// Config configures the API client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the BeatLeader HTTP API. Requests carry no credentials;
// the endpoints the bot uses are public.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Player is the profile subset the bot reads.
type Player struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	CountryRank int     `json:"countryRank"`
	Rank        int     `json:"rank"`
	PP          float64 `json:"pp"`
	Platform    string  `json:"platform"`
}

// PlayersPage is one page of a player listing.
type PlayersPage struct {
	Data     []Player `json:"data"`
	Metadata struct {
		Total int `json:"total"`
	} `json:"metadata"`
}

// PlayersQuery selects a player page. Zero fields are omitted from the
// request.
type PlayersQuery struct {
	Search    string
	Countries string
	SortBy    string
	Order     string
	Count     int
	Page      int
}

// AccPoint is one play in a player's acc graph.
type AccPoint struct {
	PP float64 `json:"pp"`
}

// Player fetches one profile.
func (c *Client) Player(ctx context.Context, id string) (*Player, error) {
	var p Player
	if err := c.get(ctx, "/player/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Exists reports whether a player id resolves to a profile. Any non-200
// answer counts as absent.
func (c *Client) Exists(ctx context.Context, id string) (bool, error) {
	req, err := c.newRequest(ctx, "/player/"+url.PathEscape(id), nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("querying player %s: %w", id, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK, nil
}

// Players fetches a page of the player listing.
func (c *Client) Players(ctx context.Context, q PlayersQuery) (*PlayersPage, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Countries != "" {
		params.Set("countries", q.Countries)
	}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.Order != "" {
		params.Set("order", q.Order)
	}
	if q.Count > 0 {
		params.Set("count", strconv.Itoa(q.Count))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}

	var page PlayersPage
	if err := c.get(ctx, "/players", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AccGraph fetches a player's weighted pp points: one per ranked play.
func (c *Client) AccGraph(ctx context.Context, id string) ([]AccPoint, error) {
	params := url.Values{}
	params.Set("leaderboardContext", "general")
	params.Set("type", "weight")
	// The API wants the parameter present even when empty.
	params.Set("no_unranked_stars", "")

	var points []AccPoint
	if err := c.get(ctx, "/player/"+url.PathEscape(id)+"/accgraph", params, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) newRequest(ctx context.Context, path string, params url.Values) (*http.Request, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := c.newRequest(ctx, path, params)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("fetching %s: status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
