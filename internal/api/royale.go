// Package api is the upstream Clash Royale API client. It serves two
// callers: the raw relay endpoint, which passes upstream status and body
// through verbatim, and the typed lookups used by the services.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"clash-hub/internal/config"

	"github.com/valyala/fasthttp"
)

type Client struct {
	token       string
	base        string
	client      *fasthttp.Client
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`

	// seconds until reset
	Reset int `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		token: cfg.ClashAPIToken,
		base:  strings.TrimSuffix(cfg.UpstreamBase, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		rateLimit: RateLimitInfo{
			Limit:     80,
			Remaining: 80,
			Reset:     60,
			UpdatedAt: time.Now(),
		},
	}
}

func (c *Client) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *Client) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := string(resp.Header.Peek("X-Ratelimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-Ratelimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-Ratelimit-Reset")); reset != "" {
		if val, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.Reset = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// Error is an upstream non-2xx result from a typed lookup. The status
// code survives so callers keep the 404/403/429 distinctions.
type Error struct {
	StatusCode int
	Body       []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream API error: %d", e.StatusCode)
}

// RelayRequest is the logical request accepted by the relay endpoint.
type RelayRequest struct {
	Resource   string
	Tag        string
	BattleLog  bool
	Name       string
	LocationID string
}

// RelayResult carries the upstream response back verbatim, whatever the
// status code.
type RelayResult struct {
	StatusCode int
	Body       []byte
}

// BuildURL joins the upstream base with the resource path, the
// percent-escaped tag segment (the '#' marker is escaped as %23), the
// battlelog sub-resource and the search query parameters.
func BuildURL(base string, req RelayRequest) string {
	resource := strings.TrimLeft(req.Resource, "/")
	u := base + "/" + resource

	if req.Tag != "" {
		u += "/%23" + url.PathEscape(strings.TrimPrefix(req.Tag, "#"))
	}
	if req.BattleLog {
		u += "/battlelog"
	}

	params := url.Values{}
	if req.Name != "" {
		params.Set("name", req.Name)
	}
	if req.LocationID != "" {
		params.Set("locationId", req.LocationID)
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// Relay forwards one request upstream and returns whatever came back.
// Only a transport failure is an error; upstream 4xx/5xx are results.
func (c *Client) Relay(ctx context.Context, relayReq RelayRequest) (*RelayResult, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(BuildURL(c.base, relayReq))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	if err := c.do(ctx, req, resp); err != nil {
		return nil, err
	}

	c.updateRateLimit(resp)

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return &RelayResult{StatusCode: resp.StatusCode(), Body: body}, nil
}

func (c *Client) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if deadline, ok := ctx.Deadline(); ok {
		return c.client.DoDeadline(req, resp, deadline)
	}
	return c.client.Do(req, resp)
}

func (c *Client) GetPlayer(ctx context.Context, tag string) (*PlayerResponse, error) {
	return doRequest[PlayerResponse](ctx, c, RelayRequest{Resource: "players", Tag: tag})
}

func (c *Client) GetBattleLog(ctx context.Context, tag string) (*BattleLogResponse, error) {
	return doRequest[BattleLogResponse](ctx, c, RelayRequest{Resource: "players", Tag: tag, BattleLog: true})
}

func (c *Client) GetClan(ctx context.Context, tag string) (*ClanData, error) {
	return doRequest[ClanData](ctx, c, RelayRequest{Resource: "clans", Tag: tag})
}

func (c *Client) SearchClans(ctx context.Context, name, locationID string) (*ClanSearchResponse, error) {
	return doRequest[ClanSearchResponse](ctx, c, RelayRequest{Resource: "clans", Name: name, LocationID: locationID})
}

func doRequest[T any](ctx context.Context, client *Client, relayReq RelayRequest) (*T, error) {
	result, err := client.Relay(ctx, relayReq)
	if err != nil {
		return nil, err
	}
	if result.StatusCode != fasthttp.StatusOK {
		return nil, &Error{StatusCode: result.StatusCode, Body: result.Body}
	}

	var out T
	if err := json.Unmarshal(result.Body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type PlayerResponse struct {
	Tag               string `json:"tag"`
	Name              string `json:"name"`
	ExpLevel          int    `json:"expLevel"`
	Trophies          int    `json:"trophies"`
	BestTrophies      int    `json:"bestTrophies"`
	ExpPoints         int    `json:"expPoints"`
	Wins              int    `json:"wins"`
	Losses            int    `json:"losses"`
	ThreeCrownWins    int    `json:"threeCrownWins"`
	Donations         int    `json:"donations"`
	DonationsReceived int    `json:"donationsReceived"`
	Clan              *struct {
		Tag  string `json:"tag"`
		Name string `json:"name"`
	} `json:"clan"`
	Arena *struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"arena"`
}

type BattleLogResponse []BattleData

type BattleData struct {
	BattleTime string `json:"battleTime"`
	GameMode   struct {
		Name string `json:"name"`
	} `json:"gameMode"`
	Arena struct {
		Name string `json:"name"`
	} `json:"arena"`
	Team     []BattleParticipant `json:"team"`
	Opponent []BattleParticipant `json:"opponent"`
}

type BattleParticipant struct {
	Name string `json:"name"`
	Clan *struct {
		Tag  string `json:"tag"`
		Name string `json:"name"`
	} `json:"clan"`
	Crowns int `json:"crowns"`
}

type ClanData struct {
	Tag              string `json:"tag"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	Members          int    `json:"members"`
	ClanScore        int    `json:"clanScore"`
	Trophies         int    `json:"trophies"`
	ClanWarTrophies  int    `json:"clanWarTrophies"`
	RequiredTrophies int    `json:"requiredTrophies"`
	Description      string `json:"description"`
	Location         *struct {
		Name        string `json:"name"`
		CountryCode string `json:"countryCode"`
		IsCountry   bool   `json:"isCountry"`
	} `json:"location"`
}

type ClanSearchResponse struct {
	Items []ClanData `json:"items"`
}
