package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clash-hub/internal/api"
	"clash-hub/internal/prefs"
	"clash-hub/internal/repository"
	"clash-hub/internal/service"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelayer struct {
	lastReq api.RelayRequest
	result  *api.RelayResult
	err     error
}

func (f *fakeRelayer) Relay(_ context.Context, req api.RelayRequest) (*api.RelayResult, error) {
	f.lastReq = req
	return f.result, f.err
}

func newRelayServer(relay Relayer) *Server {
	return New(relay, nil, nil, nil, nil, zerolog.Nop())
}

func doRequest(t *testing.T, s *Server, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func TestRelayHealthCheck(t *testing.T) {
	relay := &fakeRelayer{}
	rec := doRequest(t, newRelayServer(relay), http.MethodGet, "/api/royale?test=true", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Server is running!", body["message"])

	// Health check never reaches upstream.
	assert.Empty(t, relay.lastReq.Resource)
}

func TestRelayMissingResource(t *testing.T) {
	rec := doRequest(t, newRelayServer(&fakeRelayer{}), http.MethodGet, "/api/royale?tag=9Q2YJ0U", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing resource parameter"}`, rec.Body.String())
}

func TestRelayPassesBodyAndStatusVerbatim(t *testing.T) {
	upstream := `{"name":"Ash","tag":"#9Q2YJ0U","trophies":5000}`
	relay := &fakeRelayer{result: &api.RelayResult{StatusCode: 200, Body: []byte(upstream)}}

	rec := doRequest(t, newRelayServer(relay), http.MethodGet, "/api/royale?resource=players&tag=%239Q2YJ0U", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, upstream, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	assert.Equal(t, "players", relay.lastReq.Resource)
	assert.Equal(t, "#9Q2YJ0U", relay.lastReq.Tag)
}

func TestRelayDoesNotRemapUpstreamErrors(t *testing.T) {
	for _, status := range []int{403, 404, 429, 503} {
		relay := &fakeRelayer{result: &api.RelayResult{StatusCode: status, Body: []byte(`{"reason":"nope"}`)}}
		rec := doRequest(t, newRelayServer(relay), http.MethodGet, "/api/royale?resource=players&tag=XYZ", "")
		assert.Equal(t, status, rec.Code)
		assert.JSONEq(t, `{"reason":"nope"}`, rec.Body.String())
	}
}

func TestRelayNonJSONBodyReturnedAsText(t *testing.T) {
	relay := &fakeRelayer{result: &api.RelayResult{StatusCode: 200, Body: []byte("plain text response")}}
	rec := doRequest(t, newRelayServer(relay), http.MethodGet, "/api/royale?resource=locations", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "plain text response", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestRelayTransportFailure(t *testing.T) {
	relay := &fakeRelayer{err: errors.New("connection refused")}
	rec := doRequest(t, newRelayServer(relay), http.MethodGet, "/api/royale?resource=players&tag=XYZ", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestRelayBattleLogFlag(t *testing.T) {
	relay := &fakeRelayer{result: &api.RelayResult{StatusCode: 200, Body: []byte(`[]`)}}
	doRequest(t, newRelayServer(relay), http.MethodGet, "/api/royale?resource=players&tag=9Q2YJ0U&battlelog=true", "")

	assert.True(t, relay.lastReq.BattleLog)
}

type mapStorage struct {
	values map[string]string
}

func (m *mapStorage) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapStorage) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func newPrefsServer() *Server {
	store := prefs.NewStore(&mapStorage{values: make(map[string]string)}, nil, zerolog.Nop())
	return New(&fakeRelayer{}, nil, nil, nil, store, zerolog.Nop())
}

func TestPrefsDefaultsAndUpdate(t *testing.T) {
	s := newPrefsServer()

	rec := doRequest(t, s, http.MethodGet, "/api/prefs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"themeInverted":false,"fontScalePercent":100,"soundEnabled":true}`, rec.Body.String())

	rec = doRequest(t, s, http.MethodPut, "/api/prefs/fontScalePercent", `{"value":"150"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/prefs/view", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view prefs.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 150, view.FontScalePercent)
}

func TestPrefsRejectsBadValues(t *testing.T) {
	s := newPrefsServer()

	rec := doRequest(t, s, http.MethodPut, "/api/prefs/fontScalePercent", `{"value":"900"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodPut, "/api/prefs/fontScalePercent", `{"value":"big"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodPut, "/api/prefs/nonsense", `{"value":"true"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeRoyaleAPI struct {
	clans       map[string][]api.ClanData
	clanByTag   map[string]*api.ClanData
	searchCalls []string
}

func (f *fakeRoyaleAPI) GetPlayer(context.Context, string) (*api.PlayerResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRoyaleAPI) GetBattleLog(context.Context, string) (*api.BattleLogResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRoyaleAPI) GetClan(_ context.Context, tag string) (*api.ClanData, error) {
	if c, ok := f.clanByTag[tag]; ok {
		return c, nil
	}
	return nil, &api.Error{StatusCode: http.StatusNotFound}
}

func (f *fakeRoyaleAPI) SearchClans(_ context.Context, name, _ string) (*api.ClanSearchResponse, error) {
	f.searchCalls = append(f.searchCalls, name)
	return &api.ClanSearchResponse{Items: f.clans[name]}, nil
}

func newClanSearchServer(t *testing.T, royale *fakeRoyaleAPI) *Server {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE clans (
		tag TEXT PRIMARY KEY, name TEXT NOT NULL, type TEXT NOT NULL DEFAULT 'unknown',
		members INTEGER NOT NULL DEFAULT 0, score INTEGER NOT NULL DEFAULT 0,
		war_trophies INTEGER NOT NULL DEFAULT 0, required_trophies INTEGER NOT NULL DEFAULT 0,
		location_name TEXT NOT NULL DEFAULT '', country_code TEXT NOT NULL DEFAULT '',
		is_country BOOLEAN NOT NULL DEFAULT FALSE, description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL, updated_at TIMESTAMP NOT NULL)`)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clanRepo := repository.NewClanRepository(db, zerolog.Nop())
	clanSvc := service.NewClanService(royale, clanRepo, zerolog.Nop())
	return New(&fakeRelayer{}, nil, nil, clanSvc, nil, zerolog.Nop())
}

func manyClans(n int) []api.ClanData {
	out := make([]api.ClanData, n)
	for i := range out {
		out[i] = api.ClanData{Tag: "#TAG" + string(rune('A'+i%26)) + string(rune('A'+i/26)), Name: "Clan", Type: "open"}
	}
	return out
}

func TestClanSearchRequiresQuery(t *testing.T) {
	s := newClanSearchServer(t, &fakeRoyaleAPI{})
	rec := doRequest(t, s, http.MethodGet, "/api/clans/search?q=", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type clanSearchResponse struct {
	Cards     []json.RawMessage `json:"cards"`
	Total     int               `json:"total"`
	Revealed  int               `json:"revealed"`
	Remaining int               `json:"remaining"`
	HasMore   bool              `json:"hasMore"`
}

func TestClanSearchPaginates(t *testing.T) {
	royale := &fakeRoyaleAPI{clans: map[string][]api.ClanData{
		"the crushers": manyClans(20),
	}}
	s := newClanSearchServer(t, royale)

	rec := doRequest(t, s, http.MethodGet, "/api/clans/search?q=The+Crushers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp clanSearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Cards, 15)
	assert.Equal(t, 20, resp.Total)
	assert.Equal(t, 15, resp.Revealed)
	assert.Equal(t, 5, resp.Remaining)
	assert.True(t, resp.HasMore)

	rec = doRequest(t, s, http.MethodGet, "/api/clans/search?q=The+Crushers&page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Cards, 5)
	assert.Equal(t, 20, resp.Revealed)
	assert.Equal(t, 0, resp.Remaining)
	assert.False(t, resp.HasMore)

	// The fuzzy loop tried the original before the lower-cased hit.
	assert.Contains(t, royale.searchCalls, "The Crushers")
	assert.Contains(t, royale.searchCalls, "the crushers")
}

func TestClanSearchByTag(t *testing.T) {
	royale := &fakeRoyaleAPI{clanByTag: map[string]*api.ClanData{
		"ABC123": {Tag: "#ABC123", Name: "The Crushers", Type: "open"},
	}}
	s := newClanSearchServer(t, royale)

	rec := doRequest(t, s, http.MethodGet, "/api/clans/search?q=%23abc123", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp clanSearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Empty(t, royale.searchCalls)
}

func TestClanSearchUnknownTagYieldsEmptyList(t *testing.T) {
	s := newClanSearchServer(t, &fakeRoyaleAPI{})
	rec := doRequest(t, s, http.MethodGet, "/api/clans/search?q=%23ZZZZZZ", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp clanSearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Total)
	assert.Empty(t, resp.Cards)
	assert.False(t, resp.HasMore)
}

func TestClanSearchExhaustedIsEmptyNotError(t *testing.T) {
	s := newClanSearchServer(t, &fakeRoyaleAPI{})
	rec := doRequest(t, s, http.MethodGet, "/api/clans/search?q=No+Such+Clan", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp clanSearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Total)
}
