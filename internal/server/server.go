// Package server exposes the HTTP surface: the raw upstream relay plus
// the typed JSON endpoints the site pages consume.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clash-hub/internal/api"
	"clash-hub/internal/battle"
	"clash-hub/internal/constants"
	"clash-hub/internal/pager"
	"clash-hub/internal/prefs"
	"clash-hub/internal/service"
	"clash-hub/internal/tag"

	"github.com/rs/zerolog"
)

// Relayer is the slice of the upstream client the relay endpoint needs.
type Relayer interface {
	Relay(ctx context.Context, req api.RelayRequest) (*api.RelayResult, error)
}

type Server struct {
	relay      Relayer
	playerSvc  *service.PlayerService
	battleSvc  *service.BattleService
	clanSvc    *service.ClanService
	prefsStore *prefs.Store
	logger     zerolog.Logger
}

func New(relay Relayer, playerSvc *service.PlayerService, battleSvc *service.BattleService, clanSvc *service.ClanService, prefsStore *prefs.Store, logger zerolog.Logger) *Server {
	return &Server{
		relay:      relay,
		playerSvc:  playerSvc,
		battleSvc:  battleSvc,
		clanSvc:    clanSvc,
		prefsStore: prefsStore,
		logger:     logger,
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/royale", s.handleRelay)
	mux.HandleFunc("GET /api/players/{tag}", s.handlePlayer)
	mux.HandleFunc("GET /api/players/{tag}/battles", s.handleBattles)
	mux.HandleFunc("GET /api/clans/search", s.handleClanSearch)
	mux.HandleFunc("GET /api/prefs", s.handleGetPrefs)
	mux.HandleFunc("GET /api/prefs/view", s.handlePrefsView)
	mux.HandleFunc("PUT /api/prefs/{key}", s.handleSetPref)
	return mux
}

// handleRelay forwards the request upstream and passes status and body
// back verbatim. It never remaps upstream error codes; the pages rely on
// the 404/403/429 distinctions.
func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if strings.EqualFold(q.Get("test"), "true") {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Server is running!"})
		return
	}

	resource := q.Get("resource")
	if resource == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing resource parameter"})
		return
	}

	result, err := s.relay.Relay(r.Context(), api.RelayRequest{
		Resource:   resource,
		Tag:        q.Get("tag"),
		BattleLog:  strings.EqualFold(q.Get("battlelog"), "true"),
		Name:       q.Get("name"),
		LocationID: q.Get("locationId"),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("resource", resource).Msg("relay failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
		return
	}

	if json.Valid(result.Body) {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(result.StatusCode)
	w.Write(result.Body)
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	refresh := strings.EqualFold(r.URL.Query().Get("refresh"), "true")

	player, battles, err := s.playerSvc.GetProfile(r.Context(), r.PathValue("tag"), refresh)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	report := struct {
		Player  pager.PlayerCard `json:"player"`
		Battles int              `json:"battles"`
		HTML    string           `json:"html"`
	}{
		Player:  pager.NewPlayerCard(*player),
		Battles: len(battles),
	}
	report.HTML = report.Player.HTML()
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleBattles(w http.ResponseWriter, r *http.Request) {
	report, err := s.battleSvc.GetBattles(r.Context(), r.PathValue("tag"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	now := time.Now()
	cards := make([]pager.BattleCard, len(report.Battles))
	for i, b := range report.Battles {
		cards[i] = pager.NewBattleCard(b, now)
	}

	page := pageParam(r)
	batch, p := paginate(cards, page)

	writeJSON(w, http.StatusOK, struct {
		Cards     []pager.BattleCard `json:"cards"`
		Total     int                `json:"total"`
		Revealed  int                `json:"revealed"`
		Remaining int                `json:"remaining"`
		HasMore   bool               `json:"hasMore"`
		Summary   battle.Summary     `json:"summary"`
		Pattern   string             `json:"pattern"`
	}{
		Cards:     batch,
		Total:     p.Total(),
		Revealed:  p.Revealed(),
		Remaining: p.Remaining(),
		HasMore:   p.HasMore(),
		Summary:   report.Summary,
		Pattern:   report.Pattern,
	})
}

func (s *Server) handleClanSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "need a clan tag or name to search"})
		return
	}

	clans, _, err := s.clanSvc.Search(r.Context(), query, q.Get("locationId"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	cards := make([]pager.ClanCard, len(clans))
	for i, c := range clans {
		cards[i] = pager.NewClanCard(c)
	}

	page := pageParam(r)
	batch, p := paginate(cards, page)

	writeJSON(w, http.StatusOK, struct {
		Cards     []pager.ClanCard `json:"cards"`
		Total     int              `json:"total"`
		Revealed  int              `json:"revealed"`
		Remaining int              `json:"remaining"`
		HasMore   bool             `json:"hasMore"`
	}{
		Cards:     batch,
		Total:     p.Total(),
		Revealed:  p.Revealed(),
		Remaining: p.Remaining(),
		HasMore:   p.HasMore(),
	})
}

func (s *Server) handleGetPrefs(w http.ResponseWriter, r *http.Request) {
	p, err := s.prefsStore.Get(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		ThemeInverted    bool `json:"themeInverted"`
		FontScalePercent int  `json:"fontScalePercent"`
		SoundEnabled     bool `json:"soundEnabled"`
	}{p.ThemeInverted, p.FontScalePercent, p.SoundEnabled})
}

func (s *Server) handlePrefsView(w http.ResponseWriter, r *http.Request) {
	view, err := s.prefsStore.View(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSetPref(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	ctx := r.Context()
	var err error
	switch r.PathValue("key") {
	case "themeInverted":
		err = s.prefsStore.SetThemeInverted(ctx, body.Value == "true")
	case "soundEnabled":
		err = s.prefsStore.SetSoundEnabled(ctx, body.Value == "true")
	case "fontScalePercent":
		var percent int
		percent, err = strconv.Atoi(body.Value)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "font scale must be a number"})
			return
		}
		err = s.prefsStore.SetFontScale(ctx, percent)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown preference"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	view, err := s.prefsStore.View(ctx)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// writeServiceError maps service errors onto the wire: validation
// failures are the caller's fault, upstream statuses pass through with a
// generic body, anything else is a 500.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *tag.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validationErr.Error()})
		return
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErr.StatusCode, map[string]string{"error": "upstream API error"})
		return
	}

	s.logger.Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// paginate reveals pages 1..page and returns the last batch, so a "show
// more" click fetches only the newly revealed cards.
func paginate[T any](cards []T, page int) ([]T, *pager.Paginator[T]) {
	p := pager.New[T]()
	p.LoadAll(cards)

	var batch []T
	for i := 0; i < page; i++ {
		batch = p.RevealNext(constants.ResultsPerPage)
	}
	if batch == nil {
		batch = []T{}
	}
	return batch, p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
