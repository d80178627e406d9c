package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sqlc-dev/pqtype"

	"github.com/saeidalz13/seabattle/db/sqlc"
	cerr "github.com/saeidalz13/seabattle/internal/error"
	mb "github.com/saeidalz13/seabattle/models/battleship"
)

type respSlots struct {
	Slots []sqlc.ListSaveSlotsRow `json:"slots"`
}

type respHealth struct {
	Status       string `json:"status"`
	Sessions     int    `json:"sessions"`
	Games        int    `json:"games"`
	GamesCreated *int64 `json:"games_created,omitempty"`
	RoundsPlayed *int64 `json:"rounds_played,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("failed to write response:", err)
	}
}

// NewRouter mounts the websocket endpoint and the read-only REST routes.
func NewRouter(rp RequestProcessor) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/battleship", rp).Methods(http.MethodGet)
	r.HandleFunc("/slots", rp.handleListSlots).Methods(http.MethodGet)
	r.HandleFunc("/slots/{name}", rp.handleDeleteSlot).Methods(http.MethodDelete)
	r.HandleFunc("/help", handleHelp).Methods(http.MethodGet)
	r.HandleFunc("/health", rp.handleHealth).Methods(http.MethodGet)

	return r
}

func (rp RequestProcessor) handleListSlots(w http.ResponseWriter, r *http.Request) {
	if rp.slots == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "save slots are disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), sqlc.QuerierCtxTimeout)
	defer cancel()

	slots, err := rp.slots.List(ctx)
	if err != nil {
		log.Println(err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list save slots"})
		return
	}
	writeJSON(w, http.StatusOK, respSlots{Slots: slots})
}

func (rp RequestProcessor) handleDeleteSlot(w http.ResponseWriter, r *http.Request) {
	if rp.slots == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "save slots are disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), sqlc.QuerierCtxTimeout)
	defer cancel()

	err := rp.slots.Delete(ctx, mux.Vars(r)["name"])
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)

	case errors.Is(err, cerr.ErrSlotName):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})

	case errors.Is(err, cerr.ErrNoSlot):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})

	default:
		log.Println(err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete save slot"})
	}
}

func handleHelp(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(mb.HelpText))
}

func (rp RequestProcessor) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := respHealth{
		Status:   "ok",
		Sessions: rp.sessionManager.Len(),
		Games:    rp.gameManager.Len(),
	}

	if rp.analytics != nil {
		ctx, cancel := context.WithTimeout(r.Context(), sqlc.QuerierCtxTimeout)
		defer cancel()

		serverIp := pqtype.Inet{IPNet: rp.ipnet, Valid: true}
		resp.GamesCreated = rp.analyticsCount(ctx, serverIp, rp.analytics.GetGamesCreatedCount)
		resp.RoundsPlayed = rp.analyticsCount(ctx, serverIp, rp.analytics.GetRoundsPlayedCount)
	}
	writeJSON(w, http.StatusOK, resp)
}

// A server without a row yet has counted nothing.
func (rp RequestProcessor) analyticsCount(
	ctx context.Context,
	serverIp pqtype.Inet,
	get func(context.Context, pqtype.Inet) (int64, error),
) *int64 {
	count, err := get(ctx, serverIp)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Println(err)
		return nil
	}
	return &count
}
