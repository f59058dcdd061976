package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mindwell-lab/serene/pkg/domain/model/errs"
	"github.com/mindwell-lab/serene/pkg/domain/types"
)

type startSessionRequest struct {
	UserName string `json:"user_name"`
	Country  string `json:"country"`
}

type startSessionResponse struct {
	SessionID types.SessionID `json:"session_id"`
	Message   string          `json:"message"`
}

func startSessionHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startSessionRequest
		// an empty body is fine, both fields are optional
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				handleError(w, r, goerr.Wrap(err, "failed to decode request",
					goerr.T(errs.TagInvalidRequest)))
				return
			}
		}

		id, welcome, err := uc.StartSession(r.Context(), req.UserName, req.Country)
		if err != nil {
			handleError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusCreated, startSessionResponse{
			SessionID: id,
			Message:   welcome,
		})
	}
}

func getSessionHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.SessionID(chi.URLParam(r, "sessionID"))

		s, err := uc.GetSession(r.Context(), id)
		if err != nil {
			handleError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, s)
	}
}

func deleteSessionHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.SessionID(chi.URLParam(r, "sessionID"))

		if err := uc.DeleteSession(r.Context(), id); err != nil {
			handleError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func summaryHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.SessionID(chi.URLParam(r, "sessionID"))

		summary, err := uc.GetSummary(r.Context(), id)
		if err != nil {
			handleError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, summary)
	}
}

func historyHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.SessionID(chi.URLParam(r, "sessionID"))

		history, err := uc.GetHistory(r.Context(), id)
		if err != nil {
			handleError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, map[string]any{
			"session_id":           id,
			"conversation_history": history,
		})
	}
}

func statsHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, uc.GetStats(r.Context()))
	}
}

func cleanupHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed := uc.CleanupSessions(r.Context())
		respondJSON(w, r, http.StatusOK, map[string]int{"removed": removed})
	}
}
