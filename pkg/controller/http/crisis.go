package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mindwell-lab/serene/pkg/domain/model/errs"
	"github.com/mindwell-lab/serene/pkg/domain/types"
)

type crisisCheckRequest struct {
	Message            string `json:"message"`
	IsIdeationQuestion bool   `json:"is_ideation_question"`
	Country            string `json:"country"`
}

func crisisCheckHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req crisisCheckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to decode request",
				goerr.T(errs.TagInvalidRequest)))
			return
		}
		if req.Message == "" {
			handleError(w, r, goerr.New("message is required",
				goerr.T(errs.TagInvalidRequest)))
			return
		}

		check := uc.CheckCrisis(r.Context(), req.Message, req.IsIdeationQuestion, req.Country)
		respondJSON(w, r, http.StatusOK, check)
	}
}

func crisisStatusHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, uc.GetCrisisStatus(r.Context()))
	}
}

type crisisResetRequest struct {
	SessionID types.SessionID `json:"session_id"`
}

func crisisResetHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req crisisResetRequest
		// session_id is optional; an empty body resets only the process latch
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				handleError(w, r, goerr.Wrap(err, "failed to decode request",
					goerr.T(errs.TagInvalidRequest)))
				return
			}
		}

		if err := uc.ResetCrisis(r.Context(), req.SessionID); err != nil {
			handleError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "reset"})
	}
}
