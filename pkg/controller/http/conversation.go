package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mindwell-lab/serene/pkg/domain/model/errs"
	"github.com/mindwell-lab/serene/pkg/domain/types"
	"github.com/mindwell-lab/serene/pkg/usecase"
)

type conversationRequest struct {
	SessionID types.SessionID `json:"session_id"`
	Message   string          `json:"message"`
}

func conversationHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req conversationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to decode request",
				goerr.T(errs.TagInvalidRequest)))
			return
		}

		if req.SessionID == "" {
			handleError(w, r, goerr.New("session_id is required",
				goerr.T(errs.TagInvalidRequest)))
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			handleError(w, r, goerr.New("message is required",
				goerr.T(errs.TagInvalidRequest),
				goerr.TV(errs.SessionIDKey, req.SessionID)))
			return
		}

		reply, err := uc.ProcessMessage(r.Context(), req.SessionID, req.Message)
		if err != nil {
			handleError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, reply)
	}
}

type calculateScoreRequest struct {
	SessionID types.SessionID        `json:"session_id"`
	Tool      types.Tool             `json:"screening_tool"`
	Responses []usecase.BulkResponse `json:"responses"`
}

func calculateScoreHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req calculateScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to decode request",
				goerr.T(errs.TagInvalidRequest)))
			return
		}
		if req.SessionID == "" {
			handleError(w, r, goerr.New("session_id is required",
				goerr.T(errs.TagInvalidRequest)))
			return
		}

		result, err := uc.CalculateScore(r.Context(), req.SessionID, req.Tool, req.Responses)
		if err != nil {
			handleError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, result)
	}
}
