package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	server "github.com/mindwell-lab/serene/pkg/controller/http"
	"github.com/mindwell-lab/serene/pkg/domain/model/botconfig"
	"github.com/mindwell-lab/serene/pkg/domain/types"
	"github.com/mindwell-lab/serene/pkg/repository"
	"github.com/mindwell-lab/serene/pkg/service/emergency"
	"github.com/mindwell-lab/serene/pkg/service/guardrail"
	"github.com/mindwell-lab/serene/pkg/usecase"
)

func newServer(t *testing.T) *server.Server {
	t.Helper()
	cfg := botconfig.Default()
	store := repository.NewMemory()
	monitor := guardrail.NewMonitor(context.Background(), cfg.Crisis)

	emergencySvc, err := emergency.New(context.Background(), filepath.Join(t.TempDir(), "emergency.json"))
	gt.NoError(t, err)

	uc := usecase.New(store, cfg, monitor, usecase.WithEmergency(emergencySvc))
	return server.New(uc, server.WithEmergency(emergencySvc))
}

func postJSON(t *testing.T, srv *server.Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	gt.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealthEndpoint(t *testing.T) {
	srv := newServer(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	gt.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	decodeBody(t, w, &body)
	gt.Equal(t, body["status"], "ok")
}

func TestSessionLifecycle(t *testing.T) {
	srv := newServer(t)

	w := postJSON(t, srv, "/api/session/start", map[string]string{
		"user_name": "Ada",
		"country":   "US",
	})
	gt.Equal(t, http.StatusCreated, w.Code)

	var started struct {
		SessionID types.SessionID `json:"session_id"`
		Message   string          `json:"message"`
	}
	decodeBody(t, w, &started)
	gt.Value(t, started.SessionID).NotEqual(types.SessionID(""))
	gt.Value(t, started.Message).NotEqual("")

	req := httptest.NewRequest("GET", "/api/session/"+started.SessionID.String(), nil)
	w2 := httptest.NewRecorder()
	srv.ServeHTTP(w2, req)
	gt.Equal(t, http.StatusOK, w2.Code)

	var session struct {
		ID       types.SessionID `json:"id"`
		Phase    types.Phase     `json:"current_phase"`
		UserName string          `json:"user_name"`
	}
	decodeBody(t, w2, &session)
	gt.Equal(t, session.ID, started.SessionID)
	gt.Equal(t, session.Phase, types.PhaseGreeting)
	gt.Equal(t, session.UserName, "Ada")

	req = httptest.NewRequest("DELETE", "/api/session/"+started.SessionID.String(), nil)
	w3 := httptest.NewRecorder()
	srv.ServeHTTP(w3, req)
	gt.Equal(t, http.StatusOK, w3.Code)

	req = httptest.NewRequest("GET", "/api/session/"+started.SessionID.String(), nil)
	w4 := httptest.NewRecorder()
	srv.ServeHTTP(w4, req)
	gt.Equal(t, http.StatusNotFound, w4.Code)
}

func TestConversationEndpoint(t *testing.T) {
	srv := newServer(t)

	w := postJSON(t, srv, "/api/session/start", map[string]string{})
	gt.Equal(t, http.StatusCreated, w.Code)
	var started struct {
		SessionID types.SessionID `json:"session_id"`
	}
	decodeBody(t, w, &started)

	w = postJSON(t, srv, "/api/conversation", map[string]any{
		"session_id": started.SessionID,
		"message":    "yes",
	})
	gt.Equal(t, http.StatusOK, w.Code)

	var reply usecase.Reply
	decodeBody(t, w, &reply)
	gt.Equal(t, reply.Phase, types.PhaseTriage)

	// missing message body field
	w = postJSON(t, srv, "/api/conversation", map[string]any{
		"session_id": started.SessionID,
	})
	gt.Equal(t, http.StatusBadRequest, w.Code)

	// unknown session
	w = postJSON(t, srv, "/api/conversation", map[string]any{
		"session_id": types.NewSessionID(),
		"message":    "yes",
	})
	gt.Equal(t, http.StatusNotFound, w.Code)
}

func TestSummaryAndHistoryEndpoints(t *testing.T) {
	srv := newServer(t)

	w := postJSON(t, srv, "/api/session/start", map[string]string{})
	var started struct {
		SessionID types.SessionID `json:"session_id"`
	}
	decodeBody(t, w, &started)

	postJSON(t, srv, "/api/conversation", map[string]any{
		"session_id": started.SessionID, "message": "yes",
	})

	req := httptest.NewRequest("GET", "/api/conversation/"+started.SessionID.String()+"/summary", nil)
	w2 := httptest.NewRecorder()
	srv.ServeHTTP(w2, req)
	gt.Equal(t, http.StatusOK, w2.Code)

	var summary usecase.Summary
	decodeBody(t, w2, &summary)
	gt.Equal(t, summary.Phase, types.PhaseTriage)

	req = httptest.NewRequest("GET", "/api/conversation/"+started.SessionID.String()+"/history", nil)
	w3 := httptest.NewRecorder()
	srv.ServeHTTP(w3, req)
	gt.Equal(t, http.StatusOK, w3.Code)

	var history struct {
		History []json.RawMessage `json:"conversation_history"`
	}
	decodeBody(t, w3, &history)
	gt.Array(t, history.History).Length(2)
}

func TestStatsAndCleanupEndpoints(t *testing.T) {
	srv := newServer(t)
	postJSON(t, srv, "/api/session/start", map[string]string{})

	req := httptest.NewRequest("GET", "/api/sessions/stats", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	gt.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		TotalActive int `json:"total_active_sessions"`
	}
	decodeBody(t, w, &stats)
	gt.Equal(t, stats.TotalActive, 1)

	w2 := postJSON(t, srv, "/api/sessions/cleanup", map[string]string{})
	gt.Equal(t, http.StatusOK, w2.Code)

	var cleaned struct {
		Removed int `json:"removed"`
	}
	decodeBody(t, w2, &cleaned)
	gt.Equal(t, cleaned.Removed, 0)
}

func TestCalculateScoreEndpoint(t *testing.T) {
	srv := newServer(t)

	w := postJSON(t, srv, "/api/session/start", map[string]string{})
	var started struct {
		SessionID types.SessionID `json:"session_id"`
	}
	decodeBody(t, w, &started)

	responses := make([]map[string]any, 9)
	for i := range responses {
		responses[i] = map[string]any{
			"question_id": "phq9_" + strconv.Itoa(i+1),
			"user_text":   "more than half the days",
			"score":       2,
		}
	}

	w = postJSON(t, srv, "/api/score/calculate", map[string]any{
		"session_id":     started.SessionID,
		"screening_tool": "PHQ9",
		"responses":      responses,
	})
	gt.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Total    int    `json:"total_score"`
		Severity string `json:"severity_level"`
	}
	decodeBody(t, w, &result)
	gt.Equal(t, result.Total, 18)
	gt.Equal(t, result.Severity, "severe")

	w = postJSON(t, srv, "/api/score/calculate", map[string]any{
		"session_id":     started.SessionID,
		"screening_tool": "UNKNOWN",
		"responses":      responses[:1],
	})
	gt.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCrisisEndpoints(t *testing.T) {
	srv := newServer(t)

	w := postJSON(t, srv, "/api/crisis/check", map[string]any{
		"message": "I want to end my life",
	})
	gt.Equal(t, http.StatusOK, w.Code)

	var check usecase.CrisisCheck
	decodeBody(t, w, &check)
	gt.True(t, check.ShouldOverride)
	gt.Equal(t, check.Level, types.CrisisLevelCritical)
	gt.True(t, strings.Contains(check.Message, "988"))

	req := httptest.NewRequest("GET", "/api/crisis/status", nil)
	w2 := httptest.NewRecorder()
	srv.ServeHTTP(w2, req)
	gt.Equal(t, http.StatusOK, w2.Code)

	var status usecase.CrisisStatus
	decodeBody(t, w2, &status)
	gt.True(t, status.Active)

	w3 := postJSON(t, srv, "/api/crisis/reset", map[string]string{})
	gt.Equal(t, http.StatusOK, w3.Code)

	w4 := httptest.NewRecorder()
	srv.ServeHTTP(w4, httptest.NewRequest("GET", "/api/crisis/status", nil))
	var after usecase.CrisisStatus
	decodeBody(t, w4, &after)
	gt.False(t, after.Active)
}

func TestEmergencyEndpoints(t *testing.T) {
	srv := newServer(t)

	// empty directory falls back to the built-in contacts
	req := httptest.NewRequest("GET", "/api/emergency/contacts", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	gt.Equal(t, http.StatusOK, w.Code)

	var listed struct {
		Contacts []json.RawMessage `json:"contacts"`
	}
	decodeBody(t, w, &listed)
	gt.Array(t, listed.Contacts).Longer(0)

	w2 := postJSON(t, srv, "/api/emergency/contacts", map[string]any{
		"name":          "Samaritans",
		"number":        "116 123",
		"country":       "UK",
		"resource_type": "crisis_helpline",
	})
	gt.Equal(t, http.StatusCreated, w2.Code)

	// missing required fields
	w3 := postJSON(t, srv, "/api/emergency/contacts", map[string]any{
		"name": "Nameless",
	})
	gt.Equal(t, http.StatusBadRequest, w3.Code)

	req = httptest.NewRequest("GET", "/api/emergency/message?country=UK", nil)
	w4 := httptest.NewRecorder()
	srv.ServeHTTP(w4, req)
	gt.Equal(t, http.StatusOK, w4.Code)

	var msg struct {
		Message string `json:"message"`
	}
	decodeBody(t, w4, &msg)
	gt.True(t, strings.Contains(msg.Message, "116 123"))

	req = httptest.NewRequest("DELETE", "/api/emergency/contacts/Samaritans/UK", nil)
	w5 := httptest.NewRecorder()
	srv.ServeHTTP(w5, req)
	gt.Equal(t, http.StatusOK, w5.Code)

	req = httptest.NewRequest("DELETE", "/api/emergency/contacts/Samaritans/UK", nil)
	w6 := httptest.NewRecorder()
	srv.ServeHTTP(w6, req)
	gt.Equal(t, http.StatusNotFound, w6.Code)

	req = httptest.NewRequest("GET", "/api/emergency/validate", nil)
	w7 := httptest.NewRecorder()
	srv.ServeHTTP(w7, req)
	gt.Equal(t, http.StatusOK, w7.Code)

	var validation struct {
		Valid bool `json:"valid"`
	}
	decodeBody(t, w7, &validation)
	gt.True(t, validation.Valid)
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t)

	req := httptest.NewRequest("OPTIONS", "/api/session/start", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	gt.Equal(t, http.StatusNoContent, w.Code)
	gt.Equal(t, w.Header().Get("Access-Control-Allow-Origin"), "*")
}
