package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	emergency_model "github.com/mindwell-lab/serene/pkg/domain/model/emergency"
	"github.com/mindwell-lab/serene/pkg/domain/model/errs"
	emergency_service "github.com/mindwell-lab/serene/pkg/service/emergency"
	"github.com/mindwell-lab/serene/pkg/utils/logging"
)

func listContactsHandler(svc *emergency_service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		country := r.URL.Query().Get("country")

		var contacts []emergency_model.Contact
		if country != "" {
			contacts = svc.ContactsByCountry(country)
		} else {
			contacts = svc.AllContacts()
		}
		if len(contacts) == 0 {
			contacts = svc.FallbackContacts()
		}

		respondJSON(w, r, http.StatusOK, map[string]any{"contacts": contacts})
	}
}

func addContactHandler(svc *emergency_service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var contact emergency_model.Contact
		if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to decode request",
				goerr.T(errs.TagInvalidRequest)))
			return
		}

		if err := svc.AddContact(contact); err != nil {
			handleError(w, r, err)
			return
		}
		persist(r, svc)

		respondJSON(w, r, http.StatusCreated, contact)
	}
}

func removeContactHandler(svc *emergency_service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		country := chi.URLParam(r, "country")

		if !svc.RemoveContact(name, country) {
			handleError(w, r, goerr.New("contact not found",
				goerr.T(errs.TagNotFound),
				goerr.V("name", name), goerr.V("country", country)))
			return
		}
		persist(r, svc)

		respondJSON(w, r, http.StatusOK, map[string]string{"status": "removed"})
	}
}

func emergencyMessageHandler(svc *emergency_service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		country := r.URL.Query().Get("country")
		respondJSON(w, r, http.StatusOK, map[string]string{
			"message": svc.GenerateMessage(country),
		})
	}
}

func messageConfigHandler(svc *emergency_service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cfg emergency_model.MessageConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			handleError(w, r, goerr.Wrap(err, "failed to decode request",
				goerr.T(errs.TagInvalidRequest)))
			return
		}

		if err := svc.UpdateMessageConfig(cfg); err != nil {
			handleError(w, r, err)
			return
		}
		persist(r, svc)

		respondJSON(w, r, http.StatusOK, cfg)
	}
}

func validateResourcesHandler(svc *emergency_service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		problems := svc.Validate()
		respondJSON(w, r, http.StatusOK, map[string]any{
			"valid":    len(problems) == 0,
			"problems": problems,
		})
	}
}

// persist saves the directory best effort. The in-memory update already
// succeeded; a write failure must not fail the request.
func persist(r *http.Request, svc *emergency_service.Service) {
	if err := svc.Save(r.Context()); err != nil {
		logging.From(r.Context()).Warn("failed to persist emergency resources", "error", err)
	}
}
