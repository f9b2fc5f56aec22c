package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"sportsday/internal/application/orchestrators"
	"sportsday/internal/application/projections"
	"sportsday/internal/domain/export"
	"sportsday/internal/domain/registration"
)

// maxBodyBytes caps registration payloads.
const maxBodyBytes = 100 << 10

// Client-facing messages.
const (
	msgValidation   = "Please check your registration details and try again."
	msgDuplicate    = "This email is already registered. Each employee can only register once for the sports day event."
	msgCreateFailed = "We're experiencing technical difficulties. Please try again in a few moments."
	msgListFailed   = "Unable to retrieve registrations at this time. Please try again later."
	msgExportFailed = "Unable to export registrations at this time. Please try again later."
	msgGetFailed    = "Unable to retrieve this registration at this time. Please try again later."
	msgNotFound     = "Registration not found."
	msgTooLarge     = "Registration payload is too large."
)

// errorResponse is the JSON body of every non-2xx API response.
type errorResponse struct {
	Message string                    `json:"message"`
	Details string                    `json:"details,omitempty"`
	Errors  []registration.FieldIssue `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response_encode_failed", "error", err)
	}
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, r *http.Request, event string, err error, message string) {
	slog.Error(event, "request_id", chimw.GetReqID(r.Context()), "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Message: message})
}

// handleCreateRegistration handles POST /api/registrations.
func (s *server) handleCreateRegistration(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Message: msgTooLarge})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: msgValidation, Details: err.Error()})
		return
	}

	rec, err := orchestrators.ExecuteCreateRegistration(r.Context(), body, orchestrators.CreateRegistrationDeps{
		Store:    s.deps.Store,
		Notifier: s.deps.Notifier,
		Observer: s.observer,
	})
	if err != nil {
		s.writeCreateError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// writeCreateError maps pipeline failures onto status codes.
func (s *server) writeCreateError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *registration.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: msgValidation,
			Details: verr.Error(),
			Errors:  verr.Issues,
		})
	case errors.Is(err, registration.ErrDuplicateEmail):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: msgDuplicate})
	default:
		internalError(w, r, "registration_create_failed", err, msgCreateFailed)
	}
}

// handleListRegistrations handles GET /api/registrations.
func (s *server) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryListRegistrations(r.Context(), projections.ListRegistrationsDeps{Store: s.deps.Store})
	if err != nil {
		internalError(w, r, "registration_list_failed", err, msgListFailed)
		return
	}
	writeJSON(w, http.StatusOK, res.Registrations)
}

// handleExportRegistrations handles GET /api/registrations/export.
func (s *server) handleExportRegistrations(w http.ResponseWriter, r *http.Request) {
	doc, err := projections.QueryExportRegistrations(r.Context(), projections.ExportRegistrationsDeps{Store: s.deps.Store})
	if err != nil {
		internalError(w, r, "registration_export_failed", err, msgExportFailed)
		return
	}
	out, err := doc.Bytes()
	if err != nil {
		internalError(w, r, "registration_export_failed", err, msgExportFailed)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// handleGetRegistration handles GET /api/registrations/{id}.
func (s *server) handleGetRegistration(w http.ResponseWriter, r *http.Request) {
	rec, err := projections.QueryGetRegistration(r.Context(), chi.URLParam(r, "id"), projections.GetRegistrationDeps{Store: s.deps.Store})
	switch {
	case errors.Is(err, registration.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: msgNotFound})
	case err != nil:
		internalError(w, r, "registration_get_failed", err, msgGetFailed)
	default:
		writeJSON(w, http.StatusOK, rec)
	}
}
