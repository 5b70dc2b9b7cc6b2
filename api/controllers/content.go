package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/solemate/solemate-backend/api/responses"
	"github.com/solemate/solemate-backend/api/validators"
	contentsvc "github.com/solemate/solemate-backend/internal/content"
	pkgerrors "github.com/solemate/solemate-backend/pkg/errors"
	"github.com/solemate/solemate-backend/pkg/logger"
)

// Homepage returns the active sections in display order.
func Homepage(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "content service unavailable"))
			return
		}

		sections, err := svc.Homepage(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sections)
	}
}

// AdminListSections returns every section, inactive ones included.
func AdminListSections(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "content service unavailable"))
			return
		}

		sections, err := svc.ListSections(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sections)
	}
}

type sectionRequest struct {
	Kind     string          `json:"kind" validate:"required"`
	Title    string          `json:"title"`
	Position int             `json:"position"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	IsActive *bool           `json:"is_active,omitempty"`
}

func (s sectionRequest) toInput() contentsvc.SectionInput {
	return contentsvc.SectionInput{
		Kind:     strings.TrimSpace(s.Kind),
		Title:    strings.TrimSpace(s.Title),
		Position: s.Position,
		Payload:  s.Payload,
		IsActive: s.IsActive,
	}
}

// AdminCreateSection adds a homepage section.
func AdminCreateSection(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "content service unavailable"))
			return
		}

		var body sectionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateSection(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// AdminUpdateSection replaces a section's fields.
func AdminUpdateSection(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "content service unavailable"))
			return
		}

		sectionID, err := pathUUID(r, "sectionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body sectionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateSection(r.Context(), sectionID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// AdminDeleteSection removes a homepage section.
func AdminDeleteSection(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "content service unavailable"))
			return
		}

		sectionID, err := pathUUID(r, "sectionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteSection(r.Context(), sectionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
