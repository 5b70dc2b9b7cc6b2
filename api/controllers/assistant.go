package controllers

import (
	"net/http"
	"strings"

	"github.com/solemate/solemate-backend/api/responses"
	"github.com/solemate/solemate-backend/api/validators"
	assistantsvc "github.com/solemate/solemate-backend/internal/assistant"
	pkgerrors "github.com/solemate/solemate-backend/pkg/errors"
	"github.com/solemate/solemate-backend/pkg/logger"
)

// AssistantChat runs one admin chat turn. The client states the mode
// explicitly; the server never guesses intent from the message text.
func AssistantChat(svc assistantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assistant service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body assistantsvc.ChatInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Chat(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type extractRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
	Hint        string `json:"hint"`
}

// AssistantExtract pulls a product draft out of a photo.
func AssistantExtract(svc assistantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assistant service unavailable"))
			return
		}

		var body extractRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		extraction, err := svc.ExtractFromImage(r.Context(), body.ImageBase64, strings.TrimSpace(body.Hint))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, extraction)
	}
}

// AssistantHistory replays a stored conversation.
func AssistantHistory(svc assistantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assistant service unavailable"))
			return
		}

		conversationID, err := pathUUID(r, "conversationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), conversationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, history)
	}
}
