// internal/handlers/card_handler.go
package handlers

import (
	"errors"
	"net/http"

	"lexikeep/internal/middleware"
	"lexikeep/internal/model"
	"lexikeep/internal/service"
	"lexikeep/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type CardHandler struct {
	service service.CardService
}

func NewCardHandler(s service.CardService) *CardHandler {
	return &CardHandler{service: s}
}

// CreateCard は新しい単語カードを登録します
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.CreateCardRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode create-card request body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			logger.Warn("Validation failed for card creation", "errors", validationErrors.Error())
			webutil.HandleError(w, logger, webutil.NewValidationErrorResponse(validationErrors))
		} else {
			logger.Error("Unexpected error during validation for card creation", "error", err)
			webutil.HandleError(w, logger, err)
		}
		return
	}

	card, err := h.service.CreateCard(r.Context(), userID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusCreated, card, logger)
}

// ListCards は自分のカード一覧を返します
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	cards, err := h.service.ListCards(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if cards == nil {
		cards = []*model.LearnedWordCard{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, cards, logger)
}

// GetCard はカード1件を返します
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	cardID, err := uuid.Parse(chi.URLParam(r, "card_id"))
	if err != nil {
		logger.Warn("Invalid card ID format", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST", "カードIDの形式が正しくありません。", "card_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	card, err := h.service.GetCard(r.Context(), userID, cardID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, card, logger)
}

// DeleteCard はカードを削除します
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	cardID, err := uuid.Parse(chi.URLParam(r, "card_id"))
	if err != nil {
		logger.Warn("Invalid card ID format", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST", "カードIDの形式が正しくありません。", "card_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := h.service.DeleteCard(r.Context(), userID, cardID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
