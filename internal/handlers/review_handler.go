// internal/handlers/review_handler.go
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

type ReviewHandler struct {
	service service.ReviewService
}

func NewReviewHandler(s service.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: s}
}

// GetNextCard は次に出題するカードを1枚返します。
// 出題対象がない場合は 204 No Content (セッション完了)。
func (h *ReviewHandler) GetNextCard(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	card, err := h.service.GetNextCard(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if card == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, card, logger)
}

// GetReviewQueue は出題対象のカードを優先順位順で返します
func (h *ReviewHandler) GetReviewQueue(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	queue, err := h.service.GetReviewQueue(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if queue == nil {
		queue = []*model.ReviewCardResponse{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, queue, logger)
}

// GetStats は復習の統計サマリーを返します
func (h *ReviewHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	stats, err := h.service.GetStats(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, stats, logger)
}

// SubmitAnswer は自己評価を受け付けてスケジュールを更新します
func (h *ReviewHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
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

	var req model.SubmitAnswerRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode answer request body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			logger.Warn("Validation failed for answer submission", "errors", validationErrors.Error())
			webutil.HandleError(w, logger, webutil.NewValidationErrorResponse(validationErrors))
		} else {
			logger.Error("Unexpected error during validation for answer submission", "error", err)
			webutil.HandleError(w, logger, err)
		}
		return
	}

	if err := h.service.SubmitAnswer(r.Context(), userID, cardID, req.Rating); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
