// internal/service/review_service.go
package service

import (
	"context"
	"errors"
	"time"

	"lexikeep/internal/config"
	"lexikeep/internal/middleware"
	"lexikeep/internal/model"
	"lexikeep/internal/repository"
	"lexikeep/internal/srs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewService は復習セッションのサーバー側の全操作を提供します。
// カードの選択ポリシーと状態遷移そのものは internal/srs の純粋関数に
// 委ね、ここでは読み書きとトランザクション境界だけを受け持ちます。
type ReviewService interface {
	// GetNextCard は次に出題すべきカードを返します。出題対象がなければ
	// (nil, nil) を返します (セッション完了であってエラーではない)。
	GetNextCard(ctx context.Context, userID uuid.UUID) (*model.ReviewCardResponse, error)
	// GetReviewQueue は出題対象のカードを優先順位順に返します。
	// クライアントはこのリストを使って、状態を一切変更せずにスキップできます。
	GetReviewQueue(ctx context.Context, userID uuid.UUID) ([]*model.ReviewCardResponse, error)
	GetStats(ctx context.Context, userID uuid.UUID) (*model.ReviewStatsResponse, error)
	// SubmitAnswer は評価を受けてスケジューリング状態を更新し、
	// 当日の学習アクティビティを記録します。
	SubmitAnswer(ctx context.Context, userID, cardID uuid.UUID, rating model.Rating) error
}

type reviewService struct {
	db       *gorm.DB
	cardRepo repository.CardRepository
	statRepo repository.StatRepository
	cfg      *config.Config
}

func NewReviewService(db *gorm.DB, cardRepo repository.CardRepository, statRepo repository.StatRepository, cfg *config.Config) ReviewService {
	return &reviewService{
		db:       db,
		cardRepo: cardRepo,
		statRepo: statRepo,
		cfg:      cfg,
	}
}

func (s *reviewService) GetNextCard(ctx context.Context, userID uuid.UUID) (*model.ReviewCardResponse, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID)

	cards, err := s.cardRepo.ListByUser(ctx, s.db, userID)
	if err != nil {
		logger.Error("Failed to list cards for next-card selection", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "復習カードの取得に失敗しました。", "", err)
	}

	picked := srs.PickNext(cards, time.Now())
	if picked == nil {
		logger.Info("No due card for user")
		return nil, nil
	}

	// 同じ単語の既習の意味を調べ、初出かどうかの表示区分を決める。
	// これは表示のためだけの情報で、出題順位には影響しない。
	siblings, err := s.cardRepo.ListByWord(ctx, s.db, userID, picked.Word)
	if err != nil {
		logger.Error("Failed to list sibling meanings", "error", err, "word", picked.Word)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "復習カードの取得に失敗しました。", "", err)
	}

	resp := buildReviewCardResponse(picked)
	for _, sibling := range siblings {
		if sibling.CardID == picked.CardID {
			continue
		}
		resp.OtherMeanings = append(resp.OtherMeanings, sibling.Meaning)
	}
	if len(resp.OtherMeanings) > 0 {
		resp.Presentation = model.PresentationExtend
	}

	logger.Info("Next review card selected", "card_id", picked.CardID, "category", resp.Category)
	return resp, nil
}

func (s *reviewService) GetReviewQueue(ctx context.Context, userID uuid.UUID) ([]*model.ReviewCardResponse, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID)

	cards, err := s.cardRepo.ListDueByUser(ctx, s.db, userID, time.Now(), s.cfg.App.ReviewLimit)
	if err != nil {
		logger.Error("Failed to list due cards", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "復習キューの取得に失敗しました。", "", err)
	}

	responses := make([]*model.ReviewCardResponse, 0, len(cards))
	for _, c := range cards {
		responses = append(responses, buildReviewCardResponse(c))
	}

	logger.Info("Review queue retrieved", "count", len(responses))
	return responses, nil
}

func (s *reviewService) GetStats(ctx context.Context, userID uuid.UUID) (*model.ReviewStatsResponse, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID)
	now := time.Now()

	cards, err := s.cardRepo.ListByUser(ctx, s.db, userID)
	if err != nil {
		logger.Error("Failed to list cards for stats", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "統計情報の取得に失敗しました。", "", err)
	}

	stat, err := s.statRepo.FindByDay(ctx, s.db, userID, model.DayOf(now))
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error("Failed to read daily stat", "error", err)
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "統計情報の取得に失敗しました。", "", err)
		}
		// 今日まだ1件も復習していなければ行は存在しない
		stat = nil
	}

	summary := srs.Summarize(cards, stat, now)
	return &summary, nil
}

func (s *reviewService) SubmitAnswer(ctx context.Context, userID, cardID uuid.UUID, rating model.Rating) error {
	logger := middleware.GetLogger(ctx).With("user_id", userID, "card_id", cardID)

	if !rating.IsValid() {
		logger.Warn("Invalid rating submitted", "rating", rating)
		return model.NewAppError("VALIDATION_ERROR", "評価の値が正しくありません。", "rating", model.ErrInvalidInput)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := s.cardRepo.FindByID(ctx, tx, userID, cardID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				logger.Warn("Card not found or not owned by user")
				return model.NewAppError("NOT_FOUND", "対象のカードが見つかりませんでした。", "card_id", model.ErrNotFound)
			}
			logger.Error("Error finding card in transaction", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "カードの確認中にエラーが発生しました。", "", err)
		}

		now := time.Now()
		next := srs.Apply(srs.StateOf(card), rating)

		card.EaseFactor = next.EaseFactor
		card.IntervalDays = next.IntervalDays
		card.Repetitions = next.Repetitions
		card.NextReviewDate = srs.NextReviewDate(next.IntervalDays, now)
		card.LastReviewedAt = &now
		card.TotalReviews++

		if err := s.cardRepo.Update(ctx, tx, card); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				logger.Warn("Failed to update card, record not found", "error", err)
				return model.NewAppError("NOT_FOUND", "更新対象のカードが見つかりませんでした。", "card_id", model.ErrNotFound)
			}
			logger.Error("Error updating card", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "カードの更新に失敗しました。", "", err)
		}

		// 回答ごとの加算が唯一の記録経路。セッション終了時のまとめ書きはしない
		// (途中離脱したセッションでも記録が欠けないようにするため)。
		if err := s.statRepo.IncrementReview(ctx, tx, userID, model.DayOf(now), rating.IsCorrect()); err != nil {
			logger.Error("Error incrementing daily stat", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "学習記録の更新に失敗しました。", "", err)
		}

		logger.Info("Answer recorded",
			"rating", rating,
			"interval_days", card.IntervalDays,
			"repetitions", card.Repetitions,
			"next_review_date", card.NextReviewDate,
		)
		return nil
	})
}

// buildReviewCardResponse はカード行から出題レスポンスを組み立てます
func buildReviewCardResponse(card *model.LearnedWordCard) *model.ReviewCardResponse {
	return &model.ReviewCardResponse{
		CardID:          card.CardID,
		Word:            card.Word,
		Meaning:         card.Meaning,
		PartOfSpeech:    card.PartOfSpeech,
		ExampleSentence: card.ExampleSentence,
		Repetitions:     card.Repetitions,
		IntervalDays:    card.IntervalDays,
		Category:        srs.Categorize(card),
		Presentation:    model.PresentationNew,
	}
}
