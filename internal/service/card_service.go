// internal/service/card_service.go
package service

import (
	"context"
	"errors"
	"time"

	"lexikeep/internal/middleware"
	"lexikeep/internal/model"
	"lexikeep/internal/repository"
	"lexikeep/internal/srs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CardService は学習カードのCRUDを提供します
type CardService interface {
	// CreateCard は新しいカードを初期スケジューリング状態で登録します。
	// 同一ユーザー内で (単語, 意味) が重複する場合は ErrConflict。
	CreateCard(ctx context.Context, userID uuid.UUID, req *model.CreateCardRequest) (*model.LearnedWordCard, error)
	GetCard(ctx context.Context, userID, cardID uuid.UUID) (*model.LearnedWordCard, error)
	ListCards(ctx context.Context, userID uuid.UUID) ([]*model.LearnedWordCard, error)
	DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error
}

type cardService struct {
	db       *gorm.DB
	cardRepo repository.CardRepository
	statRepo repository.StatRepository
}

func NewCardService(db *gorm.DB, cardRepo repository.CardRepository, statRepo repository.StatRepository) CardService {
	return &cardService{
		db:       db,
		cardRepo: cardRepo,
		statRepo: statRepo,
	}
}

func (s *cardService) CreateCard(ctx context.Context, userID uuid.UUID, req *model.CreateCardRequest) (*model.LearnedWordCard, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID, "word", req.Word)

	var created *model.LearnedWordCard
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.cardRepo.CheckMeaningExists(ctx, tx, userID, req.Word, req.Meaning)
		if err != nil {
			logger.Error("Error checking for duplicate meaning", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "カードの登録中にエラーが発生しました。", "", err)
		}
		if exists {
			logger.Warn("Duplicate word-meaning pair")
			return model.NewAppError("CONFLICT", "同じ単語と意味の組み合わせが既に登録されています。", "meaning", model.ErrConflict)
		}

		now := time.Now()
		state := srs.NewState()
		card := &model.LearnedWordCard{
			CardID:          uuid.New(),
			UserID:          userID,
			Word:            req.Word,
			Meaning:         req.Meaning,
			PartOfSpeech:    req.PartOfSpeech,
			ExampleSentence: req.ExampleSentence,
			EaseFactor:      state.EaseFactor,
			IntervalDays:    state.IntervalDays,
			Repetitions:     state.Repetitions,
			// 登録直後から出題対象にする
			NextReviewDate: now,
		}

		if err := s.cardRepo.Create(ctx, tx, card); err != nil {
			if errors.Is(err, model.ErrConflict) {
				logger.Warn("Duplicate card detected on insert", "error", err)
				return model.NewAppError("CONFLICT", "同じ単語と意味の組み合わせが既に登録されています。", "meaning", model.ErrConflict)
			}
			logger.Error("Error creating card", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "カードの登録に失敗しました。", "", err)
		}

		if err := s.statRepo.IncrementNewWords(ctx, tx, userID, model.DayOf(now), 1); err != nil {
			logger.Error("Error incrementing new-words stat", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "学習記録の更新に失敗しました。", "", err)
		}

		created = card
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Card created", "card_id", created.CardID)
	return created, nil
}

func (s *cardService) GetCard(ctx context.Context, userID, cardID uuid.UUID) (*model.LearnedWordCard, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID, "card_id", cardID)

	card, err := s.cardRepo.FindByID(ctx, s.db, userID, cardID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Card not found")
			return nil, model.NewAppError("NOT_FOUND", "対象のカードが見つかりませんでした。", "card_id", model.ErrNotFound)
		}
		logger.Error("Error finding card", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "カードの取得に失敗しました。", "", err)
	}
	return card, nil
}

func (s *cardService) ListCards(ctx context.Context, userID uuid.UUID) ([]*model.LearnedWordCard, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID)

	cards, err := s.cardRepo.ListByUser(ctx, s.db, userID)
	if err != nil {
		logger.Error("Error listing cards", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "カード一覧の取得に失敗しました。", "", err)
	}
	return cards, nil
}

func (s *cardService) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	logger := middleware.GetLogger(ctx).With("user_id", userID, "card_id", cardID)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.cardRepo.Delete(ctx, tx, userID, cardID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				logger.Warn("Card to delete not found")
				return model.NewAppError("NOT_FOUND", "削除対象のカードが見つかりませんでした。", "card_id", model.ErrNotFound)
			}
			logger.Error("Error deleting card", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "カードの削除に失敗しました。", "", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Card deleted")
	return nil
}
