// internal/repository/card_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"lexikeep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CardRepository interface {
	Create(ctx context.Context, tx *gorm.DB, card *model.LearnedWordCard) error
	// FindByID は所有者チェック付きの単一カード取得です。他ユーザーのカードは NotFound。
	FindByID(ctx context.Context, db *gorm.DB, userID, cardID uuid.UUID) (*model.LearnedWordCard, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.LearnedWordCard, error)
	// ListDueByUser は next_review_date <= now のカードを優先順位順に返します
	ListDueByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, now time.Time, limit int) ([]*model.LearnedWordCard, error)
	// ListByWord は同じ表層形の単語について既に学習中のカードを返します
	ListByWord(ctx context.Context, db *gorm.DB, userID uuid.UUID, word string) ([]*model.LearnedWordCard, error)
	Update(ctx context.Context, tx *gorm.DB, card *model.LearnedWordCard) error
	Delete(ctx context.Context, tx *gorm.DB, userID, cardID uuid.UUID) error
	// CheckMeaningExists は (単語, 意味) の重複登録チェックです
	CheckMeaningExists(ctx context.Context, db *gorm.DB, userID uuid.UUID, word, meaning string) (bool, error)
}

type gormCardRepository struct{}

func NewGormCardRepository() CardRepository {
	return &gormCardRepository{}
}

func (r *gormCardRepository) Create(ctx context.Context, tx *gorm.DB, card *model.LearnedWordCard) error {
	result := tx.WithContext(ctx).Create(card)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return model.ErrConflict
		}
		return result.Error
	}
	return nil
}

func (r *gormCardRepository) FindByID(ctx context.Context, db *gorm.DB, userID, cardID uuid.UUID) (*model.LearnedWordCard, error) {
	var card model.LearnedWordCard
	result := db.WithContext(ctx).
		Where("user_id = ? AND card_id = ?", userID, cardID).
		First(&card)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &card, nil
}

func (r *gormCardRepository) ListByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.LearnedWordCard, error) {
	var cards []*model.LearnedWordCard
	result := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&cards)
	if result.Error != nil {
		return nil, result.Error
	}
	return cards, nil
}

func (r *gormCardRepository) ListDueByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, now time.Time, limit int) ([]*model.LearnedWordCard, error) {
	var cards []*model.LearnedWordCard
	// 並び順はSelectorの優先順位と同じ: 未正解カード優先、次に期限の古い順
	result := db.WithContext(ctx).
		Where("user_id = ? AND next_review_date <= ?", userID, now).
		Order("repetitions ASC, next_review_date ASC, card_id ASC").
		Limit(limit).
		Find(&cards)
	if result.Error != nil {
		return nil, result.Error
	}
	return cards, nil
}

func (r *gormCardRepository) ListByWord(ctx context.Context, db *gorm.DB, userID uuid.UUID, word string) ([]*model.LearnedWordCard, error) {
	var cards []*model.LearnedWordCard
	result := db.WithContext(ctx).
		Where("user_id = ? AND word = ?", userID, word).
		Order("created_at ASC").
		Find(&cards)
	if result.Error != nil {
		return nil, result.Error
	}
	return cards, nil
}

func (r *gormCardRepository) Update(ctx context.Context, tx *gorm.DB, card *model.LearnedWordCard) error {
	// 呼び出し元が同一トランザクション内で FindByID による所有者確認を済ませている前提
	result := tx.WithContext(ctx).Save(card)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormCardRepository) Delete(ctx context.Context, tx *gorm.DB, userID, cardID uuid.UUID) error {
	result := tx.WithContext(ctx).
		Where("user_id = ? AND card_id = ?", userID, cardID).
		Delete(&model.LearnedWordCard{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormCardRepository) CheckMeaningExists(ctx context.Context, db *gorm.DB, userID uuid.UUID, word, meaning string) (bool, error) {
	var count int64
	result := db.WithContext(ctx).
		Model(&model.LearnedWordCard{}).
		Where("user_id = ? AND word = ? AND meaning = ?", userID, word, meaning).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}
