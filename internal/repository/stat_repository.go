// internal/repository/stat_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"lexikeep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatRepository interface {
	// IncrementReview は (user, day) の行を upsert し、reviewed_count を +1、
	// 正解なら correct_count も +1 します。読み取り・加算・書き込みを
	// アプリ側で分けると同時送信で更新が失われるため、必ず
	// INSERT ... ON CONFLICT DO UPDATE の単一文で加算します。
	IncrementReview(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time, correct bool) error
	// IncrementNewWords は新規登録単語数を同じ方式で加算します
	IncrementNewWords(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time, delta int) error
	FindByDay(ctx context.Context, db *gorm.DB, userID uuid.UUID, day time.Time) (*model.DailyLearningStat, error)
}

type gormStatRepository struct{}

func NewGormStatRepository() StatRepository {
	return &gormStatRepository{}
}

// (user_id, day) の複合ユニークインデックスを衝突キーにする
var statConflictColumns = []clause.Column{{Name: "user_id"}, {Name: "day"}}

func (r *gormStatRepository) IncrementReview(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time, correct bool) error {
	correctDelta := 0
	if correct {
		correctDelta = 1
	}

	stat := model.DailyLearningStat{
		StatID:        uuid.New(),
		UserID:        userID,
		Day:           day,
		ReviewedCount: 1,
		CorrectCount:  correctDelta,
	}

	result := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: statConflictColumns,
		DoUpdates: clause.Assignments(map[string]interface{}{
			"reviewed_count": gorm.Expr("daily_learning_stats.reviewed_count + ?", 1),
			"correct_count":  gorm.Expr("daily_learning_stats.correct_count + ?", correctDelta),
			"updated_at":     time.Now(),
		}),
	}).Create(&stat)

	return result.Error
}

func (r *gormStatRepository) IncrementNewWords(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time, delta int) error {
	stat := model.DailyLearningStat{
		StatID:        uuid.New(),
		UserID:        userID,
		Day:           day,
		NewWordsCount: delta,
	}

	result := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: statConflictColumns,
		DoUpdates: clause.Assignments(map[string]interface{}{
			"new_words_count": gorm.Expr("daily_learning_stats.new_words_count + ?", delta),
			"updated_at":      time.Now(),
		}),
	}).Create(&stat)

	return result.Error
}

func (r *gormStatRepository) FindByDay(ctx context.Context, db *gorm.DB, userID uuid.UUID, day time.Time) (*model.DailyLearningStat, error) {
	var stat model.DailyLearningStat
	result := db.WithContext(ctx).
		Where("user_id = ? AND day = ?", userID, day).
		First(&stat)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &stat, nil
}
