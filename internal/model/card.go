// internal/model/card.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LearnedWordCard は「ユーザーが学習することにした単語の意味」1件分の行です。
// 表示用コンテンツ (word, meaning など) は語彙発見側のサブシステムが書き込み、
// スケジューリング状態 (ease_factor 以降) は復習エンジンだけが更新します。
type LearnedWordCard struct {
	CardID uuid.UUID `gorm:"type:uuid;primaryKey" json:"card_id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`

	// コンテンツ (エンジンからは読み取り専用)
	Word            string `gorm:"not null;index" json:"word"`
	Meaning         string `gorm:"not null" json:"meaning"`
	PartOfSpeech    string `json:"part_of_speech,omitempty"`
	ExampleSentence string `json:"example_sentence,omitempty"`

	// スケジューリング状態 (Scheduler のみが更新する)
	EaseFactor     float64    `gorm:"not null;default:2.5" json:"ease_factor"`
	IntervalDays   int        `gorm:"not null;default:1" json:"interval_days"`
	Repetitions    int        `gorm:"not null;default:0" json:"repetitions"`
	TotalReviews   int        `gorm:"not null;default:0" json:"total_reviews"`
	NextReviewDate time.Time  `gorm:"not null;index" json:"next_review_date"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (LearnedWordCard) TableName() string {
	return "learned_word_cards"
}

// CardCategory は表示用のカード分類です (出題の優先順位には影響しない)
type CardCategory string

const (
	CategoryNew       CardCategory = "new"       // 一度も正解していない
	CategoryLearning  CardCategory = "learning"  // 正解済みだが間隔が21日未満
	CategoryReviewing CardCategory = "reviewing" // 間隔が21日以上
)

// PresentationType は同じ単語の別の意味を既に学習済みかどうかの表示区分です
type PresentationType string

const (
	PresentationNew    PresentationType = "new"    // この単語の最初の意味
	PresentationExtend PresentationType = "extend" // 既習の単語への意味追加
)

// カード作成リクエストDTO
type CreateCardRequest struct {
	Word            string `json:"word" validate:"required,min=1,max=100"`
	Meaning         string `json:"meaning" validate:"required,min=1"`
	PartOfSpeech    string `json:"part_of_speech" validate:"omitempty,max=50"`
	ExampleSentence string `json:"example_sentence" validate:"omitempty,max=500"`
}

// 復習結果送信リクエストDTO
type SubmitAnswerRequest struct {
	Rating Rating `json:"rating" validate:"required,oneof=again hard good easy"`
}

// ReviewCardResponse は「次に出題するカード」のレスポンスDTO
type ReviewCardResponse struct {
	CardID          uuid.UUID        `json:"card_id"`
	Word            string           `json:"word"`
	Meaning         string           `json:"meaning"`
	PartOfSpeech    string           `json:"part_of_speech,omitempty"`
	ExampleSentence string           `json:"example_sentence,omitempty"`
	Repetitions     int              `json:"repetitions"`
	IntervalDays    int              `json:"interval_days"`
	Category        CardCategory     `json:"category"`
	Presentation    PresentationType `json:"presentation"`
	// 同じ単語で既に学習済みの他の意味 (presentation が extend のときのみ)
	OtherMeanings []string `json:"other_meanings,omitempty"`
}

// ReviewStatsResponse は復習統計のレスポンスDTO
type ReviewStatsResponse struct {
	TodayDue       int `json:"today_due"`
	NewCards       int `json:"new_cards"`
	Learning       int `json:"learning"`
	Reviewing      int `json:"reviewing"`
	TotalVocab     int `json:"total_vocab"`
	CompletedToday int `json:"completed_today"`
}
