// internal/model/stats.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// DailyLearningStat は (ユーザー, 日付) ごとの学習アクティビティです。
// reviewed_count / correct_count は復習エンジンが、new_words_count は
// 単語登録が、それぞれアトミックな upsert でインクリメントします。
// articles_read_count は記事サブシステム用の予約カラムで、ここでは触りません。
type DailyLearningStat struct {
	StatID uuid.UUID `gorm:"type:uuid;primaryKey" json:"stat_id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_user_day,unique" json:"-"`
	// その日の0時 (サーバーのウォールクロック基準)
	Day time.Time `gorm:"type:date;not null;index:idx_user_day,unique" json:"day"`

	ReviewedCount     int `gorm:"not null;default:0" json:"reviewed_count"`
	CorrectCount      int `gorm:"not null;default:0" json:"correct_count"`
	NewWordsCount     int `gorm:"not null;default:0" json:"new_words_count"`
	ArticlesReadCount int `gorm:"not null;default:0" json:"articles_read_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DailyLearningStat) TableName() string {
	return "daily_learning_stats"
}

// DayOf は t が属する日の0時を返します。日付キーはサーバーの
// ローカルタイムゾーンで切るのが既存仕様です (ユーザーのTZではない)。
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
