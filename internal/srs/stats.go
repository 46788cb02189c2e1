package srs

import (
	"time"

	"lexikeep/internal/model"
)

// Summarize はカード集合と当日の学習アクティビティから復習統計を計算します。
// new/learning/reviewing は出題対象 (due) のカードを対象に数え、
// 必ず today_due をちょうど分割します。stat は当日の行が無ければ nil で構いません。
func Summarize(cards []*model.LearnedWordCard, stat *model.DailyLearningStat, now time.Time) model.ReviewStatsResponse {
	res := model.ReviewStatsResponse{
		TotalVocab: len(cards),
	}

	for _, c := range cards {
		if !IsDue(c, now) {
			continue
		}
		res.TodayDue++
		switch Categorize(c) {
		case model.CategoryNew:
			res.NewCards++
		case model.CategoryLearning:
			res.Learning++
		case model.CategoryReviewing:
			res.Reviewing++
		}
	}

	if stat != nil {
		res.CompletedToday = stat.ReviewedCount
	}

	return res
}
