// internal/srs/selector.go
package srs

import (
	"bytes"
	"sort"
	"time"

	"lexikeep/internal/model"
)

// 21日以上の間隔になったカードは「復習期」とみなします
const reviewingThresholdDays = 21

// IsDue は next_review_date <= now のカードを出題対象と判定します
func IsDue(card *model.LearnedWordCard, now time.Time) bool {
	return !card.NextReviewDate.After(now)
}

// Categorize は表示用のカード分類を返します。
// new / learning / reviewing は排他で、すべてのカードがちょうど1つに入ります。
func Categorize(card *model.LearnedWordCard) model.CardCategory {
	switch {
	case card.Repetitions == 0:
		return model.CategoryNew
	case card.IntervalDays < reviewingThresholdDays:
		return model.CategoryLearning
	default:
		return model.CategoryReviewing
	}
}

// DueCards は出題対象のカードを優先順位順に並べて返します。
// 第1キー: repetitions 昇順 (一度も正解していないカードが最優先)、
// 第2キー: next_review_date 昇順 (期限を過ぎて久しいものが先)。
// 同値の場合は card_id で固定順にし、入力順に依存しないようにします。
func DueCards(cards []*model.LearnedWordCard, now time.Time) []*model.LearnedWordCard {
	due := make([]*model.LearnedWordCard, 0, len(cards))
	for _, c := range cards {
		if IsDue(c, now) {
			due = append(due, c)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].Repetitions != due[j].Repetitions {
			return due[i].Repetitions < due[j].Repetitions
		}
		if !due[i].NextReviewDate.Equal(due[j].NextReviewDate) {
			return due[i].NextReviewDate.Before(due[j].NextReviewDate)
		}
		return bytes.Compare(due[i].CardID[:], due[j].CardID[:]) < 0
	})

	return due
}

// PickNext は次に出題すべきカード1枚を返します。
// 出題対象がない場合は nil を返します (エラーではなく、セッション完了の合図)。
func PickNext(cards []*model.LearnedWordCard, now time.Time) *model.LearnedWordCard {
	due := DueCards(cards, now)
	if len(due) == 0 {
		return nil
	}
	return due[0]
}
