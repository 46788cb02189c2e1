// internal/srs/sm2.go
package srs

import (
	"math"
	"time"

	"lexikeep/internal/model"
)

// SM-2系アルゴリズムの定数。既存の数値挙動を変えないこと。
const (
	InitialEaseFactor = 2.5
	MinEaseFactor     = 1.3

	againEasePenalty = 0.2
	hardEasePenalty  = 0.15
	easyEaseBonus    = 0.15 // 上限クランプなし

	hardIntervalFactor = 1.2
	easyIntervalFactor = 1.3

	firstIntervalDays  = 1
	secondIntervalDays = 6
)

// State はカードのスケジューリング状態です。Apply はこの3つ組だけを
// 入出力とする純粋関数で、I/Oもロギングも行いません。
type State struct {
	EaseFactor   float64
	IntervalDays int
	Repetitions  int
}

// NewState は新しく学習を始めたカードの初期状態を返します
func NewState() State {
	return State{
		EaseFactor:   InitialEaseFactor,
		IntervalDays: firstIntervalDays,
		Repetitions:  0,
	}
}

// normalize はドメイン外の永続値 (データ破損など) を保険としてクランプします。
// 本来この関数に不正値が渡ることはありません (不変条件は Apply 自身が維持する)。
func normalize(s State) State {
	if s.EaseFactor < MinEaseFactor {
		s.EaseFactor = MinEaseFactor
	}
	if s.IntervalDays < 1 {
		s.IntervalDays = 1
	}
	if s.Repetitions < 0 {
		s.Repetitions = 0
	}
	return s
}

// Apply は現在の状態と評価から次の状態を計算します。
//
// again: ease を 0.2 下げ (下限 1.3)、間隔は1日に戻し、連続正解数をリセット。
// hard/good/easy: ease を評価に応じて調整し、連続正解数を +1。
// 基準間隔は 1回目=1日、2回目=6日、以降 round(間隔 * 新ease)。
// hard は基準の1.2倍 (最低1日)、easy は1.3倍で、それぞれ独立に四捨五入します
// (2段階の丸めは既存挙動の一部で、まとめて丸めてはいけない)。
func Apply(s State, rating model.Rating) State {
	s = normalize(s)

	if rating == model.RatingAgain {
		return State{
			EaseFactor:   math.Max(MinEaseFactor, s.EaseFactor-againEasePenalty),
			IntervalDays: 1,
			Repetitions:  0,
		}
	}

	ease := s.EaseFactor
	switch rating {
	case model.RatingHard:
		ease = math.Max(MinEaseFactor, ease-hardEasePenalty)
	case model.RatingEasy:
		ease += easyEaseBonus
	}

	reps := s.Repetitions + 1

	var interval int
	switch reps {
	case 1:
		interval = firstIntervalDays
	case 2:
		interval = secondIntervalDays
	default:
		interval = roundNearest(float64(s.IntervalDays) * ease)
	}

	switch rating {
	case model.RatingHard:
		interval = roundNearest(float64(interval) * hardIntervalFactor)
		if interval < 1 {
			interval = 1
		}
	case model.RatingEasy:
		interval = roundNearest(float64(interval) * easyIntervalFactor)
	}

	return State{
		EaseFactor:   ease,
		IntervalDays: interval,
		Repetitions:  reps,
	}
}

// roundNearest は最近接の整数に丸めます。ちょうど .5 のときは切り捨てます
// (例: 10日 * ease 2.35 = 23.5 は 23日)。math.Round はタイを遠い側に丸めるため
// ここでは使えません。既存の数値挙動を変えないこと。
func roundNearest(x float64) int {
	return int(math.Ceil(x - 0.5))
}

// NextReviewDate は now から間隔日数後の次回復習日時を返します。
// 単純な 24h*N のオフセットではなくカレンダー演算で加算します
// (月末・年末・DSTをまたいでも壁時計上の「N日後」になる)。
func NextReviewDate(intervalDays int, now time.Time) time.Time {
	return now.AddDate(0, 0, intervalDays)
}

// StateOf はカード行からスケジューリング状態を取り出します
func StateOf(card *model.LearnedWordCard) State {
	return State{
		EaseFactor:   card.EaseFactor,
		IntervalDays: card.IntervalDays,
		Repetitions:  card.Repetitions,
	}
}
