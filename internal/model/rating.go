package model

// Rating は復習時のユーザーの自己評価です。閉じた列挙で、
// これ以外の値はリクエストバリデーションで弾かれます。
type Rating string

const (
	RatingAgain Rating = "again" // 思い出せなかった
	RatingHard  Rating = "hard"  // かろうじて思い出せた
	RatingGood  Rating = "good"  // 思い出せた
	RatingEasy  Rating = "easy"  // 簡単だった
)

// IsValid は閉じた列挙に含まれる値かどうかを返します
func (r Rating) IsValid() bool {
	switch r {
	case RatingAgain, RatingHard, RatingGood, RatingEasy:
		return true
	}
	return false
}

// IsCorrect は「思い出せた」扱いの評価かどうかを返します (again 以外)
func (r Rating) IsCorrect() bool {
	return r != RatingAgain
}
