// internal/service/review_service_test.go
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"lexikeep/internal/config"
	"lexikeep/internal/model"
	"lexikeep/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// --- テストヘルパー関数 (インメモリDBセットアップ) ---
func setupTestDBReview() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // テスト中はログを抑制
	})
	if err != nil {
		panic("failed to connect database for review service testing: " + err.Error())
	}
	// トランザクション境界の動作確認のためにマイグレーションしておく
	err = db.AutoMigrate(&model.LearnedWordCard{}, &model.DailyLearningStat{})
	if err != nil {
		panic("failed to migrate database for review service testing: " + err.Error())
	}
	return db
}

func testReviewCard(userID uuid.UUID, word, meaning string, ease float64, interval, reps int, nextReview time.Time) *model.LearnedWordCard {
	return &model.LearnedWordCard{
		CardID:         uuid.New(),
		UserID:         userID,
		Word:           word,
		Meaning:        meaning,
		EaseFactor:     ease,
		IntervalDays:   interval,
		Repetitions:    reps,
		NextReviewDate: nextReview,
	}
}

// appErrorCode はAppErrorのエラーコードを取り出します (AppErrorでなければ空文字)
func appErrorCode(err error) string {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		return appErr.Detail.Code
	}
	return ""
}

// --- Test SubmitAnswer ---
func Test_reviewService_SubmitAnswer(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBReview()
	mockCardRepo := new(mocks.CardRepository)
	mockStatRepo := new(mocks.StatRepository)
	testConfig := &config.Config{}
	reviewService := NewReviewService(db, mockCardRepo, mockStatRepo, testConfig)

	userID := uuid.New()
	cardID := uuid.New()
	now := time.Now()

	tests := []struct {
		name      string
		rating    model.Rating
		setupMock func(cardRepo *mocks.CardRepository, statRepo *mocks.StatRepository)
		wantErr   error  // ラップされたセンチネルエラー (nilなら成功期待)
		wantCode  string // 期待するAppErrorコード
	}{
		{
			name:   "正常系: good評価で反復回数と間隔が進む",
			rating: model.RatingGood,
			setupMock: func(cardRepo *mocks.CardRepository, statRepo *mocks.StatRepository) {
				card := testReviewCard(userID, "ephemeral", "つかの間の", 2.5, 1, 1, now.Add(-time.Hour))
				card.CardID = cardID
				cardRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), userID, cardID).
					Return(card, nil).Once()
				cardRepo.On("Update", ctx, mock.AnythingOfType("*gorm.DB"), mock.MatchedBy(func(c *model.LearnedWordCard) bool {
					assert.Equal(t, cardID, c.CardID)
					assert.InDelta(t, 2.5, c.EaseFactor, 1e-9) // goodはease据え置き
					assert.Equal(t, 6, c.IntervalDays)         // 2回目の正解は6日固定
					assert.Equal(t, 2, c.Repetitions)
					assert.Equal(t, 1, c.TotalReviews)
					require.NotNil(t, c.LastReviewedAt)
					assert.WithinDuration(t, now, *c.LastReviewedAt, time.Second*5)
					assert.WithinDuration(t, now.AddDate(0, 0, 6), c.NextReviewDate, time.Second*5)
					return true
				})).Return(nil).Once()
				statRepo.On("IncrementReview", ctx, mock.AnythingOfType("*gorm.DB"), userID, model.DayOf(now), true).
					Return(nil).Once()
			},
			wantErr: nil,
		},
		{
			name:   "正常系: again評価で反復回数がリセットされる",
			rating: model.RatingAgain,
			setupMock: func(cardRepo *mocks.CardRepository, statRepo *mocks.StatRepository) {
				card := testReviewCard(userID, "ephemeral", "つかの間の", 2.5, 10, 3, now.Add(-time.Hour))
				card.CardID = cardID
				card.TotalReviews = 3
				cardRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), userID, cardID).
					Return(card, nil).Once()
				cardRepo.On("Update", ctx, mock.AnythingOfType("*gorm.DB"), mock.MatchedBy(func(c *model.LearnedWordCard) bool {
					assert.InDelta(t, 2.3, c.EaseFactor, 1e-9)
					assert.Equal(t, 1, c.IntervalDays)
					assert.Equal(t, 0, c.Repetitions)
					assert.Equal(t, 4, c.TotalReviews) // 通算回数は失敗でも増える
					assert.WithinDuration(t, now.AddDate(0, 0, 1), c.NextReviewDate, time.Second*5)
					return true
				})).Return(nil).Once()
				// againは不正解扱い
				statRepo.On("IncrementReview", ctx, mock.AnythingOfType("*gorm.DB"), userID, model.DayOf(now), false).
					Return(nil).Once()
			},
			wantErr: nil,
		},
		{
			name:      "異常系: 不正な評価値",
			rating:    model.Rating("perfect"),
			setupMock: nil, // リポジトリは呼ばれない
			wantErr:   model.ErrInvalidInput,
			wantCode:  "VALIDATION_ERROR",
		},
		{
			name:   "異常系: カードが見つからない",
			rating: model.RatingGood,
			setupMock: func(cardRepo *mocks.CardRepository, statRepo *mocks.StatRepository) {
				cardRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), userID, cardID).
					Return(nil, model.ErrNotFound).Once()
			},
			wantErr:  model.ErrNotFound,
			wantCode: "NOT_FOUND",
		},
		{
			name:   "異常系: カード更新でDBエラー",
			rating: model.RatingHard,
			setupMock: func(cardRepo *mocks.CardRepository, statRepo *mocks.StatRepository) {
				card := testReviewCard(userID, "ephemeral", "つかの間の", 2.5, 6, 2, now.Add(-time.Hour))
				card.CardID = cardID
				cardRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), userID, cardID).
					Return(card, nil).Once()
				cardRepo.On("Update", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.LearnedWordCard")).
					Return(errors.New("db error on update card")).Once()
			},
			wantCode: "INTERNAL_SERVER_ERROR",
		},
		{
			name:   "異常系: 学習記録の更新でDBエラー",
			rating: model.RatingGood,
			setupMock: func(cardRepo *mocks.CardRepository, statRepo *mocks.StatRepository) {
				card := testReviewCard(userID, "ephemeral", "つかの間の", 2.5, 1, 0, now.Add(-time.Hour))
				card.CardID = cardID
				cardRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), userID, cardID).
					Return(card, nil).Once()
				cardRepo.On("Update", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.LearnedWordCard")).
					Return(nil).Once()
				statRepo.On("IncrementReview", ctx, mock.AnythingOfType("*gorm.DB"), userID, model.DayOf(now), true).
					Return(errors.New("db error on stat upsert")).Once()
			},
			wantCode: "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCardRepo.Mock = mock.Mock{} // モックをリセット
			mockStatRepo.Mock = mock.Mock{}
			if tt.setupMock != nil {
				tt.setupMock(mockCardRepo, mockStatRepo)
			}

			err := reviewService.SubmitAnswer(ctx, userID, cardID, tt.rating)

			if tt.wantErr == nil && tt.wantCode == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				if tt.wantCode != "" {
					assert.Equal(t, tt.wantCode, appErrorCode(err))
				}
			}

			mockCardRepo.AssertExpectations(t)
			mockStatRepo.AssertExpectations(t)
		})
	}
}

// --- Test GetNextCard ---
func Test_reviewService_GetNextCard(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBReview()
	mockCardRepo := new(mocks.CardRepository)
	mockStatRepo := new(mocks.StatRepository)
	testConfig := &config.Config{}
	reviewService := NewReviewService(db, mockCardRepo, mockStatRepo, testConfig)

	userID := uuid.New()
	now := time.Now()

	t.Run("正常系: 未正解カードが期限切れの復習カードより優先される", func(t *testing.T) {
		mockCardRepo.Mock = mock.Mock{}
		mockStatRepo.Mock = mock.Mock{}

		newCard := testReviewCard(userID, "serendipity", "偶然の幸運", 2.5, 1, 0, now.Add(-time.Minute))
		overdueCard := testReviewCard(userID, "resilient", "回復力のある", 2.5, 6, 2, now.Add(-48*time.Hour))
		futureCard := testReviewCard(userID, "tenacious", "粘り強い", 2.5, 30, 5, now.Add(24*time.Hour))

		mockCardRepo.On("ListByUser", ctx, mock.AnythingOfType("*gorm.DB"), userID).
			Return([]*model.LearnedWordCard{overdueCard, newCard, futureCard}, nil).Once()
		mockCardRepo.On("ListByWord", ctx, mock.AnythingOfType("*gorm.DB"), userID, "serendipity").
			Return([]*model.LearnedWordCard{newCard}, nil).Once()

		resp, err := reviewService.GetNextCard(ctx, userID)

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, newCard.CardID, resp.CardID)
		assert.Equal(t, model.CategoryNew, resp.Category)
		assert.Equal(t, model.PresentationNew, resp.Presentation)
		assert.Empty(t, resp.OtherMeanings)
		mockCardRepo.AssertExpectations(t)
	})

	t.Run("正常系: 既習単語への意味追加はextendとして提示される", func(t *testing.T) {
		mockCardRepo.Mock = mock.Mock{}
		mockStatRepo.Mock = mock.Mock{}

		dueCard := testReviewCard(userID, "run", "経営する", 2.5, 1, 0, now.Add(-time.Minute))
		knownMeaning := testReviewCard(userID, "run", "走る", 2.5, 30, 5, now.Add(72*time.Hour))

		mockCardRepo.On("ListByUser", ctx, mock.AnythingOfType("*gorm.DB"), userID).
			Return([]*model.LearnedWordCard{dueCard, knownMeaning}, nil).Once()
		mockCardRepo.On("ListByWord", ctx, mock.AnythingOfType("*gorm.DB"), userID, "run").
			Return([]*model.LearnedWordCard{knownMeaning, dueCard}, nil).Once()

		resp, err := reviewService.GetNextCard(ctx, userID)

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, dueCard.CardID, resp.CardID)
		assert.Equal(t, model.PresentationExtend, resp.Presentation)
		assert.Equal(t, []string{"走る"}, resp.OtherMeanings)
		mockCardRepo.AssertExpectations(t)
	})

	t.Run("正常系: 出題対象がなければnilを返す (エラーではない)", func(t *testing.T) {
		mockCardRepo.Mock = mock.Mock{}
		mockStatRepo.Mock = mock.Mock{}

		futureCard := testReviewCard(userID, "tenacious", "粘り強い", 2.5, 30, 5, now.Add(24*time.Hour))
		mockCardRepo.On("ListByUser", ctx, mock.AnythingOfType("*gorm.DB"), userID).
			Return([]*model.LearnedWordCard{futureCard}, nil).Once()

		resp, err := reviewService.GetNextCard(ctx, userID)

		require.NoError(t, err)
		assert.Nil(t, resp)
		mockCardRepo.AssertExpectations(t)
	})

	t.Run("異常系: リポジトリでDBエラー", func(t *testing.T) {
		mockCardRepo.Mock = mock.Mock{}
		mockStatRepo.Mock = mock.Mock{}

		mockCardRepo.On("ListByUser", ctx, mock.AnythingOfType("*gorm.DB"), userID).
			Return(nil, errors.New("db error listing cards")).Once()

		resp, err := reviewService.GetNextCard(ctx, userID)

		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Equal(t, "INTERNAL_SERVER_ERROR", appErrorCode(err))
		mockCardRepo.AssertExpectations(t)
	})
}

// --- Test GetReviewQueue ---
func Test_reviewService_GetReviewQueue(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBReview()
	mockCardRepo := new(mocks.CardRepository)
	mockStatRepo := new(mocks.StatRepository)
	testConfig := &config.Config{
		App: config.AppConfig{ReviewLimit: 10},
	}
	reviewService := NewReviewService(db, mockCardRepo, mockStatRepo, testConfig)

	userID := uuid.New()
	now := time.Now()

	t.Run("正常系: リポジトリの優先順位順をそのまま返す", func(t *testing.T) {
		mockCardRepo.Mock = mock.Mock{}

		first := testReviewCard(userID, "serendipity", "偶然の幸運", 2.5, 1, 0, now.Add(-time.Minute))
		second := testReviewCard(userID, "resilient", "回復力のある", 2.5, 6, 2, now.Add(-48*time.Hour))

		mockCardRepo.On("ListDueByUser", ctx, mock.AnythingOfType("*gorm.DB"), userID, mock.AnythingOfType("time.Time"), testConfig.App.ReviewLimit).
			Return([]*model.LearnedWordCard{first, second}, nil).Once()

		queue, err := reviewService.GetReviewQueue(ctx, userID)

		require.NoError(t, err)
		require.Len(t, queue, 2)
		assert.Equal(t, first.CardID, queue[0].CardID)
		assert.Equal(t, second.CardID, queue[1].CardID)
		mockCardRepo.AssertExpectations(t)
	})

	t.Run("正常系: 出題対象が0件", func(t *testing.T) {
		mockCardRepo.Mock = mock.Mock{}

		mockCardRepo.On("ListDueByUser", ctx, mock.AnythingOfType("*gorm.DB"), userID, mock.AnythingOfType("time.Time"), testConfig.App.ReviewLimit).
			Return([]*model.LearnedWordCard{}, nil).Once()

		queue, err := reviewService.GetReviewQueue(ctx, userID)

		require.NoError(t, err)
		assert.Empty(t, queue)
		mockCardRepo.AssertExpectations(t)
	})
}

// --- Test GetStats ---
func Test_reviewService_GetStats(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBReview()
	mockCardRepo := new(mocks.CardRepository)
	mockStatRepo := new(mocks.StatRepository)
	testConfig := &config.Config{}
	reviewService := NewReviewService(db, mockCardRepo, mockStatRepo, testConfig)

	userID := uuid.New()
	now := time.Now()

	t.Run("正常系: カテゴリ別の期限切れ枚数と当日実績を返す", func(t *testing.T) {
		mockCardRepo.Mock = mock.Mock{}
		mockStatRepo.Mock = mock.Mock{}

		cards := []*model.LearnedWordCard{
			testReviewCard(userID, "a", "1", 2.5, 1, 0, now.Add(-time.Minute)),      // new (期限切れ)
			testReviewCard(userID, "b", "2", 2.5, 6, 2, now.Add(-time.Hour)),       // learning (期限切れ)
			testReviewCard(userID, "c", "3", 2.5, 30, 5, now.Add(-time.Hour)),      // reviewing (期限切れ)
			testReviewCard(userID, "d", "4", 2.5, 30, 5, now.Add(240*time.Hour)),   // reviewing (期限内)
		}
		stat := &model.DailyLearningStat{
			StatID: uuid.New(), UserID: userID, Day: model.DayOf(now),
			ReviewedCount: 7, CorrectCount: 5,
		}

		mockCardRepo.On("ListByUser", ctx, mock.AnythingOfType("*gorm.DB"), userID).
			Return(cards, nil).Once()
		mockStatRepo.On("FindByDay", ctx, mock.AnythingOfType("*gorm.DB"), userID, model.DayOf(now)).
			Return(stat, nil).Once()

		stats, err := reviewService.GetStats(ctx, userID)

		require.NoError(t, err)
		require.NotNil(t, stats)
		assert.Equal(t, 3, stats.TodayDue)
		assert.Equal(t, 1, stats.NewCards)
		assert.Equal(t, 1, stats.Learning)
		assert.Equal(t, 1, stats.Reviewing)
		assert.Equal(t, 4, stats.TotalVocab)
		assert.Equal(t, 7, stats.CompletedToday)
		mockCardRepo.AssertExpectations(t)
		mockStatRepo.AssertExpectations(t)
	})

	t.Run("正常系: 当日の統計行がなければ実績0", func(t *testing.T) {
		mockCardRepo.Mock = mock.Mock{}
		mockStatRepo.Mock = mock.Mock{}

		mockCardRepo.On("ListByUser", ctx, mock.AnythingOfType("*gorm.DB"), userID).
			Return([]*model.LearnedWordCard{}, nil).Once()
		mockStatRepo.On("FindByDay", ctx, mock.AnythingOfType("*gorm.DB"), userID, model.DayOf(now)).
			Return(nil, model.ErrNotFound).Once()

		stats, err := reviewService.GetStats(ctx, userID)

		require.NoError(t, err)
		require.NotNil(t, stats)
		assert.Equal(t, 0, stats.CompletedToday)
		assert.Equal(t, 0, stats.TotalVocab)
		mockCardRepo.AssertExpectations(t)
		mockStatRepo.AssertExpectations(t)
	})
}
