// internal/service/card_service_test.go
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"lexikeep/internal/model"
	"lexikeep/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Test CreateCard ---
func Test_cardService_CreateCard(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBReview()
	mockCardRepo := new(mocks.CardRepository)
	mockStatRepo := new(mocks.StatRepository)
	cardService := NewCardService(db, mockCardRepo, mockStatRepo)

	userID := uuid.New()
	now := time.Now()

	req := &model.CreateCardRequest{
		Word:            "ubiquitous",
		Meaning:         "至る所にある",
		PartOfSpeech:    "adjective",
		ExampleSentence: "Smartphones are ubiquitous these days.",
	}

	tests := []struct {
		name      string
		setupMock func(cardRepo *mocks.CardRepository, statRepo *mocks.StatRepository)
		wantErr   error
		wantCode  string
	}{
		{
			name: "正常系: 初期スケジューリング状態で登録され、即時出題対象になる",
			setupMock: func(cardRepo *mocks.CardRepository, statRepo *mocks.StatRepository) {
				cardRepo.On("CheckMeaningExists", ctx, mock.AnythingOfType("*gorm.DB"), userID, req.Word, req.Meaning).
					Return(false, nil).Once()
				cardRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.MatchedBy(func(c *model.LearnedWordCard) bool {
					assert.Equal(t, userID, c.UserID)
					assert.Equal(t, req.Word, c.Word)
					assert.Equal(t, req.Meaning, c.Meaning)
					assert.InDelta(t, 2.5, c.EaseFactor, 1e-9)
					assert.Equal(t, 1, c.IntervalDays)
					assert.Equal(t, 0, c.Repetitions)
					assert.WithinDuration(t, now, c.NextReviewDate, time.Second*5)
					return true
				})).Return(nil).Once()
				statRepo.On("IncrementNewWords", ctx, mock.AnythingOfType("*gorm.DB"), userID, mock.AnythingOfType("time.Time"), 1).
					Return(nil).Once()
			},
			wantErr: nil,
		},
		{
			name: "異常系: 同じ単語と意味の組み合わせが既に存在する",
			setupMock: func(cardRepo *mocks.CardRepository, statRepo *mocks.StatRepository) {
				cardRepo.On("CheckMeaningExists", ctx, mock.AnythingOfType("*gorm.DB"), userID, req.Word, req.Meaning).
					Return(true, nil).Once()
			},
			wantErr:  model.ErrConflict,
			wantCode: "CONFLICT",
		},
		{
			name: "異常系: 重複チェックをすり抜けた挿入が一意制約違反",
			setupMock: func(cardRepo *mocks.CardRepository, statRepo *mocks.StatRepository) {
				cardRepo.On("CheckMeaningExists", ctx, mock.AnythingOfType("*gorm.DB"), userID, req.Word, req.Meaning).
					Return(false, nil).Once()
				cardRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.LearnedWordCard")).
					Return(model.ErrConflict).Once()
			},
			wantErr:  model.ErrConflict,
			wantCode: "CONFLICT",
		},
		{
			name: "異常系: 学習記録の更新に失敗したら登録全体が失敗する",
			setupMock: func(cardRepo *mocks.CardRepository, statRepo *mocks.StatRepository) {
				cardRepo.On("CheckMeaningExists", ctx, mock.AnythingOfType("*gorm.DB"), userID, req.Word, req.Meaning).
					Return(false, nil).Once()
				cardRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.LearnedWordCard")).
					Return(nil).Once()
				statRepo.On("IncrementNewWords", ctx, mock.AnythingOfType("*gorm.DB"), userID, mock.AnythingOfType("time.Time"), 1).
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

			card, err := cardService.CreateCard(ctx, userID, req)

			if tt.wantErr == nil && tt.wantCode == "" {
				require.NoError(t, err)
				require.NotNil(t, card)
				assert.NotEqual(t, uuid.Nil, card.CardID)
			} else {
				require.Error(t, err)
				assert.Nil(t, card)
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

// --- Test GetCard ---
func Test_cardService_GetCard(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBReview()
	mockCardRepo := new(mocks.CardRepository)
	mockStatRepo := new(mocks.StatRepository)
	cardService := NewCardService(db, mockCardRepo, mockStatRepo)

	userID := uuid.New()
	cardID := uuid.New()

	t.Run("正常系: 自分のカードを取得できる", func(t *testing.T) {
		mockCardRepo.Mock = mock.Mock{}

		card := testReviewCard(userID, "ephemeral", "つかの間の", 2.5, 1, 0, time.Now())
		card.CardID = cardID
		mockCardRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), userID, cardID).
			Return(card, nil).Once()

		got, err := cardService.GetCard(ctx, userID, cardID)

		require.NoError(t, err)
		assert.Equal(t, cardID, got.CardID)
		mockCardRepo.AssertExpectations(t)
	})

	t.Run("異常系: 他人のカードはNotFound", func(t *testing.T) {
		mockCardRepo.Mock = mock.Mock{}

		mockCardRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), userID, cardID).
			Return(nil, model.ErrNotFound).Once()

		got, err := cardService.GetCard(ctx, userID, cardID)

		require.Error(t, err)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, model.ErrNotFound)
		mockCardRepo.AssertExpectations(t)
	})
}

// --- Test DeleteCard ---
func Test_cardService_DeleteCard(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBReview()
	mockCardRepo := new(mocks.CardRepository)
	mockStatRepo := new(mocks.StatRepository)
	cardService := NewCardService(db, mockCardRepo, mockStatRepo)

	userID := uuid.New()
	cardID := uuid.New()

	t.Run("正常系: カードを削除できる", func(t *testing.T) {
		mockCardRepo.Mock = mock.Mock{}

		mockCardRepo.On("Delete", ctx, mock.AnythingOfType("*gorm.DB"), userID, cardID).
			Return(nil).Once()

		err := cardService.DeleteCard(ctx, userID, cardID)

		require.NoError(t, err)
		mockCardRepo.AssertExpectations(t)
	})

	t.Run("異常系: 存在しないカードの削除はNotFound", func(t *testing.T) {
		mockCardRepo.Mock = mock.Mock{}

		mockCardRepo.On("Delete", ctx, mock.AnythingOfType("*gorm.DB"), userID, cardID).
			Return(model.ErrNotFound).Once()

		err := cardService.DeleteCard(ctx, userID, cardID)

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
		mockCardRepo.AssertExpectations(t)
	})
}
