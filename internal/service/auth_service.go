// internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lexikeep/internal/config"
	"lexikeep/internal/middleware"
	"lexikeep/internal/model"
	"lexikeep/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService はユーザー登録と認証を提供します
type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	// Login は認証に成功するとJWTアクセストークンを返します
	Login(ctx context.Context, req *model.LoginRequest) (string, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type authService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	mailer   Mailer
	cfg      *config.Config
}

func NewAuthService(db *gorm.DB, userRepo repository.UserRepository, mailer Mailer, cfg *config.Config) AuthService {
	return &authService{
		db:       db,
		userRepo: userRepo,
		mailer:   mailer,
		cfg:      cfg,
	}
}

func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	logger := middleware.GetLogger(ctx).With("email", req.Email)

	var created *model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.userRepo.FindByEmail(ctx, tx, req.Email)
		if err == nil {
			logger.Warn("Email address already registered")
			return model.NewAppError("CONFLICT", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
		}
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error("Error checking for existing email", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザー登録中にエラーが発生しました。", "", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Error("Error hashing password", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザー登録中にエラーが発生しました。", "", err)
		}

		user := &model.User{
			UserID:       uuid.New(),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hash),
			IsActive:     true,
		}

		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			if errors.Is(err, model.ErrConflict) {
				// FindByEmail とのレースで先を越されたケース
				logger.Warn("Email conflict detected on insert", "error", err)
				return model.NewAppError("CONFLICT", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
			}
			logger.Error("Error creating user", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザー登録に失敗しました。", "", err)
		}

		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	// ウェルカムメールは登録の成否に関わらない。失敗してもログだけ残す。
	subject := "Lexikeepへようこそ"
	body := fmt.Sprintf("%s さん、登録ありがとうございます。\n最初の単語カードを登録して学習を始めましょう。", created.Name)
	if err := s.mailer.Send(ctx, created.Email, subject, body); err != nil {
		logger.Warn("Failed to send welcome email", "error", err)
	}

	logger.Info("User registered", "user_id", created.UserID)
	return created, nil
}

func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (string, error) {
	logger := middleware.GetLogger(ctx).With("email", req.Email)

	user, err := s.userRepo.FindByEmail(ctx, s.db, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Login attempt for unknown email")
			// ユーザーの存在有無を区別させない
			return "", model.NewAppError("FORBIDDEN", "メールアドレスまたはパスワードが正しくありません。", "", model.ErrForbidden)
		}
		logger.Error("Error finding user for login", "error", err)
		return "", model.NewAppError("INTERNAL_SERVER_ERROR", "ログイン処理中にエラーが発生しました。", "", err)
	}

	if !user.IsActive {
		logger.Warn("Login attempt for inactive user", "user_id", user.UserID)
		return "", model.NewAppError("FORBIDDEN", "このアカウントは現在利用できません。", "", model.ErrForbidden)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("Password mismatch", "user_id", user.UserID)
		return "", model.NewAppError("FORBIDDEN", "メールアドレスまたはパスワードが正しくありません。", "", model.ErrForbidden)
	}

	now := time.Now()
	claims := model.JWTCustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.cfg.JWT.ExpirationHours) * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		logger.Error("Error signing JWT", "error", err)
		return "", model.NewAppError("INTERNAL_SERVER_ERROR", "ログイン処理中にエラーが発生しました。", "", err)
	}

	logger.Info("User logged in", "user_id", user.UserID)
	return signed, nil
}

func (s *authService) GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID)

	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("User not found")
			return nil, model.NewAppError("NOT_FOUND", "ユーザーが見つかりませんでした。", "user_id", model.ErrNotFound)
		}
		logger.Error("Error finding user", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザー情報の取得に失敗しました。", "", err)
	}
	return user, nil
}
