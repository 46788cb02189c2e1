package config

// アプリケーション情報
const (
	AppName    = "lexikeep"
	AppVersion = "1.0.0"
)

// デフォルト設定値
const (
	DefaultServerPort         = ":8080"
	DefaultLogLevel           = "info"
	DefaultAppReviewLimit     = 20
	DefaultJWTExpirationHours = 24
	DefaultMailerType         = "log"
)
