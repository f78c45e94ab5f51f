package repository

import (
	"context"

	"StorkPull/internal/domain/models"
)

// SessionStore is the durable per-account session slot. Load fails soft:
// missing or malformed data is reported as absent.
type SessionStore interface {
	Load(ctx context.Context, accountKey string) (*models.Session, bool)
	Save(ctx context.Context, accountKey string, s *models.Session) error
	Invalidate(ctx context.Context, accountKey string) error
}

// Authenticator performs the credential exchange for one account.
type Authenticator interface {
	Authenticate(ctx context.Context) (*models.TokenSet, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenSet, error)
}

// OracleAPI is the remote service the validator reports to.
type OracleAPI interface {
	UserStats(ctx context.Context, accessToken string) (*models.UserStats, error)
	SignedPrices(ctx context.Context, accessToken string) ([]models.SignedPrice, error)
	Reporter
}

// Reporter submits a single verdict through an egress.
type Reporter interface {
	SubmitValidation(ctx context.Context, accessToken, egress, msgHash string, valid bool) error
}

// Metrics is the instrumentation sink. Every series is labelled by account.
type Metrics interface {
	RecordValidation(account string, success bool)
	RecordTokenRenewal(account, kind string)
	RecordError(account, kind string)
	RecordCycle(account string, seconds float64)
	RecordPoints(account string, points int64)
}
