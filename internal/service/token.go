package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/model"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/repository"
	pkgerr "github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/errors"
)

// ── Manage token errors ──

// Unknown and expired tokens share the Gone class: a manage link that stops
// working looks the same to the contact either way, and a 404 would leak
// which token values ever existed.
var (
	ErrManageTokenUnknown = fmt.Errorf("manage token unknown: %w", pkgerr.ErrGone)
	ErrManageTokenExpired = fmt.Errorf("manage token expired: %w", pkgerr.ErrGone)
)

// TokenService issues and resolves self-service manage tokens. The raw token
// leaves the system exactly once, inside the manage link; only its SHA-256
// digest is stored.
type TokenService interface {
	// Issue mints a fresh token for the registration, persisting its hash and
	// expiry, and returns the raw token.
	Issue(ctx context.Context, registrationID string) (string, error)
	// Resolve maps a raw token back to its registration. Rows written before
	// hashing was introduced store the token verbatim; those are matched on
	// the raw value and upgraded to a hash on the way out.
	Resolve(ctx context.Context, raw string) (*model.Registration, error)
}

type tokenService struct {
	repo    *repository.Repository
	ttlDays int
	now     func() time.Time
	logger  *zap.Logger
}

// NewTokenService creates a TokenService. ttlDays <= 0 means tokens never
// expire.
func NewTokenService(repo *repository.Repository, ttlDays int, logger *zap.Logger) TokenService {
	return &tokenService{repo: repo, ttlDays: ttlDays, now: time.Now, logger: logger}
}

func (s *tokenService) Issue(ctx context.Context, registrationID string) (string, error) {
	raw, err := newToken()
	if err != nil {
		return "", err
	}
	expiresAt := s.expiry(s.now())
	if err := s.repo.Registration.UpdateTokenHash(ctx, registrationID, hashToken(raw), expiresAt); err != nil {
		s.logger.Error("persist manage token failed", zap.Error(err))
		return "", err
	}
	return raw, nil
}

func (s *tokenService) Resolve(ctx context.Context, raw string) (*model.Registration, error) {
	if raw == "" {
		return nil, ErrManageTokenUnknown
	}
	reg, err := s.repo.Registration.GetByTokenValue(ctx, hashToken(raw))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// Legacy row: token stored as plaintext.
		reg, err = s.repo.Registration.GetByTokenValue(ctx, raw)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrManageTokenUnknown
		}
		if err != nil {
			return nil, err
		}
		// Upgrade in place, keeping the original expiry. Best effort: the
		// lookup already succeeded, a failed rehash only delays the upgrade.
		if err := s.repo.Registration.UpdateTokenHash(ctx, reg.RegistrationID, hashToken(raw), reg.ManageTokenExpiresAt); err != nil {
			s.logger.Warn("rehash legacy manage token failed",
				zap.String("registration_id", reg.RegistrationID), zap.Error(err))
		}
	}
	if reg.TokenExpired(s.now()) {
		return nil, ErrManageTokenExpired
	}
	return reg, nil
}

func (s *tokenService) expiry(now time.Time) *time.Time {
	if s.ttlDays <= 0 {
		return nil
	}
	t := now.AddDate(0, 0, s.ttlDays)
	return &t
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
