package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/model"
	pkgerr "github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/errors"
)

func setupTokenService(ttlDays int) (TokenService, *memDB) {
	d := newMemDB()
	return NewTokenService(d.repo(), ttlDays, zap.NewNop()), d
}

func seedRegistration(d *memDB, eventID string) *model.Registration {
	reg := &model.Registration{
		RegistrationID: d.nextID("reg"),
		EventID:        eventID,
		ContactName:    "Ann Lee",
		ContactEmail:   "ann@example.org",
		EmailOptIn:     true,
	}
	reg.CreatedAt = d.tick()
	d.registrations[reg.RegistrationID] = reg
	return reg
}

func TestTokenService_IssueAndResolve(t *testing.T) {
	svc, d := setupTokenService(90)
	reg := seedRegistration(d, "evt-1")

	raw, err := svc.Issue(context.Background(), reg.RegistrationID)
	if err != nil {
		t.Fatalf("issue should succeed: %v", err)
	}
	if raw == "" {
		t.Fatal("raw token must not be empty")
	}
	if d.registrations[reg.RegistrationID].ManageTokenHash == raw {
		t.Error("stored credential must not be the raw token")
	}
	if d.registrations[reg.RegistrationID].ManageTokenExpiresAt == nil {
		t.Error("ttl of 90 days should set an expiry")
	}

	got, err := svc.Resolve(context.Background(), raw)
	if err != nil {
		t.Fatalf("resolve should succeed: %v", err)
	}
	if got.RegistrationID != reg.RegistrationID {
		t.Errorf("resolved wrong registration: %s", got.RegistrationID)
	}
}

func TestTokenService_NoExpiryWhenTTLDisabled(t *testing.T) {
	svc, d := setupTokenService(0)
	reg := seedRegistration(d, "evt-1")

	if _, err := svc.Issue(context.Background(), reg.RegistrationID); err != nil {
		t.Fatalf("issue should succeed: %v", err)
	}
	if d.registrations[reg.RegistrationID].ManageTokenExpiresAt != nil {
		t.Error("ttl <= 0 must mean no expiry")
	}
}

func TestTokenService_UnknownToken(t *testing.T) {
	svc, _ := setupTokenService(90)

	_, err := svc.Resolve(context.Background(), "no-such-token")
	if !pkgerr.IsGone(err) {
		t.Errorf("expected gone, got %v", err)
	}
}

func TestTokenService_ExpiresAfterTTL(t *testing.T) {
	d := newMemDB()
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issued
	svc := &tokenService{
		repo:    d.repo(),
		ttlDays: 1,
		now:     func() time.Time { return now },
		logger:  zap.NewNop(),
	}
	reg := seedRegistration(d, "evt-1")

	raw, err := svc.Issue(context.Background(), reg.RegistrationID)
	if err != nil {
		t.Fatalf("issue should succeed: %v", err)
	}

	now = issued.Add(23 * time.Hour)
	if _, err := svc.Resolve(context.Background(), raw); err != nil {
		t.Fatalf("token should still resolve within the ttl: %v", err)
	}

	now = issued.Add(25 * time.Hour)
	_, err = svc.Resolve(context.Background(), raw)
	if !pkgerr.IsGone(err) {
		t.Errorf("expected gone past the ttl, got %v", err)
	}
}

func TestTokenService_LegacyPlaintextUpgraded(t *testing.T) {
	svc, d := setupTokenService(90)
	reg := seedRegistration(d, "evt-1")

	// A row written before hashing stores the token verbatim.
	raw := "legacy-raw-token-value"
	d.registrations[reg.RegistrationID].ManageTokenHash = raw

	got, err := svc.Resolve(context.Background(), raw)
	if err != nil {
		t.Fatalf("legacy token should resolve: %v", err)
	}
	if got.RegistrationID != reg.RegistrationID {
		t.Errorf("resolved wrong registration: %s", got.RegistrationID)
	}
	if d.registrations[reg.RegistrationID].ManageTokenHash == raw {
		t.Error("legacy token should be rehashed after resolution")
	}

	// The same raw token keeps working through the hash path.
	if _, err := svc.Resolve(context.Background(), raw); err != nil {
		t.Errorf("token should survive the upgrade: %v", err)
	}
}
