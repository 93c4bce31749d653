package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/lingvolab/lingvo/internal/domain"
	"github.com/lingvolab/lingvo/internal/infra/sqlite"
)

func testService(t *testing.T) *Service {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewService(db, "test-secret", time.Hour)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := testService(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	u, token, err := svc.Register("bo@example.com", "Bo", "hunter22", now)
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if token == "" {
		t.Fatal("Register() returned empty token")
	}
	if u.Level != domain.LevelBeginner || u.Hearts != domain.MaxHearts {
		t.Errorf("registration defaults wrong: level=%s hearts=%d", u.Level, u.Hearts)
	}
	if u.PasswordHash == "hunter22" {
		t.Error("password stored in plaintext")
	}

	got, err := svc.Authenticate("bo@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("Authenticate() id = %d, want %d", got.ID, u.ID)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := testService(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if _, _, err := svc.Register("bo@example.com", "Bo", "hunter22", now); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Register("bo@example.com", "Other", "password", now); !errors.Is(err, domain.ErrUserExists) {
		t.Errorf("err = %v, want ErrUserExists", err)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc := testService(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if _, _, err := svc.Register("bo@example.com", "Bo", "hunter22", now); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate("bo@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidPassword) {
		t.Errorf("err = %v, want ErrInvalidPassword", err)
	}
	if _, err := svc.Authenticate("nobody@example.com", "hunter22"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := testService(t)
	now := time.Now()

	token, err := svc.TokenFor(42, now)
	if err != nil {
		t.Fatalf("TokenFor() error: %v", err)
	}
	id, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error: %v", err)
	}
	if id != 42 {
		t.Errorf("ParseToken() id = %d, want 42", id)
	}
}

func TestParseToken_Invalid(t *testing.T) {
	svc := testService(t)

	if _, err := svc.ParseToken("not.a.token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("garbage token err = %v, want ErrInvalidToken", err)
	}

	// Token signed with a different secret.
	wrong := NewService(nil, "other-secret", time.Hour)
	foreignToken, err := wrong.TokenFor(1, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ParseToken(foreignToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("foreign-signed token err = %v, want ErrInvalidToken", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	svc := testService(t)

	token, err := svc.TokenFor(7, time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ParseToken(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expired token err = %v, want ErrInvalidToken", err)
	}
}
