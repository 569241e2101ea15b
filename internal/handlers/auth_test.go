package handlers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mmhmddd/linah-store-server/internal/middleware"
)

func TestIssueTokenRoundTrip(t *testing.T) {
	userID := primitive.NewObjectID()
	secret := "test-secret"

	tokenString, err := issueToken(userID, secret, time.Hour)
	if err != nil {
		t.Fatalf("issueToken returned error: %v", err)
	}

	parsed, err := jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("expected valid token, got err=%v", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("expected map claims, got %T", parsed.Claims)
	}
	got := middleware.UserIDFromClaims(claims)
	if got == nil || *got != userID {
		t.Fatalf("expected user id %s in claims, got %v", userID.Hex(), got)
	}
}

func TestHashTokenIsDeterministic(t *testing.T) {
	a := hashToken("reset-token")
	b := hashToken("reset-token")
	if a != b {
		t.Fatalf("expected identical hashes, got %s and %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == hashToken("other-token") {
		t.Fatal("expected different tokens to hash differently")
	}
}

func TestGenerateResetTokenUniqueness(t *testing.T) {
	first, err := generateResetToken()
	if err != nil {
		t.Fatalf("generateResetToken returned error: %v", err)
	}
	second, err := generateResetToken()
	if err != nil {
		t.Fatalf("generateResetToken returned error: %v", err)
	}
	if len(first) != 40 {
		t.Fatalf("expected 40 hex chars, got %d", len(first))
	}
	if first == second {
		t.Fatal("expected unique tokens")
	}
}
