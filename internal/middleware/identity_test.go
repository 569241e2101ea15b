package middleware

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserIDFromClaimsStandardShape(t *testing.T) {
	want := primitive.NewObjectID()
	got := UserIDFromClaims(jwt.MapClaims{"id": want.Hex()})
	if got == nil || *got != want {
		t.Fatalf("expected %s, got %v", want.Hex(), got)
	}
}

func TestUserIDFromClaimsLegacyShapes(t *testing.T) {
	want := primitive.NewObjectID()
	shapes := []jwt.MapClaims{
		{"_id": want.Hex()},
		{"userId": want.Hex()},
		{"user": map[string]interface{}{"_id": want.Hex()}},
		{"_doc": map[string]interface{}{"_id": want.Hex()}},
	}
	for _, claims := range shapes {
		got := UserIDFromClaims(claims)
		if got == nil || *got != want {
			t.Fatalf("claims %v: expected %s, got %v", claims, want.Hex(), got)
		}
	}
}

func TestUserIDFromClaimsPrefersIDOverLegacy(t *testing.T) {
	want := primitive.NewObjectID()
	legacy := primitive.NewObjectID()
	got := UserIDFromClaims(jwt.MapClaims{"id": want.Hex(), "_id": legacy.Hex()})
	if got == nil || *got != want {
		t.Fatalf("expected id claim to win, got %v", got)
	}
}

func TestUserIDFromClaimsRejectsGarbage(t *testing.T) {
	claims := []jwt.MapClaims{
		{},
		{"id": "not-an-object-id"},
		{"id": 42},
		{"user": "plain-string"},
	}
	for _, c := range claims {
		if got := UserIDFromClaims(c); got != nil {
			t.Fatalf("claims %v: expected nil, got %v", c, got)
		}
	}
}
