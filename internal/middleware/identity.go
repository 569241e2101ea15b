package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserIDFromClaims extracts a user id from a decoded token payload, trying the
// claim shapes older token issuers used, in order: id, _id, userId, user._id,
// _doc._id. Returns nil when no shape matches.
func UserIDFromClaims(claims jwt.MapClaims) *primitive.ObjectID {
	if id := objectIDClaim(claims["id"]); id != nil {
		return id
	}
	if id := objectIDClaim(claims["_id"]); id != nil {
		return id
	}
	if id := objectIDClaim(claims["userId"]); id != nil {
		return id
	}
	if nested, ok := claims["user"].(map[string]interface{}); ok {
		if id := objectIDClaim(nested["_id"]); id != nil {
			return id
		}
	}
	if doc, ok := claims["_doc"].(map[string]interface{}); ok {
		if id := objectIDClaim(doc["_id"]); id != nil {
			return id
		}
	}
	return nil
}

func objectIDClaim(value interface{}) *primitive.ObjectID {
	raw, ok := value.(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil
	}
	return &id
}

// UserIDFromRequest decodes the optional bearer token and returns the caller's
// user id, or nil for any missing, malformed, or expired token. Callers must
// treat nil as "guest", never as an authentication failure; routes that require
// a verified identity go through Protect instead.
func UserIDFromRequest(c *gin.Context, secret string) *primitive.ObjectID {
	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	return UserIDFromClaims(claims)
}
