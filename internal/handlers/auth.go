package handlers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmhmddd/linah-store-server/internal/mailer"
	"github.com/mmhmddd/linah-store-server/internal/models"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Address  string `json:"address" binding:"required"`
	Age      int    `json:"age" binding:"required"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ForgetPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type authUserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

const resetTokenTTL = 10 * time.Minute

func Register(db *mongo.Database, jwtSecret string, tokenTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || strings.TrimSpace(req.Password) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			log.Println("[AUTH] [ERROR] register db error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}
		if count > 0 {
			log.Println("[AUTH] [ERROR] register email exists:", email)
			c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] register password hash failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "password hash failed"})
			return
		}

		role := models.RoleUser
		if req.Role == models.RoleAdmin {
			role = models.RoleAdmin
		}

		now := time.Now()
		user := models.User{
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			PasswordHash: string(hash),
			Phone:        strings.TrimSpace(req.Phone),
			Address:      strings.TrimSpace(req.Address),
			Age:          req.Age,
			Role:         role,
			Orders:       []primitive.ObjectID{},
			Cart:         []models.CartItem{},
			Favorites:    []models.FavoriteItem{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		res, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			log.Println("[AUTH] [ERROR] register insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		id, _ := res.InsertedID.(primitive.ObjectID)
		token, err := issueToken(id, jwtSecret, tokenTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] register token generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "token generation failed"})
			return
		}

		log.Println("[AUTH] [INFO] user registered:", email)
		c.JSON(http.StatusCreated, gin.H{
			"token": token,
			"user": authUserResponse{
				ID:    id.Hex(),
				Name:  user.Name,
				Email: email,
				Role:  role,
			},
		})
	}
}

func Login(db *mongo.Database, jwtSecret string, tokenTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// Same response for unknown email and wrong password, so a caller
		// cannot probe which one failed.
		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user)
		if err != nil {
			if err != mongo.ErrNoDocuments {
				log.Println("[AUTH] [ERROR] login user lookup failed:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
				return
			}
			log.Println("[AUTH] [ERROR] login invalid credentials")
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			log.Println("[AUTH] [ERROR] login invalid credentials")
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
			return
		}

		token, err := issueToken(user.ID, jwtSecret, tokenTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] login token generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "token generation failed"})
			return
		}

		log.Println("[AUTH] [INFO] user login succeeded:", user.Email)
		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user": authUserResponse{
				ID:    user.ID.Hex(),
				Name:  user.Name,
				Email: user.Email,
				Role:  user.Role,
			},
		})
	}
}

func ForgetPassword(db *mongo.Database, mail *mailer.Mailer, publicURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ForgetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			log.Println("[AUTH] [ERROR] forget password user lookup failed:", err)
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}

		resetToken, err := generateResetToken()
		if err != nil {
			log.Println("[AUTH] [ERROR] reset token generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "token generation failed"})
			return
		}

		// Only the hash is stored; the plaintext token exists nowhere but the
		// email we are about to send.
		expire := time.Now().Add(resetTokenTTL)
		_, err = db.Collection("users").UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
			"resetPasswordToken":  hashToken(resetToken),
			"resetPasswordExpire": expire,
			"updatedAt":           time.Now(),
		}})
		if err != nil {
			log.Println("[AUTH] [ERROR] reset token save failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		resetURL := fmt.Sprintf("%s/api/auth/resetpassword/%s", strings.TrimRight(publicURL, "/"), resetToken)
		body := fmt.Sprintf("Password reset link: %s\nThe link expires in 10 minutes.", resetURL)
		if err := mail.Send(user.Email, "Password reset", body); err != nil {
			log.Println("[AUTH] [ERROR] reset email send failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "email could not be sent"})
			return
		}

		log.Println("[AUTH] [INFO] reset email sent:", user.Email)
		c.JSON(http.StatusOK, gin.H{"message": "Reset email sent"})
	}
}

func ResetPassword(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
			return
		}

		tokenHash := hashToken(strings.TrimSpace(c.Param("token")))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{
			"resetPasswordToken":  tokenHash,
			"resetPasswordExpire": bson.M{"$gt": time.Now()},
		}).Decode(&user)
		if err != nil {
			log.Println("[AUTH] [ERROR] reset password token invalid or expired")
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired token"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] reset password hash failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "password hash failed"})
			return
		}

		_, err = db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
			"$set":   bson.M{"password": string(hash), "updatedAt": time.Now()},
			"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
		})
		if err != nil {
			log.Println("[AUTH] [ERROR] reset password save failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		log.Println("[AUTH] [INFO] password reset:", user.Email)
		c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
	}
}

func issueToken(userID primitive.ObjectID, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"id":  userID.Hex(),
		"exp": time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateResetToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.New("could not generate reset token")
	}
	return hex.EncodeToString(buf), nil
}
