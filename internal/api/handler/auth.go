package handler

import (
	"net/http"
	"os"
	"time"

	"speeddate/backend/internal/models"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const userIDKey = "userID"

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-only-insecure-secret"
	}
	return []byte(secret)
}

// generateJWT issues a signed identity token for a user ID.
func generateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour * 72).Unix(),
		"iss":     "speeddate-service",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// validateAndGetUserID checks a token and extracts the user ID claim.
func validateAndGetUserID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return userID, nil
}

// AuthRequired resolves the caller identity from the Authorization
// header and aborts with UNAUTHENTICATED when it cannot.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"code": "UNAUTHENTICATED", "error": "Authorization token missing"})
			return
		}

		userID, err := validateAndGetUserID(authHeader[7:])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"code": "UNAUTHENTICATED", "error": "Invalid token or expired"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func callerID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// CreateAnonIdentity mints a directory record with a fresh anonymous
// UUID and returns the identity token for it.
func (h *Handler) CreateAnonIdentity(c *gin.Context) {
	user := &models.User{ID: uuid.New().String()}
	if err := h.Storage.SaveUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := generateJWT(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user_id": user.ID})
}

// GetMe returns the caller's own directory record.
func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.Storage.GetUser(callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type profileUpdate struct {
	Age              int      `json:"age"`
	Gender           string   `json:"gender"`
	GenderPreference string   `json:"gender_preference"`
	Bio              string   `json:"bio"`
	PhotoRefs        []string `json:"photo_refs"`
}

// UpdateMe edits the caller's profile attributes. The queue flag is
// owned by the pairing protocol and cannot be touched here.
func (h *Handler) UpdateMe(c *gin.Context) {
	var update profileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ARGUMENT", "error": err.Error()})
		return
	}

	user, err := h.Storage.GetUser(callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": "user not found"})
		return
	}

	user.Age = update.Age
	user.Gender = update.Gender
	user.GenderPreference = update.GenderPreference
	user.Bio = update.Bio
	user.PhotoRefs = update.PhotoRefs
	if err := h.Storage.SaveUser(user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
