package server

import (
	"fmt"
	"net/http"
	"time"

	"boardbank/clientstate"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Claims carries the anonymous identity inside the signed token
type Claims struct {
	UID      string `json:"uid"`
	Nickname string `json:"nickname,omitempty"`
	jwt.RegisteredClaims
}

// JWTService signs and validates the anonymous identity tokens
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTService creates a token service with the given signing secret
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Generate issues a signed token for a participant uid
func (s *JWTService) Generate(uid, nickname string) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:      uid,
		Nickname: nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses a token and returns its claims
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// AuthHandler issues anonymous identities
type AuthHandler struct {
	jwtService *JWTService
	state      *clientstate.Manager
}

// NewAuthHandler creates the identity handler
func NewAuthHandler(jwtService *JWTService, state *clientstate.Manager) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
		state:      state,
	}
}

type anonymousRequest struct {
	Nickname string `json:"nickname"`
}

// Anonymous mints a fresh participant uid wrapped in a signed token.
// The client keeps the token; re-presenting it keeps the same uid
// across app restarts.
func (h *AuthHandler) Anonymous(c *gin.Context) {
	var req anonymousRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	uid := uuid.NewString()
	token, err := h.jwtService.Generate(uid, req.Nickname)
	if err != nil {
		log.WithError(err).Error("Failed to sign identity token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	if req.Nickname != "" && h.state != nil {
		if err := h.state.SaveNickname(c.Request.Context(), uid, req.Nickname); err != nil {
			log.WithError(err).Warn("Failed to remember nickname")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"uid":      uid,
		"nickname": req.Nickname,
	})
}
