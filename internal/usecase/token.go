package usecase

import (
	"errors"
	"fmt"
	"time"

	"shramik-backend/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

const (
	purposeAccess      = "access"
	purposeVerifyEmail = "verify_email"
	verifyTokenTTL     = 24 * time.Hour
)

// TokenManager signs and parses the HS256 tokens used for sessions and email verification.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a session token for user and its expiry.
func (m *TokenManager) Issue(user *model.User) (string, time.Time, error) {
	exp := m.now().Add(m.ttl)
	claims := jwt.MapClaims{
		"user_id":        user.ID,
		"role":           string(user.Role),
		"email":          user.Email,
		"email_verified": user.EmailVerified,
		"purpose":        purposeAccess,
		"exp":            exp.Unix(),
	}
	t, err := m.sign(claims)
	return t, exp, err
}

// Parse validates a session token and returns the caller it names.
func (m *TokenManager) Parse(tokenString string) (*Identity, error) {
	claims, err := m.parse(tokenString, purposeAccess)
	if err != nil {
		return nil, err
	}

	id, ok := claims["user_id"].(float64)
	if !ok || id <= 0 {
		return nil, ErrUnauthenticated.WithMessage("token has no user")
	}
	role, _ := claims["role"].(string)
	email, _ := claims["email"].(string)
	verified, _ := claims["email_verified"].(bool)

	return &Identity{
		UserID:        uint(id),
		Role:          model.Role(role),
		Email:         email,
		EmailVerified: verified,
	}, nil
}

func (m *TokenManager) issueVerification(user *model.User) (string, error) {
	return m.sign(jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"purpose": purposeVerifyEmail,
		"exp":     m.now().Add(verifyTokenTTL).Unix(),
	})
}

func (m *TokenManager) parseVerification(tokenString string) (uint, string, error) {
	claims, err := m.parse(tokenString, purposeVerifyEmail)
	if err != nil {
		return 0, "", err
	}
	id, _ := claims["user_id"].(float64)
	email, _ := claims["email"].(string)
	if id <= 0 {
		return 0, "", ErrInvalidInput.WithMessage("verification link is invalid")
	}
	return uint(id), email, nil
}

func (m *TokenManager) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return t, nil
}

func (m *TokenManager) parse(tokenString, purpose string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrUnauthenticated.WithMessage("token expired")
		}
		return nil, ErrUnauthenticated.WithMessage("token invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != purpose {
		return nil, ErrUnauthenticated.WithMessage("token invalid")
	}
	return claims, nil
}
