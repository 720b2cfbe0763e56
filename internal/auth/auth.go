package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/attendance/internal"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// TokenGenerator issues and verifies access tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID int64, role string) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents JWT token claims
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() *internal.Principal {
	return &internal.Principal{UserID: c.UserID, Role: c.Role}
}

type JWTTokenGenerator struct {
	Secret         []byte
	AccessTokenTTL time.Duration
	now            func() time.Time
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &JWTTokenGenerator{
		Secret:         []byte(secret),
		AccessTokenTTL: ttl,
		now:            time.Now,
	}
}

// GenerateAccessToken creates a signed HS256 token for the user.
func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, role string) (string, time.Time, error) {
	issuedAt := j.now()
	expiresAt := issuedAt.Add(j.AccessTokenTTL)

	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Subject:   strconv.FormatInt(userID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID > 0 {
		return claims, nil
	}
	return nil, internal.ErrInvalidToken
}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// PasswordHasher wraps bcrypt with a configured cost.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (p *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", internal.NewValidationFieldError("password",
				fmt.Sprintf("password must not exceed %d bytes", MaxPasswordBytes), internal.ErrCodeValidationFailed)
		}
		return "", err
	}
	return string(hash), nil
}

func (p *PasswordHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
