package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"treadmill_pacer/internal/models"
	"treadmill_pacer/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL   = time.Hour
	defaultSigningKey = "pacer-dev-signing-key"
	tokenSubject      = "athlete"

	MinAge = 1
	MaxAge = 219
)

// AuthConfig carries JWT settings from config.
type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidProfile  = errors.New("invalid profile: username required and age must be between 1 and 219")

	errEmptyPassword = errors.New("password is empty")
)

// Claims is the JWT payload issued at sign-in.
type Claims struct {
	jwt.RegisteredClaims
	AthleteID int `json:"athlete_id"`
}

// AuthService registers athletes and issues HMAC-signed tokens.
type AuthService struct {
	athletes repository.Authorization
	key      []byte
	ttl      time.Duration
}

func NewAuthService(athletes repository.Authorization, cfg AuthConfig) *AuthService {
	s := &AuthService{athletes: athletes, key: []byte(cfg.SigningKey), ttl: cfg.TokenTTL}
	if len(s.key) == 0 {
		s.key = []byte(defaultSigningKey)
	}
	if s.ttl <= 0 {
		s.ttl = defaultTokenTTL
	}
	return s
}

// SignUp stores a new athlete with a bcrypt password hash. The age becomes
// the default for the athlete's sessions.
func (s *AuthService) SignUp(username, password string, age int) (int, error) {
	username = strings.TrimSpace(username)
	if username == "" || age < MinAge || age > MaxAge {
		return 0, ErrInvalidProfile
	}
	if strings.TrimSpace(password) == "" {
		return 0, fmt.Errorf("invalid password: %w", errEmptyPassword)
	}
	hash, err := hashPassword(password)
	if err != nil {
		return 0, err
	}
	return s.athletes.Create(username, hash, age)
}

// Athlete returns the stored profile, or ErrUserNotFound.
func (s *AuthService) Athlete(id int) (*models.Athlete, error) {
	a, err := s.athletes.GetByID(id)
	switch {
	case err != nil:
		return nil, err
	case a == nil:
		return nil, ErrUserNotFound
	}
	return a, nil
}

// GenerateToken checks the credentials and returns a signed token.
func (s *AuthService) GenerateToken(username, password string) (string, error) {
	a, err := s.athletes.GetByUsername(username)
	if err != nil {
		return "", err
	}
	if a == nil {
		return "", ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidPassword
	}
	return s.issueToken(a.ID)
}

// ParseToken validates a token issued by this service and returns its athlete id.
func (s *AuthService) ParseToken(raw string) (int, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, s.keyFor)
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, ErrInvalidToken
	}
	return claims.AthleteID, nil
}

// keyFor only accepts HMAC-signed tokens.
func (s *AuthService) keyFor(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return s.key, nil
}

func (s *AuthService) issueToken(athleteID int) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tokenSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		AthleteID: athleteID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
