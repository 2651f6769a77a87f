package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/classtrack/attendance-backend/internal/config"
	"github.com/classtrack/attendance-backend/internal/model"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalidated = errors.New("login session is no longer active")
)

// TokenType distinguishes student vs delegate tokens.
type TokenType string

const (
	TokenTypeStudent  TokenType = "student"
	TokenTypeDelegate TokenType = "delegate"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	UserID    int       `json:"user_id"`
}

// AuthService handles authentication, JWT issuance, and the Redis login
// session registry. It is supporting surface for the attendance core: the
// mark endpoint needs a caller identity, nothing more.
type AuthService struct {
	cfg       *config.Config
	rdb       *redis.Client
	students  StudentStore
	delegates DelegateStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, students StudentStore, delegates DelegateStore) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb, students: students, delegates: delegates}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// StudentLogin authenticates a student by registration number and returns a
// signed token. The login JTI is registered in Redis so a later login from
// another device supersedes this one.
func (s *AuthService) StudentLogin(ctx context.Context, regNumber, password string) (string, *model.Student, error) {
	student, err := s.students.GetByRegNumber(ctx, regNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup student: %w", err)
	}
	if err := s.CheckPassword(student.PasswordHash, password); err != nil {
		return "", nil, err
	}

	jti := uuid.New().String()
	signed, err := s.signToken(TokenTypeStudent, student.ID, jti)
	if err != nil {
		return "", nil, err
	}

	sessionKey := config.CacheKey.StudentSessionKey(student.ID)
	if err := s.rdb.Set(ctx, sessionKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
		return "", nil, fmt.Errorf("register login session: %w", err)
	}

	return signed, student, nil
}

// DelegateLogin authenticates a delegate by email and returns a signed token.
func (s *AuthService) DelegateLogin(ctx context.Context, email, password string) (string, *model.Delegate, error) {
	delegate, err := s.delegates.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup delegate: %w", err)
	}
	if err := s.CheckPassword(delegate.PasswordHash, password); err != nil {
		return "", nil, err
	}

	signed, err := s.signToken(TokenTypeDelegate, delegate.ID, uuid.New().String())
	if err != nil {
		return "", nil, err
	}
	return signed, delegate, nil
}

// StudentLogout drops the student's registered login session.
func (s *AuthService) StudentLogout(ctx context.Context, studentID int) error {
	return s.rdb.Del(ctx, config.CacheKey.StudentSessionKey(studentID)).Err()
}

// ValidateStudentSession checks the token's JTI against the registered
// login. A mismatch means a newer login replaced this one.
func (s *AuthService) ValidateStudentSession(ctx context.Context, studentID int, jti string) error {
	current, err := s.rdb.Get(ctx, config.CacheKey.StudentSessionKey(studentID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSessionInvalidated
		}
		return fmt.Errorf("check login session: %w", err)
	}
	if current != jti {
		return ErrSessionInvalidated
	}
	return nil
}

// ValidateToken parses and verifies a JWT, returning its claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

func (s *AuthService) signToken(tokenType TokenType, userID int, jti string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType: tokenType,
		UserID:    userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
