package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"github.com/roamplan/roamplan/internal/domain"
	"github.com/roamplan/roamplan/internal/usecase"
)

var tracer = otel.Tracer("auth")

type AuthService struct {
	users  usecase.UserRepository
	secret []byte
	expiry time.Duration

	// verified token -> user id, held until the token expires
	tokenCache *cache.Cache
}

func NewAuthService(users usecase.UserRepository, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		secret:     []byte(secret),
		expiry:     expiry,
		tokenCache: cache.New(5*time.Minute, 10*time.Minute),
	}
}

type AuthResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) Signup(ctx context.Context, email, displayName, password string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Signup")
	defer span.End()

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		err := fmt.Errorf("email already registered")
		span.RecordError(err)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "AuthService.Signup: hash password failed")
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "AuthService.Signup: create user failed")
	}

	token, err := s.issueToken(user)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Login")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return nil, domain.ErrForbidden
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		span.RecordError(err)
		return nil, domain.ErrForbidden
	}

	token, err := s.issueToken(user)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.users.Get(ctx, id)
}

func (s *AuthService) issueToken(user domain.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "AuthService.issueToken: sign failed")
	}
	return signed, nil
}

// Verify validates a bearer token and returns the user id it was
// issued for.
func (s *AuthService) Verify(ctx context.Context, tokenString string) (string, error) {
	_, span := tracer.Start(ctx, "Auth.Service.Verify")
	defer span.End()

	if userID, found := s.tokenCache.Get(tokenString); found {
		return userID.(string), nil
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		err := fmt.Errorf("invalid token claims")
		span.RecordError(err)
		return "", err
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		err := fmt.Errorf("token missing subject")
		span.RecordError(err)
		return "", err
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.tokenCache.Set(tokenString, userID, time.Until(exp.Time))
	}

	return userID, nil
}
