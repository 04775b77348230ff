package service

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"agenteval/internal/model"
	"agenteval/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUsernameTaken      = errors.New("username already exists")
)

// AuthService handles login and token validation for admins and raters
type AuthService struct {
	users     repository.UserRepo
	jwtSecret []byte
}

// NewAuthService creates a new auth service
func NewAuthService(users repository.UserRepo) *AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super-secret-key-change-in-production"
	}
	return &AuthService{
		users:     users,
		jwtSecret: []byte(secret),
	}
}

// Login validates credentials and returns a token plus the rater's assigned
// topic set, when one exists.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password != password {
		return nil, ErrInvalidCredentials
	}

	claims := &model.UserClaims{
		UserID:   user.ID,
		Username: user.UserName,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	resp := &model.LoginResponse{
		Token:    tokenString,
		UserID:   user.ID,
		Username: user.UserName,
		Role:     user.Role,
	}
	if topicID, err := s.users.GetTopicForUser(ctx, user.ID); err == nil {
		resp.TopicID = topicID
	}
	return resp, nil
}

// ValidateToken validates a JWT and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*model.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CreateUser registers a new account (admin operation)
func (s *AuthService) CreateUser(ctx context.Context, username, password, role string) (*model.User, error) {
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	if role == "" {
		role = model.RoleRater
	}

	user := &model.User{
		UserName: username,
		Password: password,
		Role:     role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// AssignTopic maps a rater to a topic set, replacing any prior assignment
func (s *AuthService) AssignTopic(ctx context.Context, userID string, topicID int) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New("user not found")
	}
	return s.users.UpsertTopicMapping(ctx, &model.UserTopicMapping{
		UserID:   user.ID,
		UserName: user.UserName,
		TopicID:  topicID,
	})
}

// TopicForUser returns the user's assigned topic set id, 0 when unassigned
func (s *AuthService) TopicForUser(ctx context.Context, userID string) (int, error) {
	return s.users.GetTopicForUser(ctx, userID)
}

// ListUsers returns all accounts (admin operation)
func (s *AuthService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.users.List(ctx)
}

// DeleteUser removes an account and its topic assignment
func (s *AuthService) DeleteUser(ctx context.Context, userID string) error {
	return s.users.Delete(ctx, userID)
}
