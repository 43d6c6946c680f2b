package controllers

import (
	"context"
	"fmt"
	"strings"

	"atelier/atelier/auth"
	"atelier/atelier/config"
	"atelier/atelier/sources/psql/models"

	"golang.org/x/crypto/bcrypt"

	"atelier/atelier/types"
)

// UserStore is what the auth controller needs from persistence. The
// GORM DAO implements it; tests use an in-memory fake.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
}

type AuthController struct {
	users UserStore
	cfg   config.Config
}

func NewAuthController(users UserStore, cfg config.Config) *AuthController {
	return &AuthController{users: users, cfg: cfg}
}

func (c *AuthController) Register(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: please provide email and password", types.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: invalid email", types.ErrValidation)
	}

	existing, err := c.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", types.ErrDuplicateEmail
	}

	// Only the salted hash is ever stored.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	user, err := c.users.CreateUser(ctx, email, string(hash))
	if err != nil {
		return "", err
	}

	return auth.GenerateToken(user.ID.String(), []byte(c.cfg.JWTSecret), c.cfg.TokenTTL)
}

// Login deliberately reports the same error for an unknown email and a
// wrong password, so callers cannot enumerate accounts.
func (c *AuthController) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: please provide email and password", types.ErrValidation)
	}

	user, err := c.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", types.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", types.ErrInvalidCredentials
	}

	return auth.GenerateToken(user.ID.String(), []byte(c.cfg.JWTSecret), c.cfg.TokenTTL)
}
