package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dermai-app/dermai-server/internal/logger"
	"github.com/dermai-app/dermai-server/internal/model"
)

// RegisterParams carries registration input.
type RegisterParams struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	DeviceInfo string
	IPAddress  string
}

// Auth handles registration, login and logout. Sessions are issued on
// both registration and login; the signup bonus flows through the
// ledger so the balance always equals the transaction sum.
type Auth struct {
	userStore   model.UserStore
	sessions    *Session
	ledger      *Ledger
	signupBonus int64
	logger      *logger.Logger
}

func NewAuth(userStore model.UserStore, sessions *Session, ledger *Ledger, signupBonus int64, logger *logger.Logger) *Auth {
	return &Auth{
		userStore:   userStore,
		sessions:    sessions,
		ledger:      ledger,
		signupBonus: signupBonus,
		logger:      logger,
	}
}

// Register creates the user, grants the signup bonus and issues a
// session.
func (a *Auth) Register(ctx context.Context, params RegisterParams) (model.User, model.Session, error) {
	_, err := a.userStore.GetByEmail(ctx, params.Email)
	if err == nil {
		return model.User{}, model.Session{}, model.ErrEmailTaken
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, model.Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := model.User{
		ID:           uuid.New(),
		Email:        params.Email,
		PasswordHash: hash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Credits:      0,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	user, err = a.userStore.Create(ctx, user)
	if err != nil {
		return model.User{}, model.Session{}, fmt.Errorf("failed to create user: %w", err)
	}

	if a.signupBonus > 0 {
		newBalance, err := a.ledger.Credit(ctx, user.ID, a.signupBonus, model.KindBonus, "signup bonus", nil)
		if err != nil {
			return model.User{}, model.Session{}, fmt.Errorf("failed to grant signup bonus: %w", err)
		}
		user.Credits = newBalance
	}

	session, err := a.sessions.Create(ctx, user.ID, params.DeviceInfo, params.IPAddress)
	if err != nil {
		return model.User{}, model.Session{}, err
	}

	a.logger.Info("user registered", "user_id", user.ID)
	return user, session, nil
}

// Login verifies the password and issues a new session. Expired
// sessions of the user are swept opportunistically.
func (a *Auth) Login(ctx context.Context, email, password, deviceInfo, ipAddress string) (model.User, model.Session, error) {
	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.Session{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, model.Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !user.Active {
		return model.User{}, model.Session{}, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return model.User{}, model.Session{}, model.ErrInvalidCredentials
	}

	a.sessions.SweepExpired(ctx, user.ID)

	session, err := a.sessions.Create(ctx, user.ID, deviceInfo, ipAddress)
	if err != nil {
		return model.User{}, model.Session{}, err
	}

	a.logger.Info("user logged in", "user_id", user.ID)
	return user, session, nil
}

// Logout revokes the session; unknown tokens are ignored.
func (a *Auth) Logout(ctx context.Context, token string) error {
	return a.sessions.Revoke(ctx, token)
}

// GetUser returns the user's profile, including the stored balance.
func (a *Auth) GetUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}
