// Package auth implements account lifecycle and session issuance:
// registration with email confirmation, login, and rotating remember-me
// tokens in front of short-lived JWT access tokens.
package auth

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"voyago/backend/internal/config"
	"voyago/backend/internal/models"
)

var (
	// ErrEmailTaken is returned when registering an address that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password;
	// callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailUnconfirmed is returned when the account exists but its
	// email was never confirmed.
	ErrEmailUnconfirmed = errors.New("email not confirmed")
	// ErrInvalidToken is returned for unknown, expired, or already
	// consumed opaque tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Store is the slice of the storage layer the auth flows need.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ConfirmUserEmail(ctx context.Context, userID string) error
	SaveConfirmToken(ctx context.Context, token, userID string) error
	ResolveConfirmToken(ctx context.Context, token string) (string, error)
	PushRememberToken(ctx context.Context, userID, token string) error
	ResolveRememberToken(ctx context.Context, token string) (string, error)
	RevokeRememberToken(ctx context.Context, token string) error
}

// Service carries the account and session operations behind the auth
// endpoints and the admin CLI.
type Service struct {
	store  Store
	secret []byte
	log    zerolog.Logger
}

func NewService(store Store, secret []byte, log zerolog.Logger) *Service {
	return &Service{store: store, secret: secret, log: log}
}

// Registration is the result of creating an account: the unconfirmed user
// plus the single-use token that confirms its email address.
type Registration struct {
	User         *models.User
	ConfirmToken string
}

// Session is an authenticated sign-in: the access token, the user, and,
// when requested, an opaque remember-me token.
type Session struct {
	Token         string
	RememberToken string
	User          *models.User
}

// Register creates an unconfirmed traveler account and issues its
// confirmation token. The account cannot sign in until the token is
// redeemed.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*Registration, error) {
	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Role:         models.RoleTraveler,
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return nil, err
	}

	token := uuid.New().String()
	if err := s.store.SaveConfirmToken(ctx, token, user.ID); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("account registered, confirmation pending")
	return &Registration{User: &user, ConfirmToken: token}, nil
}

// ConfirmEmail redeems a confirmation token. Tokens are single use.
func (s *Service) ConfirmEmail(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.store.ResolveConfirmToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, ErrInvalidToken
	}

	if err := s.store.ConfirmUserEmail(ctx, userID); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// Login authenticates with email and password. Unknown email and wrong
// password collapse into one error; an unconfirmed email surfaces
// distinctly. With remember set, an opaque server-side token is issued so
// credentials never persist on the client.
func (s *Service) Login(ctx context.Context, email, password string, remember bool) (*Session, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.EmailConfirmed {
		return nil, ErrEmailUnconfirmed
	}

	token, err := s.issueJWT(user)
	if err != nil {
		return nil, err
	}

	session := &Session{Token: token, User: user}
	if remember {
		rememberToken := uuid.New().String()
		if err := s.store.PushRememberToken(ctx, user.ID, rememberToken); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("remember token store failed")
		} else {
			session.RememberToken = rememberToken
		}
	}
	return session, nil
}

// Refresh exchanges a remember-me token for a fresh session. Tokens rotate
// on every use; the presented token is dead afterwards.
func (s *Service) Refresh(ctx context.Context, rememberToken string) (*Session, error) {
	userID, err := s.store.ResolveRememberToken(ctx, rememberToken)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	if err := s.store.RevokeRememberToken(ctx, rememberToken); err != nil {
		s.log.Warn().Err(err).Msg("remember token revoke failed")
	}
	rotated := uuid.New().String()
	if err := s.store.PushRememberToken(ctx, user.ID, rotated); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("remember token rotate failed")
	}

	token, err := s.issueJWT(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, RememberToken: rotated, User: user}, nil
}

func (s *Service) issueJWT(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(config.AccessTokenTTL).Unix(),
		"iss":     "voyago-api",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
