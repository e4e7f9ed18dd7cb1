package auth

import (
	"context"
	"testing"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"voyago/backend/internal/models"
)

// memStore is an in-memory Store with the same single-use token semantics
// the Redis layer enforces.
type memStore struct {
	users          map[string]*models.User
	confirmTokens  map[string]string
	rememberTokens map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		users:          make(map[string]*models.User),
		confirmTokens:  make(map[string]string),
		rememberTokens: make(map[string]string),
	}
}

func (s *memStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *memStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (s *memStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memStore) ConfirmUserEmail(ctx context.Context, userID string) error {
	if u, ok := s.users[userID]; ok {
		u.EmailConfirmed = true
	}
	return nil
}

func (s *memStore) SaveConfirmToken(ctx context.Context, token, userID string) error {
	s.confirmTokens[token] = userID
	return nil
}

func (s *memStore) ResolveConfirmToken(ctx context.Context, token string) (string, error) {
	userID := s.confirmTokens[token]
	delete(s.confirmTokens, token)
	return userID, nil
}

func (s *memStore) PushRememberToken(ctx context.Context, userID, token string) error {
	s.rememberTokens[token] = userID
	return nil
}

func (s *memStore) ResolveRememberToken(ctx context.Context, token string) (string, error) {
	return s.rememberTokens[token], nil
}

func (s *memStore) RevokeRememberToken(ctx context.Context, token string) error {
	delete(s.rememberTokens, token)
	return nil
}

var testSecret = []byte("test-secret")

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	return NewService(store, testSecret, zerolog.Nop()), store
}

func TestRegisterConfirmLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, "ana@example.com", "correct horse", "Ana")
	assert.NoError(t, err)
	assert.NotEmpty(t, reg.ConfirmToken)
	assert.False(t, reg.User.EmailConfirmed)

	// Until the email is confirmed, valid credentials are not enough.
	_, err = svc.Login(ctx, "ana@example.com", "correct horse", false)
	assert.ErrorIs(t, err, ErrEmailUnconfirmed)

	confirmed, err := svc.ConfirmEmail(ctx, reg.ConfirmToken)
	assert.NoError(t, err)
	assert.True(t, confirmed.EmailConfirmed)

	session, err := svc.Login(ctx, "ana@example.com", "correct horse", false)
	assert.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, reg.User.ID, session.User.ID)
}

func TestLogin_CollapsesUnknownAndWrongPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, "ana@example.com", "correct horse", "Ana")
	assert.NoError(t, err)
	_, err = svc.ConfirmEmail(ctx, reg.ConfirmToken)
	assert.NoError(t, err)

	_, err = svc.Login(ctx, "ana@example.com", "wrong password", false)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "correct horse", false)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "ana@example.com", "correct horse", "Ana")
	assert.NoError(t, err)
	_, err = svc.Register(ctx, "ana@example.com", "another pass", "Ana Again")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestConfirmEmail_SingleUse(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, "ana@example.com", "correct horse", "Ana")
	assert.NoError(t, err)

	_, err = svc.ConfirmEmail(ctx, reg.ConfirmToken)
	assert.NoError(t, err)
	_, err = svc.ConfirmEmail(ctx, reg.ConfirmToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ConfirmEmail(ctx, "never issued")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_RotatesRememberToken(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, "ana@example.com", "correct horse", "Ana")
	assert.NoError(t, err)
	_, err = svc.ConfirmEmail(ctx, reg.ConfirmToken)
	assert.NoError(t, err)

	session, err := svc.Login(ctx, "ana@example.com", "correct horse", true)
	assert.NoError(t, err)
	assert.NotEmpty(t, session.RememberToken)

	refreshed, err := svc.Refresh(ctx, session.RememberToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, refreshed.Token)
	assert.NotEqual(t, session.RememberToken, refreshed.RememberToken)

	// The presented token died with the rotation.
	_, err = svc.Refresh(ctx, session.RememberToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuedJWT_CarriesIdentityClaims(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, "ana@example.com", "correct horse", "Ana")
	assert.NoError(t, err)
	_, err = svc.ConfirmEmail(ctx, reg.ConfirmToken)
	assert.NoError(t, err)
	session, err := svc.Login(ctx, "ana@example.com", "correct horse", false)
	assert.NoError(t, err)

	parsed, err := jwt.Parse(session.Token, func(*jwt.Token) (interface{}, error) {
		return testSecret, nil
	})
	assert.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, reg.User.ID, claims["user_id"])
	assert.Equal(t, models.RoleTraveler, claims["role"])
}
