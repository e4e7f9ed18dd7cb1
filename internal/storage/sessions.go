package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"voyago/backend/internal/config"
	"voyago/backend/internal/models"
)

func rememberListKey(userID string) string { return "remember:user:" + userID }
func rememberTokenKey(token string) string { return "remember:token:" + token }
func confirmTokenKey(token string) string  { return "confirm:token:" + token }
func profileKey(userID string) string      { return "profile:" + userID }
func typingKey(conversationID, userID string) string {
	return "typing:conv:" + conversationID + ":user:" + userID
}

// rememberEntry is what the per-user token list stores, newest first.
type rememberEntry struct {
	Token    string    `json:"token"`
	LastUsed time.Time `json:"lastUsed"`
}

// PushRememberToken records an opaque remember-me token for the user. The
// per-user list is kept newest first and capped; tokens that fall off the
// end are revoked. Raw credentials are never stored.
func (s *Service) PushRememberToken(ctx context.Context, userID, token string) error {
	entry, err := json.Marshal(rememberEntry{Token: token, LastUsed: time.Now()})
	if err != nil {
		return err
	}

	if err := s.Redis.Set(ctx, rememberTokenKey(token), userID, config.RememberTokenTTL).Err(); err != nil {
		return err
	}
	if err := s.Redis.LPush(ctx, rememberListKey(userID), entry).Err(); err != nil {
		return err
	}

	// Revoke whatever the cap pushes out before trimming.
	evicted, err := s.Redis.LRange(ctx, rememberListKey(userID), config.MaxRememberTokens, -1).Result()
	if err != nil {
		return err
	}
	for _, raw := range evicted {
		var old rememberEntry
		if json.Unmarshal([]byte(raw), &old) == nil {
			s.Redis.Del(ctx, rememberTokenKey(old.Token))
		}
	}
	return s.Redis.LTrim(ctx, rememberListKey(userID), 0, config.MaxRememberTokens-1).Err()
}

// ResolveRememberToken maps a token back to a user id. Unknown or expired
// tokens return empty, not an error.
func (s *Service) ResolveRememberToken(ctx context.Context, token string) (string, error) {
	userID, err := s.Redis.Get(ctx, rememberTokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// RevokeRememberToken invalidates a single token.
func (s *Service) RevokeRememberToken(ctx context.Context, token string) error {
	return s.Redis.Del(ctx, rememberTokenKey(token)).Err()
}

// SaveConfirmToken records an email confirmation token. Unredeemed tokens
// expire with the TTL.
func (s *Service) SaveConfirmToken(ctx context.Context, token, userID string) error {
	return s.Redis.Set(ctx, confirmTokenKey(token), userID, config.EmailConfirmTTL).Err()
}

// ResolveConfirmToken maps a confirmation token back to a user id and
// consumes it; tokens are single use. Unknown or expired tokens return
// empty, not an error.
func (s *Service) ResolveConfirmToken(ctx context.Context, token string) (string, error) {
	userID, err := s.Redis.GetDel(ctx, confirmTokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// CacheProfile stores a profile snapshot under a TTL. The TTL bounds
// staleness; there is no explicit invalidation.
func (s *Service) CacheProfile(ctx context.Context, user *models.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, profileKey(user.ID), payload, config.ProfileCacheTTL).Err()
}

// CachedProfile loads a cached profile snapshot. A cache miss returns
// (nil, nil).
func (s *Service) CachedProfile(ctx context.Context, userID string) (*models.User, error) {
	raw, err := s.Redis.Get(ctx, profileKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetTyping marks the user as typing in a conversation for a short window.
func (s *Service) SetTyping(ctx context.Context, conversationID, userID string) error {
	return s.Redis.Set(ctx, typingKey(conversationID, userID), "1", config.TypingTTL).Err()
}

// IsTyping reports whether the user's typing window is still open.
func (s *Service) IsTyping(ctx context.Context, conversationID, userID string) (bool, error) {
	val, err := s.Redis.Get(ctx, typingKey(conversationID, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == "1", nil
}
