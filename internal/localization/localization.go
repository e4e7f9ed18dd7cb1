// Package localization provides the client-facing notice strings the API
// returns: error notices, "already saved" hints, and similar transient
// messages. Catalogs load from JSON files keyed by language code, with a
// built-in English fallback so handlers work without a data directory.
package localization

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var defaultCatalog = map[string]string{
	"auth.invalid_credentials": "Invalid email or password",
	"auth.email_unconfirmed":   "Please confirm your email address before signing in",
	"auth.email_taken":         "An account with this email already exists",
	"auth.confirm_sent":        "Check your email for a confirmation link",
	"chat.send_failed":         "Your message could not be sent",
	"chat.load_failed":         "Messages could not be loaded",
	"wishlist.already_saved":   "This is already in your wishlist",
	"wishlist.saved":           "Saved to your wishlist",
	"wishlist.load_failed":     "Your wishlists could not be loaded",
	"operation.failed":         "Operation failed: %s",
}

// Localizer manages notice catalogs per language.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer returns a Localizer seeded with the built-in English
// catalog. If dir is non-empty, JSON files named by language code
// (e.g. "fr.json") are loaded on top.
func NewLocalizer(dir string) (*Localizer, error) {
	l := &Localizer{
		translations: map[string]map[string]string{"en": cloneCatalog(defaultCatalog)},
	}
	if dir == "" {
		return l, nil
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		lang := strings.TrimSuffix(file.Name(), ".json")

		data, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", file.Name(), err)
		}
		var catalog map[string]string
		if err := json.Unmarshal(data, &catalog); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", file.Name(), err)
		}

		l.mu.Lock()
		existing := l.translations[lang]
		if existing == nil {
			existing = make(map[string]string)
			l.translations[lang] = existing
		}
		for k, v := range catalog {
			existing[k] = v
		}
		l.mu.Unlock()
	}
	return l, nil
}

// Get returns the notice for a key in the given language, falling back to
// English and then to the key itself.
func (l *Localizer) Get(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if catalog, ok := l.translations[lang]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if msg, ok := l.translations["en"][key]; ok {
		return msg
	}
	return key
}

// Getf formats a parameterized notice.
func (l *Localizer) Getf(lang, key string, args ...interface{}) string {
	return fmt.Sprintf(l.Get(lang, key), args...)
}

func cloneCatalog(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
