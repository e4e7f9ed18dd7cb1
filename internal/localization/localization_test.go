package localization

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet_FallsBackToEnglishThenKey(t *testing.T) {
	l, err := NewLocalizer("")
	assert.NoError(t, err)

	assert.Equal(t, "Saved to your wishlist", l.Get("en", "wishlist.saved"))
	assert.Equal(t, "Saved to your wishlist", l.Get("fr", "wishlist.saved"))
	assert.Equal(t, "no.such.key", l.Get("en", "no.such.key"))
}

func TestGetf_FormatsOperationFailed(t *testing.T) {
	l, err := NewLocalizer("")
	assert.NoError(t, err)

	got := l.Getf("en", "operation.failed", errors.New("connection refused"))
	assert.Equal(t, "Operation failed: connection refused", got)
	assert.NotContains(t, got, "%s")
}
