package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mapSettings map[string]any

func (m mapSettings) GetString(key string) string {
	s, _ := m[key].(string)
	return s
}

func (m mapSettings) Set(key string, value any) {
	m[key] = value
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(keyring.NewArrayKeyring(nil))

	require.NoError(t, store.Set("gemini.api_key", "k-123"))
	got, err := store.Get("gemini.api_key")
	require.NoError(t, err)
	assert.Equal(t, "k-123", got)

	require.NoError(t, store.Delete("gemini.api_key"))
	_, err = store.Get("gemini.api_key")
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)
}

func TestFillOnlySetsEmptyKeys(t *testing.T) {
	store := NewStore(keyring.NewArrayKeyring([]keyring.Item{
		{Key: "mail.password", Data: []byte("from-keyring")},
		{Key: "gemini.api_key", Data: []byte("keyring-key")},
	}))
	settings := mapSettings{"gemini.api_key": "explicit-key"}

	require.NoError(t, store.Fill(settings, zaptest.NewLogger(t)))

	assert.Equal(t, "from-keyring", settings.GetString("mail.password"))
	assert.Equal(t, "explicit-key", settings.GetString("gemini.api_key"))
	assert.NotContains(t, settings, "openai.api_key")
}
