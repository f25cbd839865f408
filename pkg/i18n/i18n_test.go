package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizer(t *testing.T) {
	require.NoError(t, LoadEmbedded())

	en := NewLocalizer("en")
	tr := NewLocalizer("TR ")
	unknown := NewLocalizer("de")

	assert.Equal(t, "tr", tr.Lang())
	assert.Equal(t, DefaultLanguage, unknown.Lang())

	assert.Contains(t, en.T("auth.noResponse"), "No response from server")
	assert.NotEqual(t, en.T("auth.noResponse"), tr.T("auth.noResponse"))
	assert.Equal(t, "auth.doesNotExist", en.T("auth.doesNotExist"))
}

func TestTWithParams(t *testing.T) {
	require.NoError(t, LoadEmbedded())

	msg := NewLocalizer("en").TWithParams("session.warning", map[string]string{"seconds": "90"})
	assert.Equal(t, "Your session will expire in 90 seconds.", msg)
}

func TestEveryLanguageHasTheSameKeys(t *testing.T) {
	require.NoError(t, LoadEmbedded())

	for key := range translations[DefaultLanguage] {
		for _, lang := range SupportedLanguages {
			_, ok := translations[lang][key]
			assert.True(t, ok, "%s missing in %s", key, lang)
		}
	}
}
