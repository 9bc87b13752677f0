package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedLocalesShareKeys(t *testing.T) {
	m, err := Load("en")
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "ru"}, m.Languages())

	en := m.translations["en"]
	ru := m.translations["ru"]
	for key := range en {
		assert.Contains(t, ru, key, "ru locale misses %s", key)
	}
	for key := range ru {
		assert.Contains(t, en, key, "en locale misses %s", key)
	}
}

func TestTranslator_Fallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en.yaml": {Data: []byte("en:\n  menu:\n    main: Main menu\n    greeting: Hello %s\n")},
		"locales/de.yaml": {Data: []byte("de:\n  menu:\n    main: Hauptmenü\n")},
		"locales/README":  {Data: []byte("ignored")},
	}

	m, err := LoadFS(fsys, "locales", "EN")
	require.NoError(t, err)

	de := m.Translator("de")
	assert.Equal(t, "de", de.Lang())
	assert.Equal(t, "Hauptmenü", de.T("menu.main"))
	assert.Equal(t, "Hello Ann", de.Tf("menu.greeting", "Ann"))
	assert.Equal(t, "missing.key", de.T("missing.key"))

	unknown := m.Translator("fr")
	assert.Equal(t, "en", unknown.Lang())
	assert.Equal(t, "Main menu", unknown.T(" menu.main "))
}

func TestLoadFS_Errors(t *testing.T) {
	_, err := LoadFS(fstest.MapFS{"locales/en.txt": {Data: []byte("x")}}, "locales", "en")
	assert.Error(t, err)

	_, err = LoadFS(fstest.MapFS{"locales/ru.yaml": {Data: []byte("ru:\n  a: b\n")}}, "locales", "en")
	assert.Error(t, err)

	_, err = LoadFS(fstest.MapFS{"locales/en.yaml": {Data: []byte("en: [")}}, "locales", "en")
	assert.Error(t, err)
}
