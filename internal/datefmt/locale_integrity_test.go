package datefmt_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/anniversary-cards/internal/datefmt"
)

func readLocale(t *testing.T, path string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var msgs map[string]string
	require.NoError(t, json.Unmarshal(data, &msgs), path)
	return msgs
}

// TestLocaleIntegrity checks that every locale file defines the same keys as English
// and that none is left empty.
func TestLocaleIntegrity(t *testing.T) {
	reference := readLocale(t, filepath.Join("locales", "active.en.json"))
	require.NotEmpty(t, reference)

	files, err := filepath.Glob(filepath.Join("locales", "active.*.json"))
	require.NoError(t, err)
	require.Len(t, files, len(datefmt.Languages()), "every file is loaded as a language")

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			msgs := readLocale(t, file)
			for key := range reference {
				val, ok := msgs[key]
				if assert.True(t, ok, "missing key %s", key) {
					assert.NotEmpty(t, strings.TrimSpace(val), "empty key %s", key)
				}
			}
			for key := range msgs {
				_, ok := reference[key]
				assert.True(t, ok, "unknown key %s", key)
			}
		})
	}
}

// TestLocaleIntegrity_Renders formats one date in every language without hitting the
// fallback chain.
func TestLocaleIntegrity_Renders(t *testing.T) {
	for _, lang := range datefmt.Languages() {
		t.Run(lang, func(t *testing.T) {
			for _, style := range []datefmt.Style{datefmt.Long, datefmt.Short, datefmt.Numeric, datefmt.Full} {
				f := datefmt.New(datefmt.Options{Style: style, Locale: lang})
				got := f.Format("2025-03-01")
				assert.NotEqual(t, "2025-03-01", got, "style %s", style)
				assert.Contains(t, got, "2025", "style %s", style)
			}
		})
	}
}
