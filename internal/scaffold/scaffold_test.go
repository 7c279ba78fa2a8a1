package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikihost/internal/config"
	"wikihost/internal/store"
)

func TestCreateNewSite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mywiki")
	require.NoError(t, CreateNewSite(dir))

	for _, path := range []string{
		"wiki.yaml",
		config.DefaultPages,
		"content/about.md",
		"archetypes/default.wiki",
		"static/css/style.css",
		"templates/simple/layout.html",
		"templates/simple/topic.html",
		"templates/simple/category.html",
	} {
		assert.FileExists(t, filepath.Join(dir, path))
	}

	cfg, err := config.LoadSiteConfig(filepath.Join(dir, "wiki.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "My Wiki", cfg.Title)

	st, err := store.Load(filepath.Join(dir, cfg.Pages))
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Google"}, st.Snapshot().IDs())
}

func TestCreateNewTopic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mywiki")
	require.NoError(t, CreateNewSite(dir))
	configPath := filepath.Join(dir, "wiki.yaml")

	require.NoError(t, CreateNewTopic("Rust", "Rust Language", configPath))

	st, err := store.Load(filepath.Join(dir, config.DefaultPages))
	require.NoError(t, err)
	markup, ok := st.Snapshot().Get("Rust")
	require.True(t, ok)
	assert.Contains(t, markup, "= Rust Language =")
	assert.Contains(t, markup, "[[Category:Uncategorized]]")

	err = CreateNewTopic("Rust", "Again", configPath)
	assert.ErrorIs(t, err, ErrTopicExists)
}

func TestCreateTopicMissingArchetype(t *testing.T) {
	dir := t.TempDir()
	corpus := filepath.Join(dir, "pages.json")
	require.NoError(t, os.WriteFile(corpus, []byte(`{}`), 0644))

	err := createTopic("Go", "Go", corpus, filepath.Join(dir, "missing.wiki"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// the corpus is untouched when the archetype cannot be read
	data, err := os.ReadFile(corpus)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}
