package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSiteConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want SiteConfig
	}{
		{
			name: "all fields",
			yaml: "title: Lore\ndescription: Things\nbaseurl: /wiki/\ntemplate: dark\npages: data/pages.json\n",
			want: SiteConfig{Title: "Lore", Description: "Things", BaseURL: "/wiki/", Template: "dark", Pages: "data/pages.json"},
		},
		{
			name: "defaults",
			yaml: "description: Things\n",
			want: SiteConfig{Title: DefaultTitle, Description: "Things", BaseURL: "/", Template: DefaultTemplate, Pages: DefaultPages},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "wiki.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))

			got, err := LoadSiteConfig(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadSiteConfigErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := LoadSiteConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("title: [unclosed"), 0644))
	_, err = LoadSiteConfig(bad)
	assert.ErrorIs(t, err, ErrConfigParse)
}

func TestResolvePath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("site", "pages.json"), ResolvePath(filepath.Join("site", "wiki.yaml"), "pages.json"))
	assert.Equal(t, "pages.json", ResolvePath("wiki.yaml", "pages.json"))

	abs := filepath.Join(t.TempDir(), "pages.json")
	assert.Equal(t, abs, ResolvePath(filepath.Join("site", "wiki.yaml"), abs))
}
