package altupdater_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	altupdater "github.com/thrawn01/alt-updater"
)

func TestParseMapping(t *testing.T) {
	content := "path,alt\n/img/a.jpg,\"Cat, sitting\"\n\n , \n/new/b.jpg,Dog,/old/b.jpg\n"

	rows, err := altupdater.ParseMapping([]byte(content))
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"path", "alt"},
		{"/img/a.jpg", "Cat, sitting"},
		{"/new/b.jpg", "Dog", "/old/b.jpg"},
	}, rows)
}

func TestLoadMappingFile(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("StripsBOM", func(t *testing.T) {
		path := filepath.Join(tempDir, "bom.csv")
		require.NoError(t, os.WriteFile(path, []byte("\xEF\xBB\xBFpath,alt\n/img/a.jpg,Cat\n"), 0644))

		rows, err := altupdater.LoadMappingFile(path)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "path", rows[0][0])
	})

	t.Run("Latin1", func(t *testing.T) {
		path := filepath.Join(tempDir, "latin1.csv")
		require.NoError(t, os.WriteFile(path, []byte("/img/cafe.jpg,Caf\xe9 terrace\n"), 0644))

		rows, err := altupdater.LoadMappingFile(path)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Café terrace", rows[0][1])
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := altupdater.LoadMappingFile(filepath.Join(tempDir, "missing.csv"))
		assert.Error(t, err)
	})
}

func TestFindMappingFile(t *testing.T) {
	const defaultName = "alt-text-output.csv"

	t.Run("Default", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, defaultName), nil, 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "other.csv"), nil, 0644))
		assert.Equal(t, filepath.Join(dir, defaultName), altupdater.FindMappingFile(dir, defaultName))
	})

	t.Run("OnlyCSV", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "images.csv"), nil, 0644))
		assert.Equal(t, filepath.Join(dir, "images.csv"), altupdater.FindMappingFile(dir, defaultName))
	})

	t.Run("NameMentionsAlt", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a-export.csv"), nil, 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "site-alts.csv"), nil, 0644))
		assert.Equal(t, filepath.Join(dir, "site-alts.csv"), altupdater.FindMappingFile(dir, defaultName))
	})

	t.Run("NothingFound", func(t *testing.T) {
		dir := t.TempDir()
		assert.Equal(t, filepath.Join(dir, defaultName), altupdater.FindMappingFile(dir, defaultName))
	})
}

func TestDecodeText(t *testing.T) {
	out, err := altupdater.DecodeText([]byte("plain ascii"))
	require.NoError(t, err)
	assert.Equal(t, "plain ascii", string(out))

	out, err = altupdater.DecodeText([]byte("na\xefve"))
	require.NoError(t, err)
	assert.Equal(t, "naïve", string(out))

	out, err = altupdater.DecodeText([]byte("\xEF\xBB\xBF{}"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(out))
}
