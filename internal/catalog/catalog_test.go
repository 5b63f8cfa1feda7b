package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovelle/charbot/internal/domain"
	"github.com/rovelle/charbot/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

func testCharacters() []domain.Character {
	return []domain.Character{
		{ID: "elon_musk", Name: "Elon Musk", SystemPrompt: "You are Elon Musk."},
		{ID: "sherlock", Name: "Sherlock Holmes", SystemPrompt: "You are Sherlock Holmes."},
	}
}

func TestNew_Empty(t *testing.T) {
	_, err := New(nil, "", testLogger())
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestNew_DefaultByID(t *testing.T) {
	c, err := New(testCharacters(), "sherlock", testLogger())
	require.NoError(t, err)

	assert.Equal(t, "sherlock", c.Default().ID)
}

func TestNew_MissingDefaultFallsBackToFirst(t *testing.T) {
	c, err := New(testCharacters(), "gandalf", testLogger())
	require.NoError(t, err)

	// Lexicographically first id
	assert.Equal(t, "elon_musk", c.Default().ID)
}

func TestGet_UnknownResolvesToDefault(t *testing.T) {
	c, err := New(testCharacters(), "elon_musk", testLogger())
	require.NoError(t, err)

	assert.Equal(t, "sherlock", c.Get("sherlock").ID)
	assert.Equal(t, "elon_musk", c.Get("nobody").ID)
}

func TestLoad_FromDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	write("elon_musk.yaml", "name: Elon Musk\nsystemPrompt: You are Elon Musk.\n")
	write("sherlock.yml", "id: sherlock\nname: Sherlock Holmes\nuserPrompt: \"Watson asks: {query}\"\n")
	write("notes.txt", "not a character")

	c, err := Load(dir, "sherlock", testLogger())
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	// id defaults to the filename stem
	assert.Equal(t, "Elon Musk", c.Get("elon_musk").Name)
	assert.Equal(t, "Watson asks: {query}", c.Get("sherlock").UserPrompt)
	assert.Equal(t, "sherlock", c.Default().ID)
}

func TestLoad_MissingDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"), "", testLogger())
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestLoad_EmptyDir(t *testing.T) {
	_, err := Load(t.TempDir(), "", testLogger())
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestList_Sorted(t *testing.T) {
	c, err := New(testCharacters(), "", testLogger())
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, "elon_musk", list[0].ID)
	assert.Equal(t, "sherlock", list[1].ID)
}
