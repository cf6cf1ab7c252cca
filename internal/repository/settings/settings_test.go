package settingsRepo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/storage/jsonfile"
	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/pkg/logger"
)

func newStore(path string) *jsonfile.Store[domain.Settings] {
	return jsonfile.New(path, func() domain.Settings { return domain.Settings{} }, logger.Discard())
}

func TestNew_SeedsDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	defaults := domain.Settings{
		APIKeys:    []string{"sk-a"},
		PromptList: []string{"手办化:make it a figurine"},
	}

	repo, err := New(newStore(path), defaults, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, defaults, repo.Get())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"api_keys"`)
	assert.Contains(t, string(raw), `"prompt_list"`)
}

func TestNew_ExistingFileWinsOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_keys":["sk-saved"],"prompt_list":[]}`), 0o644))

	repo, err := New(newStore(path), domain.Settings{APIKeys: []string{"sk-env"}}, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"sk-saved"}, repo.Get().APIKeys)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	repo, err := New(newStore(path), domain.Settings{}, logger.Discard())
	require.NoError(t, err)

	require.NoError(t, repo.SaveAPIKeys([]string{"k1", "k2"}))
	require.NoError(t, repo.SavePromptList([]string{"a:b"}))

	reloaded, err := New(newStore(path), domain.Settings{}, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k2"}, reloaded.Get().APIKeys)
	assert.Equal(t, []string{"a:b"}, reloaded.Get().PromptList)
}

func TestLoadDefaultPrompts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
prompts:
  - key: 手办化
    prompt: "turn the subject into a 1/7 scale figurine"
  - key: " "
    prompt: skipped
`), 0o644))

	entries, err := LoadDefaultPrompts(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"手办化:turn the subject into a 1/7 scale figurine"}, entries)

	missing, err := LoadDefaultPrompts(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}
