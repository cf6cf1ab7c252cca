package prompts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/pkg/logger"
)

type memSettings struct {
	settings domain.Settings
	saveErr  error
}

func (m *memSettings) Get() domain.Settings { return m.settings }

func (m *memSettings) SaveAPIKeys(keys []string) error {
	m.settings.APIKeys = keys
	return m.saveErr
}

// SavePromptList как jsonfile: значение меняется в памяти, ошибка только у записи
func (m *memSettings) SavePromptList(entries []string) error {
	m.settings.PromptList = entries
	return m.saveErr
}

func newCatalog(entries ...string) (*Catalog, *memSettings) {
	s := &memSettings{settings: domain.Settings{PromptList: entries}}
	return New(s, logger.Discard()), s
}

func TestRebuild_SkipsMalformedAndLastWins(t *testing.T) {
	c, _ := newCatalog("手办化:first", "broken entry", " Q版化 : chibi ", "手办化:second")

	v, ok := c.Lookup("手办化")
	require.True(t, ok)
	assert.Equal(t, "second", v)

	v, ok = c.Lookup("Q版化")
	require.True(t, ok)
	assert.Equal(t, "chibi", v)

	assert.Equal(t, []string{"Q版化", "手办化"}, c.Keys())
	assert.Len(t, c.Entries(), 4)
}

func TestAddOrUpdate(t *testing.T) {
	c, s := newCatalog("a:1", "b:2")

	require.NoError(t, c.AddOrUpdate("a", "10"))
	require.NoError(t, c.AddOrUpdate("c", "3"))

	assert.Equal(t, []string{"a:10", "b:2", "c:3"}, c.Entries())
	assert.Equal(t, c.Entries(), s.settings.PromptList)
	v, _ := c.Lookup("a")
	assert.Equal(t, "10", v)
}

func TestUpdate_NotFound(t *testing.T) {
	c, _ := newCatalog("a:1")
	err := c.Update("missing", "x")
	assert.ErrorIs(t, err, domain.ErrPromptNotFound)
}

func TestRemove(t *testing.T) {
	c, _ := newCatalog("a:1", "b:2")

	removed, err := c.Remove("a")
	require.NoError(t, err)
	assert.Equal(t, "a:1", removed)
	_, ok := c.Lookup("a")
	assert.False(t, ok)

	_, err = c.Remove("a")
	assert.ErrorIs(t, err, domain.ErrPromptNotFound)
}

func TestPersistFailureStaysInSyncWithSettings(t *testing.T) {
	c, s := newCatalog("a:1")
	s.saveErr = errors.New("disk full")

	err := c.AddOrUpdate("b", "2")
	assert.Error(t, err)
	v, ok := c.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, "2", v)
	assert.Equal(t, s.Get().PromptList, c.Entries())

	s.saveErr = nil
	require.NoError(t, c.AddOrUpdate("c", "3"))
	assert.Equal(t, []string{"a:1", "b:2", "c:3"}, s.Get().PromptList)
}

func TestParseEntry(t *testing.T) {
	k, v, ok := ParseEntry("姿势表：为这幅图创建一个姿势表")
	require.True(t, ok)
	assert.Equal(t, "姿势表", k)
	assert.Equal(t, "为这幅图创建一个姿势表", v)

	_, _, ok = ParseEntry("姿势表")
	assert.False(t, ok)
	_, _, ok = ParseEntry(":value")
	assert.False(t, ok)
}
