package figurine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/pkg/logger"
	"github.com/admin/tg-bots/figurine-bot/internal/services/checkin"
	"github.com/admin/tg-bots/figurine-bot/internal/services/keypool"
	"github.com/admin/tg-bots/figurine-bot/internal/services/prompts"
)

type sentImage struct {
	url     string
	caption string
}

type fakeMessenger struct {
	mu       sync.Mutex
	texts    []string
	images   []sentImage
	imageErr error
}

func (m *fakeMessenger) SendText(_ context.Context, _ domain.ChatRef, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	return nil
}

func (m *fakeMessenger) SendImage(_ context.Context, _ domain.ChatRef, url, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.imageErr != nil {
		return m.imageErr
	}
	m.images = append(m.images, sentImage{url: url, caption: caption})
	return nil
}

func (m *fakeMessenger) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.texts) == 0 {
		return ""
	}
	return m.texts[len(m.texts)-1]
}

type fakeResolver struct {
	images [][]byte
}

func (r *fakeResolver) Resolve(context.Context, *domain.Message) [][]byte {
	return r.images
}

type fakeGenerator struct {
	multi  bool
	result domain.GenerationResult
	calls  int
	images [][]byte
	prompt string
}

func (g *fakeGenerator) Name() string             { return "fake" }
func (g *fakeGenerator) SupportsMultiImage() bool { return g.multi }

func (g *fakeGenerator) Generate(_ context.Context, images [][]byte, prompt string) domain.GenerationResult {
	g.calls++
	g.images = images
	g.prompt = prompt
	return g.result
}

type memCounter struct {
	counts map[string]int
}

func newMemCounter(init map[string]int) *memCounter {
	c := &memCounter{counts: map[string]int{}}
	for k, v := range init {
		c.counts[k] = v
	}
	return c
}

func (c *memCounter) Get(id string) int { return c.counts[id] }

func (c *memCounter) Decrement(id string) (int, error) {
	if c.counts[id] > 0 {
		c.counts[id]--
	}
	return c.counts[id], nil
}

func (c *memCounter) Add(id string, amount int) (int, error) {
	c.counts[id] += amount
	return c.counts[id], nil
}

type memLedger struct {
	dates map[string]string
}

func (l *memLedger) LastDate(userID string) string { return l.dates[userID] }

func (l *memLedger) Mark(userID, date string) error {
	l.dates[userID] = date
	return nil
}

func (l *memLedger) PruneBefore(string) (int, error) { return 0, nil }

type memSettings struct {
	settings domain.Settings
	saveErr  error
}

func (m *memSettings) Get() domain.Settings {
	return domain.Settings{
		APIKeys:    append([]string(nil), m.settings.APIKeys...),
		PromptList: append([]string(nil), m.settings.PromptList...),
	}
}

func (m *memSettings) SaveAPIKeys(keys []string) error {
	m.settings.APIKeys = keys
	return m.saveErr
}

func (m *memSettings) SavePromptList(entries []string) error {
	m.settings.PromptList = entries
	return m.saveErr
}

type fakeJournal struct {
	created []*domain.Generation
}

func (j *fakeJournal) Create(_ context.Context, g *domain.Generation) error {
	j.created = append(j.created, g)
	return nil
}

func (j *fakeJournal) ListRecent(context.Context, int) ([]*domain.Generation, error) {
	return j.created, nil
}

func (j *fakeJournal) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakeEvents struct {
	sent []*domain.Generation
}

func (e *fakeEvents) SendGenerationEvent(_ context.Context, g *domain.Generation) error {
	e.sent = append(e.sent, g)
	return nil
}

func (e *fakeEvents) Close() error { return nil }

type fakeAlerter struct {
	messages []string
}

func (a *fakeAlerter) SendAlert(_ context.Context, message string) error {
	a.messages = append(a.messages, message)
	return nil
}

type fakeArchive struct {
	files map[string][]byte
}

func (a *fakeArchive) PutFile(_ context.Context, path string, data []byte, _ string) error {
	a.files[path] = data
	return nil
}

func (a *fakeArchive) GetPresignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "https://s3.example/" + path, nil
}

type staticFetcher struct {
	data []byte
	err  error
}

func (f *staticFetcher) Fetch(context.Context, string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

var errDisk = errors.New("disk full")

type harness struct {
	svc       *Service
	messenger *fakeMessenger
	resolver  *fakeResolver
	generator *fakeGenerator
	users     *memCounter
	groups    *memCounter
	settings  *memSettings
	ledger    *memLedger
}

func defaultConfig() Config {
	return Config{
		Admins:          []string{"admin"},
		EnableUserLimit: true,
		Prefix:          true,
		ExtraPrefix:     "bnn",
		MaxMultiImages:  5,
	}
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()

	h := &harness{
		messenger: &fakeMessenger{},
		resolver:  &fakeResolver{images: [][]byte{[]byte("img")}},
		generator: &fakeGenerator{result: domain.Success("https://cdn.example/out.png")},
		users:     newMemCounter(map[string]int{"alice": 2}),
		groups:    newMemCounter(nil),
		settings: &memSettings{settings: domain.Settings{
			APIKeys:    []string{"sk-aaaaaaaaaaaa1111"},
			PromptList: []string{"手办化:make a figurine", "Q版化:chibi style"},
		}},
		ledger: &memLedger{dates: map[string]string{}},
	}

	log := logger.Discard()
	catalog := prompts.New(h.settings, log)
	pool := keypool.New(h.settings.settings.APIKeys)
	checkins := checkin.New(checkin.Config{Enabled: true, Fixed: 3}, h.users, h.ledger, log)

	h.svc = New(cfg, h.messenger, h.resolver, h.generator, h.users, h.groups, checkins, catalog, pool, h.settings, log)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h.svc.now = func() time.Time {
		now = now.Add(1500 * time.Millisecond)
		return now
	}
	return h
}

func privateMsg(sender, text string) *domain.Message {
	return &domain.Message{
		ID:        "1",
		Platform:  domain.PlatformOneBot,
		ChatID:    sender,
		SenderID:  sender,
		Addressed: true,
		Text:      text,
	}
}

func groupMsg(sender, group, text string) *domain.Message {
	return &domain.Message{
		ID:        "2",
		Platform:  domain.PlatformOneBot,
		ChatID:    group,
		SenderID:  sender,
		GroupID:   group,
		Addressed: true,
		Text:      text,
	}
}
