package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/pkg/logger"
)

const token = "admin-secret"

type fakeQuota struct {
	counts map[domain.QuotaScope]map[string]int
}

func (q *fakeQuota) QuotaOf(scope domain.QuotaScope, id string) (int, error) {
	if !scope.IsValid() {
		return 0, domain.ErrInvalidScope
	}
	return q.counts[scope][id], nil
}

func (q *fakeQuota) Grant(scope domain.QuotaScope, id string, amount int) (int, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	if !scope.IsValid() {
		return 0, domain.ErrInvalidScope
	}
	q.counts[scope][id] += amount
	return q.counts[scope][id], nil
}

type fakeJournal struct {
	items []*domain.Generation
	limit int
}

func (j *fakeJournal) Create(context.Context, *domain.Generation) error { return nil }

func (j *fakeJournal) ListRecent(_ context.Context, limit int) ([]*domain.Generation, error) {
	j.limit = limit
	return j.items, nil
}

func (j *fakeJournal) DeleteOlderThan(context.Context, time.Time) (int64, error) { return 0, nil }

type fakeArchive struct{}

func (fakeArchive) PutFile(context.Context, string, []byte, string) error { return nil }

func (fakeArchive) GetPresignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "https://s3.example/" + path + "?sig=1", nil
}

func newRouter(journal *fakeJournal) (*gin.Engine, *fakeQuota) {
	gin.SetMode(gin.TestMode)
	q := &fakeQuota{counts: map[domain.QuotaScope]map[string]int{
		domain.ScopeUser:  {"alice": 3},
		domain.ScopeGroup: {},
	}}
	r := gin.New()
	c := New(q, nil, nil, token, logger.Discard())
	if journal != nil {
		c = New(q, journal, fakeArchive{}, token, logger.Discard())
	}
	c.RegisterRoutes(r)
	return r, q
}

func do(r *gin.Engine, method, path, body, tok string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("X-Admin-Token", tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdmin_RequiresToken(t *testing.T) {
	r, _ := newRouter(nil)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/admin/quota/user/alice", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/admin/quota/user/alice", "", "nope").Code)
}

func TestAdmin_GetQuota(t *testing.T) {
	r, _ := newRouter(nil)

	w := do(r, http.MethodGet, "/admin/quota/user/alice", "", token)
	require.Equal(t, http.StatusOK, w.Code)

	var resp QuotaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, QuotaResponse{Scope: domain.ScopeUser, ID: "alice", Remaining: 3}, resp)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/admin/quota/channel/x", "", token).Code)
}

func TestAdmin_Grant(t *testing.T) {
	r, q := newRouter(nil)

	w := do(r, http.MethodPost, "/admin/quota/grant", `{"scope":"group","id":"-100500","amount":7}`, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, q.counts[domain.ScopeGroup]["-100500"])

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/admin/quota/grant", `{"scope":"group","id":"g"}`, token).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/admin/quota/grant", `{"scope":"group","id":"g","amount":-1}`, token).Code)
}

func TestAdmin_ListGenerations(t *testing.T) {
	r, _ := newRouter(nil)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/admin/generations", "", token).Code)

	key := "generations/2026/03/01/x.png"
	journal := &fakeJournal{items: []*domain.Generation{
		{ID: uuid.New(), Status: domain.GenerationSucceeded, ArchiveKey: &key},
		{ID: uuid.New(), Status: domain.GenerationFailed},
	}}
	r, _ = newRouter(journal)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/admin/generations?limit=zero", "", token).Code)

	w := do(r, http.MethodGet, "/admin/generations?limit=500", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, maxListLimit, journal.limit)

	var resp struct {
		Generations []struct {
			Status     string `json:"status"`
			ArchiveURL string `json:"archive_url"`
		} `json:"generations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Generations, 2)
	assert.Equal(t, "https://s3.example/"+key+"?sig=1", resp.Generations[0].ArchiveURL)
	assert.Empty(t, resp.Generations[1].ArchiveURL)
}
