package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"authsync-service/internal/identity"
	"authsync-service/internal/identity/store"
	"authsync-service/internal/ingest"
	"authsync-service/internal/membersync"
	"authsync-service/internal/middleware"
	"authsync-service/internal/whitelist"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngestor struct {
	outcome ingest.Outcome
	err     error
	gotCode string
	gotIP   string
}

func (f *fakeIngestor) Ingest(ctx context.Context, code, originIP string) (ingest.Outcome, error) {
	f.gotCode = code
	f.gotIP = originIP
	if f.err != nil {
		return "", f.err
	}
	return f.outcome, nil
}

type fakeSyncer struct {
	report   membersync.Report
	err      error
	gotGroup string
}

func (f *fakeSyncer) Run(ctx context.Context, groupID string) (membersync.Report, error) {
	f.gotGroup = groupID
	return f.report, f.err
}

type failingStore struct{ store.Store }

func (failingStore) All(ctx context.Context) ([]identity.AuthorizedIdentity, error) {
	return nil, store.ErrStorageUnavailable
}

type fixture struct {
	router    *gin.Engine
	ingestor  *fakeIngestor
	syncer    *fakeSyncer
	credStore store.Store
	whitelist whitelist.Store
}

func newFixture(t *testing.T, credStore store.Store) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		ingestor:  &fakeIngestor{outcome: ingest.NewlyAuthorized},
		syncer:    &fakeSyncer{},
		credStore: credStore,
		whitelist: whitelist.NewMemoryStore(),
	}

	auth := middleware.NewAuthMiddleware("admin-token", f.whitelist)
	h := NewHandler(f.ingestor, f.syncer, f.credStore, f.whitelist, auth)

	f.router = gin.New()
	h.RegisterRoutes(f.router)
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func asAdmin(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer admin-token")
	return req
}

func TestCallback(t *testing.T) {
	t.Run("new identity", func(t *testing.T) {
		f := newFixture(t, store.NewMemoryStore())

		rec := f.do(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("abc123")))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Authorization successful!", rec.Body.String())
		assert.Equal(t, "abc123", f.ingestor.gotCode)
		assert.NotEmpty(t, f.ingestor.gotIP)
	})

	t.Run("duplicate identity", func(t *testing.T) {
		f := newFixture(t, store.NewMemoryStore())
		f.ingestor.outcome = ingest.AlreadyAuthorized

		rec := f.do(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("xyz789")))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "User already authorized.", rec.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newFixture(t, store.NewMemoryStore())
		f.ingestor.err = ingest.ErrInvalidInput

		rec := f.do(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("exchange failure is a generic 500", func(t *testing.T) {
		f := newFixture(t, store.NewMemoryStore())
		f.ingestor.err = errors.New("provider said: token abc is invalid")

		rec := f.do(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("abc123")))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		// No sensitive upstream detail leaks to the caller.
		assert.Equal(t, "An error occurred during authorization.", rec.Body.String())
	})
}

func TestIdentities(t *testing.T) {
	t.Run("returns the full collection", func(t *testing.T) {
		mem := store.NewMemoryStore()
		require.NoError(t, mem.Append(context.Background(), identity.AuthorizedIdentity{
			IdentityID:  "U1",
			DisplayName: "someone",
			AccessToken: "at-1",
		}))
		f := newFixture(t, mem)

		rec := f.do(asAdmin(httptest.NewRequest(http.MethodGet, "/identities", nil)))
		require.Equal(t, http.StatusOK, rec.Code)

		var got []identity.AuthorizedIdentity
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "U1", got[0].IdentityID)
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newFixture(t, failingStore{})

		rec := f.do(asAdmin(httptest.NewRequest(http.MethodGet, "/identities", nil)))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("requires operator auth", func(t *testing.T) {
		f := newFixture(t, store.NewMemoryStore())

		rec := f.do(httptest.NewRequest(http.MethodGet, "/identities", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestStock(t *testing.T) {
	mem := store.NewMemoryStore()
	for _, id := range []string{"U1", "U2", "U3"} {
		require.NoError(t, mem.Append(context.Background(), identity.AuthorizedIdentity{IdentityID: id}))
	}
	f := newFixture(t, mem)

	rec := f.do(asAdmin(httptest.NewRequest(http.MethodGet, "/stock", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":3}`, rec.Body.String())
}

func TestSync(t *testing.T) {
	t.Run("returns the report", func(t *testing.T) {
		f := newFixture(t, store.NewMemoryStore())
		f.syncer.report = membersync.Report{AlreadyMember: 1, Added: 1, Failed: 1, Total: 3}

		rec := f.do(asAdmin(httptest.NewRequest(http.MethodPost, "/sync/G1", nil)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "G1", f.syncer.gotGroup)
		assert.JSONEq(t, `{"already_member":1,"added":1,"failed":1,"total":3}`, rec.Body.String())
	})

	t.Run("concurrent run conflicts", func(t *testing.T) {
		f := newFixture(t, store.NewMemoryStore())
		f.syncer.err = membersync.ErrRunInProgress

		rec := f.do(asAdmin(httptest.NewRequest(http.MethodPost, "/sync/G1", nil)))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("whitelisted operator may trigger", func(t *testing.T) {
		f := newFixture(t, store.NewMemoryStore())
		require.NoError(t, f.whitelist.Add(context.Background(), "op-1"))

		req := httptest.NewRequest(http.MethodPost, "/sync/G1", nil)
		req.Header.Set("X-Operator-ID", "op-1")
		rec := f.do(req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestWhitelistEndpoints(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())

	t.Run("add", func(t *testing.T) {
		rec := f.do(asAdmin(httptest.NewRequest(http.MethodPut, "/whitelist/op-1", nil)))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("add conflict", func(t *testing.T) {
		rec := f.do(asAdmin(httptest.NewRequest(http.MethodPut, "/whitelist/op-1", nil)))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := f.do(asAdmin(httptest.NewRequest(http.MethodGet, "/whitelist", nil)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"operators":["op-1"]}`, rec.Body.String())
	})

	t.Run("remove", func(t *testing.T) {
		rec := f.do(asAdmin(httptest.NewRequest(http.MethodDelete, "/whitelist/op-1", nil)))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("remove missing", func(t *testing.T) {
		rec := f.do(asAdmin(httptest.NewRequest(http.MethodDelete, "/whitelist/op-1", nil)))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("operator header is not enough", func(t *testing.T) {
		require.NoError(t, f.whitelist.Add(context.Background(), "op-2"))
		req := httptest.NewRequest(http.MethodPut, "/whitelist/op-3", nil)
		req.Header.Set("X-Operator-ID", "op-2")
		rec := f.do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
