package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/job-application-tracker/internal/middleware"
	"github.com/iliyamo/job-application-tracker/internal/model"
	"github.com/iliyamo/job-application-tracker/internal/repository"
	"github.com/iliyamo/job-application-tracker/internal/session"
)

// fakeAppStore is an in-memory ApplicationStore with the same ownership
// semantics as the real repository: lookups filter on id AND user id.
type fakeAppStore struct {
	apps  map[uint64]*model.Application
	next  uint64
	clock time.Time
}

func newFakeAppStore() *fakeAppStore {
	return &fakeAppStore{
		apps:  make(map[uint64]*model.Application),
		next:  1,
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeAppStore) ListByOwner(_ context.Context, userID uint64) ([]*model.Application, error) {
	var out []*model.Application
	for _, a := range f.apps {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeAppStore) Create(_ context.Context, a *model.Application) error {
	a.ID = f.next
	f.next++
	f.clock = f.clock.Add(time.Minute)
	a.CreatedAt = f.clock
	cp := *a
	f.apps[a.ID] = &cp
	return nil
}

func (f *fakeAppStore) Update(_ context.Context, a *model.Application) error {
	stored, ok := f.apps[a.ID]
	if !ok || stored.UserID != a.UserID {
		return repository.ErrApplicationNotFound
	}
	stored.CompanyName = a.CompanyName
	stored.JobTitle = a.JobTitle
	stored.JobURL = a.JobURL
	stored.Status = a.Status
	stored.Notes = a.Notes
	a.CreatedAt = stored.CreatedAt
	return nil
}

func (f *fakeAppStore) DeleteByIDAndOwner(_ context.Context, id, userID uint64) error {
	stored, ok := f.apps[id]
	if !ok || stored.UserID != userID {
		return repository.ErrApplicationNotFound
	}
	delete(f.apps, id)
	return nil
}

// appTestServer wires the CRUD routes behind the real session gate, the way
// the router does at startup.
func appTestServer(store ApplicationStore, sessions session.Store) *echo.Echo {
	e := echo.New()
	h := NewApplicationHandler(store)
	gate := middleware.SessionAuth(sessions)
	api := e.Group("/api", gate)
	api.GET("/applications", h.List)
	api.POST("/applications", h.Create)
	api.PUT("/applications/:id", h.Update)
	api.DELETE("/applications/:id", h.Delete)
	return e
}

func loginAs(t *testing.T, sessions session.Store, userID uint64) *http.Cookie {
	t.Helper()
	token, err := sessions.Create(context.Background(), userID, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: session.CookieName, Value: token}
}

func doJSON(e *echo.Echo, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestApplicationsRequireSession(t *testing.T) {
	e := appTestServer(newFakeAppStore(), session.NewMemoryStore())

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/applications"},
		{http.MethodPost, "/api/applications"},
		{http.MethodPut, "/api/applications/1"},
		{http.MethodDelete, "/api/applications/1"},
	} {
		rec := doJSON(e, tc.method, tc.path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
		require.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
	}
}

func TestListReturnsOnlyOwnRows(t *testing.T) {
	store := newFakeAppStore()
	sessions := session.NewMemoryStore()
	e := appTestServer(store, sessions)

	// Seed several users with differing numbers of applications.
	counts := map[uint64]int{1: 3, 2: 1, 3: 5}
	for uid, n := range counts {
		for i := 0; i < n; i++ {
			require.NoError(t, store.Create(context.Background(), &model.Application{
				UserID:      uid,
				CompanyName: fmt.Sprintf("Company-%d-%d", uid, i),
				JobTitle:    "Engineer",
				Status:      model.StatusApplied,
			}))
		}
	}

	for uid, n := range counts {
		rec := doJSON(e, http.MethodGet, "/api/applications", "", loginAs(t, sessions, uid))
		require.Equal(t, http.StatusOK, rec.Code)

		var items []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		require.Len(t, items, n)
		for _, item := range items {
			require.Contains(t, item["company_name"], fmt.Sprintf("Company-%d-", uid))
			require.NotContains(t, item, "user_id", "owner id must not leak into responses")
		}
	}
}

func TestListEmptyIsArrayNotNull(t *testing.T) {
	sessions := session.NewMemoryStore()
	e := appTestServer(newFakeAppStore(), sessions)

	rec := doJSON(e, http.MethodGet, "/api/applications", "", loginAs(t, sessions, 1))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestListOrdersMostRecentFirst(t *testing.T) {
	store := newFakeAppStore()
	sessions := session.NewMemoryStore()
	e := appTestServer(store, sessions)

	for _, name := range []string{"First", "Second", "Third"} {
		require.NoError(t, store.Create(context.Background(), &model.Application{
			UserID: 1, CompanyName: name, JobTitle: "Engineer", Status: model.StatusApplied,
		}))
	}

	rec := doJSON(e, http.MethodGet, "/api/applications", "", loginAs(t, sessions, 1))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 3)
	require.Equal(t, "Third", items[0]["company_name"])
	require.Equal(t, "Second", items[1]["company_name"])
	require.Equal(t, "First", items[2]["company_name"])
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	sessions := session.NewMemoryStore()
	e := appTestServer(newFakeAppStore(), sessions)
	cookie := loginAs(t, sessions, 1)

	cases := []struct {
		name    string
		body    string
		missing []string
	}{
		{"no company", `{"job_title":"Engineer"}`, []string{"company_name"}},
		{"no title", `{"company_name":"Acme"}`, []string{"job_title"}},
		{"neither", `{"job_url":"https://acme.example","notes":"hi","status":"Offered"}`, []string{"company_name", "job_title"}},
		{"whitespace only", `{"company_name":"   ","job_title":"\t"}`, []string{"company_name", "job_title"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/applications", tc.body, cookie)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp struct {
				Error  string   `json:"error"`
				Fields []string `json:"fields"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Equal(t, "missing required fields", resp.Error)
			require.Equal(t, tc.missing, resp.Fields)
		})
	}
}

func TestCreateDefaultsStatusToApplied(t *testing.T) {
	sessions := session.NewMemoryStore()
	e := appTestServer(newFakeAppStore(), sessions)

	rec := doJSON(e, http.MethodPost, "/api/applications",
		`{"company_name":"Acme","job_title":"Engineer"}`, loginAs(t, sessions, 1))
	require.Equal(t, http.StatusCreated, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "Applied", got["status"])
	require.NotZero(t, got["id"])
	require.NotEmpty(t, got["created_at"])
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	sessions := session.NewMemoryStore()
	e := appTestServer(newFakeAppStore(), sessions)

	rec := doJSON(e, http.MethodPost, "/api/applications",
		`{"company_name":"Acme","job_title":"Engineer","status":"Ghosted"}`, loginAs(t, sessions, 1))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"invalid status"}`, rec.Body.String())
}

func TestUpdateForeignRowLooksLikeMissingRow(t *testing.T) {
	store := newFakeAppStore()
	sessions := session.NewMemoryStore()
	e := appTestServer(store, sessions)

	owned := &model.Application{UserID: 2, CompanyName: "Acme", JobTitle: "Engineer", Status: model.StatusApplied}
	require.NoError(t, store.Create(context.Background(), owned))

	cookie := loginAs(t, sessions, 1)
	body := `{"company_name":"Acme","job_title":"Engineer","status":"Offered"}`

	// Someone else's row and a row that does not exist must be
	// indistinguishable: same status, same body.
	foreign := doJSON(e, http.MethodPut, fmt.Sprintf("/api/applications/%d", owned.ID), body, cookie)
	missing := doJSON(e, http.MethodPut, "/api/applications/9999", body, cookie)

	require.Equal(t, http.StatusNotFound, foreign.Code)
	require.Equal(t, http.StatusNotFound, missing.Code)
	require.JSONEq(t, missing.Body.String(), foreign.Body.String())
}

func TestDeleteForeignRowLooksLikeMissingRow(t *testing.T) {
	store := newFakeAppStore()
	sessions := session.NewMemoryStore()
	e := appTestServer(store, sessions)

	owned := &model.Application{UserID: 2, CompanyName: "Acme", JobTitle: "Engineer", Status: model.StatusApplied}
	require.NoError(t, store.Create(context.Background(), owned))

	cookie := loginAs(t, sessions, 1)
	foreign := doJSON(e, http.MethodDelete, fmt.Sprintf("/api/applications/%d", owned.ID), "", cookie)
	missing := doJSON(e, http.MethodDelete, "/api/applications/9999", "", cookie)

	require.Equal(t, http.StatusNotFound, foreign.Code)
	require.Equal(t, http.StatusNotFound, missing.Code)
	require.JSONEq(t, missing.Body.String(), foreign.Body.String())

	// The row is untouched.
	left, err := store.ListByOwner(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, left, 1)
}

func TestUpdateReplacesFieldsWholesale(t *testing.T) {
	store := newFakeAppStore()
	sessions := session.NewMemoryStore()
	e := appTestServer(store, sessions)

	app := &model.Application{
		UserID: 1, CompanyName: "Acme", JobTitle: "Engineer",
		JobURL: "https://acme.example/jobs/1", Status: model.StatusApplied, Notes: "initial",
	}
	require.NoError(t, store.Create(context.Background(), app))

	rec := doJSON(e, http.MethodPut, fmt.Sprintf("/api/applications/%d", app.ID),
		`{"company_name":"Acme Corp","job_title":"Senior Engineer","status":"Interviewing"}`,
		loginAs(t, sessions, 1))
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "Acme Corp", got["company_name"])
	require.Equal(t, "Senior Engineer", got["job_title"])
	require.Equal(t, "Interviewing", got["status"])
	// Wholesale replace: fields omitted from the body are cleared, not kept.
	require.Equal(t, "", got["job_url"])
	require.Equal(t, "", got["notes"])
}

func TestStatusMovesFreelyBetweenLabels(t *testing.T) {
	store := newFakeAppStore()
	sessions := session.NewMemoryStore()
	e := appTestServer(store, sessions)
	cookie := loginAs(t, sessions, 1)

	app := &model.Application{UserID: 1, CompanyName: "Acme", JobTitle: "Engineer", Status: model.StatusRejected}
	require.NoError(t, store.Create(context.Background(), app))

	// No enforced transition order: Rejected may go straight back to Applied.
	for _, status := range []string{"Offered", "Applied", "Interviewing", "Rejected", "Offered"} {
		rec := doJSON(e, http.MethodPut, fmt.Sprintf("/api/applications/%d", app.ID),
			fmt.Sprintf(`{"company_name":"Acme","job_title":"Engineer","status":%q}`, status), cookie)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

// failingAppStore answers every call with the same driver-level error, the
// way a dropped database connection would.
type failingAppStore struct{}

var errStoreDown = errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")

func (failingAppStore) ListByOwner(context.Context, uint64) ([]*model.Application, error) {
	return nil, errStoreDown
}
func (failingAppStore) Create(context.Context, *model.Application) error { return errStoreDown }
func (failingAppStore) Update(context.Context, *model.Application) error { return errStoreDown }
func (failingAppStore) DeleteByIDAndOwner(context.Context, uint64, uint64) error {
	return errStoreDown
}

func TestStoreFailureYieldsGenericError(t *testing.T) {
	sessions := session.NewMemoryStore()
	e := appTestServer(failingAppStore{}, sessions)
	cookie := loginAs(t, sessions, 1)

	body := `{"company_name":"Acme","job_title":"Engineer"}`
	cases := []struct {
		name, method, path, body string
		envelope                 string
	}{
		{"list", http.MethodGet, "/api/applications", "", `{"error":"could not load applications"}`},
		{"create", http.MethodPost, "/api/applications", body, `{"error":"could not create application"}`},
		{"update", http.MethodPut, "/api/applications/1", body, `{"error":"could not update application"}`},
		{"delete", http.MethodDelete, "/api/applications/1", "", `{"error":"could not delete application"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(e, tc.method, tc.path, tc.body, cookie)
			require.Equal(t, http.StatusInternalServerError, rec.Code)
			require.JSONEq(t, tc.envelope, rec.Body.String())
			// The driver error stays in the server log; the body must not
			// repeat it.
			require.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}

func TestApplicationLifecycle(t *testing.T) {
	store := newFakeAppStore()
	sessions := session.NewMemoryStore()
	e := appTestServer(store, sessions)
	cookie := loginAs(t, sessions, 1)

	// Create.
	rec := doJSON(e, http.MethodPost, "/api/applications",
		`{"company_name":"Acme","job_title":"Engineer"}`, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "Applied", created["status"])
	id := uint64(created["id"].(float64))

	// Move to Interviewing.
	rec = doJSON(e, http.MethodPut, fmt.Sprintf("/api/applications/%d", id),
		`{"company_name":"Acme","job_title":"Engineer","status":"Interviewing"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	// The list reflects the new status.
	rec = doJSON(e, http.MethodGet, "/api/applications", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	require.Equal(t, "Interviewing", items[0]["status"])

	// Delete, then the list no longer contains it.
	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/api/applications/%d", id), "", cookie)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())

	rec = doJSON(e, http.MethodGet, "/api/applications", "", cookie)
	require.JSONEq(t, `[]`, rec.Body.String())

	// A second delete of the same id reports not found.
	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/api/applications/%d", id), "", cookie)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
