package handler

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"github.com/nippo-app/nippo/internal/middleware"
	"github.com/nippo-app/nippo/internal/model"
	"github.com/nippo-app/nippo/internal/render"
	"github.com/nippo-app/nippo/internal/session"
	"github.com/nippo-app/nippo/internal/store"
)

const testPepper = "handler-test-pepper-0123456789"

// testEnv bundles the shared collaborators the handlers need.
type testEnv struct {
	db       *sql.DB
	sessions *session.Manager
	renderer *render.Renderer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testDB(t)
	sm := session.New(db, true)
	return &testEnv{
		db:       db,
		sessions: sm,
		renderer: testRenderer(t, sm),
	}
}

// testDB creates an in-memory SQLite database with the required schema for testing.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE employees (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'member',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			delete_flag INTEGER NOT NULL DEFAULT 0
		);
		CREATE UNIQUE INDEX idx_employees_code_active ON employees(code) WHERE delete_flag = 0;

		CREATE TABLE reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			employee_id INTEGER NOT NULL,
			report_date DATE NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (employee_id) REFERENCES employees(id)
		);

		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// testRenderer builds a renderer with minimal templates covering every page
// the handlers render.
func testRenderer(t *testing.T, sm *session.Manager) *render.Renderer {
	t.Helper()

	base := &fstest.MapFile{Data: []byte(
		`{{define "base"}}{{range .Errors}}<li>{{.}}</li>{{end}}{{template "content" .}}{{end}}`)}
	page := &fstest.MapFile{Data: []byte(`{{define "content"}}{{.Title}}{{end}}`)}

	r, err := render.New(render.Config{
		TemplatesFS: fstest.MapFS{
			"layouts/base.html":   base,
			"auth/login.html":     page,
			"employees/list.html": page,
			"employees/form.html": page,
			"employees/show.html": page,
			"reports/list.html":   page,
			"reports/form.html":   page,
			"reports/show.html":   page,
			"top/index.html":      page,
			"errors/error.html":   page,
		},
		Sessions: sm,
	})
	if err != nil {
		t.Fatalf("failed to build test renderer: %v", err)
	}
	return r
}

// createTestEmployee inserts an employee directly through the store layer.
func createTestEmployee(t *testing.T, db *sql.DB, code, hash, role string) model.Employee {
	t.Helper()

	now := time.Now()
	e, err := store.New(db).CreateEmployee(context.Background(), store.CreateEmployeeParams{
		Code:         code,
		Name:         "Employee " + code,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("failed to create test employee: %v", err)
	}
	return e
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// requestWithSession wraps a request with a fresh session context.
func requestWithSession(t *testing.T, sm *session.Manager, r *http.Request) *http.Request {
	t.Helper()
	ctx, err := sm.Load(r.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	return r.WithContext(ctx)
}

// requestAsEmployee wraps a request with a session and the employee loaded
// into the context, the way the middleware chain would.
func requestAsEmployee(t *testing.T, sm *session.Manager, r *http.Request, e model.Employee) *http.Request {
	t.Helper()
	r = requestWithSession(t, sm, r)
	sm.PutEmployeeID(r.Context(), e.ID)
	ctx := context.WithValue(r.Context(), middleware.ContextKeyEmployee, e)
	return r.WithContext(ctx)
}

// assertStatus checks if the response status code matches the expected value.
func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}

// assertRedirect checks for a 303 redirect to the expected location.
func assertRedirect(t *testing.T, rec interface {
	Result() *http.Response
}, want string) {
	t.Helper()
	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d; want %d", res.StatusCode, http.StatusSeeOther)
	}
	if loc := res.Header.Get("Location"); loc != want {
		t.Errorf("Location = %q; want %q", loc, want)
	}
}
