// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nippo-app/nippo/internal/model"
	"github.com/nippo-app/nippo/internal/session"
	"github.com/nippo-app/nippo/internal/store"
)

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

func createEmployee(t *testing.T, db *sql.DB, role string, deleted bool) model.Employee {
	t.Helper()
	now := time.Now()
	e, err := store.New(db).CreateEmployee(context.Background(), store.CreateEmployeeParams{
		Code:         "E001",
		Name:         "Test Employee",
		PasswordHash: "hash",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateEmployee: %v", err)
	}
	if deleted {
		if err := store.New(db).UpdateEmployee(context.Background(), store.UpdateEmployeeParams{
			Code: e.Code, Name: e.Name, PasswordHash: e.PasswordHash, Role: e.Role,
			UpdatedAt: now, Deleted: true, ID: e.ID,
		}); err != nil {
			t.Fatalf("UpdateEmployee: %v", err)
		}
		e.Deleted = true
	}
	return e
}

// sessionRequest builds a GET request whose context carries a live session
// for the given employee id (0 = anonymous).
func sessionRequest(t *testing.T, sm *session.Manager, employeeID int64) *http.Request {
	t.Helper()
	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	if employeeID != 0 {
		sm.PutEmployeeID(ctx, employeeID)
	}
	return httptest.NewRequest(http.MethodGet, "/reports", nil).WithContext(ctx)
}

func TestRequireLogin(t *testing.T) {
	sm := session.New(testDB(t), true)

	called := false
	h := RequireLogin(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	t.Run("anonymous redirected to login", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, sessionRequest(t, sm, 0))

		if rec.Code != http.StatusSeeOther {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Errorf("Location = %q, want /login", loc)
		}
		if called {
			t.Error("handler must not run for anonymous request")
		}
	})

	t.Run("logged in passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, sessionRequest(t, sm, 42))

		if !called {
			t.Error("handler should run for logged-in request")
		}
	})
}

func TestLoadEmployee(t *testing.T) {
	db := testDB(t)
	sm := session.New(db, true)

	t.Run("active employee loaded into context", func(t *testing.T) {
		e := createEmployee(t, db, model.RoleMember, false)

		var got *model.Employee
		h := LoadEmployee(sm, db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = GetEmployee(r)
		}))

		h.ServeHTTP(httptest.NewRecorder(), sessionRequest(t, sm, e.ID))

		if got == nil {
			t.Fatal("employee not in context")
		}
		if got.ID != e.ID {
			t.Errorf("ID = %d, want %d", got.ID, e.ID)
		}
	})

	t.Run("deleted employee kicked back to login", func(t *testing.T) {
		db := testDB(t)
		sm := session.New(db, true)
		e := createEmployee(t, db, model.RoleMember, true)

		called := false
		h := LoadEmployee(sm, db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, sessionRequest(t, sm, e.ID))

		if called {
			t.Error("handler must not run for a deleted employee")
		}
		if rec.Code != http.StatusSeeOther {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
		}
	})

	t.Run("anonymous request untouched", func(t *testing.T) {
		var got *model.Employee
		h := LoadEmployee(sm, db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = GetEmployee(r)
		}))

		h.ServeHTTP(httptest.NewRecorder(), sessionRequest(t, sm, 0))

		if got != nil {
			t.Errorf("GetEmployee() = %v, want nil", got)
		}
	})
}

func TestGetEmployee(t *testing.T) {
	t.Run("no employee in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if e := GetEmployee(req); e != nil {
			t.Errorf("GetEmployee() = %v, want nil", e)
		}
	})

	t.Run("employee in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), ContextKeyEmployee, model.Employee{ID: 123, Code: "E001"})
		req = req.WithContext(ctx)

		e := GetEmployee(req)
		if e == nil {
			t.Fatal("GetEmployee() = nil, want employee")
		}
		if e.ID != 123 {
			t.Errorf("ID = %d, want 123", e.ID)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	withEmployee := func(e model.Employee) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/employees", nil)
		return req.WithContext(context.WithValue(req.Context(), ContextKeyEmployee, e))
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("admin allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireAdmin(true, nil)(handler).ServeHTTP(rec, withEmployee(model.Employee{ID: 1, Role: model.RoleAdmin}))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("member forbidden when enforced", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireAdmin(true, nil)(handler).ServeHTTP(rec, withEmployee(model.Employee{ID: 2, Role: model.RoleMember}))

		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("denial rendered by the forbidden handler", func(t *testing.T) {
		rec := httptest.NewRecorder()
		forbidden := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("error page"))
		}
		RequireAdmin(true, forbidden)(handler).ServeHTTP(rec, withEmployee(model.Employee{ID: 2, Role: model.RoleMember}))

		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
		if body := rec.Body.String(); body != "error page" {
			t.Errorf("body = %q, want the forbidden page", body)
		}
	})

	t.Run("member allowed when enforcement disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireAdmin(false, nil)(handler).ServeHTTP(rec, withEmployee(model.Employee{ID: 2, Role: model.RoleMember}))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("anonymous redirected even when enforcement disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/employees", nil)
		RequireAdmin(false, nil)(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Errorf("status = %d, want 303", rec.Code)
		}
	})
}
