// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/nippo-app/nippo/internal/model"
	"github.com/nippo-app/nippo/internal/service"
	"github.com/nippo-app/nippo/internal/store"
)

func newEmployeesHandler(t *testing.T) (*EmployeesHandler, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	h := NewEmployeesHandler(env.db, testPepper, env.renderer, env.sessions, 15)
	return h, env
}

func TestEmployeesList(t *testing.T) {
	h, env := newEmployeesHandler(t)
	admin := createTestEmployee(t, env.db, "admin", "hash", model.RoleAdmin)

	rec := httptest.NewRecorder()
	req := requestAsEmployee(t, env.sessions, httptest.NewRequest(http.MethodGet, "/employees", nil), admin)
	h.List(rec, req)

	assertStatus(t, rec.Code, http.StatusOK)
}

func TestEmployeesCreate(t *testing.T) {
	h, env := newEmployeesHandler(t)
	admin := createTestEmployee(t, env.db, "admin", "hash", model.RoleAdmin)

	t.Run("valid input redirects to list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := requestAsEmployee(t, env.sessions, postForm("/employees", url.Values{
			"code":     {"E100"},
			"name":     {"New Hire"},
			"password": {"secret"},
			"role":     {model.RoleMember},
		}), admin)
		h.Create(rec, req)

		assertRedirect(t, rec, "/employees")

		count, err := store.New(env.db).CountEmployeesByCode(context.Background(), "E100")
		if err != nil {
			t.Fatalf("CountEmployeesByCode: %v", err)
		}
		if count != 1 {
			t.Errorf("employee count = %d; want 1", count)
		}
	})

	t.Run("validation errors re-render the form", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := requestAsEmployee(t, env.sessions, postForm("/employees", url.Values{
			"code": {""}, "name": {""}, "password": {""},
		}), admin)
		h.Create(rec, req)

		assertStatus(t, rec.Code, http.StatusOK)
		body := rec.Body.String()
		for _, msg := range []string{
			service.MsgEmployeeCodeRequired,
			service.MsgEmployeeNameRequired,
			service.MsgPasswordRequired,
		} {
			if !strings.Contains(body, msg) {
				t.Errorf("body missing %q", msg)
			}
		}
	})

	t.Run("duplicate code rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := requestAsEmployee(t, env.sessions, postForm("/employees", url.Values{
			"code": {"E100"}, "name": {"Imposter"}, "password": {"secret"},
		}), admin)
		h.Create(rec, req)

		assertStatus(t, rec.Code, http.StatusOK)
		if !strings.Contains(rec.Body.String(), service.MsgEmployeeCodeTaken) {
			t.Errorf("body missing duplicate message: %q", rec.Body.String())
		}
	})
}

func TestEmployeesShow(t *testing.T) {
	h, env := newEmployeesHandler(t)
	admin := createTestEmployee(t, env.db, "admin", "hash", model.RoleAdmin)
	target := createTestEmployee(t, env.db, "E001", "hash", model.RoleMember)

	t.Run("existing employee", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := requestAsEmployee(t, env.sessions,
			httptest.NewRequest(http.MethodGet, "/employees/1", nil), admin)
		req = requestWithURLParams(req, map[string]string{"id": strconv.FormatInt(target.ID, 10)})
		h.Show(rec, req)

		assertStatus(t, rec.Code, http.StatusOK)
	})

	t.Run("missing employee redirects with flash", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := requestAsEmployee(t, env.sessions,
			httptest.NewRequest(http.MethodGet, "/employees/999", nil), admin)
		req = requestWithURLParams(req, map[string]string{"id": "999"})
		h.Show(rec, req)

		assertRedirect(t, rec, "/employees")
	})

	t.Run("bad id redirects", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := requestAsEmployee(t, env.sessions,
			httptest.NewRequest(http.MethodGet, "/employees/abc", nil), admin)
		req = requestWithURLParams(req, map[string]string{"id": "abc"})
		h.Show(rec, req)

		assertRedirect(t, rec, "/employees")
	})
}

func TestEmployeesUpdate(t *testing.T) {
	h, env := newEmployeesHandler(t)
	admin := createTestEmployee(t, env.db, "admin", "hash", model.RoleAdmin)
	target := createTestEmployee(t, env.db, "E001", "hash", model.RoleMember)
	id := strconv.FormatInt(target.ID, 10)

	t.Run("unchanged code accepted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := requestAsEmployee(t, env.sessions, postForm("/employees/"+id, url.Values{
			"code": {"E001"}, "name": {"Renamed"}, "role": {model.RoleAdmin},
		}), admin)
		req = requestWithURLParams(req, map[string]string{"id": id})
		h.Update(rec, req)

		assertRedirect(t, rec, "/employees")

		got, err := store.New(env.db).GetEmployeeByID(context.Background(), target.ID)
		if err != nil {
			t.Fatalf("GetEmployeeByID: %v", err)
		}
		if got.Name != "Renamed" || got.Role != model.RoleAdmin {
			t.Errorf("employee = %+v", got)
		}
		// Empty password keeps the stored hash.
		if got.PasswordHash != "hash" {
			t.Errorf("PasswordHash = %q; want unchanged", got.PasswordHash)
		}
	})

	t.Run("code collision re-renders form", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := requestAsEmployee(t, env.sessions, postForm("/employees/"+id, url.Values{
			"code": {"admin"}, "name": {"Renamed"}, "role": {model.RoleMember},
		}), admin)
		req = requestWithURLParams(req, map[string]string{"id": id})
		h.Update(rec, req)

		assertStatus(t, rec.Code, http.StatusOK)
		if !strings.Contains(rec.Body.String(), service.MsgEmployeeCodeTaken) {
			t.Errorf("body missing duplicate message: %q", rec.Body.String())
		}
	})

	t.Run("missing employee redirects", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := requestAsEmployee(t, env.sessions, postForm("/employees/999", url.Values{
			"code": {"E999"}, "name": {"Ghost"},
		}), admin)
		req = requestWithURLParams(req, map[string]string{"id": "999"})
		h.Update(rec, req)

		assertRedirect(t, rec, "/employees")
	})
}

func TestEmployeesDelete(t *testing.T) {
	h, env := newEmployeesHandler(t)
	admin := createTestEmployee(t, env.db, "admin", "hash", model.RoleAdmin)
	target := createTestEmployee(t, env.db, "E001", "hash", model.RoleMember)
	id := strconv.FormatInt(target.ID, 10)

	rec := httptest.NewRecorder()
	req := requestAsEmployee(t, env.sessions, postForm("/employees/"+id+"/destroy", url.Values{}), admin)
	req = requestWithURLParams(req, map[string]string{"id": id})
	h.Delete(rec, req)

	assertRedirect(t, rec, "/employees")

	// Soft-deleted: the row survives with the flag set.
	got, err := store.New(env.db).GetEmployeeByID(context.Background(), target.ID)
	if err != nil {
		t.Fatalf("GetEmployeeByID: %v", err)
	}
	if !got.Deleted {
		t.Error("employee should be soft-deleted")
	}
}
