// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nippo-app/nippo/internal/middleware"
	"github.com/nippo-app/nippo/internal/model"
	"github.com/nippo-app/nippo/internal/render"
	"github.com/nippo-app/nippo/internal/service"
	"github.com/nippo-app/nippo/internal/session"
)

// EmployeesHandler handles employee management routes. The whole resource
// is admin-gated by middleware; handlers assume an authorized caller.
type EmployeesHandler struct {
	employees *service.EmployeeService
	renderer  *render.Renderer
	sessions  *session.Manager
	perPage   int
}

// NewEmployeesHandler creates a new EmployeesHandler.
func NewEmployeesHandler(db *sql.DB, pepper string, renderer *render.Renderer, sm *session.Manager, perPage int) *EmployeesHandler {
	return &EmployeesHandler{
		employees: service.NewEmployeeService(db, pepper),
		renderer:  renderer,
		sessions:  sm,
		perPage:   perPage,
	}
}

// EmployeesListData holds data for the employees list template.
type EmployeesListData struct {
	Employees  []model.Employee
	Pagination Pagination
}

// List handles GET /employees - displays a paginated list of active employees.
func (h *EmployeesHandler) List(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)

	total, err := h.employees.CountAll(r.Context())
	if err != nil {
		logAndInternalError(w, r, "failed to count employees", "error", err)
		return
	}

	pagination := BuildPagination(page, total, h.perPage, redirectEmployees)
	employees, err := h.employees.GetPage(r.Context(), pagination.CurrentPage, h.perPage)
	if err != nil {
		logAndInternalError(w, r, "failed to list employees", "error", err)
		return
	}

	renderPage(w, r, h.renderer, "employees/list", render.TemplateData{
		Title: "Employees",
		Data: EmployeesListData{
			Employees:  employees,
			Pagination: pagination,
		},
	})
}

// EmployeeFormData holds data for the employee form template.
type EmployeeFormData struct {
	Employee model.Employee
	Roles    []string
	IsEdit   bool
}

// NewForm handles GET /employees/new - displays the registration form.
func (h *EmployeesHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, "employees/form", render.TemplateData{
		Title: "New Employee",
		Data: EmployeeFormData{
			Employee: model.Employee{Role: model.RoleMember},
			Roles:    model.ValidRoles,
		},
	})
}

// Create handles POST /employees - registers a new employee. Validation
// errors re-render the form with the submitted values echoed back.
func (h *EmployeesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.sessions, redirectEmployeesNew) {
		return
	}

	in := service.EmployeeInput{
		Code:     strings.TrimSpace(r.FormValue("code")),
		Name:     strings.TrimSpace(r.FormValue("name")),
		Password: r.FormValue("password"),
		Role:     h.formRole(r),
	}

	candidate, errs, err := h.employees.Create(r.Context(), in)
	if err != nil {
		logAndInternalError(w, r, "failed to create employee", "error", err)
		return
	}
	if len(errs) > 0 {
		renderPage(w, r, h.renderer, "employees/form", render.TemplateData{
			Title:  "New Employee",
			Errors: errs,
			Data: EmployeeFormData{
				Employee: candidate,
				Roles:    model.ValidRoles,
			},
		})
		return
	}

	slog.InfoContext(r.Context(), "employee created", "employee_id", candidate.ID, "code", candidate.Code,
		"created_by", middleware.EmployeeIDFromContext(r.Context()))
	flashSuccess(w, r, h.sessions, redirectEmployees, "Employee registered successfully")
}

// EmployeeShowData holds data for the employee detail template.
type EmployeeShowData struct {
	Employee model.Employee
}

// Show handles GET /employees/{id} - displays an employee.
func (h *EmployeesHandler) Show(w http.ResponseWriter, r *http.Request) {
	employee, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}

	renderPage(w, r, h.renderer, "employees/show", render.TemplateData{
		Title: employee.Name,
		Data:  EmployeeShowData{Employee: employee},
	})
}

// EditForm handles GET /employees/{id}/edit - displays the edit form.
func (h *EmployeesHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	employee, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}

	renderPage(w, r, h.renderer, "employees/form", render.TemplateData{
		Title: "Edit Employee",
		Data: EmployeeFormData{
			Employee: employee,
			Roles:    model.ValidRoles,
			IsEdit:   true,
		},
	})
}

// Update handles POST /employees/{id} - updates an employee. An empty
// password field keeps the current password.
func (h *EmployeesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		flashError(w, r, h.sessions, redirectEmployees, "Invalid employee ID")
		return
	}

	if !parseFormOrRedirect(w, r, h.sessions, redirectEmployees) {
		return
	}

	in := service.EmployeeInput{
		ID:       id,
		Code:     strings.TrimSpace(r.FormValue("code")),
		Name:     strings.TrimSpace(r.FormValue("name")),
		Password: r.FormValue("password"),
		Role:     h.formRole(r),
	}

	candidate, errs, err := h.employees.Update(r.Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			flashError(w, r, h.sessions, redirectEmployees, "Employee not found")
			return
		}
		logAndInternalError(w, r, "failed to update employee", "error", err, "employee_id", id)
		return
	}
	if len(errs) > 0 {
		renderPage(w, r, h.renderer, "employees/form", render.TemplateData{
			Title:  "Edit Employee",
			Errors: errs,
			Data: EmployeeFormData{
				Employee: candidate,
				Roles:    model.ValidRoles,
				IsEdit:   true,
			},
		})
		return
	}

	slog.InfoContext(r.Context(), "employee updated", "employee_id", id,
		"updated_by", middleware.EmployeeIDFromContext(r.Context()))
	flashSuccess(w, r, h.sessions, redirectEmployees, "Employee updated successfully")
}

// Delete handles POST /employees/{id}/destroy - soft-deletes an employee.
// The record stays in the database; only the flag flips.
func (h *EmployeesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		flashError(w, r, h.sessions, redirectEmployees, "Invalid employee ID")
		return
	}

	if err := h.employees.Destroy(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			flashError(w, r, h.sessions, redirectEmployees, "Employee not found")
			return
		}
		logAndInternalError(w, r, "failed to delete employee", "error", err, "employee_id", id)
		return
	}

	slog.InfoContext(r.Context(), "employee deleted", "employee_id", id,
		"deleted_by", middleware.EmployeeIDFromContext(r.Context()))
	flashSuccess(w, r, h.sessions, redirectEmployees, "Employee deleted successfully")
}

// formRole returns the submitted role, defaulting to member for anything
// outside the known set.
func (h *EmployeesHandler) formRole(r *http.Request) string {
	role := r.FormValue("role")
	if !model.IsValidRole(role) {
		return model.RoleMember
	}
	return role
}

// requireEmployee fetches the employee addressed by the {id} route param,
// redirecting with a flash on bad ids and missing records.
func (h *EmployeesHandler) requireEmployee(w http.ResponseWriter, r *http.Request) (model.Employee, bool) {
	id, err := ParseIDParam(r)
	if err != nil {
		flashError(w, r, h.sessions, redirectEmployees, "Invalid employee ID")
		return model.Employee{}, false
	}
	return requireEntityWithRedirect(w, r, h.sessions, redirectEmployees, "Employee", id,
		func(id int64) (model.Employee, error) { return h.employees.FindOne(r.Context(), id) })
}
