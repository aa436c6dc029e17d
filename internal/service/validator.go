// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the entity lifecycles: validation, persistence,
// soft-delete, and the authentication and ownership rules that gate every
// mutating operation.
package service

import "context"

// Validation messages. Collected in a fixed order so forms can show the
// complete set of violations in one pass.
const (
	MsgEmployeeCodeRequired = "Employee code is required"
	MsgEmployeeCodeTaken    = "An employee with this code is already registered"
	MsgEmployeeNameRequired = "Name is required"
	MsgPasswordRequired     = "Password is required"

	MsgReportTitleRequired   = "Title is required"
	MsgReportContentRequired = "Content is required"
)

// CodeCounter counts active employees holding a given code. Satisfied by
// *store.Queries.
type CodeCounter interface {
	CountEmployeesByCode(ctx context.Context, code string) (int64, error)
}

// ValidateEmployee checks an employee candidate and returns the error
// messages in the fixed order code, name, password. All three checks always
// run; nothing short-circuits, so the caller receives every violation.
//
// The duplicate-code check runs only when checkCodeDuplicate is set: on
// create, or on update with a changed code, where the caller's own prior
// record still holds the old code and cannot collide. The password-presence
// check runs only when checkPassword is set; plainPassword is the pre-hash
// input.
func ValidateEmployee(ctx context.Context, counter CodeCounter, code, name, plainPassword string, checkCodeDuplicate, checkPassword bool) ([]string, error) {
	var errs []string

	if code == "" {
		errs = append(errs, MsgEmployeeCodeRequired)
	} else if checkCodeDuplicate {
		count, err := counter.CountEmployeesByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			errs = append(errs, MsgEmployeeCodeTaken)
		}
	}

	if name == "" {
		errs = append(errs, MsgEmployeeNameRequired)
	}

	if checkPassword && plainPassword == "" {
		errs = append(errs, MsgPasswordRequired)
	}

	return errs, nil
}

// ValidateReport checks a report candidate and returns the error messages
// in the fixed order title, content. Both checks always run.
func ValidateReport(title, content string) []string {
	var errs []string

	if title == "" {
		errs = append(errs, MsgReportTitleRequired)
	}
	if content == "" {
		errs = append(errs, MsgReportContentRequired)
	}

	return errs
}
