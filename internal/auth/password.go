// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth provides password hashing and verification for credential
// storage. Hashes are peppered and deterministic: the same password and
// pepper always produce the same encoded hash, which lets the login path
// look employees up by (code, hash) in a single query.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. The pepper is a server-held secret injected at process
// start; it acts as the salt, so there is no per-record salt and hashing
// stays deterministic across calls.
const (
	PBKDF2Iterations = 210_000
	PBKDF2KeyLen     = 32
)

// Hash derives a one-way hash of the password using the site-wide pepper.
// Equal inputs always yield equal outputs. An empty password hashes to a
// fixed value; callers must short-circuit empty credentials before lookup.
func Hash(password, pepper string) string {
	key := pbkdf2.Key([]byte(password), []byte(pepper), PBKDF2Iterations, PBKDF2KeyLen, sha256.New)
	return base64.RawStdEncoding.EncodeToString(key)
}

// Verify re-hashes the supplied password with the pepper and compares it to
// the stored hash in constant time.
func Verify(password, pepper, encodedHash string) bool {
	computed := Hash(password, pepper)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(encodedHash)) == 1
}
