// Package session wraps alexedwards/scs with typed accessors for the keys
// this application stores: the authenticated employee id, the one-shot
// flash message, and the session token used as the anti-forgery value.
// Each key has one fixed value type, so callers never cast.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session keys.
const (
	keyEmployeeID = "login_employee_id"
	keyFlash      = "flash"
	keyFlashType  = "flash_type"
)

// Manager is a typed facade over the scs session manager.
type Manager struct {
	*scs.SessionManager
}

// New creates a session manager backed by the SQLite sessions table.
func New(db *sql.DB, isDev bool) *Manager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only

	return &Manager{SessionManager: sm}
}

// EnsureToken makes sure the current session has a committed token,
// returning it. A brand-new session has no token until the deferred save
// runs, which is too late for a form that must embed it; in that case the
// session is committed here and the cookie written immediately.
func (m *Manager) EnsureToken(ctx context.Context, w http.ResponseWriter) (string, error) {
	if token := m.Token(ctx); token != "" {
		return token, nil
	}
	token, expiry, err := m.Commit(ctx)
	if err != nil {
		return "", err
	}
	m.WriteSessionCookie(ctx, w, token, expiry)
	return token, nil
}

// PutEmployeeID stores the authenticated employee's id in the session.
func (m *Manager) PutEmployeeID(ctx context.Context, id int64) {
	m.Put(ctx, keyEmployeeID, id)
}

// EmployeeID returns the authenticated employee's id, or 0 when the session
// carries no principal.
func (m *Manager) EmployeeID(ctx context.Context) int64 {
	return m.GetInt64(ctx, keyEmployeeID)
}

// SetFlash stores a one-shot flash message with its display type.
func (m *Manager) SetFlash(ctx context.Context, message, flashType string) {
	m.Put(ctx, keyFlash, message)
	m.Put(ctx, keyFlashType, flashType)
}

// PopFlash reads and clears the flash message in one step. The second read
// in a later request returns empty strings.
func (m *Manager) PopFlash(ctx context.Context) (message, flashType string) {
	message = m.PopString(ctx, keyFlash)
	if message == "" {
		return "", ""
	}
	flashType = m.PopString(ctx, keyFlashType)
	if flashType == "" {
		flashType = "info"
	}
	return message, flashType
}
