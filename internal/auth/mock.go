package auth

import (
	"net/http"
	"time"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/logger"
)

// MockAuth logs every visitor in as a development user
type MockAuth struct {
	store *sessionStore
	user  User
}

// NewMockAuth creates a new mock authentication handler
func NewMockAuth() *MockAuth {
	logger.Info("Using MOCK authentication for local development")
	return &MockAuth{
		store: newSessionStore(),
		user: User{
			ID:       "dev-user-123",
			Email:    "dev@fbb.local",
			Name:     "Dev Drafter",
			Username: "devdrafter",
			Groups:   []string{"users", "admins"},
		},
	}
}

// LoginHandler creates a session immediately and redirects to the app
func (m *MockAuth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	u := m.user
	m.store.create(w, &u, nil, 24*time.Hour, false)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (m *MockAuth) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (m *MockAuth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	m.store.destroy(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (m *MockAuth) Middleware(next http.Handler) http.Handler {
	return m.store.middleware(next)
}
