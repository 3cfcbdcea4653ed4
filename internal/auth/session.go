package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"

	"rental-portal/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	userIDKey  = "user_id"
	contextKey = "auth_user_id"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// UserStore is the account lookup the authenticator needs
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	CountUsers(ctx context.Context) (int64, error)
}

// SessionOptions configures the session cookie
type SessionOptions struct {
	Secret string
	Name   string
	MaxAge int
	Secure bool
}

// Authenticator gates admin routes behind a cookie session
type Authenticator struct {
	store sessions.Store
	users UserStore
	name  string
	log   *zap.Logger
}

// NewAuthenticator builds a cookie backed authenticator
func NewAuthenticator(users UserStore, opts SessionOptions, log *zap.Logger) *Authenticator {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Name == "" {
		opts.Name = "rental_session"
	}
	secret := []byte(opts.Secret)
	if len(secret) == 0 {
		// Sessions will not survive a restart
		log.Warn("Session secret not set, using an ephemeral key")
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic(fmt.Sprintf("generate session key: %v", err))
		}
	}
	store := sessions.NewCookieStore(secret)
	store.MaxAge(opts.MaxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = opts.Secure
	return &Authenticator{store: store, users: users, name: opts.Name, log: log}
}

// Login checks credentials and stores the user id in the session
func (a *Authenticator) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, username, password string) (*models.User, error) {
	user, err := a.users.GetUserByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		a.log.Error("Stored password hash is unreadable", zap.String("username", username), zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	// A decode error just means a stale cookie; a fresh session is returned
	session, _ := a.store.Get(r, a.name)
	session.Values[userIDKey] = user.ID
	if err := session.Save(r, w); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return user, nil
}

// Logout clears the session cookie
func (a *Authenticator) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := a.store.Get(r, a.name)
	delete(session.Values, userIDKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// UserID returns the authenticated user id of the request
func (a *Authenticator) UserID(r *http.Request) (uint, bool) {
	session, err := a.store.Get(r, a.name)
	if err != nil {
		return 0, false
	}
	id, ok := session.Values[userIDKey].(uint)
	return id, ok && id != 0
}

// CurrentUser loads the authenticated user
func (a *Authenticator) CurrentUser(ctx context.Context, r *http.Request) (*models.User, error) {
	id, ok := a.UserID(r)
	if !ok {
		return nil, models.ErrNotFound
	}
	return a.users.GetUserByID(ctx, id)
}

// RequireAuth rejects requests without a valid session
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := a.UserID(c.Request)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(contextKey, id)
		c.Next()
	}
}

// UserIDFromContext returns the id stored by RequireAuth
func UserIDFromContext(c *gin.Context) (uint, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// EnsureAdmin creates the initial admin account when there are no users
func EnsureAdmin(ctx context.Context, users UserStore, username, password string, log *zap.Logger) error {
	if username == "" || password == "" {
		return nil
	}
	count, err := users.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := CreateUser(ctx, users, username, password); err != nil {
		return err
	}
	if log != nil {
		log.Info("Seeded initial admin account", zap.String("username", username))
	}
	return nil
}

// CreateUser hashes password and stores a new account
func CreateUser(ctx context.Context, users UserStore, username, password string) error {
	if username == "" || len(password) < 8 {
		return errors.New("username is required and password must be at least 8 characters")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := users.CreateUser(ctx, &models.User{Username: username, PasswordHash: hash}); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
