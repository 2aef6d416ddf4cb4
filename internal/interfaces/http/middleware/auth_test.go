package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userMap map[uuid.UUID]*identity.User

func (m userMap) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	if id == uuid.Nil {
		return nil, errors.New("connection refused")
	}
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, shared.NewNotFoundError("User", id)
}

func newTestJWTService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Issuer:     "shop-test",
		Expiration: expiration,
	})
}

func newTestUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser("Tester", uuid.NewString()+"@example.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, u.SetRole(role))
	return u
}

type authFixture struct {
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
	users     userMap
	router    *gin.Engine
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		jwt:       newTestJWTService(time.Hour),
		blacklist: auth.NewInMemoryTokenBlacklist(),
		users:     userMap{},
		router:    gin.New(),
	}
	f.router.Use(RequestID())
	authenticated := f.router.Group("", Authenticate(AuthConfig{
		JWTService: f.jwt,
		Blacklist:  f.blacklist,
		Users:      f.users,
	}))
	authenticated.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Email)
	})
	authenticated.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, "admin")
	})
	return f
}

func (f *authFixture) token(t *testing.T, u *identity.User) string {
	t.Helper()
	issued, err := f.jwt.Generate(u.ID, string(u.Role))
	require.NoError(t, err)
	return issued.Token
}

func (f *authFixture) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture()
	user := newTestUser(t, identity.RoleUser)
	f.users[user.ID] = user

	t.Run("valid token loads the user", func(t *testing.T) {
		w := f.get("/me", f.token(t, user))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, user.Email, w.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		w := f.get("/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_UNAUTHORIZED")
	})

	t.Run("tampered token", func(t *testing.T) {
		w := f.get("/me", f.token(t, user)+"x")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := auth.NewJWTService(config.JWTConfig{Secret: "another-secret-key-of-32-chars!!", Issuer: "shop-test", Expiration: time.Hour})
		issued, err := other.Generate(user.ID, "user")
		require.NoError(t, err)

		w := f.get("/me", issued.Token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := newTestJWTService(-time.Minute)
		issued, err := expired.Generate(user.ID, "user")
		require.NoError(t, err)

		w := f.get("/me", issued.Token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_EXPIRED")
	})

	t.Run("deleted user", func(t *testing.T) {
		ghost := newTestUser(t, identity.RoleUser)
		w := f.get("/me", f.token(t, ghost))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "user not found")
	})

	t.Run("revoked token", func(t *testing.T) {
		token := f.token(t, user)
		claims, err := f.jwt.Validate(token)
		require.NoError(t, err)
		require.NoError(t, f.blacklist.Revoke(context.Background(), claims.ID, time.Hour))

		w := f.get("/me", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_REVOKED")
	})

	t.Run("user store failure", func(t *testing.T) {
		issued, err := f.jwt.Generate(uuid.Nil, "user")
		require.NoError(t, err)

		w := f.get("/me", issued.Token)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	f := newAuthFixture()
	customer := newTestUser(t, identity.RoleUser)
	admin := newTestUser(t, identity.RoleAdmin)
	f.users[customer.ID] = customer
	f.users[admin.ID] = admin

	w := f.get("/admin", f.token(t, customer))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_FORBIDDEN")

	w = f.get("/admin", f.token(t, admin))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin_UsesCurrentRole(t *testing.T) {
	f := newAuthFixture()
	demoted := newTestUser(t, identity.RoleAdmin)
	token := f.token(t, demoted)

	require.NoError(t, demoted.SetRole(identity.RoleUser))
	f.users[demoted.ID] = demoted

	w := f.get("/admin", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
