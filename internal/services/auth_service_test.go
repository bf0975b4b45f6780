package services_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hellosession/internal/repos"
	"hellosession/internal/services"
)

func newAuth(t *testing.T) *services.AuthService {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return services.NewAuthService(repos.NewUserRepo(db), bcrypt.MinCost)
}

func TestAuthService_RegisterHashesPassword(t *testing.T) {
	svc := newAuth(t)

	u, err := svc.Register("Luke", "luke@example.test", "use the force")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.NotContains(t, u.Hash, "use the force")
	assert.True(t, strings.HasPrefix(u.Hash, "$2"), "unexpected hash format: %s", u.Hash)

	stored, err := svc.UserByID(u.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Hash), []byte("use the force")))
}

func TestAuthService_Authenticate(t *testing.T) {
	svc := newAuth(t)
	_, err := svc.Register("Yoda", "yoda@example.test", "do or do not")
	require.NoError(t, err)

	u, err := svc.Authenticate("yoda@example.test", "do or do not")
	require.NoError(t, err)
	assert.Equal(t, "Yoda", u.Name)

	_, err = svc.Authenticate("yoda@example.test", "there is a try")
	assert.ErrorIs(t, err, services.ErrBadCreds)

	_, err = svc.Authenticate("vader@example.test", "do or do not")
	assert.ErrorIs(t, err, services.ErrBadCreds)
}

func TestAuthService_SharedEmail(t *testing.T) {
	svc := newAuth(t)
	first, err := svc.Register("Han", "han@example.test", "falcon")
	require.NoError(t, err)
	second, err := svc.Register("Han Solo", "HAN@example.test", "kessel")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	u, err := svc.Authenticate("han@example.test", "falcon")
	require.NoError(t, err)
	assert.Equal(t, first.ID, u.ID)

	u, err = svc.Authenticate("han@example.test", "kessel")
	require.NoError(t, err)
	assert.Equal(t, second.ID, u.ID)

	_, err = svc.Authenticate("han@example.test", "chewie")
	assert.ErrorIs(t, err, services.ErrBadCreds)
}
