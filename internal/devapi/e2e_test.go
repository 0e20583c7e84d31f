package devapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/apexclient/internal/client/client"
	"github.com/dmitrijs2005/apexclient/internal/client/credentials"
	"github.com/dmitrijs2005/apexclient/internal/client/models"
	"github.com/dmitrijs2005/apexclient/internal/client/repositories/kvstore"
	"github.com/dmitrijs2005/apexclient/internal/client/services"
	"github.com/dmitrijs2005/apexclient/internal/logging"
)

// The client stack against the stub: register, restart, update, and losing
// the account server-side.
func TestClientAgainstDevAPI(t *testing.T) {
	s, ts := newTestServer(t)
	ctx := context.Background()

	repo := kvstore.NewMemoryRepository()
	store := credentials.NewStore(repo)

	newSession := func() (services.SessionService, services.UserService) {
		hc, err := client.NewHTTPClient(ts.URL+"/", store)
		require.NoError(t, err)
		sess := services.NewSessionService(hc, store, logging.Nop())
		hc.OnUnauthorized(sess.HandleUnauthorized)
		return sess, services.NewUserService(hc, sess, logging.Nop())
	}

	sess, users := newSession()
	sess.Restore(ctx)
	require.False(t, sess.Session().IsAuthenticated())

	require.NoError(t, sess.Register(ctx, models.RegisterData{Username: "dana", Email: "dana@example.com", Password: "danapass"}))
	me := *sess.Session().User
	assert.Equal(t, models.User{ID: 2, Username: "dana", Email: "dana@example.com", Role: RoleUser}, me)

	_, ok := sess.TokenExpiry(ctx)
	assert.True(t, ok)

	// a second process picks the session up from storage
	sess, users = newSession()
	sess.Restore(ctx)
	require.True(t, sess.Session().IsAuthenticated())
	assert.Equal(t, me, *sess.Session().User)

	name := "dana2"
	require.NoError(t, sess.UpdateUser(ctx, models.UserUpdate{Username: &name}))
	assert.Equal(t, "dana2", sess.Session().User.Username)
	_, stored, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dana2", stored.Username)

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	err = users.Delete(ctx, 1)
	require.ErrorIs(t, err, client.ErrForbidden)
	var he *client.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "Forbidden", he.Message)

	// the account vanishes: the next request is a 401 and wipes the session
	require.NoError(t, s.Users().Delete(me.ID))
	_, err = users.List(ctx)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, sess.Session().IsAuthenticated())
	assert.Zero(t, repo.Len())

	err = sess.Login(ctx, models.LoginCredentials{Email: "dana@example.com", Password: "danapass"})
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", client.ServerMessage(err))

	require.NoError(t, sess.Login(ctx, models.LoginCredentials{Email: "admin@example.com", Password: "adminpass"}))
	assert.Equal(t, RoleAdmin, sess.Session().User.Role)
}
