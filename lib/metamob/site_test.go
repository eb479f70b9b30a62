package metamob

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestSiteClient(t *testing.T, handler http.HandlerFunc) *SiteClient {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewSiteClient(SiteOptions{BaseURL: server.URL})
	require.NoError(t, err)
	return client
}

func TestLogin(t *testing.T) {
	client := newTestSiteClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/connexion", r.URL.Path)
		require.Equal(t, "POST", r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "Kerman", r.PostForm.Get("identifiant"))
		require.Equal(t, "hunter2", r.PostForm.Get("password"))
		w.Write([]byte(`<html>Bienvenue</html>`))
	})

	err := client.Login(context.Background(), "Kerman", "hunter2")
	require.NoError(t, err)
}

func TestLoginBadCredentials(t *testing.T) {
	client := newTestSiteClient(t, func(w http.ResponseWriter, r *http.Request) {
		// the site answers 200 with an error banner
		w.Write([]byte(`<html>Identifiants incorrects</html>`))
	})

	err := client.Login(context.Background(), "Kerman", "wrong")
	require.ErrorIs(t, err, ErrLoginFailed)
	require.True(t, IsPermanent(err))
}

func TestRecentUsers(t *testing.T) {
	client := newTestSiteClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/utilisateur", r.URL.Path)
		w.Write([]byte(`<html><body>
			<div class="utilisateur"><div class="utilisateur-nom"> Kerman </div></div>
			<div class="utilisateur"><div class="utilisateur-nom">Abra</div></div>
			<div class="utilisateur"><div class="utilisateur-nom"></div></div>
		</body></html>`))
	})

	users, err := client.RecentUsers(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Kerman", "Abra"}, users)
}
