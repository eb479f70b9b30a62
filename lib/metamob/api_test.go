package metamob

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: time.Second * 5,
	})
	require.NoError(t, err)
	return client
}

func TestUserMonsters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/utilisateurs/Kerman/monstres", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("HTTP-X-APIKEY"))

		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`[
			{
				"id": "12",
				"nom": "Tronquette la Réduite",
				"nom_normal": "Tronknyde",
				"type": "archimonstre",
				"zone": "Forêt des Abraknydes",
				"souszone": "Forêt maléfique",
				"etape": "3",
				"quantite": "4",
				"propose": "1",
				"recherche": "0"
			},
			{
				"id": 7,
				"nom": "Bouftou",
				"type": "monstre",
				"quantite": 2,
				"propose": 0,
				"recherche": 1
			}
		]`))
	})

	monsters, err := client.UserMonsters(context.Background(), "Kerman")
	require.NoError(t, err)
	require.Len(t, monsters, 2)

	archi := monsters[0]
	require.Equal(t, int64(12), int64(archi.ID))
	require.Equal(t, "Tronquette la Réduite", archi.Name)
	require.True(t, archi.Rare())
	require.Equal(t, int64(4), int64(archi.Owned))
	require.Equal(t, int64(1), int64(archi.ForTrade))

	// numeric and string count fields both decode
	plain := monsters[1]
	require.False(t, plain.Rare())
	require.Equal(t, int64(2), int64(plain.Owned))
	require.Equal(t, int64(1), int64(plain.Searched))
}

func TestUserMonstersNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	})

	_, err := client.UserMonsters(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
	require.True(t, IsPermanent(err))
	require.False(t, IsTransient(err))
}

func TestUserMonstersServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(503)
	})

	_, err := client.UserMonsters(context.Background(), "Kerman")
	require.True(t, IsTransient(err))
}

func TestUserMonstersRateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(429)
	})

	_, err := client.UserMonsters(context.Background(), "Kerman")
	require.True(t, IsTransient(err))
}

func TestUserMonstersMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	})

	_, err := client.UserMonsters(context.Background(), "Kerman")
	require.True(t, IsPermanent(err))
}

func TestUserMonstersUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
	})

	_, err := client.UserMonsters(context.Background(), "Kerman")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.True(t, IsPermanent(err))
}

func TestUserProfile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/utilisateurs/Kerman", r.URL.Path)
		w.Write([]byte(`{
			"pseudo": "Kerman",
			"lien": "https://www.metamob.fr/utilisateur/Kerman",
			"derniere_connexion": "2024-05-01 18:30:12"
		}`))
	})

	profile, err := client.User(context.Background(), "Kerman")
	require.NoError(t, err)
	require.Equal(t, "Kerman", profile.Pseudo)
	require.Equal(
		t,
		time.Date(2024, 5, 1, 18, 30, 12, 0, time.UTC),
		profile.LastSeen(),
	)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(ClientOptions{})
	require.Error(t, err)
}
