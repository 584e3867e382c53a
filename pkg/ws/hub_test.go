package ws_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyiyo/avatar-voice/pkg/ws"
)

func TestHubCloseAll(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub()
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Add(r.URL.Query().Get("id"), c)
	}))
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http")
	a, _, err := websocket.DefaultDialer.Dial(base+"?id=a", nil)
	require.NoError(t, err)
	defer a.Close()
	b, _, err := websocket.DefaultDialer.Dial(base+"?id=b", nil)
	require.NoError(t, err)
	defer b.Close()

	require.Eventually(t, func() bool { return hub.Len() == 2 }, time.Second, 5*time.Millisecond)
	_, ok := hub.Get("a")
	assert.True(t, ok)

	hub.Remove("b")
	assert.Equal(t, 1, hub.Len())

	hub.CloseAll()
	assert.Equal(t, 0, hub.Len())

	a.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = a.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
}
