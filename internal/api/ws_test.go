package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/skillmap/internal/assistant"
	"github.com/kalambet/skillmap/internal/skill"
	"github.com/kalambet/skillmap/internal/storage"
)

func startChatServer(t *testing.T, deps AppDeps) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewAppHandler(deps))
	t.Cleanup(srv.Close)
	return srv
}

func chatURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat?token=" + url.QueryEscape(token)
}

func dialChat(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(chatURL(srv, token), nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestChatSocket_Reply(t *testing.T) {
	deps := newTestDeps(t)
	token := seedUser(t, deps, "u1", "u1@example.com", storage.RoleUser)
	seedActivity(t, deps, "a1", "u1", skill.Leadership)
	srv := startChatServer(t, deps)

	conn := dialChat(t, srv, token)
	require.NoError(t, conn.WriteJSON(ChatRequest{Message: "merhaba"}))

	var frame wsFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "reply", frame.Type)
	require.NotNil(t, frame.Reply)
	assert.Equal(t, assistant.IntentGreeting, frame.Reply.Intent)
	assert.Equal(t, []string{"Liderlik"}, frame.Reply.UserSkills)
	assert.Equal(t, 1, frame.Reply.TotalActivities)

	// The socket shares the conversation log with the REST endpoint.
	assert.Len(t, deps.Assistant.History("u1"), 1)
}

func TestChatSocket_InvalidFrameKeepsConnection(t *testing.T) {
	deps := newTestDeps(t)
	token := seedUser(t, deps, "u1", "u1@example.com", storage.RoleUser)
	srv := startChatServer(t, deps)

	conn := dialChat(t, srv, token)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"message":`)))

	var frame wsFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "error", frame.Type)
	assert.Nil(t, frame.Reply)
	assert.NotEmpty(t, frame.Error)

	require.NoError(t, conn.WriteJSON(ChatRequest{Message: "motivasyon"}))
	frame = wsFrame{}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "reply", frame.Type)
	assert.Equal(t, assistant.IntentMotivation, frame.Reply.Intent)
}

func TestChatSocket_RejectsBadToken(t *testing.T) {
	deps := newTestDeps(t)
	srv := startChatServer(t, deps)

	for _, token := range []string{"", "not-a-jwt"} {
		_, resp, err := websocket.DefaultDialer.Dial(chatURL(srv, token), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestChatSocket_Origin(t *testing.T) {
	deps := newTestDeps(t)
	deps.AllowedOrigins = []string{"https://skillmap.example"}
	token := seedUser(t, deps, "u1", "u1@example.com", storage.RoleUser)
	srv := startChatServer(t, deps)

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(chatURL(srv, token), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	header = http.Header{"Origin": []string{"https://skillmap.example/"}}
	conn, resp, err := websocket.DefaultDialer.Dial(chatURL(srv, token), header)
	require.NoError(t, err)
	resp.Body.Close()
	conn.Close()
}

func TestNewUpgrader_SameHost(t *testing.T) {
	up := newUpgrader(nil)

	req := httptest.NewRequest(http.MethodGet, "http://localhost:5000/ws/chat", nil)
	req.Header.Set("Origin", "http://localhost:5000")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "http://localhost:3000")
	assert.False(t, up.CheckOrigin(req))

	req.Header.Del("Origin")
	assert.True(t, up.CheckOrigin(req))
}
