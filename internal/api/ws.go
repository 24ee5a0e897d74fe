package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kalambet/skillmap/internal/skill"
)

// wsIdleTimeout closes a chat socket that has been silent this long.
const wsIdleTimeout = 5 * time.Minute

const wsMaxMessageSize = 64 << 10

// wsFrame is a server-to-client chat frame. Exactly one of Reply or Error
// is set.
type wsFrame struct {
	Type  string        `json:"type"` // "reply" or "error"
	Reply *ChatResponse `json:"reply,omitempty"`
	Error string        `json:"error,omitempty"`
}

func newUpgrader(allowed []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			origin = strings.TrimRight(origin, "/")
			if slices.Contains(allowed, origin) {
				return true
			}
			// Same-origin browsers send their own host as the origin.
			host := strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://")
			return host == r.Host
		},
	}
}

// handleChatSocket serves the assistant over a websocket. Browsers cannot
// set headers on the upgrade request, so the bearer token travels in the
// token query parameter. Each {"message": ...} frame gets one reply frame.
func handleChatSocket(deps AppDeps) http.HandlerFunc {
	upgrader := newUpgrader(deps.AllowedOrigins)
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := deps.Issuer.Verify(r.URL.Query().Get("token"))
		if err != nil {
			httpError(w, http.StatusUnauthorized, errAuthentication, "invalid or missing token")
			return
		}
		userID := claims.UserID()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the HTTP error.
			slog.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()
		conn.SetReadLimit(wsMaxMessageSize)
		slog.Debug("chat socket opened", "user_id", userID)

		for {
			conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))

			var req ChatRequest
			if err := conn.ReadJSON(&req); err != nil {
				var syntaxErr *json.SyntaxError
				var typeErr *json.UnmarshalTypeError
				if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
					if werr := conn.WriteJSON(wsFrame{Type: "error", Error: "invalid message: " + err.Error()}); werr != nil {
						return
					}
					continue
				}
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					slog.Warn("chat socket read error", "user_id", userID, "error", err)
				}
				return
			}

			c, err := assistantContext(deps, userID)
			if err != nil {
				slog.Error("loading user skills for chat socket", "user_id", userID, "error", err)
				if werr := conn.WriteJSON(wsFrame{Type: "error", Error: "failed to load user skills"}); werr != nil {
					return
				}
				continue
			}
			reply := deps.Assistant.Process(userID, req.Message, c)
			frame := wsFrame{Type: "reply", Reply: &ChatResponse{
				Reply:           reply,
				UserSkills:      skill.Labels(c.Categories),
				TotalActivities: c.ActivityCount,
			}}
			if err := conn.WriteJSON(frame); err != nil {
				slog.Warn("chat socket write error", "user_id", userID, "error", err)
				return
			}
		}
	}
}
