package http

import (
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"

	"github.com/lokeshloki65/college-event/internal/domain"
	"github.com/lokeshloki65/college-event/internal/notifier"
)

// HandleStream upgrades to a websocket and forwards the caller's fan-out
// feed: the broadcast topic, the topic of their role, and their own subject
// topic.
func HandleStream(hub *notifier.Hub, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "subject identity required")
			return
		}

		wsHandler := websocket.Handler(func(conn *websocket.Conn) {
			defer conn.Close()

			roleTopic := notifier.TopicRoleStudent
			if actor.Role == domain.RoleAdmin {
				roleTopic = notifier.TopicRoleAdmin
			}
			sub := hub.Subscribe(notifier.TopicBroadcast, roleTopic, notifier.TopicSubject(actor.SubjectID))
			defer hub.Unsubscribe(sub)

			// Drain the read side so a client close ends the session even
			// when no events are flowing.
			done := make(chan struct{})
			go func() {
				defer close(done)
				for {
					var discard string
					if err := websocket.Message.Receive(conn, &discard); err != nil {
						return
					}
				}
			}()

			for {
				select {
				case ev, open := <-sub.Events():
					if !open {
						return
					}
					if err := websocket.JSON.Send(conn, ev); err != nil {
						if err != io.EOF {
							logger.Debug("websocket send failed",
								zap.String("subject", actor.SubjectID),
								zap.Error(err),
							)
						}
						return
					}
				case <-done:
					return
				}
			}
		})
		wsHandler.ServeHTTP(w, r)
	}
}
