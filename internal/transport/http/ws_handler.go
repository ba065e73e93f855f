package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vkovalov/chatline/internal/auth"
	"github.com/vkovalov/chatline/internal/core"
	"github.com/vkovalov/chatline/internal/store"
)

// sessionCookie carries the session token on the upgrade request.
const sessionCookie = "session_token"

// WSHandler gates websocket upgrades on a valid session, replays history and
// bridges each connection to the broadcast hub.
type WSHandler struct {
	hub      *core.Hub
	auth     *auth.Service
	users    store.UserStore
	messages store.MessageStore
	log      *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, authService *auth.Service, st store.Store, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{
		hub:      hub,
		auth:     authService,
		users:    st,
		messages: st,
		log:      logger,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	userID, err := h.authorize(ctx, r)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidSession) {
			// Storage trouble rejects the attempt the same way an unknown
			// token does: validation fails closed.
			h.log.Error().Err(err).Msg("session validation failed")
		}
		w.WriteHeader(stdhttp.StatusUnauthorized)
		_, _ = w.Write([]byte("Unauthorized"))
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	// Subscribe before fetching history so a message published in between
	// cannot be lost; the overlap is dropped by id after replay.
	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	lastReplayedID, err := h.replayHistory(ctx, conn)
	if err != nil {
		h.log.Warn().Err(err).Int64("user_id", userID).Msg("history replay aborted")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, userID)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, sub, lastReplayedID)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Int64("user_id", userID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// authorize maps the session cookie on the request to a user id.
func (h *WSHandler) authorize(ctx context.Context, r *stdhttp.Request) (int64, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return 0, auth.ErrInvalidSession
	}
	return h.auth.ValidateSession(ctx, cookie.Value)
}

// replayHistory sends every stored message to the client as an individual
// text frame and returns the highest replayed message id. A failed history
// load degrades to an empty replay so the client can still join and chat.
func (h *WSHandler) replayHistory(ctx context.Context, conn *websocket.Conn) (int64, error) {
	history, err := h.messages.ListHistory(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("history load failed, serving empty history")
		return 0, nil
	}

	var lastID int64
	for _, msg := range history {
		line := core.FormatLine(msg.SenderName, msg.Content, msg.Timestamp)
		if err := conn.Write(ctx, websocket.MessageText, []byte(line)); err != nil {
			return lastID, err
		}
		lastID = msg.ID
	}
	return lastID, nil
}

// readLoop consumes inbound frames. Text frames are persisted first, then
// published to the hub; a failed persist drops the frame and keeps the
// connection open. Non-text frames are ignored.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, senderID int64) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			continue
		}

		content := string(data)
		id, ts, err := h.messages.AppendMessage(ctx, senderID, content)
		if err != nil {
			h.log.Warn().Err(err).Int64("sender_id", senderID).Msg("dropping message, append failed")
			continue
		}

		name := h.users.ResolveUsername(ctx, senderID)
		h.hub.Publish(core.Broadcast{
			MessageID: id,
			Line:      core.FormatLine(name, content, ts),
		})
	}
}

// writeLoop forwards hub broadcasts to the client, skipping anything that
// was already delivered during history replay.
func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, sub *core.Subscription, lastReplayedID int64) error {
	for {
		select {
		case b, ok := <-sub.C():
			if !ok {
				return nil
			}
			if b.MessageID != 0 && b.MessageID <= lastReplayedID {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, []byte(b.Line)); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
