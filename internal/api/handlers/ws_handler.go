package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/verihire/verihire/internal/services"
	"github.com/verihire/verihire/internal/utils"
)

// WSHandler streams live verification status to the submitting client.
// Workers publish JSON to redis pub/sub; this handler forwards it as-is.
type WSHandler struct {
	verifications services.VerificationService
	redis         *redis.Client
	upgrader      websocket.Upgrader
}

func NewWSHandler(verifications services.VerificationService, rdb *redis.Client) *WSHandler {
	return &WSHandler{
		verifications: verifications,
		redis:         rdb,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (h *WSHandler) VerificationWS(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	submissionID := c.Param("submission_id")
	if submissionID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "WSHandler.VerificationWS", "missing submission_id", nil))
		return
	}

	// authorize submission ownership
	sub, err := h.verifications.Get(c.Request.Context(), submissionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if sub.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "WSHandler.VerificationWS", "forbidden", nil))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote a response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.redis.Subscribe(ctx, "verify:"+submissionID+":status")
	defer pubsub.Close()

	// reader: only watches for close/pong; clients don't send data here
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})
		for {
			if _, _, rerr := conn.ReadMessage(); rerr != nil {
				return
			}
		}
	}()

	// if the decision already landed, say so immediately
	if sub.Analysis != nil {
		_ = wc.writeText([]byte(`{"type":"status","status":"` + string(sub.Analysis.AutoDecision) + `","message":"analysis already complete"}`))
	}

	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		default:
			m, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}
			if werr := wc.writeText([]byte(m.Payload)); werr != nil {
				return
			}
		}
	}
}
