package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"quickearn-admin/internal/events"
	pkgAuth "quickearn-admin/pkg/auth"
	"quickearn-admin/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler streams store mutation events to authenticated dashboard sessions.
// The frontend opens one socket after login and re-fetches whichever panel an
// incoming event's path belongs to.
type Handler struct {
	bus *events.Bus
}

func NewHandler(bus *events.Bus) *Handler {
	return &Handler{bus: bus}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

func (h *Handler) HandleEventsWS(c *gin.Context) {
	token, err := getTokenFromRequest(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	claims, err := pkgAuth.ParseAdminToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	prefixes := parsePrefixes(c.Query("paths"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	logger.Log.Info("New events WebSocket connection",
		zap.Int64("adminID", claims.SubjectID),
		zap.Strings("paths", prefixes),
	)

	client := newClient(conn, claims.SubjectID, prefixes)
	client.run(h.bus)
}

func getTokenFromRequest(c *gin.Context) (string, error) {
	token := strings.TrimSpace(c.Query("token"))
	if token != "" {
		return token, nil
	}
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = strings.TrimSpace(parts[1])
			if token != "" {
				return token, nil
			}
		}
	}
	return "", errors.New("missing token")
}

func parsePrefixes(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

type client struct {
	conn      *websocket.Conn
	adminID   int64
	prefixes  []string
	done      chan struct{}
	pingEvery time.Duration
}

func newClient(conn *websocket.Conn, adminID int64, prefixes []string) *client {
	conn.SetReadLimit(1 << 16)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	return &client{
		conn:      conn,
		adminID:   adminID,
		prefixes:  prefixes,
		done:      make(chan struct{}),
		pingEvery: 25 * time.Second,
	}
}

func (c *client) run(bus *events.Bus) {
	ctx, cancel := context.WithCancel(context.Background())
	outbound := bus.Subscribe(ctx)
	go c.writePump(outbound)
	c.readPump(cancel)
}

// readPump discards client frames; the socket is server-to-client only. It
// exists to notice the peer going away and to service pong handlers.
func (c *client) readPump(cancel context.CancelFunc) {
	defer func() {
		cancel()
		close(c.done)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			logger.Log.Info("WS read error", zap.Error(err), zap.Int64("adminID", c.adminID))
			return
		}
	}
}

func (c *client) writePump(outbound <-chan events.Event) {
	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-outbound:
			if !ok {
				return
			}
			if !c.wants(ev.Path) {
				continue
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				logger.Log.Info("WS write error", zap.Error(err), zap.Int64("adminID", c.adminID))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// wants reports whether the session subscribed to the event's path. An empty
// prefix list means everything.
func (c *client) wants(path string) bool {
	if len(c.prefixes) == 0 {
		return true
	}
	path = strings.Trim(path, "/")
	for _, p := range c.prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
