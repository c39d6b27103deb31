package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"sentra/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UpgradeShareWS upgrades a viewer connection for a share token. The token
// itself is the credential: the snapshot lookup applies the same not-found
// semantics as the HTTP endpoint before any upgrade traffic flows.
func UpgradeShareWS(manager *service.LiveShareManager, hub *ShareHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		snapshot, err := manager.ResolveByToken(token)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "share not found"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		viewer := &Viewer{
			Token: token,
			Send:  make(chan []byte, 256),
		}
		hub.Register(viewer)
		defer viewer.Close()

		// initial snapshot so the map renders before the next point lands
		data, _ := json.Marshal(map[string]interface{}{"type": "snapshot", "share": snapshot})
		viewer.Send <- data

		go writePump(viewer, conn)
		readPump(conn)
	}
}

// writePump copies messages from viewer.Send to the connection.
func writePump(v *Viewer, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-v.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func readPump(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
