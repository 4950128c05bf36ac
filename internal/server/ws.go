package server

import (
	"net/http"
	"time"

	"CoinRadar/internal/store"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsBuffer     = 4
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// boardMessage is what a websocket client receives per board.
type boardMessage struct {
	Type        string    `json:"type"`
	CycleID     string    `json:"cycle_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source"`
	Ranking     []coinRow `json:"ranking"`
	Coins       []coinRow `json:"coins"`
}

func newBoardMessage(b *store.Board) boardMessage {
	return boardMessage{
		Type:        "board",
		CycleID:     b.CycleID,
		GeneratedAt: b.GeneratedAt,
		Source:      b.Source,
		Ranking:     toRows(b.Ranking),
		Coins:       toRows(b.Scored),
	}
}

// stream pushes the current board, then every replacement, until the client leaves.
func (h *Handler) stream(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	updates, unsubscribe := h.store.Subscribe(wsBuffer)
	defer unsubscribe()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	write := func(v interface{}) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(v)
	}

	if board, err := h.store.Board(); err == nil {
		if err := write(newBoardMessage(board)); err != nil {
			return nil
		}
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case board, ok := <-updates:
			if !ok {
				return nil
			}
			if err := write(newBoardMessage(board)); err != nil {
				h.log.Debug().Err(err).Msg("websocket write failed")
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return nil
			}
		case <-gone:
			return nil
		case <-h.quit:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(wsWriteWait))
			return nil
		}
	}
}
