package http

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"ruleta-service/internal/domain"
)

func TestWebSocketStreamsGameState(t *testing.T) {
	server := newTestServer(t)

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/juego"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// First message is the current snapshot.
	initial := readState(t, conn)
	if initial.Iniciado || len(initial.Jugadores) != 0 {
		t.Fatalf("expected empty initial state, got %+v", initial)
	}

	resp := doJSON(t, http.MethodPost, server.URL+"/api/jugadores/", map[string]string{"nombre": "Ana"})
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	update := readState(t, conn)
	if len(update.Jugadores) != 1 || update.Jugadores[0].Nombre != "Ana" {
		t.Fatalf("expected roster with Ana, got %+v", update)
	}
}

func TestWebSocketRejectsUnknownOrigin(t *testing.T) {
	server := newTestServer(t)

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/juego"
	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	_, resp, err := websocket.DefaultDialer.DialContext(context.Background(), u, header)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %+v", resp)
	}
}

func readState(t *testing.T, conn *websocket.Conn) domain.GameState {
	t.Helper()
	var msg struct {
		Type    string           `json:"type"`
		Payload domain.GameState `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "estado" {
		t.Fatalf("expected estado message, got %s", msg.Type)
	}
	return msg.Payload
}
