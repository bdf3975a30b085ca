package streamdeck

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHost is a minimal in-process stand-in for the host's WebSocket side.
type fakeHost struct {
	srv      *httptest.Server
	messages chan json.RawMessage
	conns    chan *websocket.Conn
}

func newFakeHost(t *testing.T) *fakeHost {
	t.Helper()
	h := &fakeHost{
		messages: make(chan json.RawMessage, 16),
		conns:    make(chan *websocket.Conn, 1),
	}
	upgrader := websocket.Upgrader{}
	h.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		h.conns <- ws
		for {
			_, msg, err := ws.ReadMessage()
			if err != nil {
				return
			}
			h.messages <- msg
		}
	}))
	t.Cleanup(h.srv.Close)
	return h
}

func (h *fakeHost) port(t *testing.T) int {
	t.Helper()
	_, portStr, err := net.SplitHostPort(h.srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return port
}

func (h *fakeHost) next(t *testing.T) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-h.messages:
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &m))
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for plugin message")
		return nil
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestConnectRegisters(t *testing.T) {
	host := newFakeHost(t)

	conn, err := Connect(host.port(t), "uuid-123", "registerPlugin", testLogger())
	require.NoError(t, err)
	defer conn.Close()

	msg := host.next(t)
	assert.Equal(t, "registerPlugin", msg["event"])
	assert.Equal(t, "uuid-123", msg["uuid"])
}

func TestSetImageAndShowAlert(t *testing.T) {
	host := newFakeHost(t)

	conn, err := Connect(host.port(t), "uuid-123", "registerPlugin", testLogger())
	require.NoError(t, err)
	defer conn.Close()

	host.next(t) // registration

	require.NoError(t, conn.SetImage("ctx-1", "data:image/svg+xml;base64,PHN2Zy8+"))
	msg := host.next(t)
	assert.Equal(t, "setImage", msg["event"])
	assert.Equal(t, "ctx-1", msg["context"])
	payload := msg["payload"].(map[string]interface{})
	assert.Equal(t, "data:image/svg+xml;base64,PHN2Zy8+", payload["image"])
	assert.Equal(t, float64(0), payload["target"])

	require.NoError(t, conn.ShowAlert("ctx-1"))
	msg = host.next(t)
	assert.Equal(t, "showAlert", msg["event"])
	assert.Equal(t, "ctx-1", msg["context"])
}

func TestLogHookMirrorsErrorsToHost(t *testing.T) {
	host := newFakeHost(t)

	conn, err := Connect(host.port(t), "uuid-123", "registerPlugin", testLogger())
	require.NoError(t, err)
	defer conn.Close()

	host.next(t) // registration

	logger := testLogger()
	logger.AddHook(NewLogHook(conn))

	logger.Info("routine chatter")
	logger.Error("snapshot fetch failed")

	// Only the error entry reaches the host.
	msg := host.next(t)
	assert.Equal(t, "logMessage", msg["event"])
	payload := msg["payload"].(map[string]interface{})
	assert.Equal(t, "snapshot fetch failed", payload["message"])

	select {
	case extra := <-host.messages:
		t.Fatalf("unexpected extra host message: %s", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestReadEvent(t *testing.T) {
	host := newFakeHost(t)

	conn, err := Connect(host.port(t), "uuid-123", "registerPlugin", testLogger())
	require.NoError(t, err)
	defer conn.Close()

	host.next(t) // registration

	ws := <-host.conns
	err = ws.WriteJSON(map[string]interface{}{
		"action":  "com.glucodeck.reading",
		"event":   "willAppear",
		"context": "ctx-1",
		"payload": map[string]interface{}{
			"settings": map[string]interface{}{"url": "https://cgm.example.com"},
		},
	})
	require.NoError(t, err)

	ev, err := conn.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, EventWillAppear, ev.Event)
	assert.Equal(t, "ctx-1", ev.Context)

	var settings struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(ev.Settings(), &settings))
	assert.Equal(t, "https://cgm.example.com", settings.URL)
}

func TestEventSettingsAbsent(t *testing.T) {
	ev := &Event{Event: EventKeyDown, Context: "ctx-1"}
	assert.Nil(t, ev.Settings())

	ev = &Event{Event: EventKeyDown, Payload: json.RawMessage(`{}`)}
	assert.Nil(t, ev.Settings())
}
