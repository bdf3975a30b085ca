// Package streamdeck speaks the host's local WebSocket protocol: a
// registration handshake at startup, then inbound lifecycle/interaction
// events and outbound image and alert commands.
package streamdeck

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

// Conn is a registered connection to the host. Reads happen from a single
// loop; writes come from timer goroutines too, so they are serialized.
type Conn struct {
	ws     *websocket.Conn
	mu     sync.Mutex // guards writes
	logger *logrus.Logger
}

// Connect dials the host on localhost and performs the registration
// handshake with the values the host passed on the command line.
func Connect(port int, pluginUUID, registerEvent string, logger *logrus.Logger) (*Conn, error) {
	url := fmt.Sprintf("ws://127.0.0.1:%d", port)
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial host: %w", err)
	}

	c := &Conn{ws: ws, logger: logger}
	if err := c.write(registration{Event: registerEvent, UUID: pluginUUID}); err != nil {
		ws.Close()
		return nil, fmt.Errorf("failed to register with host: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"port": port,
		"uuid": pluginUUID,
	}).Info("Registered with host")
	return c, nil
}

// ReadEvent blocks until the next host event arrives. Returns an error when
// the connection closes; the caller treats that as shutdown.
func (c *Conn) ReadEvent() (*Event, error) {
	var ev Event
	if err := c.ws.ReadJSON(&ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// SetImage replaces the visible image of the given button instance.
func (c *Conn) SetImage(context, image string) error {
	return c.write(outbound{
		Event:   "setImage",
		Context: context,
		Payload: setImagePayload{Image: image},
	})
}

// ShowAlert flashes the host's alert indicator on the given instance.
func (c *Conn) ShowAlert(context string) error {
	return c.write(outbound{Event: "showAlert", Context: context})
}

// LogMessage writes a line into the host's plugin log.
func (c *Conn) LogMessage(message string) error {
	return c.write(outbound{
		Event:   "logMessage",
		Payload: logMessagePayload{Message: message},
	})
}

func (c *Conn) Close() error {
	return c.ws.Close()
}

func (c *Conn) write(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}
