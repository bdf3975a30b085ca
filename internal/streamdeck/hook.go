package streamdeck

import "github.com/sirupsen/logrus"

// LogHook mirrors error-level log entries into the host's plugin log, so
// fetch and render failures show up next to the host's own diagnostics.
type LogHook struct {
	conn *Conn
}

// NewLogHook wraps a registered connection.
func NewLogHook(conn *Conn) *LogHook {
	return &LogHook{conn: conn}
}

// Levels restricts the hook to error severity and above.
func (h *LogHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

// Fire forwards the entry text to the host.
func (h *LogHook) Fire(entry *logrus.Entry) error {
	return h.conn.LogMessage(entry.Message)
}
