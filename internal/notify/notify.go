// Package notify carries best-effort user notices from the sync engine to
// whoever is watching: the log, a dashboard, a terminal.
//
// Announce never blocks on slow observers and never returns an error. A
// notice that cannot be delivered is dropped.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Level classifies a notice.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// DisplayTTL is how long a notice is meant to stay visible.
const DisplayTTL = 4 * time.Second

// Messages announced by the engine.
const (
	MsgQuotesUpdated = "quotes updated"
	MsgImported      = "Imported quotes from JSON file."
	MsgFetchFailed   = "sync failed: could not fetch server quotes"
	MsgPushFailed    = "sync failed: could not push local quotes"
	MsgPersistFailed = "sync failed: could not save merged quotes"
)

// Notice is a single user-facing message.
type Notice struct {
	Level   Level         `json:"level"`
	Message string        `json:"message"`
	TTL     time.Duration `json:"ttl"`
	At      time.Time     `json:"at"`
}

// Info builds an informational notice.
func Info(msg string) Notice {
	return Notice{Level: LevelInfo, Message: msg, TTL: DisplayTTL, At: time.Now()}
}

// Failure builds an error notice.
func Failure(msg string) Notice {
	return Notice{Level: LevelError, Message: msg, TTL: DisplayTTL, At: time.Now()}
}

// Notifier receives notices.
type Notifier interface {
	Announce(n Notice)
}

// Func adapts a function to Notifier.
type Func func(Notice)

// Announce implements Notifier.
func (f Func) Announce(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = Func(func(Notice) {})

// LogNotifier writes notices to a logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a Notifier that logs through logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Announce implements Notifier.
func (l *LogNotifier) Announce(n Notice) {
	if n.Level == LevelError {
		l.logger.Warn(n.Message)
		return
	}
	l.logger.Info(n.Message)
}

// Multi fans notices out to several notifiers. Notifiers can be added while
// notices are flowing.
type Multi struct {
	mu        sync.RWMutex
	notifiers []Notifier
}

// NewMulti returns a Multi delivering to notifiers in order.
func NewMulti(notifiers ...Notifier) *Multi {
	m := &Multi{}
	for _, n := range notifiers {
		m.Add(n)
	}
	return m
}

// Add registers another notifier. Nil is ignored.
func (m *Multi) Add(n Notifier) {
	if n == nil {
		return
	}
	m.mu.Lock()
	m.notifiers = append(m.notifiers, n)
	m.mu.Unlock()
}

// Announce implements Notifier.
func (m *Multi) Announce(n Notice) {
	m.mu.RLock()
	notifiers := append([]Notifier(nil), m.notifiers...)
	m.mu.RUnlock()

	for _, target := range notifiers {
		target.Announce(n)
	}
}
