package dashboard

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/quotesync/quotesync/internal/notify"
	qsync "github.com/quotesync/quotesync/internal/sync"
)

// NoticeData is the payload of a notice message.
type NoticeData struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	// TTLMillis is how long a client should display the notice.
	TTLMillis int64 `json:"ttl_ms"`
}

// SyncData is the payload of a sync_complete message and the /sync response.
type SyncData struct {
	ID         string  `json:"id,omitempty"`
	Outcome    string  `json:"outcome"`
	Fetched    int     `json:"fetched"`
	Added      int     `json:"added"`
	Pushed     int     `json:"pushed"`
	DurationMS float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

// StatsData contains collection statistics
type StatsData struct {
	Total      int      `json:"total"`
	Categories []string `json:"categories"`
}

func newSyncData(r qsync.CycleResult) SyncData {
	return SyncData{
		ID:         r.ID,
		Outcome:    string(r.Outcome),
		Fetched:    r.Fetched,
		Added:      r.Added,
		Pushed:     r.Pushed,
		DurationMS: float64(r.Duration) / float64(time.Millisecond),
		Error:      r.ErrorMessage(),
	}
}

// Handler turns notices and sync results into dashboard messages.
// It implements notify.Notifier.
type Handler struct {
	server *Server
	logger *slog.Logger
}

// NewHandler creates a new event handler connected to a dashboard server
func NewHandler(server *Server, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default().With("component", "dashboard")
	}

	return &Handler{
		server: server,
		logger: logger,
	}
}

// Announce broadcasts a notice to every connected client. An import notice is
// followed by fresh stats.
func (h *Handler) Announce(n notify.Notice) {
	h.broadcast(MessageTypeNotice, n.At, NoticeData{
		Level:     string(n.Level),
		Message:   n.Message,
		TTLMillis: n.TTL.Milliseconds(),
	})
	if n.Message == notify.MsgImported {
		h.server.Broadcast(h.server.statsMessage())
	}
}

// OnSyncComplete broadcasts the result of a sync cycle followed by fresh stats.
// Coalesced cycles did no work and are not broadcast.
func (h *Handler) OnSyncComplete(result qsync.CycleResult) {
	if result.Outcome == qsync.OutcomeCoalesced {
		return
	}
	h.broadcast(MessageTypeSyncComplete, time.Now(), newSyncData(result))
	if result.Changed() {
		h.server.Broadcast(h.server.statsMessage())
	}
}

func (h *Handler) broadcast(typ MessageType, at time.Time, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to marshal payload", "type", string(typ), "error", err)
		return
	}
	h.server.Broadcast(Message{Type: typ, Timestamp: at, Data: data})
}

var _ notify.Notifier = (*Handler)(nil)
