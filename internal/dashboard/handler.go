package dashboard

import (
	"fmt"
	"log"
	"sync"

	"github.com/fileautocomment/autocomment/internal/marker"
)

// Broadcaster delivers messages to clients.
type Broadcaster interface {
	Broadcast(msg Message)
}

// StatusFor returns the indicator for the given state.
func StatusFor(enabled bool) StatusData {
	if enabled {
		return StatusData{Enabled: true, Icon: "check", Tooltip: "Click to disable File Auto Comment"}
	}
	return StatusData{Enabled: false, Icon: "x", Tooltip: "Click to enable File Auto Comment"}
}

// Handler turns engine and daemon callbacks into dashboard messages. It
// implements marker.Notifier, marker.Observer and daemon.StatusSink.
// A nil Broadcaster only logs.
type Handler struct {
	server Broadcaster
	logger *log.Logger

	mu      sync.Mutex
	status  StatusData
	stamps  int
	notices int
}

// NewHandler creates a handler that broadcasts through server.
func NewHandler(server Broadcaster, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{server: server, logger: logger, status: StatusFor(false)}
}

// Info shows an informational notice.
func (h *Handler) Info(msg string) {
	h.notice("info", msg)
}

// Error shows an error notice.
func (h *Handler) Error(msg string) {
	h.notice("error", msg)
}

// Stamped reports a marker written to key.
func (h *Handler) Stamped(key string, intent marker.EditIntent) {
	h.logger.Printf("Stamped %s: %s", key, intent)

	h.mu.Lock()
	h.stamps++
	h.mu.Unlock()

	h.send(MessageTypeStamp, StampData{Path: key, Action: intent.Kind.String(), Line: intent.Line})
}

// Status updates the indicator.
func (h *Handler) Status(enabled bool) {
	status := StatusFor(enabled)
	h.logger.Printf("Status: %s", status.Icon)

	h.mu.Lock()
	h.status = status
	h.mu.Unlock()

	h.send(MessageTypeStatus, status)
}

// CurrentStatus returns the last indicator set through Status.
func (h *Handler) CurrentStatus() StatusData {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Counts returns the number of stamps and notices handled.
func (h *Handler) Counts() (stamps, notices int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stamps, h.notices
}

func (h *Handler) notice(level, msg string) {
	h.logger.Printf("%s: %s", level, msg)

	h.mu.Lock()
	h.notices++
	h.mu.Unlock()

	h.send(MessageTypeNotice, NoticeData{Level: level, Message: msg})
}

func (h *Handler) send(typ MessageType, data any) {
	if h.server == nil {
		return
	}
	msg, err := newMessage(typ, data)
	if err != nil {
		h.logger.Printf("Failed to marshal %s data: %v", typ, err)
		return
	}
	h.server.Broadcast(msg)
}

// String describes the handler state for logs.
func (h *Handler) String() string {
	stamps, notices := h.Counts()
	return fmt.Sprintf("status=%s stamps=%d notices=%d", h.CurrentStatus().Icon, stamps, notices)
}
