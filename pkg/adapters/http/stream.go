package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
	"github.com/aretw0/onboard/pkg/redact"
)

// Event names sent on the SSE stream.
const (
	EventDiff         = "diff"
	EventNotification = "notification"
	EventClosed       = "closed"
)

// streamBuffer is the per-subscriber queue; slow clients lose messages beyond it.
const streamBuffer = 16

// Message is one SSE event.
type Message struct {
	Event string
	Data  string

	diff *domain.StateDiff
}

// StreamManager fans wizard changes out to SSE subscribers, per session.
// It is registered on the host as a state listener and as a notifier.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Message]struct{}
	redactor    *redact.Redactor
	logger      *slog.Logger
}

// NewStreamManager creates a StreamManager. Diffs are redacted with r.
func NewStreamManager(r *redact.Redactor, logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan Message]struct{}),
		redactor:    r,
		logger:      logger,
	}
}

// Subscribe registers a subscriber for sessionID. The returned function
// unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan Message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Message, streamBuffer)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan Message]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Subscribers returns the number of subscribers of sessionID.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

func (sm *StreamManager) broadcast(sessionID string, msg Message) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping message", "session_id", sessionID, "event", msg.Event)
		}
	}
}

// Publish is a host state listener: it broadcasts the redacted diff between
// prev and next, or a closed event when the wizard was removed.
func (sm *StreamManager) Publish(sessionID string, prev, next *domain.State) {
	if next == nil {
		sm.broadcast(sessionID, Message{Event: EventClosed, Data: fmt.Sprintf(`{"session_id":%q}`, sessionID)})
		return
	}

	diff := sm.redactor.Diff(domain.Diff(prev, next))
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		sm.logger.Error("failed to marshal diff", "session_id", sessionID, "err", err)
		return
	}
	sm.broadcast(sessionID, Message{Event: EventDiff, Data: string(data), diff: diff})
}

// Notify broadcasts a submission outcome to the session's subscribers.
func (sm *StreamManager) Notify(ctx context.Context, n domain.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		sm.logger.Error("failed to marshal notification", "session_id", n.SessionID, "err", err)
		return
	}
	sm.broadcast(n.SessionID, Message{Event: EventNotification, Data: string(data)})
}

// watched reports whether a diff touches one of the watched parts.
func watched(d *domain.StateDiff, watch []string) bool {
	if len(watch) == 0 || d == nil {
		return true
	}
	for _, part := range watch {
		switch strings.TrimSpace(part) {
		case "answers":
			if len(d.Answers) > 0 {
				return true
			}
		case "step":
			if d.CurrentStep != nil {
				return true
			}
		case "status":
			if d.Status != nil || d.Submitting != nil {
				return true
			}
		case "error":
			if d.Error != nil {
				return true
			}
		case "history":
			if d.History != nil {
				return true
			}
		}
	}
	return false
}

// events handles GET /wizards/{sessionID}/events.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SSE: streaming not supported")
		return
	}

	sessionID := sessionParam(r)
	var watch []string
	if v := r.URL.Query().Get("watch"); v != "" {
		watch = strings.Split(v, ",")
	}

	ch, cancel := s.streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE: subscribed", "session_id", sessionID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Event == EventDiff && !watched(msg.diff, watch) {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
			flusher.Flush()
		}
	}
}

var _ ports.Notifier = (*StreamManager)(nil)
