package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"courses-backend/internal/courses"
	"courses-backend/internal/ingest"
	"courses-backend/internal/shared/telemetry"
)

// sessionState enumerates the upload conversation states. Idle has no
// session entry at all; a stored session is always past Idle.
type sessionState int

const (
	stateAwaitingNumber sessionState = iota
	stateAwaitingTitle
)

// pendingUpload is the transient per-conversation state between
// receiving an archive and committing it as a course. Never persisted;
// a restart drops all of them.
type pendingUpload struct {
	state      sessionState
	data       []byte
	filename   string
	uploaderID string
	number     string
	lastActive time.Time
}

// Machine drives one upload conversation per conversation ID through
// Idle -> AwaitingNumber -> AwaitingTitle and back. Conversations are
// fully independent; the store is guarded by a single lock.
type Machine struct {
	Ingestor *ingest.Ingestor
	Courses  *courses.Service
	Timeout  time.Duration

	mu       sync.Mutex
	sessions map[string]*pendingUpload

	now func() time.Time
}

// NewMachine constructs a Machine with the given session timeout.
func NewMachine(ing *ingest.Ingestor, svc *courses.Service, timeout time.Duration) *Machine {
	return &Machine{
		Ingestor: ing,
		Courses:  svc,
		Timeout:  timeout,
		sessions: make(map[string]*pendingUpload),
		now:      time.Now,
	}
}

// Greeting is the reply to a conversation's first contact.
func (m *Machine) Greeting() Reply {
	return Reply{Text: "Send a ZIP package (SCORM/H5P) as a document. I will unpack it and ask for a number and a title."}
}

// HandleDocument validates an uploaded document and opens a session.
// Invalid documents are rejected immediately and no session is created.
func (m *Machine) HandleDocument(ctx context.Context, ev DocumentEvent) Reply {
	if !strings.HasSuffix(strings.ToLower(ev.Filename), ".zip") {
		return Reply{Text: "Only .zip archives are supported."}
	}
	if ev.Size > m.Ingestor.MaxBytes || int64(len(ev.Data)) > m.Ingestor.MaxBytes {
		return Reply{Text: "The file is too large."}
	}

	m.mu.Lock()
	m.sessions[ev.ConversationID] = &pendingUpload{
		state:      stateAwaitingNumber,
		data:       ev.Data,
		filename:   ev.Filename,
		uploaderID: ev.SenderID,
		lastActive: m.now(),
	}
	m.mu.Unlock()

	return Reply{Text: "File received. Send a NUMBER (short identifier) for it:"}
}

// HandleText advances a session expecting text input. Text without a
// session asks the user to start over with an upload.
func (m *Machine) HandleText(ctx context.Context, ev TextEvent) Reply {
	m.mu.Lock()
	s, ok := m.sessions[ev.ConversationID]
	if !ok {
		m.mu.Unlock()
		return Reply{Text: "No uploaded file. Send a ZIP archive first."}
	}

	switch s.state {
	case stateAwaitingNumber:
		s.number = strings.TrimSpace(ev.Text)
		s.state = stateAwaitingTitle
		s.lastActive = m.now()
		m.mu.Unlock()
		return Reply{Text: "OK. Now send a TITLE for it:"}

	case stateAwaitingTitle:
		// The session is consumed whether or not ingestion succeeds.
		delete(m.sessions, ev.ConversationID)
		m.mu.Unlock()
		return m.commit(ctx, s, strings.TrimSpace(ev.Text))

	default:
		m.mu.Unlock()
		return Reply{}
	}
}

// HandleCancel destroys any session for the conversation.
func (m *Machine) HandleCancel(ctx context.Context, ev CancelEvent) Reply {
	m.mu.Lock()
	delete(m.sessions, ev.ConversationID)
	m.mu.Unlock()
	return Reply{Text: "Operation cancelled."}
}

// ExpireStale drops sessions idle longer than the timeout. It is a
// housekeeping transition: no reply is emitted and nothing is ingested.
func (m *Machine) ExpireStale(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var expired int
	for id, s := range m.sessions {
		if now.Sub(s.lastActive) > m.Timeout {
			delete(m.sessions, id)
			expired++
		}
	}
	if expired > 0 {
		telemetry.Info("chat.sessions_expired", map[string]any{"count": expired})
	}
	return expired
}

func (m *Machine) commit(ctx context.Context, s *pendingUpload, title string) Reply {
	rec, err := m.Ingestor.Ingest(ctx, s.data, s.filename, s.uploaderID, s.number, title)
	if err != nil {
		return Reply{Text: "Failed to unpack the archive. Please re-upload it."}
	}

	return Reply{
		Text: fmt.Sprintf("Course saved.\nID: %s\nNumber: %s\nTitle: %s", rec.ID, rec.Number, rec.Title),
		Actions: []OpenAction{
			{Label: "Open course", URL: m.Courses.OpenURL(rec)},
		},
	}
}
