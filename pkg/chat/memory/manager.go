package memory

import (
	"context"
	"sync"
	"time"

	"soulscript-be/internal/constant"
	"soulscript-be/internal/entity"
	"soulscript-be/internal/repository/memory"
	"soulscript-be/pkg/llm"
	"soulscript-be/pkg/store"
)

// Manager owns the per-session conversation windows. Each window holds
// at most WindowSize recent turns; older turns are folded into the
// session's rolling summary. All window mutations for one session are
// serialized behind a keyed mutex.
type Manager struct {
	windows    *memory.WindowRepository
	summarizer *Summarizer
	locks      sync.Map // session id -> *sync.Mutex
}

func NewManager(windows *memory.WindowRepository, summarizer *Summarizer) *Manager {
	return &Manager{
		windows:    windows,
		summarizer: summarizer,
	}
}

func (m *Manager) lock(sessionID string) *sync.Mutex {
	mu, _ := m.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Load returns the session's window, hydrating it from persisted state
// when the cache has no entry. Messages must be ordered oldest first;
// only those after the last summarized message enter the window.
func (m *Manager) Load(session *entity.ChatSession, messages []*entity.ChatMessage) *store.Window {
	key := session.Id.String()
	mu := m.lock(key)
	mu.Lock()
	defer mu.Unlock()

	if window, found := m.windows.Get(key); found {
		return window
	}

	window := &store.Window{
		SessionID: key,
		Summary:   session.ConversationSummary,
	}

	start := 0
	if session.LastSummaryMessageId != "" {
		for i, msg := range messages {
			if msg.Id.String() == session.LastSummaryMessageId {
				start = i + 1
				break
			}
		}
	}
	tail := messages[start:]
	if len(tail) > constant.WindowSize {
		tail = tail[len(tail)-constant.WindowSize:]
	}
	for _, msg := range tail {
		window.Turns = append(window.Turns, store.Turn{
			Id:      msg.Id,
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}

	m.windows.Save(window)
	return window
}

// History renders the cached window as model input. The summary, when
// present, leads as a system message standing in for everything the
// window has already evicted.
func (m *Manager) History(session *entity.ChatSession) []llm.Message {
	key := session.Id.String()
	mu := m.lock(key)
	mu.Lock()
	defer mu.Unlock()

	window, found := m.windows.Get(key)
	if !found {
		return nil
	}

	var history []llm.Message
	if window.Summary != "" {
		history = append(history, llm.Message{
			Role:    "system",
			Content: "Previous conversation summary:\n" + window.Summary,
		})
	}
	for _, turn := range window.Turns {
		history = append(history, llm.Message{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}
	return history
}

// Append adds a turn to the session's window. When the window
// overflows, the evicted turns are summarized and the session entity's
// summary fields are updated in place; the caller persists the session.
// A summarizer failure still trims the window (the turns are lost from
// model context until the next successful pass) and is returned for
// logging.
func (m *Manager) Append(ctx context.Context, session *entity.ChatSession, turn store.Turn) error {
	key := session.Id.String()
	mu := m.lock(key)
	mu.Lock()
	defer mu.Unlock()

	window, found := m.windows.Get(key)
	if !found {
		window = &store.Window{
			SessionID: key,
			Summary:   session.ConversationSummary,
		}
	}

	window.Turns = append(window.Turns, turn)
	if len(window.Turns) <= constant.WindowSize {
		m.windows.Save(window)
		return nil
	}

	evictCount := len(window.Turns) - constant.WindowSize
	evicted := window.Turns[:evictCount]
	window.Turns = window.Turns[evictCount:]

	summary, err := m.summarizer.Summarize(ctx, window.Summary, evicted)
	if err != nil {
		m.windows.Save(window)
		return err
	}

	window.Summary = summary
	m.windows.Save(window)

	session.ConversationSummary = summary
	session.SummaryUpdatedAt = time.Now()
	session.LastSummaryMessageId = evicted[len(evicted)-1].Id.String()
	return nil
}

// Clear drops the cached window for a session. The durable summary
// fields live on the session row and are not touched here; callers that
// delete the session drop them with it, and callers recovering from a
// failed write want the next Load to rebuild from the rows as stored.
func (m *Manager) Clear(sessionID string) {
	mu := m.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()
	m.windows.Delete(sessionID)
}
