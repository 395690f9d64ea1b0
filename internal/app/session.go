package app

import "sync"

// SessionStore is the single source of truth the UI renders from: the known
// conversation list, the active conversation and its exchanges, and the most
// recently uploaded document. State is transient; the authoritative copy of
// every conversation lives in the backend.
//
// Mutators are called from command goroutines while the UI reads snapshots, so
// all access goes through the mutex. Snapshot accessors return copies.
type SessionStore struct {
	mu            sync.Mutex
	conversations []Conversation
	activeID      string // empty means "unfiled" mode
	exchanges     []Exchange
	document      DocumentInfo
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// SetConversations replaces the list wholesale, preserving backend order
// (assumed reverse-chronological).
func (s *SessionStore) SetConversations(list []Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = make([]Conversation, len(list))
	copy(s.conversations, list)
}

// UpsertConversation replaces an existing conversation in place, preserving
// its position; a new conversation is inserted at the head.
func (s *SessionStore) UpsertConversation(conv Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.conversations {
		if s.conversations[i].ID == conv.ID {
			s.conversations[i] = conv
			return
		}
	}
	s.conversations = append([]Conversation{conv}, s.conversations...)
}

// RemoveConversation removes by id and reports whether it was the active
// conversation, in which case the active selection and exchanges are cleared.
func (s *SessionStore) RemoveConversation(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
			break
		}
	}
	if s.activeID == id && id != "" {
		s.activeID = ""
		s.exchanges = nil
		return true
	}
	return false
}

// SetActive switches the active conversation and resets the exchange list.
// An empty id means "unfiled" mode. The caller is responsible for loading the
// new conversation's messages afterwards.
func (s *SessionStore) SetActive(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
	s.exchanges = nil
}

func (s *SessionStore) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Conversation looks up a conversation by id.
func (s *SessionStore) Conversation(id string) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			return s.conversations[i], true
		}
	}
	return Conversation{}, false
}

func (s *SessionStore) Conversations() []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// SetExchanges replaces the active thread wholesale (used after loading a
// conversation's persisted messages).
func (s *SessionStore) SetExchanges(list []Exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = make([]Exchange, len(list))
	copy(s.exchanges, list)
}

func (s *SessionStore) Exchanges() []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Exchange, len(s.exchanges))
	copy(out, s.exchanges)
	return out
}

// AppendExchange appends a placeholder to the active thread.
func (s *SessionStore) AppendExchange(e Exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = append(s.exchanges, e)
}

// ResolveExchange patches the pending exchange with the given correlation id.
// It reports false when the id is absent (the user navigated away or deleted
// the conversation) or the exchange already resolved; callers discard the
// result in that case. The question field is never touched.
func (s *SessionStore) ResolveExchange(id string, patch ExchangePatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.exchanges {
		if s.exchanges[i].ID != id {
			continue
		}
		if !s.exchanges[i].Pending {
			return false
		}
		s.exchanges[i].Answer = patch.Answer
		s.exchanges[i].TaskType = patch.TaskType
		s.exchanges[i].Timestamp = patch.Timestamp
		s.exchanges[i].Sections = patch.Sections
		s.exchanges[i].Pending = false
		return true
	}
	return false
}

// PendingCount reports how many exchanges are still in flight.
func (s *SessionStore) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.exchanges {
		if s.exchanges[i].Pending {
			n++
		}
	}
	return n
}

// TouchConversation bumps the message count and updated_at of a conversation
// after a persisted exchange resolves, mirroring the backend's own counter.
func (s *SessionStore) TouchConversation(id, updatedAt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			s.conversations[i].MessageCount++
			s.conversations[i].UpdatedAt = updatedAt
			return
		}
	}
}

// SetDocument records the most recently uploaded document for this session.
func (s *SessionStore) SetDocument(doc DocumentInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.document = doc
}

func (s *SessionStore) Document() DocumentInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document
}
