package app

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// mockBackend serves canned responses so the TUI works with no server running.
// Task routing mirrors the backend's keyword fallback classifier.
type mockBackend struct {
	mu            sync.Mutex
	conversations []Conversation
	messages      map[string][]Exchange
}

var complianceKeywords = []string{
	"gdpr", "hipaa", "compliance", "regulation", "legal", "violation",
	"audit", "checklist", "requirements", "law", "policy compliance",
}

func newMockBackend() *mockBackend {
	return &mockBackend{messages: map[string][]Exchange{}}
}

func classifyQuestion(question string) TaskType {
	q := strings.ToLower(question)
	for _, kw := range complianceKeywords {
		if strings.Contains(q, kw) {
			return TaskCompliance
		}
	}
	return TaskTranslation
}

func mockTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func (m *mockBackend) listConversations() []Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Conversation, len(m.conversations))
	copy(out, m.conversations)
	return out
}

func (m *mockBackend) createConversation(title, documentType string) Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv := Conversation{
		ID:           uuid.NewString(),
		Title:        title,
		DocumentType: documentType,
		CreatedAt:    mockTimestamp(),
		UpdatedAt:    mockTimestamp(),
	}
	m.conversations = append([]Conversation{conv}, m.conversations...)
	return conv
}

func (m *mockBackend) renameConversation(id, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.conversations {
		if m.conversations[i].ID == id {
			m.conversations[i].Title = title
			return nil
		}
	}
	return &APIError{StatusCode: 404, Detail: "Conversation not found."}
}

func (m *mockBackend) deleteConversation(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.conversations {
		if m.conversations[i].ID == id {
			m.conversations = append(m.conversations[:i], m.conversations[i+1:]...)
			delete(m.messages, id)
			return nil
		}
	}
	return &APIError{StatusCode: 404, Detail: "Conversation not found."}
}

func (m *mockBackend) conversationMessages(id string) ([]Exchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs, ok := m.messages[id]
	if !ok {
		for i := range m.conversations {
			if m.conversations[i].ID == id {
				return nil, nil
			}
		}
		return nil, &APIError{StatusCode: 404, Detail: "Conversation not found."}
	}
	out := make([]Exchange, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (m *mockBackend) query(question, documentID string) QueryResult {
	taskType := classifyQuestion(question)
	var answer string
	switch taskType {
	case TaskCompliance:
		answer = "Based on the document, the relevant compliance requirements are summarized below. " +
			"Consult legal experts for a detailed review."
	default:
		answer = fmt.Sprintf("In plain terms, the document answers %q as follows: the relevant sections are summarized below.", question)
	}
	return QueryResult{
		Answer:   answer,
		TaskType: taskType,
		Sections: []Section{
			{Content: "Section 1. This is a canned excerpt from document " + documentID + ".", Score: 0.91, Source: "mock"},
			{Content: "Section 2. Additional supporting context.", Score: 0.74, Source: "mock"},
		},
		Status: "success",
	}
}

func (m *mockBackend) queryConversation(conversationID, question, documentID string) (QueryResult, error) {
	res := m.query(question, documentID)

	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for i := range m.conversations {
		if m.conversations[i].ID == conversationID {
			m.conversations[i].MessageCount++
			m.conversations[i].UpdatedAt = mockTimestamp()
			found = true
			break
		}
	}
	if !found {
		return QueryResult{}, &APIError{StatusCode: 404, Detail: "Conversation not found."}
	}
	m.messages[conversationID] = append(m.messages[conversationID], Exchange{
		Question:  question,
		Answer:    res.Answer,
		TaskType:  res.TaskType,
		Timestamp: mockTimestamp(),
	})
	return res, nil
}

func (m *mockBackend) analyze(documentID string) QueryResult {
	return QueryResult{
		Answer: "Comprehensive analysis of document " + documentID + ": the document covers data handling, " +
			"retention and disclosure. Key obligations and notable clauses are listed in the sources.",
		TaskType: TaskAnalysis,
		Sections: []Section{
			{Content: "Overview of data handling obligations.", Score: 0.88, Source: "mock"},
		},
		Status: "success",
	}
}

func (m *mockBackend) upload(filename string) DocumentInfo {
	return DocumentInfo{
		ID:              uuid.NewString(),
		Filename:        filename,
		TotalChunks:     12,
		TotalCharacters: 18432,
		Status:          "success",
	}
}
