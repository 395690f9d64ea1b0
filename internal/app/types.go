package app

// TaskType classifies how the backend routed a question. The set is open:
// servers may introduce new types, so anything unrecognized maps to TaskUnknown
// for display purposes only and is otherwise passed through verbatim.
type TaskType string

const (
	TaskTranslation TaskType = "translation"
	TaskCompliance  TaskType = "compliance"
	TaskAnalysis    TaskType = "analysis"
	TaskError       TaskType = "error"
	TaskUnknown     TaskType = "unknown"
)

// AnswerPending is the sentinel answer shown while an exchange is in flight.
const AnswerPending = "processing"

type Conversation struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	DocumentID   string `json:"document_id,omitempty"`
	DocumentName string `json:"document_name,omitempty"`
	DocumentType string `json:"document_type,omitempty"`
	MessageCount int    `json:"message_count"`
	// Timestamps are backend-owned and format-opaque; the client never parses them.
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Section is a relevance-scored source excerpt attached to an answer.
type Section struct {
	Content string  `json:"content,omitempty"`
	Text    string  `json:"text,omitempty"`
	Score   float64 `json:"score,omitempty"`
	Source  string  `json:"source,omitempty"`
}

// Body returns whichever excerpt field the backend populated.
func (s Section) Body() string {
	if s.Content != "" {
		return s.Content
	}
	return s.Text
}

// Exchange is one question/answer pair. Question is immutable after creation.
// Answer starts as AnswerPending and is overwritten exactly once when the
// exchange resolves, successfully or not.
type Exchange struct {
	// ID is a client-generated correlation id used to resolve the in-flight
	// placeholder. Persisted exchanges loaded from the backend get a fresh one.
	ID        string    `json:"-"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	TaskType  TaskType  `json:"task_type,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
	Sections  []Section `json:"original_sections,omitempty"`
	Pending   bool      `json:"-"`
}

// ExchangePatch carries the resolution fields for a pending exchange.
type ExchangePatch struct {
	Answer    string
	TaskType  TaskType
	Timestamp string
	Sections  []Section
}

// DocumentInfo describes the most recently uploaded document for this session.
type DocumentInfo struct {
	ID              string
	Filename        string
	TotalChunks     int
	TotalCharacters int
	// Status/Note carry the backend's degraded-mode hints
	// (e.g. "uploaded_without_processing") straight through to the UI.
	Status string
	Note   string
}
