package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoQuestion rejects a submission with an empty question before any
	// network call.
	ErrNoQuestion = errors.New("question is empty")
	// ErrNoDocument rejects a submission when no document id is known for the
	// active context.
	ErrNoDocument = errors.New("no document uploaded for the active context")
)

// analysisQuestion is the synthetic question shown for comprehensive analysis
// exchanges.
const analysisQuestion = "Run a comprehensive analysis of this document."

// Submission identifies one in-flight exchange. Multiple submissions may be
// outstanding at once; each resolves independently through its ExchangeID.
type Submission struct {
	ExchangeID     string
	ConversationID string // empty for the stateless endpoint
	Question       string
	DocumentID     string
	Analysis       bool
}

// ExchangeController runs question/answer exchanges as a two-phase protocol:
// Submit appends the optimistic placeholder synchronously, Complete performs
// the network call and resolves the placeholder exactly once. Both outcomes
// are terminal; nothing is retried.
type ExchangeController struct {
	client *Client
	store  *SessionStore
	logger *Logger

	documentType string
}

func NewExchangeController(client *Client, store *SessionStore, logger *Logger, documentType string) *ExchangeController {
	if documentType == "" {
		documentType = "general"
	}
	return &ExchangeController{client: client, store: store, logger: logger, documentType: documentType}
}

func newExchangeID() string {
	return uuid.NewString()
}

// ActiveDocumentID resolves the document identifier for the current context:
// the active conversation's document if it has one, else the session upload.
func (c *ExchangeController) ActiveDocumentID() string {
	if id := c.store.ActiveID(); id != "" {
		if conv, ok := c.store.Conversation(id); ok && conv.DocumentID != "" {
			return conv.DocumentID
		}
	}
	return c.store.Document().ID
}

// CanSubmit reports whether a question could be submitted right now. The UI
// uses it to disable the composer rather than surface an error.
func (c *ExchangeController) CanSubmit(question string) bool {
	return question != "" && c.ActiveDocumentID() != ""
}

// Submit validates the preconditions and appends the placeholder exchange.
// The question is visible in the thread from this instant, before any network
// traffic. Callers follow up with Complete for the returned submission.
func (c *ExchangeController) Submit(question string) (Submission, error) {
	if question == "" {
		return Submission{}, ErrNoQuestion
	}
	documentID := c.ActiveDocumentID()
	if documentID == "" {
		return Submission{}, ErrNoDocument
	}
	return c.begin(question, documentID, false), nil
}

// SubmitAnalysis starts a comprehensive-analysis exchange. It follows the same
// two-phase protocol as Submit but with a fixed synthetic question and the
// analysis endpoint.
func (c *ExchangeController) SubmitAnalysis() (Submission, error) {
	documentID := c.ActiveDocumentID()
	if documentID == "" {
		return Submission{}, ErrNoDocument
	}
	return c.begin(analysisQuestion, documentID, true), nil
}

func (c *ExchangeController) begin(question, documentID string, analysis bool) Submission {
	sub := Submission{
		ExchangeID:     newExchangeID(),
		ConversationID: c.store.ActiveID(),
		Question:       question,
		DocumentID:     documentID,
		Analysis:       analysis,
	}
	c.store.AppendExchange(Exchange{
		ID:       sub.ExchangeID,
		Question: question,
		Answer:   AnswerPending,
		Pending:  true,
	})
	return sub
}

// Complete performs the network half of an exchange and resolves its
// placeholder. Failures resolve the placeholder to an error string rather
// than propagating; a stale resolution (the user navigated away) is dropped.
func (c *ExchangeController) Complete(ctx context.Context, sub Submission) {
	var res QueryResult
	var err error
	switch {
	case sub.Analysis:
		res, err = c.client.Analyze(ctx, sub.DocumentID)
	case sub.ConversationID != "":
		res, err = c.client.QueryConversation(ctx, sub.ConversationID, sub.Question, sub.DocumentID, c.documentType)
	default:
		res, err = c.client.Query(ctx, sub.Question, sub.DocumentID, c.documentType)
	}

	patch := ExchangePatch{Timestamp: time.Now().Format(time.RFC3339)}
	if err != nil {
		c.logger.Error("exchange failed", map[string]interface{}{
			"exchange_id":     sub.ExchangeID,
			"conversation_id": sub.ConversationID,
			"error":           err.Error(),
		})
		patch.Answer = fmt.Sprintf("Sorry, something went wrong: %v", err)
		patch.TaskType = TaskError
	} else {
		patch.Answer = res.Answer
		patch.TaskType = res.TaskType
		patch.Sections = res.Sections
	}

	if !c.store.ResolveExchange(sub.ExchangeID, patch) {
		c.logger.Warn("discarding stale exchange resolution", map[string]interface{}{
			"exchange_id": sub.ExchangeID,
		})
		return
	}
	if err == nil && sub.ConversationID != "" {
		c.store.TouchConversation(sub.ConversationID, patch.Timestamp)
	}
}
