package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client speaks the backend's REST contract. All methods are safe for use from
// multiple goroutines. With BaseURL "mock://" every call is served by an
// in-process canned backend and no network I/O happens.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	mock *mockBackend
}

// APIError is a non-2xx backend response. The backend attaches a human-readable
// "detail" field to errors; when present it is surfaced verbatim.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

type queryRequest struct {
	Question   string `json:"question"`
	DocumentID string `json:"document_id,omitempty"`
	// Older backend revisions name the identifier policy_id. Both fields carry
	// the same value so either revision accepts the request.
	PolicyID     string `json:"policy_id,omitempty"`
	DocumentType string `json:"document_type,omitempty"`
}

// QueryResult is the resolution payload of /query, /query/{id} and /analyze.
type QueryResult struct {
	Answer   string    `json:"answer"`
	TaskType TaskType  `json:"task_type"`
	Sections []Section `json:"original_sections,omitempty"`
	Status   string    `json:"status,omitempty"`
}

type conversationListEnvelope struct {
	Status        string         `json:"status"`
	Conversations []Conversation `json:"conversations"`
}

type conversationEnvelope struct {
	Status       string       `json:"status"`
	Conversation Conversation `json:"conversation"`
}

type messagesEnvelope struct {
	Status   string     `json:"status"`
	Messages []Exchange `json:"messages"`
}

type uploadEnvelope struct {
	DocumentID      string `json:"document_id"`
	PolicyID        string `json:"policy_id"`
	Filename        string `json:"filename"`
	TotalChunks     int    `json:"total_chunks"`
	TotalCharacters int    `json:"total_characters"`
	Status          string `json:"status"`
	Note            string `json:"note"`
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
	if baseURL == "" || baseURL == "mock://" {
		c.BaseURL = "mock://"
		c.mock = newMockBackend()
	}
	return c
}

// Mock reports whether the client is serving canned responses.
func (c *Client) Mock() bool { return c.mock != nil }

func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	if c.mock != nil {
		return c.mock.listConversations(), nil
	}
	var env conversationListEnvelope
	if err := c.do(ctx, http.MethodGet, "/conversations", nil, &env); err != nil {
		return nil, err
	}
	return env.Conversations, nil
}

func (c *Client) CreateConversation(ctx context.Context, title, documentType string) (Conversation, error) {
	if c.mock != nil {
		return c.mock.createConversation(title, documentType), nil
	}
	body := map[string]string{"title": title, "document_type": documentType}
	var env conversationEnvelope
	if err := c.do(ctx, http.MethodPost, "/conversations", body, &env); err != nil {
		return Conversation{}, err
	}
	return env.Conversation, nil
}

func (c *Client) RenameConversation(ctx context.Context, id, title string) error {
	if c.mock != nil {
		return c.mock.renameConversation(id, title)
	}
	return c.do(ctx, http.MethodPut, "/conversations/"+id, map[string]string{"title": title}, nil)
}

func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	if c.mock != nil {
		return c.mock.deleteConversation(id)
	}
	return c.do(ctx, http.MethodDelete, "/conversations/"+id, nil, nil)
}

func (c *Client) ConversationMessages(ctx context.Context, id string) ([]Exchange, error) {
	if c.mock != nil {
		return c.mock.conversationMessages(id)
	}
	var env messagesEnvelope
	if err := c.do(ctx, http.MethodGet, "/conversations/"+id, nil, &env); err != nil {
		return nil, err
	}
	return env.Messages, nil
}

// Query runs a stateless question against an uploaded document. Nothing is
// persisted server-side.
func (c *Client) Query(ctx context.Context, question, documentID, documentType string) (QueryResult, error) {
	if c.mock != nil {
		return c.mock.query(question, documentID), nil
	}
	req := queryRequest{Question: question, DocumentID: documentID, PolicyID: documentID, DocumentType: documentType}
	var res QueryResult
	if err := c.do(ctx, http.MethodPost, "/query", req, &res); err != nil {
		return QueryResult{}, err
	}
	return res, nil
}

// QueryConversation runs a question scoped to a conversation; the backend
// persists the exchange under it.
func (c *Client) QueryConversation(ctx context.Context, conversationID, question, documentID, documentType string) (QueryResult, error) {
	if c.mock != nil {
		return c.mock.queryConversation(conversationID, question, documentID)
	}
	req := queryRequest{Question: question, DocumentID: documentID, PolicyID: documentID, DocumentType: documentType}
	var res QueryResult
	if err := c.do(ctx, http.MethodPost, "/query/"+conversationID, req, &res); err != nil {
		return QueryResult{}, err
	}
	return res, nil
}

// Analyze requests a comprehensive document analysis.
func (c *Client) Analyze(ctx context.Context, documentID string) (QueryResult, error) {
	if c.mock != nil {
		return c.mock.analyze(documentID), nil
	}
	req := queryRequest{DocumentID: documentID, PolicyID: documentID}
	var res QueryResult
	if err := c.do(ctx, http.MethodPost, "/analyze", req, &res); err != nil {
		return QueryResult{}, err
	}
	return res, nil
}

// Upload sends a document as multipart form data and returns the backend's
// registration for it.
func (c *Client) Upload(ctx context.Context, path string) (DocumentInfo, error) {
	if c.mock != nil {
		return c.mock.upload(filepath.Base(path)), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return DocumentInfo{}, err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return DocumentInfo{}, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return DocumentInfo{}, err
	}
	if err := mw.Close(); err != nil {
		return DocumentInfo{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/upload", &buf)
	if err != nil {
		return DocumentInfo{}, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return DocumentInfo{}, decodeAPIError(resp.StatusCode, payload)
	}

	var env uploadEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return DocumentInfo{}, fmt.Errorf("invalid upload response: %w", err)
	}
	id := env.DocumentID
	if id == "" {
		id = env.PolicyID
	}
	return DocumentInfo{
		ID:              id,
		Filename:        env.Filename,
		TotalChunks:     env.TotalChunks,
		TotalCharacters: env.TotalCharacters,
		Status:          env.Status,
		Note:            env.Note,
	}, nil
}

func (c *Client) Health(ctx context.Context) error {
	if c.mock != nil {
		return nil
	}
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// do runs one JSON request/response round trip. A nil out discards the body.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("invalid response from %s: %w", path, err)
	}
	return nil
}

func decodeAPIError(status int, payload []byte) error {
	var body struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(payload, &body)
	return &APIError{StatusCode: status, Detail: strings.TrimSpace(body.Detail)}
}
