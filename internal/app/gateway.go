package app

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyTitle rejects conversation creation before any network call.
var ErrEmptyTitle = errors.New("conversation title is empty")

// Gateway maps conversation CRUD intents onto backend calls and translates
// responses into SessionStore mutations. Every failing call logs and leaves
// the store in its last known-good state.
type Gateway struct {
	client *Client
	store  *SessionStore
	logger *Logger

	documentType string
}

func NewGateway(client *Client, store *SessionStore, logger *Logger, documentType string) *Gateway {
	if documentType == "" {
		documentType = "general"
	}
	return &Gateway{client: client, store: store, logger: logger, documentType: documentType}
}

// Load fetches the conversation list and replaces the store's copy. A failure
// is non-fatal: the store keeps whatever it had.
func (g *Gateway) Load(ctx context.Context) error {
	list, err := g.client.ListConversations(ctx)
	if err != nil {
		g.logger.Error("failed to load conversations", map[string]interface{}{"error": err.Error()})
		return err
	}
	g.store.SetConversations(list)
	return nil
}

// Create registers a new conversation and makes it active. An empty (or
// all-whitespace) title fails locally with ErrEmptyTitle; no request is made.
func (g *Gateway) Create(ctx context.Context, title string) (Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Conversation{}, ErrEmptyTitle
	}
	conv, err := g.client.CreateConversation(ctx, title, g.documentType)
	if err != nil {
		g.logger.Error("failed to create conversation", map[string]interface{}{"title": title, "error": err.Error()})
		return Conversation{}, err
	}
	g.store.UpsertConversation(conv)
	g.store.SetActive(conv.ID)
	return conv, nil
}

// Remove deletes a conversation. Callers must have gathered explicit user
// confirmation first; the gateway does not gate destructive intents itself.
// If the deleted conversation was active the selection is cleared and the
// caller should treat the session as back in unfiled mode.
func (g *Gateway) Remove(ctx context.Context, id string) error {
	if err := g.client.DeleteConversation(ctx, id); err != nil {
		g.logger.Error("failed to delete conversation", map[string]interface{}{"id": id, "error": err.Error()})
		return err
	}
	g.store.RemoveConversation(id)
	return nil
}

// Rename updates a conversation's title in place without changing list order.
// An empty trimmed title silently cancels the edit: no request, no mutation.
func (g *Gateway) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	if err := g.client.RenameConversation(ctx, id, title); err != nil {
		g.logger.Error("failed to rename conversation", map[string]interface{}{"id": id, "error": err.Error()})
		return err
	}
	if conv, ok := g.store.Conversation(id); ok {
		conv.Title = title
		g.store.UpsertConversation(conv)
	}
	return nil
}

// LoadMessages replaces the active thread with the backend's persisted
// messages for the given conversation. Loaded exchanges get fresh correlation
// ids and are never pending.
func (g *Gateway) LoadMessages(ctx context.Context, id string) error {
	msgs, err := g.client.ConversationMessages(ctx, id)
	if err != nil {
		g.logger.Error("failed to load messages", map[string]interface{}{"id": id, "error": err.Error()})
		return err
	}
	for i := range msgs {
		msgs[i].ID = newExchangeID()
		msgs[i].Pending = false
	}
	// A stale response for a conversation the user has since left must not
	// overwrite the current thread.
	if g.store.ActiveID() != id {
		g.logger.Warn("discarding stale message load", map[string]interface{}{"id": id})
		return nil
	}
	g.store.SetExchanges(msgs)
	return nil
}

// SetActive switches conversations: empty id enters unfiled mode with an empty
// thread, any other id triggers a message reload for it.
func (g *Gateway) SetActive(ctx context.Context, id string) error {
	g.store.SetActive(id)
	if id == "" {
		return nil
	}
	return g.LoadMessages(ctx, id)
}
