package app

import "testing"

func conv(id, title string) Conversation {
	return Conversation{ID: id, Title: title}
}

func TestUpsertConversation_NewGoesToHead(t *testing.T) {
	s := NewSessionStore()
	s.SetConversations([]Conversation{conv("a", "first"), conv("b", "second")})

	s.UpsertConversation(conv("c", "third"))

	got := s.Conversations()
	if len(got) != 3 {
		t.Fatalf("expected 3 conversations, got %d", len(got))
	}
	if got[0].ID != "c" {
		t.Fatalf("expected new conversation at head, got %q", got[0].ID)
	}
}

func TestUpsertConversation_ExistingKeepsPosition(t *testing.T) {
	s := NewSessionStore()
	s.SetConversations([]Conversation{conv("a", "first"), conv("b", "second"), conv("c", "third")})

	s.UpsertConversation(conv("b", "renamed"))

	got := s.Conversations()
	if got[1].ID != "b" || got[1].Title != "renamed" {
		t.Fatalf("expected b renamed in place, got %+v", got[1])
	}
	if got[0].ID != "a" || got[2].ID != "c" {
		t.Fatalf("order changed: %+v", got)
	}
}

func TestRemoveConversation_ActiveClearsSelection(t *testing.T) {
	s := NewSessionStore()
	s.SetConversations([]Conversation{conv("a", "first"), conv("b", "second")})
	s.SetActive("a")
	s.AppendExchange(Exchange{ID: "x1", Question: "q", Answer: AnswerPending, Pending: true})

	if !s.RemoveConversation("a") {
		t.Fatal("expected removal of active conversation to report true")
	}
	if s.ActiveID() != "" {
		t.Fatalf("active id = %q, want empty", s.ActiveID())
	}
	if len(s.Exchanges()) != 0 {
		t.Fatalf("expected empty exchanges, got %d", len(s.Exchanges()))
	}
	if len(s.Conversations()) != 1 {
		t.Fatalf("expected 1 conversation left, got %d", len(s.Conversations()))
	}
}

func TestRemoveConversation_InactiveKeepsSelection(t *testing.T) {
	s := NewSessionStore()
	s.SetConversations([]Conversation{conv("a", "first"), conv("b", "second")})
	s.SetActive("a")
	s.AppendExchange(Exchange{ID: "x1", Question: "q", Answer: "done"})

	if s.RemoveConversation("b") {
		t.Fatal("expected removal of inactive conversation to report false")
	}
	if s.ActiveID() != "a" {
		t.Fatalf("active id = %q, want a", s.ActiveID())
	}
	if len(s.Exchanges()) != 1 {
		t.Fatal("exchanges of the active conversation must survive")
	}
}

func TestSetActive_ResetsExchanges(t *testing.T) {
	s := NewSessionStore()
	s.AppendExchange(Exchange{ID: "x1", Question: "q", Answer: "done"})

	s.SetActive("a")
	if len(s.Exchanges()) != 0 {
		t.Fatal("switching conversations must reset the thread")
	}

	s.SetActive("")
	if s.ActiveID() != "" {
		t.Fatalf("active id = %q, want empty", s.ActiveID())
	}
	if len(s.Exchanges()) != 0 {
		t.Fatal("unfiled mode must start with an empty thread")
	}
}

func TestResolveExchange_PatchesByIDExactlyOnce(t *testing.T) {
	s := NewSessionStore()
	// Two pending exchanges with identical question text; resolution must go
	// by correlation id, never by matching content.
	s.AppendExchange(Exchange{ID: "x1", Question: "same", Answer: AnswerPending, Pending: true})
	s.AppendExchange(Exchange{ID: "x2", Question: "same", Answer: AnswerPending, Pending: true})

	ok := s.ResolveExchange("x1", ExchangePatch{Answer: "first answer", TaskType: TaskTranslation, Timestamp: "t1"})
	if !ok {
		t.Fatal("expected resolution of x1 to succeed")
	}

	got := s.Exchanges()
	if got[0].Answer != "first answer" || got[0].Pending {
		t.Fatalf("x1 not resolved: %+v", got[0])
	}
	if got[1].Answer != AnswerPending || !got[1].Pending {
		t.Fatalf("x2 must remain pending: %+v", got[1])
	}
	if got[0].Question != "same" {
		t.Fatal("question must never change")
	}

	// Second resolution of the same exchange is rejected.
	if s.ResolveExchange("x1", ExchangePatch{Answer: "overwrite"}) {
		t.Fatal("expected second resolution to be rejected")
	}
	if s.Exchanges()[0].Answer != "first answer" {
		t.Fatal("resolved answer must not be overwritten")
	}
}

func TestResolveExchange_UnknownIDIsDiscarded(t *testing.T) {
	s := NewSessionStore()
	s.AppendExchange(Exchange{ID: "x1", Question: "q", Answer: AnswerPending, Pending: true})
	s.SetActive("elsewhere")

	if s.ResolveExchange("x1", ExchangePatch{Answer: "late"}) {
		t.Fatal("stale resolution must be discarded after navigation")
	}
}

func TestTouchConversation_BumpsCountAndTimestamp(t *testing.T) {
	s := NewSessionStore()
	s.SetConversations([]Conversation{{ID: "a", Title: "t", MessageCount: 2, UpdatedAt: "old"}})

	s.TouchConversation("a", "new")

	got, _ := s.Conversation("a")
	if got.MessageCount != 3 || got.UpdatedAt != "new" {
		t.Fatalf("touch did not apply: %+v", got)
	}
}

func TestPendingCount(t *testing.T) {
	s := NewSessionStore()
	s.AppendExchange(Exchange{ID: "x1", Answer: AnswerPending, Pending: true})
	s.AppendExchange(Exchange{ID: "x2", Answer: "done"})
	s.AppendExchange(Exchange{ID: "x3", Answer: AnswerPending, Pending: true})

	if got := s.PendingCount(); got != 2 {
		t.Fatalf("pending count = %d, want 2", got)
	}
}
