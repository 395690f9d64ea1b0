package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newControllerTest(t *testing.T, handler http.Handler) (*ExchangeController, *SessionStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := NewSessionStore()
	client := NewClient(srv.URL, 5*time.Second)
	return NewExchangeController(client, store, newTestLogger(), "general"), store
}

func TestSubmit_RejectsMissingPreconditions(t *testing.T) {
	ctl, store := newControllerTest(t, http.NotFoundHandler())

	if _, err := ctl.Submit(""); err != ErrNoQuestion {
		t.Fatalf("err = %v, want ErrNoQuestion", err)
	}
	if _, err := ctl.Submit("what does this mean?"); err != ErrNoDocument {
		t.Fatalf("err = %v, want ErrNoDocument", err)
	}
	if len(store.Exchanges()) != 0 {
		t.Fatal("rejected submissions must not append a placeholder")
	}

	if ctl.CanSubmit("question") {
		t.Fatal("CanSubmit must be false without a document")
	}
	store.SetDocument(DocumentInfo{ID: "doc-1"})
	if !ctl.CanSubmit("question") {
		t.Fatal("CanSubmit must be true with question and document")
	}
}

func TestSubmit_PlaceholderVisibleBeforeResolution(t *testing.T) {
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		json.NewEncoder(w).Encode(QueryResult{Answer: "Normal", TaskType: TaskTranslation})
	})
	ctl, store := newControllerTest(t, handler)
	store.SetDocument(DocumentInfo{ID: "doc-1"})

	sub, err := ctl.Submit("What are my results?")
	if err != nil {
		t.Fatal(err)
	}

	// Optimistic placeholder is in the thread before any network traffic
	// completes.
	got := store.Exchanges()
	if len(got) != 1 {
		t.Fatalf("expected 1 exchange, got %d", len(got))
	}
	if got[0].Answer != AnswerPending || !got[0].Pending {
		t.Fatalf("expected pending placeholder, got %+v", got[0])
	}

	done := make(chan struct{})
	go func() {
		ctl.Complete(context.Background(), sub)
		close(done)
	}()
	close(release)
	<-done

	got = store.Exchanges()
	if got[0].Question != "What are my results?" {
		t.Fatalf("question changed: %q", got[0].Question)
	}
	if got[0].Answer != "Normal" || got[0].TaskType != TaskTranslation {
		t.Fatalf("unexpected resolution: %+v", got[0])
	}
	if got[0].Pending {
		t.Fatal("exchange must be terminal after resolution")
	}
	if got[0].Timestamp == "" {
		t.Fatal("timestamp must be set on resolution")
	}
}

func TestComplete_FailureResolvesToErrorString(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Policy not found."})
	})
	ctl, store := newControllerTest(t, handler)
	store.SetDocument(DocumentInfo{ID: "doc-1"})

	sub, err := ctl.Submit("anything")
	if err != nil {
		t.Fatal(err)
	}
	ctl.Complete(context.Background(), sub)

	got := store.Exchanges()[0]
	if got.Pending {
		t.Fatal("failed exchange must still resolve")
	}
	if got.Answer == "" || got.Answer == AnswerPending {
		t.Fatalf("expected error answer, got %q", got.Answer)
	}
	if !strings.Contains(got.Answer, "Policy not found.") {
		t.Fatalf("backend detail must be surfaced, got %q", got.Answer)
	}
	if got.TaskType != TaskError {
		t.Fatalf("task type = %q, want error", got.TaskType)
	}
}

func TestComplete_ConcurrentExchangesResolveIndependently(t *testing.T) {
	gates := map[string]chan struct{}{
		"alpha": make(chan struct{}),
		"beta":  make(chan struct{}),
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		json.NewDecoder(r.Body).Decode(&req)
		if gate, ok := gates[req.Question]; ok {
			<-gate
		}
		json.NewEncoder(w).Encode(QueryResult{Answer: "echo: " + req.Question, TaskType: TaskTranslation})
	})
	ctl, store := newControllerTest(t, handler)
	store.SetDocument(DocumentInfo{ID: "doc-1"})

	subAlpha, err := ctl.Submit("alpha")
	if err != nil {
		t.Fatal(err)
	}
	subBeta, err := ctl.Submit("beta")
	if err != nil {
		t.Fatal(err)
	}
	if store.PendingCount() != 2 {
		t.Fatalf("expected 2 outstanding exchanges, got %d", store.PendingCount())
	}

	doneAlpha := make(chan struct{})
	doneBeta := make(chan struct{})
	go func() { ctl.Complete(context.Background(), subAlpha); close(doneAlpha) }()
	go func() { ctl.Complete(context.Background(), subBeta); close(doneBeta) }()

	// Resolve the later submission first: resolution must key on the exchange
	// id, not on "the last message".
	close(gates["beta"])
	<-doneBeta

	got := store.Exchanges()
	if got[1].Answer != "echo: beta" || got[1].Pending {
		t.Fatalf("beta not resolved: %+v", got[1])
	}
	if got[0].Answer != AnswerPending || !got[0].Pending {
		t.Fatalf("alpha must still be pending: %+v", got[0])
	}

	close(gates["alpha"])
	<-doneAlpha

	got = store.Exchanges()
	if got[0].Answer != "echo: alpha" || got[0].Pending {
		t.Fatalf("alpha not resolved: %+v", got[0])
	}
}

func TestComplete_StaleResolutionIsDropped(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(QueryResult{Answer: "late", TaskType: TaskTranslation})
	})
	ctl, store := newControllerTest(t, handler)
	store.SetDocument(DocumentInfo{ID: "doc-1"})

	sub, err := ctl.Submit("question")
	if err != nil {
		t.Fatal(err)
	}
	// User navigates away before the response lands.
	store.SetActive("another-conversation")

	ctl.Complete(context.Background(), sub)

	if len(store.Exchanges()) != 0 {
		t.Fatalf("stale resolution must not resurrect exchanges: %+v", store.Exchanges())
	}
}

func TestComplete_ConversationScopedBumpsConversation(t *testing.T) {
	var path string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewEncoder(w).Encode(QueryResult{Answer: "persisted", TaskType: TaskTranslation})
	})
	ctl, store := newControllerTest(t, handler)
	store.SetConversations([]Conversation{{ID: "conv-1", Title: "Lab Results", DocumentID: "doc-9", MessageCount: 1}})
	store.SetActive("conv-1")

	sub, err := ctl.Submit("What are my results?")
	if err != nil {
		t.Fatal(err)
	}
	if sub.ConversationID != "conv-1" {
		t.Fatalf("submission must target the active conversation, got %q", sub.ConversationID)
	}
	if sub.DocumentID != "doc-9" {
		t.Fatalf("document id must come from the active conversation, got %q", sub.DocumentID)
	}

	ctl.Complete(context.Background(), sub)

	if path != "/query/conv-1" {
		t.Fatalf("expected conversation-scoped endpoint, got %q", path)
	}
	got, _ := store.Conversation("conv-1")
	if got.MessageCount != 2 {
		t.Fatalf("message count = %d, want 2", got.MessageCount)
	}
}

func TestSubmitAnalysis_UsesSyntheticQuestionAndAnalyzeEndpoint(t *testing.T) {
	var path string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewEncoder(w).Encode(QueryResult{Answer: "full report", TaskType: TaskAnalysis})
	})
	ctl, store := newControllerTest(t, handler)
	store.SetDocument(DocumentInfo{ID: "doc-1"})

	sub, err := ctl.SubmitAnalysis()
	if err != nil {
		t.Fatal(err)
	}
	got := store.Exchanges()
	if len(got) != 1 || got[0].Question != analysisQuestion {
		t.Fatalf("expected synthetic analysis question, got %+v", got)
	}
	if got[0].Answer != AnswerPending {
		t.Fatal("analysis follows the same optimistic protocol")
	}

	ctl.Complete(context.Background(), sub)

	if path != "/analyze" {
		t.Fatalf("expected /analyze, got %q", path)
	}
	if store.Exchanges()[0].Answer != "full report" {
		t.Fatalf("unexpected resolution: %+v", store.Exchanges()[0])
	}
}

func TestSubmitAnalysis_RequiresDocument(t *testing.T) {
	ctl, store := newControllerTest(t, http.NotFoundHandler())

	if _, err := ctl.SubmitAnalysis(); err != ErrNoDocument {
		t.Fatalf("err = %v, want ErrNoDocument", err)
	}
	if len(store.Exchanges()) != 0 {
		t.Fatal("rejected analysis must not append a placeholder")
	}
}
