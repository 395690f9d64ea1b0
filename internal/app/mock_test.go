package app

import (
	"context"
	"testing"
	"time"
)

func TestClassifyQuestion(t *testing.T) {
	cases := []struct {
		question string
		want     TaskType
	}{
		{"Is this GDPR compliant?", TaskCompliance},
		{"run a HIPAA audit checklist", TaskCompliance},
		{"What does section 3 mean in plain English?", TaskTranslation},
		{"Summarize my results", TaskTranslation},
	}
	for _, tc := range cases {
		if got := classifyQuestion(tc.question); got != tc.want {
			t.Fatalf("classifyQuestion(%q) = %q, want %q", tc.question, got, tc.want)
		}
	}
}

func TestMockBackend_ConversationLifecycle(t *testing.T) {
	c := NewClient("mock://", time.Second)
	ctx := context.Background()

	first, err := c.CreateConversation(ctx, "Lab Results", "general")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.CreateConversation(ctx, "Insurance Policy", "general")
	if err != nil {
		t.Fatal(err)
	}

	list, err := c.ListConversations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("newest conversation must come first: %+v", list)
	}

	res, err := c.QueryConversation(ctx, first.ID, "What are my results?", "doc-1", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Answer == "" || res.TaskType != TaskTranslation {
		t.Fatalf("unexpected result: %+v", res)
	}

	msgs, err := c.ConversationMessages(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Question != "What are my results?" {
		t.Fatalf("exchange not persisted: %+v", msgs)
	}

	list, _ = c.ListConversations(ctx)
	for _, conv := range list {
		if conv.ID == first.ID && conv.MessageCount != 1 {
			t.Fatalf("message count = %d, want 1", conv.MessageCount)
		}
	}

	if err := c.DeleteConversation(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ConversationMessages(ctx, first.ID); err == nil {
		t.Fatal("expected lookup of deleted conversation to fail")
	}
}

func TestMockBackend_UnknownConversation(t *testing.T) {
	c := NewClient("mock://", time.Second)
	ctx := context.Background()

	if _, err := c.QueryConversation(ctx, "missing", "q", "doc-1", ""); err == nil {
		t.Fatal("expected not-found error")
	}
	if err := c.RenameConversation(ctx, "missing", "title"); err == nil {
		t.Fatal("expected not-found error")
	}
}

func TestMockBackend_UploadAndAnalyze(t *testing.T) {
	c := NewClient("mock://", time.Second)
	ctx := context.Background()

	doc, err := c.Upload(ctx, "/tmp/does-not-matter/policy.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if doc.ID == "" || doc.Filename != "policy.pdf" {
		t.Fatalf("unexpected upload result: %+v", doc)
	}

	res, err := c.Analyze(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.TaskType != TaskAnalysis || res.Answer == "" {
		t.Fatalf("unexpected analysis: %+v", res)
	}
}
