package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/accessly-backend/internal/domain/scan"
	"github.com/yungbote/accessly-backend/internal/platform/apierr"
	"github.com/yungbote/accessly-backend/internal/platform/logger"
)

type fakeGenerator struct {
	calls  int
	system string
	user   string
	text   string
	err    error
}

func (f *fakeGenerator) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.calls++
	f.system, f.user = system, user
	return f.text, f.err
}

func userMsg(text string) Message {
	return Message{Role: "user", Parts: []Part{{Text: text}}}
}

func TestGate(t *testing.T) {
	tests := []struct {
		q    string
		want bool
	}{
		{"How do I fix this?", true},
		{"What does WCAG 1.1.1 require?", true},
		{"Is my Screen Reader support ok", true},
		{"needs better ALT TEXT", true},
		{"tell me a joke", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Gate(tt.q); got != tt.want {
			t.Fatalf("Gate(%q): got=%v want=%v", tt.q, got, tt.want)
		}
	}
}

func TestLatestUserQuestion(t *testing.T) {
	msgs := []Message{
		userMsg("first"),
		{Role: "model", Parts: []Part{{Text: "reply"}}},
		userMsg("second"),
		{Role: "model", Parts: []Part{{Text: "reply 2"}}},
	}
	if got := LatestUserQuestion(msgs); got != "second" {
		t.Fatalf("got=%q want=second", got)
	}
	if got := LatestUserQuestion(nil); got != "" {
		t.Fatalf("got=%q want empty", got)
	}
	if got := LatestUserQuestion([]Message{{Role: "user"}}); got != "" {
		t.Fatalf("got=%q want empty for message without parts", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	violations := []scan.Violation{{
		ID:     "image-alt",
		Impact: scan.ImpactCritical,
		Nodes: []scan.ViolationNode{
			{HTML: `<img src="a.png">`},
			{HTML: `<img src="b.png">`},
		},
	}}
	system, user, err := BuildPrompt("how do I fix image-alt?", violations)
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}
	if system != SystemInstruction() || !strings.Contains(system, RefusalMessage) {
		t.Fatalf("unexpected system instruction: %q", system)
	}
	for _, want := range []string{
		`"how do I fix image-alt?"`,
		`"id": "image-alt"`,
		"<img src=\"a.png\">\n\n<img src=\"b.png\">",
	} {
		if !strings.Contains(user, want) {
			t.Fatalf("user prompt missing %q:\n%s", want, user)
		}
	}
}

func TestAskOffTopicMakesNoCall(t *testing.T) {
	gen := &fakeGenerator{text: "should not be used"}
	svc := NewService(logger.Nop(), gen)

	got, err := svc.Ask(context.Background(), []Message{userMsg("what's the weather?")}, nil)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != RefusalMessage {
		t.Fatalf("got=%q want refusal", got)
	}
	if gen.calls != 0 {
		t.Fatalf("generator calls: got=%d want=0", gen.calls)
	}
}

func TestAskOnTopic(t *testing.T) {
	gen := &fakeGenerator{text: "  Accessibility Issues Found:\n1. missing alt  "}
	svc := NewService(logger.Nop(), gen)

	got, err := svc.Ask(context.Background(), []Message{userMsg("how to fix contrast")}, []scan.Violation{})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != "Accessibility Issues Found:\n1. missing alt" {
		t.Fatalf("got=%q", got)
	}
	if gen.calls != 1 || !strings.Contains(gen.user, "how to fix contrast") {
		t.Fatalf("unexpected generator call: calls=%d user=%q", gen.calls, gen.user)
	}
}

func TestAskGeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream down")}
	svc := NewService(logger.Nop(), gen)

	_, err := svc.Ask(context.Background(), []Message{userMsg("aria question")}, nil)
	if !apierr.Is(err, apierr.CodeAssistantUnavailable) {
		t.Fatalf("expected AssistantUnavailable, got %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("generator calls: got=%d want=1", gen.calls)
	}
}

func TestAskWithoutGenerator(t *testing.T) {
	svc := NewService(logger.Nop(), nil)
	_, err := svc.Ask(context.Background(), []Message{userMsg("label issue")}, nil)
	if !apierr.Is(err, apierr.CodeAssistantUnavailable) {
		t.Fatalf("expected AssistantUnavailable, got %v", err)
	}
}
