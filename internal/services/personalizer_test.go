package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/smoothmigration/backend/internal/llm"
	"github.com/smoothmigration/backend/internal/models"
)

type stubCompleter struct {
	reply   string
	err     error
	calls   int
	prompts []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string, _ []llm.Message) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func personalizeFixture() (models.TaskTemplate, models.QuizProfile) {
	tmpl := models.TaskTemplate{
		TaskID:                "t1",
		TaskDescription:       "Open a local bank account",
		ImportanceExplanation: "Salaries in {destination} are paid through local accounts.",
		Personalize:           true,
	}
	profile := models.QuizProfile{
		MoveType:    "international",
		Destination: "Lisbon",
		Family:      map[string]bool{"children": true},
		Vehicle:     "rent",
	}
	return tmpl, profile
}

func TestPersonalizeSkipsModelWhenFlagOff(t *testing.T) {
	tmpl, profile := personalizeFixture()
	tmpl.Personalize = false

	stub := &stubCompleter{reply: "should never be used"}
	p := NewPersonalizer(stub, discardLogger())

	got := p.Personalize(context.Background(), tmpl, profile)
	if stub.calls != 0 {
		t.Fatalf("completer called %d times, want 0", stub.calls)
	}
	want := "Salaries in Lisbon are paid through local accounts."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPersonalizeReturnsSanitizedReply(t *testing.T) {
	tmpl, profile := personalizeFixture()
	stub := &stubCompleter{reply: "<think>plan</think>Sure, here is the explanation: Your salary in Lisbon needs a local account."}
	p := NewPersonalizer(stub, discardLogger())

	got := p.Personalize(context.Background(), tmpl, profile)
	if stub.calls != 1 {
		t.Fatalf("completer called %d times, want 1", stub.calls)
	}
	if got != "Your salary in Lisbon needs a local account." {
		t.Errorf("got %q", got)
	}
}

func TestPersonalizeFallsBackOnError(t *testing.T) {
	tmpl, profile := personalizeFixture()
	stub := &stubCompleter{err: errors.New("connection refused")}
	p := NewPersonalizer(stub, discardLogger())

	got := p.Personalize(context.Background(), tmpl, profile)
	want := "Salaries in Lisbon are paid through local accounts."
	if got != want {
		t.Errorf("got %q, want substituted base %q", got, want)
	}
}

func TestPersonalizeFallsBackWhenSanitizedEmpty(t *testing.T) {
	tmpl, profile := personalizeFixture()
	stub := &stubCompleter{reply: "<think>nothing but reasoning</think>   "}
	p := NewPersonalizer(stub, discardLogger())

	got := p.Personalize(context.Background(), tmpl, profile)
	want := "Salaries in Lisbon are paid through local accounts."
	if got != want {
		t.Errorf("got %q, want substituted base %q", got, want)
	}
}

func TestPersonalizePromptCarriesProfileAndSubstitutedBase(t *testing.T) {
	tmpl, profile := personalizeFixture()
	stub := &stubCompleter{reply: "fine"}
	p := NewPersonalizer(stub, discardLogger())

	p.Personalize(context.Background(), tmpl, profile)
	if len(stub.prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(stub.prompts))
	}
	prompt := stub.prompts[0]
	for _, fragment := range []string{
		"Lisbon",
		"with children",
		"Open a local bank account",
		"Salaries in Lisbon are paid through local accounts.",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q:\n%s", fragment, prompt)
		}
	}
	if strings.Contains(prompt, "{destination}") {
		t.Error("prompt must carry the substituted base, not the raw placeholder")
	}
}
