package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/blinxlabs/blinx/internal/agent"
	"github.com/blinxlabs/blinx/internal/assistant/assistanttest"
	"github.com/blinxlabs/blinx/internal/config"
	"github.com/blinxlabs/blinx/internal/schema"
	"github.com/blinxlabs/blinx/internal/tools"
)

var conv = agent.Conversation{AssistantID: "asst_1", ThreadID: "thread_1"}

func newResponder(svc *assistanttest.Service, reg *tools.Registry) *agent.Responder {
	poller := agent.NewPoller(svc, agent.PollPolicy{MaxAttempts: 10, Timeout: time.Second})
	return agent.NewResponder(svc, poller, agent.NewDispatcher(reg, 4), 5)
}

func runSession(t *testing.T, svc *assistanttest.Service, reg *tools.Registry, input string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	s := New(newResponder(svc, reg), conv, "Blinx", strings.NewReader(input), &out, &errOut)
	err := s.Run(context.Background())
	return out.String(), errOut.String(), err
}

func TestSession_ExitMakesNoServiceCalls(t *testing.T) {
	svc := assistanttest.New()

	for _, input := range []string{"exit\n", "  EXIT  \n", "\n\n  \nExit\n"} {
		out, _, err := runSession(t, svc, tools.NewRegistryBuilder().Build(), input)
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", input, err)
		}
		if !strings.HasPrefix(out, "\nYou: ") {
			t.Errorf("input %q: expected prompt, got %q", input, out)
		}
	}
	if n := svc.TotalCalls(); n != 0 {
		t.Errorf("expected no service calls, got %d", n)
	}
}

func TestSession_EOFEndsCleanly(t *testing.T) {
	svc := assistanttest.New()

	_, _, err := runSession(t, svc, tools.NewRegistryBuilder().Build(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := svc.TotalCalls(); n != 0 {
		t.Errorf("expected no service calls, got %d", n)
	}
}

func TestSession_PlainReply(t *testing.T) {
	svc := assistanttest.New(
		schema.Run{ID: "run_1", Status: schema.RunQueued},
		schema.Run{ID: "run_1", Status: schema.RunCompleted},
	)
	svc.Reply = "Hi! How can I help?"

	out, _, err := runSession(t, svc, tools.NewRegistryBuilder().Build(), "hello\nexit\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "\nBlinx: Hi! How can I help?\n") {
		t.Errorf("expected persona reply in output, got %q", out)
	}
	if got := strings.Count(out, "You: "); got != 2 {
		t.Errorf("expected 2 prompts, got %d", got)
	}
}

func TestSession_ToolCallReply(t *testing.T) {
	srvTool := &staticTool{name: string(tools.ToolFetchTopHolders), payload: []map[string]string{
		{"address": "Holder1", "holding": "10.000000"},
	}}
	reg := tools.NewRegistryBuilder().WithTool(srvTool).Build()

	svc := assistanttest.New(
		schema.Run{ID: "run_1", Status: schema.RunRequiresAction, ToolCalls: []schema.ToolCallRequest{
			{ID: "call_1", Name: "fetch_top_holders", Arguments: `{"mintAddress":"So11111111111111111111111111111111111111112"}`},
		}},
		schema.Run{ID: "run_1", Status: schema.RunCompleted},
	)
	svc.Reply = "The top holder is Holder1."

	out, _, err := runSession(t, svc, reg, "who holds wSOL?\nexit\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Blinx: The top holder is Holder1.") {
		t.Errorf("unexpected output %q", out)
	}
	if len(svc.Submissions) != 1 || svc.Submissions[0].Outputs[0].Output != `[{"address":"Holder1","holding":"10.000000"}]` {
		t.Errorf("unexpected submissions %+v", svc.Submissions)
	}
}

func TestSession_EmptyToolResultIsSubmitted(t *testing.T) {
	const mint = "So11111111111111111111111111111111111111112"

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = io.WriteString(w, `{"data":{"Solana":{"BalanceUpdates":[]}}}`)
	}))
	defer srv.Close()

	holders := tools.NewTopHoldersTool(config.BitqueryConfig{APIKey: "bq-test", Endpoint: srv.URL}, srv.Client())
	reg := tools.NewRegistryBuilder().WithTool(holders).Build()

	svc := assistanttest.New(
		schema.Run{ID: "run_1", Status: schema.RunRequiresAction, ToolCalls: []schema.ToolCallRequest{
			{ID: "call_1", Name: "fetch_top_holders", Arguments: `{"mintAddress":"` + mint + `"}`},
		}},
		schema.Run{ID: "run_1", Status: schema.RunQueued},
		schema.Run{ID: "run_1", Status: schema.RunCompleted},
	)
	svc.Reply = "I could not find any holders for that token."

	out, _, err := runSession(t, svc, reg, "top holders of wSOL?\nexit\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests != 1 {
		t.Errorf("expected one Bitquery request, got %d", requests)
	}
	if len(svc.Submissions) != 1 || len(svc.Submissions[0].Outputs) != 1 {
		t.Fatalf("expected one submitted output, got %+v", svc.Submissions)
	}
	got := svc.Submissions[0].Outputs[0]
	want := `{"success":true,"message":"No top holders found for MintAddress: ` + mint + `","data":[]}`
	if got.ToolCallID != "call_1" || got.Output != want {
		t.Errorf("unexpected submitted output %+v, want %s", got, want)
	}
	if !strings.Contains(out, "Blinx: I could not find any holders for that token.") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestSession_FailedRunIsShownAndSessionContinues(t *testing.T) {
	svc := assistanttest.New(schema.Run{ID: "run_1", Status: schema.RunFailed, LastError: "rate_limited"})

	out, _, err := runSession(t, svc, tools.NewRegistryBuilder().Build(), "hello\nexit\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Blinx: I encountered an error: rate_limited") {
		t.Errorf("unexpected output %q", out)
	}
	last := svc.Messages[len(svc.Messages)-1]
	if last.Role != schema.RoleAssistant || last.Content != "I encountered an error: rate_limited" {
		t.Errorf("expected apology on the thread, got %+v", last)
	}
}

func TestSession_TurnErrorEndsSession(t *testing.T) {
	svc := assistanttest.New(schema.Run{ID: "run_1", Status: schema.RunCompleted})
	svc.Err = errors.New("401 Unauthorized")
	svc.FailOn = map[string]bool{"CreateRun": true}

	out, errOut, err := runSession(t, svc, tools.NewRegistryBuilder().Build(), "hello\nsecond\n")
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if !strings.Contains(errOut, "Error during chat: ") || !strings.Contains(errOut, "401 Unauthorized") {
		t.Errorf("unexpected error output %q", errOut)
	}
	if strings.Count(out, "You: ") != 1 {
		t.Errorf("expected the session to stop after the first turn, got %q", out)
	}
	if svc.CallCount("PostMessage") != 1 {
		t.Errorf("expected only the first message to be posted, got %d", svc.CallCount("PostMessage"))
	}
}

type staticTool struct {
	name    string
	payload any
}

func (s *staticTool) Definition() schema.Definition {
	return schema.Definition{Name: s.name}
}

func (s *staticTool) Invoke(context.Context, map[string]any) schema.Result {
	return schema.Success(s.payload)
}
