package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/blinxlabs/blinx/internal/errorsx"
	"github.com/blinxlabs/blinx/internal/schema"
	"github.com/blinxlabs/blinx/internal/shared/llmutils"
)

const (
	noResponseText    = "No response from assistant"
	unknownErrorText  = "Unknown error"
	runErrorTemplate  = "I encountered an error: %s"
	defaultIterations = 20
)

// Conversation identifies the assistant and thread a chat session talks to.
type Conversation struct {
	AssistantID string
	ThreadID    string
}

// Responder turns one user message into one assistant reply, running any
// tool calls the assistant requests along the way.
type Responder struct {
	service       schema.AssistantService
	poller        *Poller
	dispatcher    *Dispatcher
	maxIterations int
}

func NewResponder(service schema.AssistantService, poller *Poller, dispatcher *Dispatcher, maxIterations int) *Responder {
	if maxIterations <= 0 {
		maxIterations = defaultIterations
	}
	return &Responder{
		service:       service,
		poller:        poller,
		dispatcher:    dispatcher,
		maxIterations: maxIterations,
	}
}

// Respond posts text to the conversation's thread and returns the reply.
// A run that ends unsuccessfully yields an apology as the reply, which is also
// recorded on the thread; only plumbing failures are returned as errors.
func (r *Responder) Respond(ctx context.Context, conv Conversation, text string) (string, error) {
	log := slog.With("turn", uuid.NewString(), "thread", conv.ThreadID)
	log.Info("Turn started", "chars", len(text))

	if err := r.service.PostMessage(ctx, conv.ThreadID, schema.RoleUser, text); err != nil {
		return "", err
	}

	run, err := r.service.CreateRun(ctx, conv.ThreadID, conv.AssistantID)
	if err != nil {
		return "", err
	}
	if run.ThreadID == "" {
		run.ThreadID = conv.ThreadID
	}

	run, err = r.poller.Await(ctx, run)
	if err != nil {
		return "", err
	}

	for round := 1; run.Status == schema.RunRequiresAction; round++ {
		if round > r.maxIterations {
			return "", fmt.Errorf("run %s still requires action after %d tool rounds", run.ID, r.maxIterations)
		}
		log.Info("Tool round", "run", run.ID, "round", round, "calls", llmutils.ToolHint(run.ToolCalls))

		outputs := r.dispatcher.Dispatch(ctx, run.ToolCalls)
		next, err := r.service.SubmitToolOutputs(ctx, conv.ThreadID, run.ID, outputs)
		if err != nil {
			return "", err
		}
		if next.ThreadID == "" {
			next.ThreadID = conv.ThreadID
		}

		run, err = r.poller.Await(ctx, next)
		if err != nil {
			return "", err
		}
	}

	log.Info("Turn finished", "run", run.ID, "status", run.Status)

	if run.Status != schema.RunCompleted {
		return r.reportFailure(ctx, conv, run)
	}

	reply, ok, err := r.service.LatestAssistantText(ctx, conv.ThreadID)
	if err != nil {
		return "", err
	}
	if !ok {
		return noResponseText, nil
	}
	return llmutils.StringOrDefault(llmutils.StripThink(reply), noResponseText), nil
}

// reportFailure builds the apology for an unsuccessful run and appends it to
// the thread so the transcript reflects what the user saw.
func (r *Responder) reportFailure(ctx context.Context, conv Conversation, run schema.Run) (string, error) {
	reason := run.LastError
	if reason == "" && run.Status != schema.RunFailed {
		reason = "run " + string(run.Status)
	}
	msg := fmt.Sprintf(runErrorTemplate, llmutils.StringOrDefault(reason, unknownErrorText))

	slog.Warn("Run ended unsuccessfully", "run", run.ID, "status", run.Status,
		"reason", errorsx.ReasonRunFailed, "error", run.LastError)
	if err := r.service.PostMessage(ctx, conv.ThreadID, schema.RoleAssistant, msg); err != nil {
		return "", err
	}
	return msg, nil
}
