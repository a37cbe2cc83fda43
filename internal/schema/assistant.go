package schema

import "context"

// RunStatus is the lifecycle state of a run as reported by the assistant service.
type RunStatus string

const (
	RunQueued         RunStatus = "queued"
	RunInProgress     RunStatus = "in_progress"
	RunRequiresAction RunStatus = "requires_action"
	RunCancelling     RunStatus = "cancelling"
	RunCancelled      RunStatus = "cancelled"
	RunFailed         RunStatus = "failed"
	RunCompleted      RunStatus = "completed"
	RunIncomplete     RunStatus = "incomplete"
	RunExpired        RunStatus = "expired"
)

// Pending reports whether the run is still being processed remotely.
func (s RunStatus) Pending() bool {
	return s == RunQueued || s == RunInProgress || s == RunCancelling
}

// Role is the author of a thread message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ToolCallRequest is one tool invocation requested by the assistant.
// Arguments is the serialised JSON object exactly as the service sent it.
type ToolCallRequest struct {
	ID        string
	Name      string
	Arguments string
}

// ToolOutput answers one ToolCallRequest.
type ToolOutput struct {
	ToolCallID string
	Output     string
}

// Run is a read-only snapshot of one server-tracked processing turn.
type Run struct {
	ID        string
	ThreadID  string
	Status    RunStatus
	LastError string
	// ToolCalls is populated when Status is RunRequiresAction.
	ToolCalls []ToolCallRequest
}

// AssistantSpec is what the service needs to create an assistant.
type AssistantSpec struct {
	Name         string
	Model        string
	Instructions string
	Tools        []Definition
}

// AssistantService is the hosted assistant API the chat client drives.
type AssistantService interface {
	CreateAssistant(ctx context.Context, spec AssistantSpec) (string, error)
	CreateThread(ctx context.Context) (string, error)
	PostMessage(ctx context.Context, threadID string, role Role, content string) error
	CreateRun(ctx context.Context, threadID, assistantID string) (Run, error)
	GetRun(ctx context.Context, threadID, runID string) (Run, error)
	// SubmitToolOutputs hands back every output for the current step at once.
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (Run, error)
	// LatestAssistantText returns the text of the newest assistant message;
	// ok is false when the thread holds none.
	LatestAssistantText(ctx context.Context, threadID string) (text string, ok bool, err error)
}
