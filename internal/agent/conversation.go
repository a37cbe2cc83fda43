package agent

import (
	"context"
	"log/slog"

	"github.com/blinxlabs/blinx/internal/schema"
)

// StartConversation creates a thread, and an assistant unless assistantID
// names an existing one.
func StartConversation(ctx context.Context, service schema.AssistantService, spec schema.AssistantSpec, assistantID string) (Conversation, error) {
	if assistantID == "" {
		id, err := service.CreateAssistant(ctx, spec)
		if err != nil {
			return Conversation{}, err
		}
		assistantID = id
		slog.Info("Assistant created", "id", id, "model", spec.Model, "tools", len(spec.Tools))
	}

	threadID, err := service.CreateThread(ctx)
	if err != nil {
		return Conversation{}, err
	}
	slog.Info("Thread created", "id", threadID)

	return Conversation{AssistantID: assistantID, ThreadID: threadID}, nil
}
