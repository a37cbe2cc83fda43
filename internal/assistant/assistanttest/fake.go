// Package assistanttest provides an in-memory schema.AssistantService for tests.
package assistanttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/blinxlabs/blinx/internal/schema"
)

// Message is one message posted to a fake thread.
type Message struct {
	ThreadID string
	Role     schema.Role
	Content  string
}

// Submission records one SubmitToolOutputs call.
type Submission struct {
	RunID   string
	Outputs []schema.ToolOutput
}

// Service is a scripted assistant service. Runs returned by CreateRun,
// GetRun and SubmitToolOutputs are taken in order from Runs; when the script
// runs out the last entry is repeated. Each call is counted.
type Service struct {
	mu sync.Mutex

	Runs  []schema.Run
	Reply string
	// Err, when set, is returned from every call named in FailOn.
	Err    error
	FailOn map[string]bool

	Messages    []Message
	Submissions []Submission
	Calls       map[string]int
	next        int
}

var _ schema.AssistantService = (*Service)(nil)

// New returns a service that plays runs in order.
func New(runs ...schema.Run) *Service {
	return &Service{Runs: runs, Calls: map[string]int{}}
}

// TotalCalls is the number of service calls of any kind.
func (s *Service) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.Calls {
		n += c
	}
	return n
}

// CallCount returns how often method was called.
func (s *Service) CallCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[method]
}

func (s *Service) record(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Calls == nil {
		s.Calls = map[string]int{}
	}
	s.Calls[method]++
	if s.Err != nil && s.FailOn[method] {
		return s.Err
	}
	return nil
}

func (s *Service) nextRun() (schema.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Runs) == 0 {
		return schema.Run{}, fmt.Errorf("assistanttest: no runs scripted")
	}
	i := s.next
	if i >= len(s.Runs) {
		i = len(s.Runs) - 1
	} else {
		s.next++
	}
	return s.Runs[i], nil
}

func (s *Service) CreateAssistant(_ context.Context, _ schema.AssistantSpec) (string, error) {
	if err := s.record("CreateAssistant"); err != nil {
		return "", err
	}
	return "asst_test", nil
}

func (s *Service) CreateThread(_ context.Context) (string, error) {
	if err := s.record("CreateThread"); err != nil {
		return "", err
	}
	return "thread_test", nil
}

func (s *Service) PostMessage(_ context.Context, threadID string, role schema.Role, content string) error {
	if err := s.record("PostMessage"); err != nil {
		return err
	}
	s.mu.Lock()
	s.Messages = append(s.Messages, Message{ThreadID: threadID, Role: role, Content: content})
	s.mu.Unlock()
	return nil
}

func (s *Service) CreateRun(_ context.Context, _, _ string) (schema.Run, error) {
	if err := s.record("CreateRun"); err != nil {
		return schema.Run{}, err
	}
	return s.nextRun()
}

func (s *Service) GetRun(_ context.Context, _, _ string) (schema.Run, error) {
	if err := s.record("GetRun"); err != nil {
		return schema.Run{}, err
	}
	return s.nextRun()
}

func (s *Service) SubmitToolOutputs(_ context.Context, _, runID string, outputs []schema.ToolOutput) (schema.Run, error) {
	if err := s.record("SubmitToolOutputs"); err != nil {
		return schema.Run{}, err
	}
	s.mu.Lock()
	s.Submissions = append(s.Submissions, Submission{RunID: runID, Outputs: outputs})
	s.mu.Unlock()
	return s.nextRun()
}

func (s *Service) LatestAssistantText(_ context.Context, _ string) (string, bool, error) {
	if err := s.record("LatestAssistantText"); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Reply, s.Reply != "", nil
}
