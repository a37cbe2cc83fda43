// Package session runs the interactive chat loop on top of a Responder.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/blinxlabs/blinx/internal/agent"
)

const prompt = "\nYou: "

// ErrAborted is returned by Run when a turn failed and the session ended.
// The failure has already been reported to the user.
var ErrAborted = errors.New("chat session aborted")

var exitCommands = map[string]bool{
	"exit": true,
}

// Responder produces the assistant's reply to one user message.
type Responder interface {
	Respond(ctx context.Context, conv agent.Conversation, text string) (string, error)
}

// Session is one interactive conversation bound to a single thread.
type Session struct {
	responder Responder
	conv      agent.Conversation
	persona   string

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// New creates a Session reading user lines from in. Replies go to out and
// turn failures to errOut.
func New(responder Responder, conv agent.Conversation, persona string, in io.Reader, out, errOut io.Writer) *Session {
	return &Session{
		responder: responder,
		conv:      conv,
		persona:   persona,
		in:        in,
		out:       out,
		errOut:    errOut,
	}
}

// Run reads lines until exit, EOF, or the first failed turn.
func (s *Session) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(s.out, prompt)

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(s.out, "\nGoodbye!")
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if exitCommands[strings.ToLower(line)] {
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		}

		reply, err := s.responder.Respond(ctx, s.conv, line)
		if err != nil {
			fmt.Fprintf(s.errOut, "Error during chat: %s\n", err)
			return fmt.Errorf("%w: %w", ErrAborted, err)
		}
		fmt.Fprintf(s.out, "\n%s: %s\n", s.persona, reply)
	}
}
