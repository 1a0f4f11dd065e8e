package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/nidhogg/nuka-agent/internal/agent"
	"github.com/nidhogg/nuka-agent/internal/command"
)

var demoPrompts = []string{
	"Hello there!",
	"What can you do?",
	"Calculate 15 plus 27",
	"What do you remember?",
}

// session drives one interactive conversation with an agent.
type session struct {
	agent    *agent.Agent
	commands *command.Registry
	out      io.Writer
	logger   *zap.Logger
}

func (s *session) say(format string, args ...any) {
	fmt.Fprintf(s.out, "%s: %s\n", s.agent.Persona().Name, fmt.Sprintf(format, args...))
}

func (s *session) demo(ctx context.Context) {
	fmt.Fprintln(s.out, "Demo mode:")
	for _, p := range demoPrompts {
		fmt.Fprintf(s.out, "You: %s\n", p)
		s.say("%s", s.agent.Think(ctx, p))
	}
	fmt.Fprintln(s.out, "---")
}

func isQuit(input string) bool {
	switch strings.ToLower(input) {
	case "quit", "exit", "stop":
		return true
	}
	return false
}

// loop reads lines from in until a quit word, EOF, or ctx cancellation.
func (s *session) loop(ctx context.Context, in io.Reader) error {
	fmt.Fprintf(s.out, "%s is now running. Type 'quit' to exit.\n", s.agent.Persona().Name)
	fmt.Fprintf(s.out, "Available actions: %s\n", strings.Join(s.agent.ListActions(), ", "))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errs <- nil
				return
			}
		}
		errs <- scanner.Err()
	}()

	for {
		fmt.Fprint(s.out, "\nYou: ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			s.say("Interrupted. Goodbye!")
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(s.out)
				s.say("Goodbye!")
				return <-errs
			}
			input := strings.TrimSpace(line)
			if input == "" {
				continue
			}
			if isQuit(input) {
				s.say("Goodbye!")
				return nil
			}
			s.handle(ctx, input)
		}
	}
}

func (s *session) handle(ctx context.Context, input string) {
	if !command.IsCommand(input) {
		s.say("%s", s.agent.Think(ctx, input))
		return
	}

	result, err := s.commands.Dispatch(ctx, input)
	if err != nil {
		s.logger.Debug("command failed", zap.String("input", input), zap.Error(err))
		s.say("Error - %v", err)
		return
	}
	fmt.Fprintln(s.out, result.Content)
}
