package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/nidhogg/nuka-agent/internal/action"
)

// ActionRunner lists and executes agent actions.
type ActionRunner interface {
	Actions() []action.Action
	ExecuteAction(ctx context.Context, name string, params action.Params) (any, error)
}

// RegisterBuiltins registers /help, /actions and /run.
func RegisterBuiltins(reg *Registry, actions ActionRunner) {
	reg.Register(helpCommand(reg))
	reg.Register(actionsCommand(actions))
	reg.Register(runCommand(actions))
}

func helpCommand(reg *Registry) *Command {
	return &Command{
		Name:        "help",
		Description: "List available commands",
		Usage:       "/help",
		Handler: func(_ context.Context, _ string) (*CommandResult, error) {
			var b strings.Builder
			b.WriteString("Available commands:\n")
			for _, cmd := range reg.List() {
				fmt.Fprintf(&b, "  %-28s %s\n", cmd.Usage, cmd.Description)
			}
			return &CommandResult{Content: strings.TrimRight(b.String(), "\n")}, nil
		},
	}
}

func actionsCommand(actions ActionRunner) *Command {
	return &Command{
		Name:        "actions",
		Description: "List registered actions and their parameters",
		Usage:       "/actions",
		Handler: func(_ context.Context, _ string) (*CommandResult, error) {
			list := actions.Actions()
			if len(list) == 0 {
				return &CommandResult{Content: "No actions registered."}, nil
			}
			var b strings.Builder
			b.WriteString("Actions:\n")
			for _, a := range list {
				fmt.Fprintf(&b, "  %s - %s", a.Name, a.Description)
				if len(a.RequiredParams) > 0 {
					fmt.Fprintf(&b, " (requires: %s)", strings.Join(a.RequiredParams, ", "))
				}
				b.WriteString("\n")
			}
			return &CommandResult{Content: strings.TrimRight(b.String(), "\n"), Data: list}, nil
		},
	}
}

func runCommand(actions ActionRunner) *Command {
	return &Command{
		Name:        "run",
		Description: "Execute an action directly",
		Usage:       "/run <action> [key=value ...]",
		Handler: func(ctx context.Context, args string) (*CommandResult, error) {
			fields := strings.Fields(args)
			if len(fields) == 0 {
				return &CommandResult{Content: "Usage: /run <action> [key=value ...]"}, nil
			}
			params, err := ParseParams(fields[1:])
			if err != nil {
				return &CommandResult{Content: err.Error()}, nil
			}
			result, err := actions.ExecuteAction(ctx, fields[0], params)
			if err != nil {
				return nil, err
			}
			return &CommandResult{Content: fmt.Sprintf("%s -> %v", fields[0], result), Data: result}, nil
		},
	}
}

// ParseParams turns key=value tokens into action params. Values stay strings;
// actions coerce them as needed.
func ParseParams(tokens []string) (action.Params, error) {
	params := make(action.Params, len(tokens))
	for _, tok := range tokens {
		key, value, ok := strings.Cut(tok, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", tok)
		}
		params[key] = value
	}
	return params, nil
}
