package command

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nidhogg/nuka-agent/internal/memory"
)

// MemoryBrowser reads and seeds agent memories.
type MemoryBrowser interface {
	RecentMemories(count int) []memory.Memory
	AddMemory(content string, typ memory.Type, importance int) memory.Memory
	ExportMemories(w io.Writer) error
}

// RegisterMemoryCommands registers /memories, /note and /export.
func RegisterMemoryCommands(reg *Registry, m MemoryBrowser, out io.Writer) {
	reg.Register(memoriesCommand(m))
	reg.Register(noteCommand(m))
	reg.Register(exportCommand(m, out))
}

func memoriesCommand(m MemoryBrowser) *Command {
	return &Command{
		Name:        "memories",
		Description: "Show the most recent memories",
		Usage:       "/memories [count]",
		Handler: func(_ context.Context, args string) (*CommandResult, error) {
			count := 5
			if args != "" {
				n, err := strconv.Atoi(args)
				if err != nil || n <= 0 {
					return &CommandResult{Content: "Usage: /memories [count]"}, nil
				}
				count = n
			}
			recent := m.RecentMemories(count)
			if len(recent) == 0 {
				return &CommandResult{Content: "No memories yet."}, nil
			}
			var b strings.Builder
			for _, mem := range recent {
				fmt.Fprintf(&b, "[%s] (%s, importance %d) %s\n",
					mem.Timestamp.Format("15:04:05"), mem.Type, mem.Importance, mem.Content)
			}
			return &CommandResult{Content: strings.TrimRight(b.String(), "\n"), Data: recent}, nil
		},
	}
}

func noteCommand(m MemoryBrowser) *Command {
	return &Command{
		Name:        "note",
		Description: "Record an observation memory",
		Usage:       "/note [importance] <content>",
		Handler: func(_ context.Context, args string) (*CommandResult, error) {
			if args == "" {
				return &CommandResult{Content: "Usage: /note [importance] <content>"}, nil
			}
			importance := memory.DefaultImportance
			content := args
			if first, rest, ok := strings.Cut(args, " "); ok {
				if n, err := strconv.Atoi(first); err == nil {
					importance = n
					content = strings.TrimSpace(rest)
				}
			}
			mem := m.AddMemory(content, memory.TypeObservation, importance)
			return &CommandResult{Content: fmt.Sprintf("Noted (importance %d).", mem.Importance), Data: mem}, nil
		},
	}
}

func exportCommand(m MemoryBrowser, out io.Writer) *Command {
	return &Command{
		Name:        "export",
		Description: "Dump all memories as JSON lines",
		Usage:       "/export",
		Handler: func(_ context.Context, _ string) (*CommandResult, error) {
			if err := m.ExportMemories(out); err != nil {
				return nil, fmt.Errorf("export memories: %w", err)
			}
			return &CommandResult{Content: "Export complete."}, nil
		},
	}
}
