package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nidhogg/nuka-agent/internal/action"
	"github.com/nidhogg/nuka-agent/internal/memory"
)

// Importance weights for the memories recorded by a think cycle.
const (
	InputImportance    = 3
	ResponseImportance = 2
	ActionImportance   = 2
)

// DefaultRecentCount is how many recent memories a think cycle consults.
const DefaultRecentCount = 5

// ErrInvalidRecentCount is returned by New for a non-positive recent count.
var ErrInvalidRecentCount = errors.New("recent memory count must be positive")

// Option configures an Agent.
type Option func(*Agent)

// WithContextWindow sets the memory store capacity.
func WithContextWindow(n int) Option {
	return func(a *Agent) { a.contextWindow = n }
}

// WithRecentCount sets how many recent memories a think cycle consults.
func WithRecentCount(n int) Option {
	return func(a *Agent) { a.recentCount = n }
}

// WithLogger sets the agent logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// WithClock overrides the time source for memories and traces.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// WithRegistry uses a pre-populated action registry.
func WithRegistry(reg *action.Registry) Option {
	return func(a *Agent) { a.actions = reg }
}

// Agent owns a memory store and an action registry and answers prompts with
// keyword rules. A single mutex guards the whole agent; the store and registry
// are never touched outside it.
type Agent struct {
	persona       Persona
	memory        *memory.Store
	actions       *action.Registry
	rules         []rule
	contextWindow int
	recentCount   int
	now           func() time.Time
	logger        *zap.Logger
	mu            sync.Mutex
}

// New creates an agent with the given persona.
func New(persona Persona, opts ...Option) (*Agent, error) {
	a := &Agent{
		persona:       persona.withDefaults(),
		contextWindow: memory.DefaultCapacity,
		recentCount:   DefaultRecentCount,
		now:           time.Now,
		logger:        zap.NewNop(),
		rules:         defaultRules(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.recentCount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRecentCount, a.recentCount)
	}
	if a.actions == nil {
		a.actions = action.NewRegistry()
	}

	store, err := memory.NewStore(a.contextWindow,
		memory.WithClock(a.now),
		memory.WithLogger(a.logger.Named("memory")))
	if err != nil {
		return nil, fmt.Errorf("create memory store: %w", err)
	}
	a.memory = store

	a.logger.Info("agent created",
		zap.String("name", a.persona.Name),
		zap.Int("context_window", a.contextWindow))
	return a, nil
}

// Persona returns the agent's identity.
func (a *Agent) Persona() Persona { return a.persona }

// AddAction registers (or replaces) a named action.
func (a *Agent) AddAction(name, description string, handler action.Handler, requiredParams ...string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.actions.Register(name, description, handler, requiredParams...); err != nil {
		return err
	}
	a.logger.Debug("registered action",
		zap.String("name", name),
		zap.Strings("required", requiredParams))
	return nil
}

// ListActions returns registered action names in registration order.
func (a *Agent) ListActions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.actions.List()
}

// Actions returns the registered action definitions.
func (a *Agent) Actions() []action.Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.actions.Actions()
}

// ExecuteAction runs a registered action and records the call as an action
// memory. Failed calls leave the memory store untouched.
func (a *Agent) ExecuteAction(ctx context.Context, name string, params action.Params) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.invoke(ctx, name, params)
	return out.Result, out.Err
}

// AddMemory records a memory directly.
func (a *Agent) AddMemory(content string, typ memory.Type, importance int) memory.Memory {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.memory.Add(content, typ, importance)
}

// RecentMemories returns up to count memories, newest first.
func (a *Agent) RecentMemories(count int) []memory.Memory {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.memory.Recent(count)
}

// Memories returns every retained memory.
func (a *Agent) Memories() []memory.Memory {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.memory.All()
}

// ExportMemories writes the memory store to w as JSON lines.
func (a *Agent) ExportMemories(w io.Writer) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.memory.Export(w)
}

// Think runs one think cycle and returns the response text.
func (a *Agent) Think(ctx context.Context, prompt string) string {
	return a.Reason(ctx, prompt).Content
}

// Reason runs one think cycle: record the prompt, evaluate the response rules
// in order, record the response. It never fails; rule errors are turned into
// response text.
//
// Recent memories are captured before the prompt itself is recorded, so the
// reported count and digest only cover earlier turns.
func (a *Agent) Reason(ctx context.Context, prompt string) *ThinkResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	chain := &ThinkingChain{
		ID:        uuid.New().String(),
		StartedAt: a.now(),
	}

	recent := a.memory.Recent(a.recentCount)
	a.memory.Add("Received input: "+prompt, memory.TypeInput, InputImportance)
	chain.add(a.now(), StepMemoryRecall, fmt.Sprintf("Recalled %d recent memories", len(recent)), nil)

	t := &turn{
		prompt:  prompt,
		lower:   strings.ToLower(prompt),
		recent:  recent,
		digest:  memory.Digest(recent),
		actions: a.actions.List(),
		chain:   chain,
	}

	var matched rule
	for _, r := range a.rules {
		if r.matches(t.lower) {
			matched = r
			break
		}
	}
	chain.add(a.now(), StepRuleMatch, matched.name, nil)

	response := matched.respond(ctx, a, t)
	a.memory.Add("Generated response: "+response, memory.TypeResponse, ResponseImportance)
	chain.add(a.now(), StepResponse, response, nil)
	chain.Duration = a.now().Sub(chain.StartedAt)

	a.logger.Debug("think cycle complete",
		zap.String("chain", chain.ID),
		zap.String("rule", matched.name),
		zap.Int("recent", len(recent)),
		zap.Int("memories", a.memory.Len()))

	return &ThinkResult{
		Content: response,
		Rule:    matched.name,
		Chain:   chain,
	}
}

// outcome is the explicit result of an action invocation.
type outcome struct {
	Result any
	Err    error
}

func (o outcome) Failed() bool { return o.Err != nil }

// invoke executes an action and records an action memory on success.
// Callers must hold a.mu.
func (a *Agent) invoke(ctx context.Context, name string, params action.Params) outcome {
	result, err := a.actions.Execute(ctx, name, params)
	if err != nil {
		a.logger.Warn("action failed",
			zap.String("action", name),
			zap.Error(err))
		return outcome{Err: err}
	}

	a.memory.Add(
		fmt.Sprintf("Executed action '%s' with params %s. Result: %s", name, formatParams(params), formatValue(result)),
		memory.TypeAction,
		ActionImportance,
	)
	return outcome{Result: result}
}

func (c *ThinkingChain) add(at time.Time, typ StepType, content string, detail interface{}) {
	c.Steps = append(c.Steps, ThinkStep{
		Type:      typ,
		Content:   content,
		Detail:    detail,
		Timestamp: at,
	})
}
