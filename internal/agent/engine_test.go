package agent

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nidhogg/nuka-agent/internal/action"
	"github.com/nidhogg/nuka-agent/internal/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func tickingClock() func() time.Time {
	t := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Millisecond)
		return t
	}
}

func newTestAgent(t *testing.T, opts ...Option) *Agent {
	t.Helper()
	opts = append([]Option{WithClock(tickingClock())}, opts...)
	a, err := New(Persona{Name: "Alice", Personality: "helpful math and conversation assistant"}, opts...)
	require.NoError(t, err)
	return a
}

func withBuiltins(t *testing.T, a *Agent) {
	t.Helper()
	require.NoError(t, a.AddAction("calculate", "Perform basic math operations", action.Calculate, "a", "b"))
	require.NoError(t, a.AddAction("greet", "Greet someone by name", func(context.Context, action.Params) (any, error) {
		return "Hello!", nil
	}))
	require.NoError(t, a.AddAction("get_time", "Get the current time", func(context.Context, action.Params) (any, error) {
		return "noon", nil
	}))
}

func countByType(ms []memory.Memory) map[memory.Type]int {
	out := make(map[memory.Type]int)
	for _, m := range ms {
		out[m.Type]++
	}
	return out
}

func TestNewDefaults(t *testing.T) {
	a, err := New(Persona{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPersona, a.Persona())
	assert.Empty(t, a.ListActions())
	assert.Empty(t, a.Memories())
}

func TestNewRejectsInvalidContextWindow(t *testing.T) {
	_, err := New(Persona{}, WithContextWindow(0))
	assert.ErrorIs(t, err, memory.ErrInvalidCapacity)
}

func TestNewRejectsInvalidRecentCount(t *testing.T) {
	for _, n := range []int{0, -3} {
		_, err := New(Persona{}, WithRecentCount(n))
		assert.ErrorIs(t, err, ErrInvalidRecentCount, "recent count %d", n)
	}
}

func TestRecentMemoriesNonPositiveCount(t *testing.T) {
	a := newTestAgent(t)
	a.Think(context.Background(), "hello")

	assert.Empty(t, a.RecentMemories(0))
	assert.Len(t, a.RecentMemories(10), 2)
}

func TestThinkCalculate(t *testing.T) {
	a := newTestAgent(t)
	withBuiltins(t, a)

	res := a.Reason(context.Background(), "Calculate 15 plus 27")

	assert.Equal(t, "calculate", res.Rule)
	assert.Equal(t, "I calculated 15.0 + 27.0 = 42.0", res.Content)

	mems := a.Memories()
	require.Len(t, mems, 3)
	assert.Equal(t, map[memory.Type]int{
		memory.TypeInput:    1,
		memory.TypeAction:   1,
		memory.TypeResponse: 1,
	}, countByType(mems))

	recent := a.RecentMemories(3)
	assert.Equal(t, memory.TypeResponse, recent[0].Type)
	assert.Equal(t, memory.TypeAction, recent[1].Type)
	assert.Equal(t, "Executed action 'calculate' with params {a: 15.0, b: 27.0, operation: add}. Result: 42.0", recent[1].Content)
	assert.Equal(t, ActionImportance, recent[1].Importance)
	assert.Equal(t, "Received input: Calculate 15 plus 27", recent[2].Content)
	assert.Equal(t, InputImportance, recent[2].Importance)

	var steps []StepType
	for _, s := range res.Chain.Steps {
		steps = append(steps, s.Type)
	}
	assert.Equal(t, []StepType{StepMemoryRecall, StepRuleMatch, StepToolCall, StepToolResult, StepResponse}, steps)
	assert.NotEmpty(t, res.Chain.ID)
}

func TestThinkCalculateCases(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		setup  func(t *testing.T, a *Agent)
		want   string
	}{
		{
			name:   "no calculate action",
			prompt: "do some math with 1 2",
			want:   "I don't have calculation capabilities available.",
		},
		{
			name:   "one number",
			prompt: "calculate 7",
			setup:  withBuiltins,
			want:   "I need at least two numbers to perform a calculation.",
		},
		{
			name:   "signed decimals",
			prompt: "math: -1.5 and +4",
			setup:  withBuiltins,
			want:   "I calculated -1.5 + 4.0 = 2.5",
		},
		{
			name:   "only first two numbers used",
			prompt: "CALCULATE 1 2 3",
			setup:  withBuiltins,
			want:   "I calculated 1.0 + 2.0 = 3.0",
		},
		{
			name:   "handler failure",
			prompt: "calculate 1 2",
			setup: func(t *testing.T, a *Agent) {
				require.NoError(t, a.AddAction("calculate", "broken", func(context.Context, action.Params) (any, error) {
					return nil, errors.New("bad input")
				}, "a", "b"))
			},
			want: "I couldn't parse the numbers for calculation.",
		},
		{
			name:   "missing required parameter",
			prompt: "calculate 1 2",
			setup: func(t *testing.T, a *Agent) {
				require.NoError(t, a.AddAction("calculate", "needs c", action.Calculate, "a", "b", "c"))
			},
			want: "I couldn't parse the numbers for calculation.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAgent(t)
			if tt.setup != nil {
				tt.setup(t, a)
			}
			assert.Equal(t, tt.want, a.Think(context.Background(), tt.prompt))
		})
	}
}

func TestThinkCalculateFailureRecordsNoAction(t *testing.T) {
	a := newTestAgent(t)
	require.NoError(t, a.AddAction("calculate", "broken", func(context.Context, action.Params) (any, error) {
		return nil, errors.New("bad input")
	}, "a", "b"))

	a.Think(context.Background(), "calculate 1 2")

	counts := countByType(a.Memories())
	assert.Equal(t, 0, counts[memory.TypeAction])
	assert.Equal(t, 1, counts[memory.TypeInput])
	assert.Equal(t, 1, counts[memory.TypeResponse])
}

func TestThinkFreshAgentReportsNoRecentMemories(t *testing.T) {
	a := newTestAgent(t)
	withBuiltins(t, a)

	res := a.Reason(context.Background(), "hello")

	assert.Equal(t, "introduce", res.Rule)
	assert.Equal(t,
		"I'm Alice, a helpful math and conversation assistant. I heard you say: 'hello'. "+
			"I have 0 recent memories and can perform these actions: calculate, greet, get_time",
		res.Content)

	second := a.Think(context.Background(), "hello again")
	assert.Contains(t, second, "I have 2 recent memories")
}

func TestThinkRecentCountCapped(t *testing.T) {
	a := newTestAgent(t)
	for i := 0; i < 4; i++ {
		a.Think(context.Background(), "hi")
	}
	assert.Contains(t, a.Think(context.Background(), "hi"), "I have 5 recent memories")
}

func TestThinkRemember(t *testing.T) {
	a := newTestAgent(t)

	assert.Equal(t, "I don't have any memories to recall yet.", a.Think(context.Background(), "Do you remember?"))

	a.AddMemory("the sky is blue", memory.TypeObservation, memory.DefaultImportance)
	got := a.Think(context.Background(), "What do you REMEMBER?")

	lines := strings.Split(got, "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "Here's what I remember:", lines[0])
	assert.Equal(t, "- the sky is blue", lines[1])
	assert.NotContains(t, got, "What do you REMEMBER?")
}

func TestThinkActions(t *testing.T) {
	a := newTestAgent(t)
	withBuiltins(t, a)
	require.NoError(t, a.AddAction("greet", "Greet again", action.Calculate))

	assert.Equal(t, "I can perform these actions: calculate, greet, get_time",
		a.Think(context.Background(), "Show me your capabilities"))
	assert.Equal(t, "I can perform these actions: calculate, greet, get_time",
		a.Think(context.Background(), "list actions"))

	whatCanYouDo := a.Think(context.Background(), "What can you do?")
	assert.True(t, strings.HasSuffix(whatCanYouDo, "can perform these actions: calculate, greet, get_time"))
}

func TestThinkPrecedence(t *testing.T) {
	a := newTestAgent(t)
	res := a.Reason(context.Background(), "remember the math actions")
	assert.Equal(t, "calculate", res.Rule)

	res = a.Reason(context.Background(), "remember your capabilities")
	assert.Equal(t, "remember", res.Rule)
}

func TestExecuteActionRecordsMemory(t *testing.T) {
	a := newTestAgent(t)
	withBuiltins(t, a)

	got, err := a.ExecuteAction(context.Background(), "calculate", action.Params{"a": 2.0, "b": 3.0, "operation": "multiply"})
	require.NoError(t, err)
	assert.Equal(t, 6.0, got)

	mems := a.Memories()
	require.Len(t, mems, 1)
	assert.Equal(t, memory.TypeAction, mems[0].Type)
	assert.Equal(t, "Executed action 'calculate' with params {a: 2.0, b: 3.0, operation: multiply}. Result: 6.0", mems[0].Content)
}

func TestExecuteActionUnknownMutatesNothing(t *testing.T) {
	a := newTestAgent(t)
	called := false
	require.NoError(t, a.AddAction("real", "real", func(context.Context, action.Params) (any, error) {
		called = true
		return nil, nil
	}))

	_, err := a.ExecuteAction(context.Background(), "ghost", nil)
	assert.ErrorIs(t, err, action.ErrUnknownAction)
	assert.False(t, called)
	assert.Empty(t, a.Memories())
}

func TestExecuteActionMissingParams(t *testing.T) {
	a := newTestAgent(t)
	called := false
	require.NoError(t, a.AddAction("needs", "needs x", func(context.Context, action.Params) (any, error) {
		called = true
		return nil, nil
	}, "x"))

	_, err := a.ExecuteAction(context.Background(), "needs", action.Params{"y": 1})
	assert.ErrorIs(t, err, action.ErrMissingParameters)
	assert.False(t, called)
	assert.Empty(t, a.Memories())
}

func TestExecuteActionHandlerFailurePropagates(t *testing.T) {
	a := newTestAgent(t)
	boom := errors.New("boom")
	require.NoError(t, a.AddAction("fail", "fails", func(context.Context, action.Params) (any, error) {
		return nil, boom
	}))

	_, err := a.ExecuteAction(context.Background(), "fail", nil)
	assert.ErrorIs(t, err, action.ErrActionFailed)
	assert.ErrorIs(t, err, boom)
}

func TestExecuteActionReleasesLockAfterHandler(t *testing.T) {
	a := newTestAgent(t)
	require.NoError(t, a.AddAction("panic", "panics", func(context.Context, action.Params) (any, error) {
		panic("kaboom")
	}))
	require.NoError(t, a.AddAction("noop", "returns nothing", func(context.Context, action.Params) (any, error) {
		return nil, nil
	}))

	_, err := a.ExecuteAction(context.Background(), "panic", nil)
	assert.ErrorIs(t, err, action.ErrActionFailed)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := a.ExecuteAction(context.Background(), "noop", action.Params{"x": 1e-05})
		assert.NoError(t, err)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("agent lock still held after handler returned")
	}

	mems := a.Memories()
	require.Len(t, mems, 1)
	assert.Equal(t, "Executed action 'noop' with params {x: 1e-05}. Result: <nil>", mems[0].Content)
}

func TestContextWindowEviction(t *testing.T) {
	a := newTestAgent(t, WithContextWindow(4))

	for i := 0; i < 3; i++ {
		a.Think(context.Background(), "hi")
	}

	mems := a.Memories()
	require.Len(t, mems, 4)
	for _, m := range mems[:3] {
		assert.Equal(t, memory.TypeInput, m.Type)
	}
	assert.Equal(t, memory.TypeResponse, mems[3].Type)
}

func TestExportMemories(t *testing.T) {
	a := newTestAgent(t)
	a.Think(context.Background(), "hello")

	var buf bytes.Buffer
	require.NoError(t, a.ExportMemories(&buf))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), `"memory_type":"input"`)
}

func TestConcurrentThink(t *testing.T) {
	a := newTestAgent(t)
	withBuiltins(t, a)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Think(context.Background(), "calculate 1 2")
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, len(a.Memories()), memory.DefaultCapacity)
}
