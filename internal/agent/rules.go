package agent

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nidhogg/nuka-agent/internal/action"
	"github.com/nidhogg/nuka-agent/internal/memory"
)

// CalculateAction is the action name the calculate rule dispatches to.
const CalculateAction = "calculate"

// turn is the state a rule sees while answering one prompt.
type turn struct {
	prompt  string
	lower   string
	recent  []memory.Memory
	digest  string
	actions []string
	chain   *ThinkingChain
}

// rule pairs a keyword predicate with a responder. A rule with no keywords
// matches every prompt.
type rule struct {
	name     string
	keywords []string
	respond  func(ctx context.Context, a *Agent, t *turn) string
}

func (r rule) matches(lower string) bool {
	if len(r.keywords) == 0 {
		return true
	}
	for _, kw := range r.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// defaultRules returns the response rules in precedence order.
func defaultRules() []rule {
	return []rule{
		{name: "calculate", keywords: []string{"calculate", "math"}, respond: respondCalculate},
		{name: "remember", keywords: []string{"remember"}, respond: respondRemember},
		{name: "actions", keywords: []string{"actions", "capabilities"}, respond: respondActions},
		{name: "introduce", respond: respondIntroduce},
	}
}

var numberRe = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)$`)

// extractNumbers returns every whitespace-delimited token that is a signed
// decimal number, in prompt order.
func extractNumbers(text string) []float64 {
	var nums []float64
	for _, tok := range strings.Fields(text) {
		if !numberRe.MatchString(tok) {
			continue
		}
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		nums = append(nums, f)
	}
	return nums
}

func respondCalculate(ctx context.Context, a *Agent, t *turn) string {
	if !a.actions.Has(CalculateAction) {
		return "I don't have calculation capabilities available."
	}

	nums := extractNumbers(t.prompt)
	if len(nums) < 2 {
		return "I need at least two numbers to perform a calculation."
	}

	params := action.Params{"a": nums[0], "b": nums[1], "operation": "add"}
	t.chain.add(a.now(), StepToolCall, CalculateAction, params)

	out := a.invoke(ctx, CalculateAction, params)
	if out.Failed() {
		t.chain.add(a.now(), StepToolResult, out.Err.Error(), nil)
		return "I couldn't parse the numbers for calculation."
	}
	t.chain.add(a.now(), StepToolResult, formatValue(out.Result), nil)

	return a.render("calculate", map[string]any{
		"A":      formatNumber(nums[0]),
		"B":      formatNumber(nums[1]),
		"Result": formatValue(out.Result),
	})
}

func respondRemember(_ context.Context, a *Agent, t *turn) string {
	if len(t.recent) == 0 {
		return "I don't have any memories to recall yet."
	}
	return a.render("remember", map[string]any{"Digest": t.digest})
}

func respondActions(_ context.Context, a *Agent, t *turn) string {
	return a.render("actions", map[string]any{"Actions": t.actions})
}

func respondIntroduce(_ context.Context, a *Agent, t *turn) string {
	return a.render("introduce", map[string]any{
		"Name":        a.persona.Name,
		"Personality": a.persona.Personality,
		"Prompt":      t.prompt,
		"RecentCount": len(t.recent),
		"Actions":     t.actions,
	})
}

func (a *Agent) render(name string, data any) string {
	out, err := renderResponse(name, data)
	if err != nil {
		a.logger.Error("render response", zap.String("template", name), zap.Error(err))
		return "I'm having trouble putting that into words."
	}
	return out
}
