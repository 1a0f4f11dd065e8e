package agent

import (
	"time"
)

// StepType identifies the kind of thinking step.
type StepType string

const (
	StepMemoryRecall StepType = "memory_recall"
	StepRuleMatch    StepType = "rule_match"
	StepToolCall     StepType = "tool_call"
	StepToolResult   StepType = "tool_result"
	StepResponse     StepType = "response"
)

// ThinkingChain records the trace of one think cycle.
type ThinkingChain struct {
	ID        string        `json:"id"`
	Steps     []ThinkStep   `json:"steps"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// ThinkStep is a single step in the thinking chain.
type ThinkStep struct {
	Type      StepType    `json:"type"`
	Content   string      `json:"content"`
	Detail    interface{} `json:"detail,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ThinkResult holds the output of a think cycle.
type ThinkResult struct {
	Content string         `json:"content"`
	Rule    string         `json:"rule"`
	Chain   *ThinkingChain `json:"chain"`
}
