package metrics

// TokenUsage captures LLM token counts attributed to one analysis.
type TokenUsage struct {
	PromptTokens     int  `json:"promptTokens"`
	CompletionTokens int  `json:"completionTokens,omitempty"`
	TotalTokens      int  `json:"totalTokens"`
	Estimated        bool `json:"estimated,omitempty"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// EstimatedPrompt builds usage for a prompt whose size was counted locally.
func EstimatedPrompt(tokens int) TokenUsage {
	return TokenUsage{PromptTokens: tokens, TotalTokens: tokens, Estimated: true}
}
