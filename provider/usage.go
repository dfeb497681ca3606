package provider

import "github.com/i2y/bridle/models"

// RawUsage is the token accounting as reported by a backend. Cache counts are
// nil when the backend did not report them.
type RawUsage struct {
	InputTokens      int
	OutputTokens     int
	CacheWriteTokens *int
	CacheReadTokens  *int
}

// NormalizeUsage builds the usage chunk for a model. Cache counts survive only
// when the model supports prompt caching.
func NormalizeUsage(info models.ModelInfo, raw RawUsage) UsageChunk {
	u := UsageChunk{
		InputTokens:  raw.InputTokens,
		OutputTokens: raw.OutputTokens,
	}
	if info.SupportsPromptCache {
		u.CacheWriteTokens = copyInt(raw.CacheWriteTokens)
		u.CacheReadTokens = copyInt(raw.CacheReadTokens)
	}
	return u
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Tally sums the usage chunks of one or more streams.
type Tally struct {
	InputTokens      int
	OutputTokens     int
	CacheWriteTokens int
	CacheReadTokens  int
}

// Add folds u into t.
func (t *Tally) Add(u UsageChunk) {
	t.InputTokens += u.InputTokens
	t.OutputTokens += u.OutputTokens
	if u.CacheWriteTokens != nil {
		t.CacheWriteTokens += *u.CacheWriteTokens
	}
	if u.CacheReadTokens != nil {
		t.CacheReadTokens += *u.CacheReadTokens
	}
}

// Merge folds other into t.
func (t *Tally) Merge(other Tally) {
	t.InputTokens += other.InputTokens
	t.OutputTokens += other.OutputTokens
	t.CacheWriteTokens += other.CacheWriteTokens
	t.CacheReadTokens += other.CacheReadTokens
}

// Total returns input plus output tokens.
func (t Tally) Total() int {
	return t.InputTokens + t.OutputTokens
}

// Cost prices the tally against info.
func (t Tally) Cost(info models.ModelInfo) float64 {
	return info.Cost(t.InputTokens, t.OutputTokens, t.CacheWriteTokens, t.CacheReadTokens)
}
