package prompt

// SamplingParams are the generation knobs for one model call.
type SamplingParams struct {
	Temperature float32
	MaxTokens   int32
	TopP        float32
	TopK        int32
}

// overrides holds per-purpose deviations from the global defaults. Intent
// extraction wants near-deterministic output; the smart one-shot analysis
// needs a bigger token budget for its full-parameter JSON.
var overrides = map[Purpose]SamplingParams{
	SmartAnalysis: {Temperature: 0.1, MaxTokens: 1000},
}

// Sampling resolves the params for a purpose, falling back to defaults for
// anything the override leaves at zero.
func Sampling(purpose Purpose, defaults SamplingParams) SamplingParams {
	params := defaults
	override, ok := overrides[purpose]
	if !ok {
		return params
	}
	if override.Temperature > 0 {
		params.Temperature = override.Temperature
	}
	if override.MaxTokens > 0 {
		params.MaxTokens = override.MaxTokens
	}
	if override.TopP > 0 {
		params.TopP = override.TopP
	}
	if override.TopK > 0 {
		params.TopK = override.TopK
	}
	return params
}
