package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/yutingw/go-restaurant-suggestions/internal/prompt"
	"github.com/yutingw/go-restaurant-suggestions/internal/types"
)

// IntentResult is the structured form of one intent-analysis model reply.
type IntentResult struct {
	Success     bool
	Confidence  float64
	Extracted   types.SearchCriteria
	MissingInfo []string
	UserIntent  string
}

// MissingFields combines the structurally missing required fields with the
// model's own missing_info declaration. The model's list is only honored
// below the confidence threshold where its extraction can't be trusted to
// have filled the fields correctly.
func (r IntentResult) MissingFields(current types.SearchCriteria) []string {
	merged := current
	merged.Merge(r.Extracted)
	missing := merged.MissingRequired()
	if r.Confidence < 0.8 {
		missing = append(missing, r.MissingInfo...)
	}
	return dedupe(missing)
}

func dedupe(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	var out []string
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// CleanJSON strips markdown code fences and extracts the outermost JSON
// object from a model reply that may carry explanatory text around it.
func CleanJSON(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	if strings.HasSuffix(response, "```") {
		response = strings.TrimSuffix(response, "```")
	}
	response = strings.TrimSpace(response)

	firstBrace := strings.Index(response, "{")
	if firstBrace == -1 {
		return response
	}
	lastBrace := strings.LastIndex(response, "}")
	if lastBrace == -1 || lastBrace <= firstBrace {
		return response
	}
	return strings.TrimSpace(response[firstBrace : lastBrace+1])
}

// ParseIntent parses an intent-analysis reply. Malformed model output is not
// an error: it yields Success=false with every required field missing, and
// the pipeline falls back to a follow-up question.
func ParseIntent(ctx context.Context, logger *slog.Logger, raw string) IntentResult {
	failed := IntentResult{
		Success:     false,
		Confidence:  0,
		MissingInfo: append([]string(nil), prompt.RequiredFields...),
	}

	var payload struct {
		Success       bool                       `json:"success"`
		Confidence    json.Number                `json:"confidence"`
		ExtractedInfo map[string]json.RawMessage `json:"extracted_info"`
		MissingInfo   []string                   `json:"missing_info"`
		UserIntent    string                     `json:"user_intent"`
	}
	dec := json.NewDecoder(strings.NewReader(CleanJSON(raw)))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		logger.WarnContext(ctx, "Intent reply is not valid JSON, treating as extraction failure",
			slog.Any("error", err))
		return failed
	}

	result := IntentResult{
		Success:     payload.Success,
		MissingInfo: payload.MissingInfo,
		UserIntent:  payload.UserIntent,
	}
	if conf, err := payload.Confidence.Float64(); err == nil {
		result.Confidence = conf
	}
	result.Extracted = coerceCriteria(ctx, logger, payload.ExtractedInfo)
	return result
}

// coerceCriteria converts the loosely typed extracted_info map field by
// field. A field whose coercion fails is dropped and logged, never aborts
// the whole extraction.
func coerceCriteria(ctx context.Context, logger *slog.Logger, info map[string]json.RawMessage) types.SearchCriteria {
	var c types.SearchCriteria
	for field, raw := range info {
		ok := true
		switch field {
		case "cuisine":
			c.Cuisine, ok = coerceString(raw)
		case "radius", "radius_meters":
			c.RadiusMeters, ok = coerceInt(raw)
		case "price_level":
			c.PriceLevel, ok = coerceInt(raw)
		case "rating_min", "min_rating":
			c.RatingMin, ok = coerceFloat(raw)
		case "try_new":
			var b bool
			if b, ok = coerceBool(raw); ok {
				c.TryNew = &b
			}
		case "dietary_restrictions", "dietary_requirements":
			c.DietaryRestrictions, ok = coerceStringSlice(raw)
		case "atmosphere":
			c.Atmosphere, ok = coerceString(raw)
		case "group_size":
			c.GroupSize, ok = coerceInt(raw)
		default:
			// Unknown fields from the model are ignored.
			continue
		}
		if !ok {
			logger.WarnContext(ctx, "Dropping extracted field with uncoercible value",
				slog.String("field", field),
				slog.String("value", string(raw)))
		}
	}
	return c
}

func coerceString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), true
	}
	return "", false
}

func coerceInt(raw json.RawMessage) (int, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), true
		}
	}
	return 0, false
}

func coerceFloat(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func coerceBool(raw json.RawMessage) (bool, bool) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "是":
			return true, true
		case "false", "no", "否":
			return false, true
		}
	}
	return false, false
}

func coerceStringSlice(raw json.RawMessage) ([]string, bool) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return []string{s}, true
	}
	return nil, false
}

// SmartDefaults are the fill-in values for the one-shot analysis path when
// the model leaves a field out or the call fails entirely.
func SmartDefaults() types.SearchCriteria {
	tryNew := false
	return types.SearchCriteria{
		Cuisine:      "其他",
		RadiusMeters: 1000,
		PriceLevel:   2,
		RatingMin:    3.5,
		TryNew:       &tryNew,
	}
}

// SmartResult carries the one-shot analysis criteria plus its confidence.
type SmartResult struct {
	Criteria   types.SearchCriteria
	Confidence float64
}

// ParseSmartAnalysis parses a smart-analysis reply, filling gaps from
// SmartDefaults. Malformed output falls back to pure defaults with a low
// confidence marker.
func ParseSmartAnalysis(ctx context.Context, logger *slog.Logger, raw string) SmartResult {
	defaults := SmartDefaults()

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(CleanJSON(raw)), &payload); err != nil {
		logger.WarnContext(ctx, "Smart analysis reply is not valid JSON, using defaults",
			slog.Any("error", err))
		return SmartResult{Criteria: defaults, Confidence: 0.3}
	}

	criteria := coerceCriteria(ctx, logger, payload)
	merged := defaults
	merged.Merge(criteria)

	confidence := 0.3
	if rawConf, ok := payload["confidence"]; ok {
		if f, ok := coerceFloat(rawConf); ok {
			confidence = f
		}
	}
	return SmartResult{Criteria: merged, Confidence: confidence}
}

// SearchReply is the structured form of a search-response model reply.
type SearchReply struct {
	Message     string   `json:"message"`
	Highlights  []string `json:"highlights"`
	Suggestions []string `json:"suggestions"`
}

// ParseSearchReply extracts the personalized message from a search-response
// reply. Returns ok=false when there is no usable message, letting the
// caller fall back to the canned count template.
func ParseSearchReply(raw string) (SearchReply, bool) {
	var reply SearchReply
	if err := json.Unmarshal([]byte(CleanJSON(raw)), &reply); err != nil {
		return SearchReply{}, false
	}
	return reply, reply.Message != ""
}
