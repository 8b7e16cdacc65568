package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// Builder assembles system prompts from the registry templates. Building is
// deterministic: the same purpose and context always yield the same text.
type Builder struct {
	templates map[Purpose]Template
}

func NewBuilder() *Builder {
	return &Builder{templates: Registry()}
}

// Build renders the template for purpose into a single text block, appending
// the context entries (sorted by key) as additional notes.
func (b *Builder) Build(purpose Purpose, context map[string]string) (string, error) {
	tpl, ok := b.templates[purpose]
	if !ok {
		return "", fmt.Errorf("unsupported prompt purpose: %s", purpose)
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("角色：%s", tpl.Role))
	parts = append(parts, fmt.Sprintf("\n任務：%s", tpl.Task))

	if tpl.Knowledge.any() {
		parts = append(parts, "\n領域知識：")
		parts = appendKnowledge(parts, tpl.Knowledge)
	}

	parts = append(parts, fmt.Sprintf("\n輸出格式：\n%s", tpl.OutputFormat))

	parts = append(parts, "\n規則：")
	for i, rule := range tpl.Rules {
		parts = append(parts, fmt.Sprintf("%d. %s", i+1, rule))
	}

	if len(tpl.Constraints) > 0 {
		parts = append(parts, "\n約束條件：")
		for i, constraint := range tpl.Constraints {
			parts = append(parts, fmt.Sprintf("%d. %s", i+1, constraint))
		}
	}

	if len(tpl.Examples) > 0 {
		parts = append(parts, "\n問題範例：")
		for i, example := range tpl.Examples {
			parts = append(parts, fmt.Sprintf("%d. %s", i+1, example))
		}
	}

	if len(context) > 0 {
		parts = append(parts, "\n額外說明：")
		keys := make([]string, 0, len(context))
		for k := range context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("- %s: %s", k, context[k]))
		}
	}

	return strings.Join(parts, "\n"), nil
}

func appendKnowledge(parts []string, k KnowledgeSections) []string {
	if k.DistanceConversion {
		parts = append(parts, "\n距離單位轉換規則：")
		for _, example := range DistanceConversionExamples {
			parts = append(parts, fmt.Sprintf("- %s", example))
		}
	}
	if k.CuisineMapping {
		parts = append(parts, "\n菜系類型對應：")
		for _, entry := range CuisineMapping {
			parts = append(parts, fmt.Sprintf("- %s → %q", strings.Join(entry.Variants, "/"), entry.Standard))
		}
	}
	if k.CuisineOptions {
		options := make([]string, len(CuisineMapping))
		for i, entry := range CuisineMapping {
			options[i] = entry.Standard
		}
		parts = append(parts, fmt.Sprintf("\n菜系選項：%s", strings.Join(options, ", ")))
	}
	if k.RequiredFields {
		parts = append(parts, fmt.Sprintf("\n必填欄位：%s", strings.Join(RequiredFields, ", ")))
	}
	if k.OptionalFields {
		parts = append(parts, fmt.Sprintf("\n選填欄位：%s", strings.Join(OptionalFields, ", ")))
	}
	return parts
}
