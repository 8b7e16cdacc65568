package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_IntentAnalysisSections(t *testing.T) {
	b := NewBuilder()
	out, err := b.Build(IntentAnalysis, nil)
	require.NoError(t, err)

	assert.Contains(t, out, "角色：你是一個專業的餐廳搜尋分析助手")
	assert.Contains(t, out, "任務：")
	assert.Contains(t, out, "領域知識：")
	assert.Contains(t, out, "距離單位轉換規則：")
	assert.Contains(t, out, "菜系類型對應：")
	assert.Contains(t, out, `日式/日菜/日本菜/japanese → "日式"`)
	assert.Contains(t, out, "必填欄位：radius, cuisine")
	assert.Contains(t, out, "輸出格式：")
	assert.Contains(t, out, "規則：")
	assert.Contains(t, out, "1. 使用領域知識進行距離單位轉換")
}

func TestBuild_Deterministic(t *testing.T) {
	b := NewBuilder()
	ctx := map[string]string{
		"location": "台北市信義區",
		"time":     "18:00",
		"history":  "2 則訊息",
	}
	first, err := b.Build(IntentAnalysis, ctx)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := b.Build(IntentAnalysis, ctx)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestBuild_ContextSortedByKey(t *testing.T) {
	b := NewBuilder()
	out, err := b.Build(GeneralChat, map[string]string{"zeta": "z", "alpha": "a"})
	require.NoError(t, err)

	assert.Contains(t, out, "額外說明：")
	alphaIdx := strings.Index(out, "- alpha: a")
	zetaIdx := strings.Index(out, "- zeta: z")
	require.NotEqual(t, -1, alphaIdx)
	require.NotEqual(t, -1, zetaIdx)
	assert.Less(t, alphaIdx, zetaIdx)
}

func TestBuild_NoContextOmitsNotes(t *testing.T) {
	b := NewBuilder()
	out, err := b.Build(FollowUp, nil)
	require.NoError(t, err)
	assert.NotContains(t, out, "額外說明：")
	assert.Contains(t, out, "問題範例：")
}

func TestBuild_UnknownPurpose(t *testing.T) {
	b := NewBuilder()
	_, err := b.Build(Purpose("bogus"), nil)
	assert.Error(t, err)
}

func TestSampling_Overrides(t *testing.T) {
	defaults := SamplingParams{Temperature: 0.5, MaxTokens: 500, TopP: 0.95, TopK: 40}

	smart := Sampling(SmartAnalysis, defaults)
	assert.InDelta(t, 0.1, float64(smart.Temperature), 1e-6)
	assert.Equal(t, int32(1000), smart.MaxTokens)
	assert.InDelta(t, 0.95, float64(smart.TopP), 1e-6)
	assert.Equal(t, int32(40), smart.TopK)

	general := Sampling(GeneralChat, defaults)
	assert.Equal(t, defaults, general)
}

func TestFollowUpQuestion(t *testing.T) {
	assert.Equal(t, "請問您希望搜索多大範圍內的餐廳？(例如: 5 km)", FollowUpQuestion("radius"))
	assert.Equal(t, "菜系名稱？", FollowUpQuestion("cuisine"))
	assert.Equal(t, "還需要更多信息", FollowUpQuestion("group_size"))
}
