package prompt

// Domain constants fed into the templates. The renderers iterate slices, not
// maps, so assembled prompts are byte-for-byte deterministic.

// CuisineVariant maps the variant spellings users type to the standard
// cuisine name the catalog stores.
type CuisineVariant struct {
	Standard string
	Variants []string
}

var CuisineMapping = []CuisineVariant{
	{Standard: "中式", Variants: []string{"中式", "中菜", "中國菜", "chinese"}},
	{Standard: "日式", Variants: []string{"日式", "日菜", "日本菜", "japanese"}},
	{Standard: "義大利菜", Variants: []string{"義式", "義大利菜", "italian"}},
	{Standard: "川菜", Variants: []string{"川菜", "四川菜", "sichuan"}},
	{Standard: "韓式", Variants: []string{"韓式", "韓菜", "korean"}},
	{Standard: "泰式", Variants: []string{"泰式", "泰菜", "thai"}},
	{Standard: "美式", Variants: []string{"美式", "美國菜", "american"}},
	{Standard: "法式", Variants: []string{"法式", "法國菜", "french"}},
	{Standard: "印度菜", Variants: []string{"印度菜", "印度料理", "indian"}},
	{Standard: "越南菜", Variants: []string{"越南菜", "越式", "vietnamese"}},
	{Standard: "港式", Variants: []string{"港式", "港菜", "粤菜", "cantonese"}},
}

var DistanceConversionExamples = []string{
	"用戶說 '3 公里' → radius 應該是 3000",
	"用戶說 '500 米' → radius 應該是 500",
}

var (
	RequiredFields = []string{"radius", "cuisine"}
	OptionalFields = []string{"try_new", "price_level", "rating_min", "atmosphere", "group_size"}
)

// FollowUpQuestions are the canned fallbacks when the model cannot produce
// a follow-up question, keyed by missing field.
var FollowUpQuestions = map[string]string{
	"radius":           "請問您希望搜索多大範圍內的餐廳？(例如: 5 km)",
	"cuisine":          "菜系名稱？",
	"price_preference": "您希望的價格範圍是？(便宜/中等/高檔)",
	"min_rating":       "最低評分要求？(例如: 4.0分以上)",
}

// FollowUpQuestion returns the canned question for a missing field, or a
// generic prompt when the field has no dedicated question.
func FollowUpQuestion(field string) string {
	if q, ok := FollowUpQuestions[field]; ok {
		return q
	}
	return "還需要更多信息"
}
