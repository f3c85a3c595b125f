package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sentinel = "Unclassified"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "white space only", in: "  \t ", want: ""},
		{name: "upper cased and trimmed", in: "  etc toll ", want: "ETC TOLL"},
		{name: "full-width latin and ideographic space", in: "ｅｔｃ　ｔｏｌｌ", want: "ETC TOLL"},
		{name: "half-width katakana widened", in: "ｶﾞｿﾘﾝ", want: "ガソリン"},
		{name: "full-width digits", in: "ＡＭＡＺＯＮ１２３", want: "AMAZON123"},
		{name: "ligature expanded", in: "ﬁle", want: "FILE"},
		{name: "accents are kept", in: "étc", want: "ÉTC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		rules []Rule
	}{
		{
			name:  "keyword substring match",
			rules: []Rule{{Keyword: "ETC", Category: "Travel"}},
			text:  "ETC TOLL ROAD",
			want:  "Travel",
		},
		{
			name: "first match wins over longer match",
			rules: []Rule{
				{Keyword: "A", Category: "X"},
				{Keyword: "AB", Category: "Y"},
			},
			text: "ABC",
			want: "X",
		},
		{
			name: "order is the only precedence",
			rules: []Rule{
				{Keyword: "AB", Category: "Y"},
				{Keyword: "A", Category: "X"},
			},
			text: "ABC",
			want: "Y",
		},
		{
			name:  "no match falls back to sentinel",
			rules: []Rule{{Keyword: "ETC", Category: "Travel"}},
			text:  "GROCERY STORE",
			want:  sentinel,
		},
		{
			name:  "empty text is unclassified",
			rules: []Rule{{Keyword: "ETC", Category: "Travel"}},
			text:  "",
			want:  sentinel,
		},
		{
			name:  "no rules",
			rules: nil,
			text:  "ETC",
			want:  sentinel,
		},
		{
			name:  "full-width text matches ascii keyword",
			rules: []Rule{{Keyword: "ETC", Category: "Travel"}},
			text:  "ｅｔｃ　toll",
			want:  "Travel",
		},
		{
			name:  "full-width keyword matches ascii text",
			rules: []Rule{{Keyword: "ｅｔｃ", Category: "Travel"}},
			text:  "ETC TOLL",
			want:  "Travel",
		},
		{
			name:  "lower case keyword",
			rules: []Rule{{Keyword: "amazon", Category: "Books"}},
			text:  "AMAZON.CO.JP",
			want:  "Books",
		},
		{
			name:  "half-width katakana text",
			rules: []Rule{{Keyword: "ガソリン", Category: "燃料費"}},
			text:  "ｴﾈｵｽ ｶﾞｿﾘﾝ",
			want:  "燃料費",
		},
		{
			name:  "keyword padded with spaces is trimmed",
			rules: []Rule{{Keyword: "  etc  ", Category: "Travel"}},
			text:  "ETC TOLL",
			want:  "Travel",
		},
		{
			name: "empty keyword never matches",
			rules: []Rule{
				{Keyword: "", Category: "Everything"},
				{Keyword: "   ", Category: "Everything"},
				{Keyword: "ETC", Category: "Travel"},
			},
			text: "GROCERY",
			want: sentinel,
		},
		{
			name:  "unknown category flows through",
			rules: []Rule{{Keyword: "ETC", Category: "Not a listed label"}},
			text:  "ETC",
			want:  "Not a listed label",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text, tt.rules, sentinel))
		})
	}
}

func TestClassify_Idempotent(t *testing.T) {
	rules := []Rule{
		{Keyword: "ETC", Category: "Travel"},
		{Keyword: "AMAZON", Category: "Books"},
	}
	m := NewMatcher(rules, sentinel)

	for _, text := range []string{"ETC TOLL", "amazon", "other", ""} {
		first := m.Classify(text)
		assert.Equal(t, first, m.Classify(text), text)
		assert.Equal(t, first, Classify(text, rules, sentinel), text)
	}
}

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher([]Rule{
		{Keyword: "etc", Category: "Travel"},
		{Keyword: "toll", Category: "Roads"},
	}, sentinel)

	rule, ok := m.Match("ETC TOLL")
	assert.True(t, ok)
	assert.Equal(t, Rule{Keyword: "etc", Category: "Travel"}, rule)

	_, ok = m.Match("nothing")
	assert.False(t, ok)

	_, ok = m.Match("")
	assert.False(t, ok)
}
