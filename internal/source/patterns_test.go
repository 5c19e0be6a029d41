package source

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFindFounder(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Acme was founded by Jane Doe in 2019.", "Jane Doe"},
		{"Co-founder: John Roe leads product.", "John Roe"},
		{"Jane Doe, Founder of Acme", "Jane Doe"},
		{"Meet The Founder of Acme", ""},
		{"founded by jane doe", ""},
		{"no names here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, FindFounder(tt.text))
		})
	}
}

func TestFindCEO(t *testing.T) {
	assert.Equal(t, "Sam Altman", FindCEO("OpenAI CEO Sam Altman said"))
	assert.Equal(t, "Jane Doe", FindCEO("Jane Doe, CEO"))
	assert.Equal(t, "Jane Doe", FindCEO("Chief Executive Officer: Jane Doe"))
	assert.Empty(t, FindCEO("the ceo said nothing"))
}

func TestFindFunding(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"raised with series", "Acme raised $40 million Series B led by Sequoia", "closing a $40M Series B funding round"},
		{"billions", "Acme closed a 1.5 billion funding round", "securing $1.5B in funding"},
		{"amount before name", "$12M seed round for Acme", "securing $12M in funding"},
		{"series before amount", "Acme Series C brings total to $300M", "closing a $300M Series C funding round"},
		{"series elsewhere", "Acme secured $8M funding.\nThe Series A was oversubscribed", "closing a $8M Series A funding round"},
		{"other company", "Globex raised $40M Series B", ""},
		{"nothing", "Acme hires a new CTO", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindFunding("Acme", tt.text))
		})
	}
	assert.Empty(t, FindFunding("", "raised $40M Series B"))
}

func TestFindFunding_QuotesCompanyName(t *testing.T) {
	assert.Equal(t, "securing $5M in funding", FindFunding("A.I. (Labs)", "A.I. (Labs) raised $5M funding"))
}

func TestFindValuation(t *testing.T) {
	assert.Equal(t, "a $157B valuation", FindValuation("a round at a valuation of $157 billion"))
	assert.Equal(t, "a $2.5B valuation", FindValuation("now valued at $2.5B after"))
	assert.Empty(t, FindValuation("valued by customers"))
}

func TestFindAchievement(t *testing.T) {
	got := FindAchievement("Acme", "Today Acme announced a partnership with Globex to launch satellites. More.")
	assert.Equal(t, "announced a partnership with Globex to launch satellites", got)

	assert.Empty(t, FindAchievement("Acme", "Acme launches app."))
	assert.Empty(t, FindAchievement("", "anything announced here today at length"))
}

func TestFindAchievement_MultibyteText(t *testing.T) {
	text := strings.Repeat("é", 1500) + " Acme announced a partnership with Globex to launch satellites."
	got := FindAchievement("Acme", text)
	assert.Equal(t, "announced a partnership with Globex to launch satellites", got)

	long := strings.Repeat("日本", 1000) + "Acme announced something."
	assert.True(t, utf8.ValidString(clip(long, 2000)))
}
