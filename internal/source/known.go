package source

import (
	"strings"

	"github.com/sells-group/outreach-cli/internal/cache"
	"github.com/sells-group/outreach-cli/internal/model"
)

var knownEntities = map[string]model.CompanyFacts{
	"openai": {
		CompanyName:      "OpenAI",
		CEOName:          "Sam Altman",
		Description:      "OpenAI is an AI research and deployment company that develops and deploys safe and beneficial artificial general intelligence.",
		TechnologyFocus:  "large language models and AI safety",
		RecentNews:       "launching GPT-4o and securing a $6.6 billion funding round at $157 billion valuation",
		ImpressiveMetric: "over 100 million weekly active users on ChatGPT",
		Domain:           "openai.com",
	},
	"stripe": {
		CompanyName:      "Stripe",
		CEOName:          "Patrick Collison",
		FounderName:      "Patrick and John Collison",
		Description:      "Stripe is a technology company that builds economic infrastructure for the internet, enabling businesses to accept payments and manage their operations online.",
		TechnologyFocus:  "payment processing and financial APIs",
		RecentNews:       "reaching $1 trillion in total payment volume processed and launching embedded finance products",
		ImpressiveMetric: "processing payments for millions of businesses in over 120 countries",
		Domain:           "stripe.com",
	},
	"anthropic": {
		CompanyName:      "Anthropic",
		CEOName:          "Dario Amodei",
		FounderName:      "Dario Amodei and Daniela Amodei",
		Description:      "Anthropic is an AI safety company that develops reliable, interpretable, and steerable AI systems, including the Claude AI assistant.",
		TechnologyFocus:  "AI safety and constitutional AI",
		RecentNews:       "raising $2 billion from Google and launching Claude 3 with improved reasoning capabilities",
		ImpressiveMetric: "Claude processing billions of tokens daily across enterprise customers",
		Domain:           "anthropic.com",
	},
	"notion": {
		CompanyName:      "Notion",
		CEOName:          "Ivan Zhao",
		FounderName:      "Ivan Zhao and Simon Last",
		Description:      "Notion is an all-in-one workspace platform that combines notes, databases, kanban boards, wikis, and documents.",
		TechnologyFocus:  "collaborative productivity software",
		RecentNews:       "introducing Notion AI and surpassing 100 million users globally",
		ImpressiveMetric: "over 100 million users across 190+ countries",
		Domain:           "notion.so",
	},
	"whering": {
		CompanyName:      "Whering",
		CEOName:          "Bianca Rangecroft",
		FounderName:      "Bianca Rangecroft",
		Description:      "Whering is a fashiontech app that helps users digitize their wardrobes and make smarter fashion choices through AI-powered outfit recommendations.",
		TechnologyFocus:  "AI-powered fashion technology and sustainable wardrobe management",
		RecentNews:       "securing Series A funding and expanding into the US market with celebrity partnerships",
		ImpressiveMetric: "over 4 million users actively engaging with their digital closets",
		Domain:           "whering.co.uk",
	},
}

// Known serves a static table of hand-verified company facts. It is
// consulted before any adapter runs, so it is not an Adapter itself.
type Known struct{}

// NewKnown returns the known-entity table.
func NewKnown() *Known { return &Known{} }

// Lookup returns the facts for company when it is in the table. The
// returned CompanyName is the caller's spelling.
func (k *Known) Lookup(company string) (model.CompanyFacts, bool) {
	f, ok := knownEntities[cache.Key(company)]
	if !ok {
		return model.CompanyFacts{}, false
	}
	f.CompanyName = strings.TrimSpace(company)
	return f, true
}
