package source

import (
	"fmt"
	"regexp"
	"strings"
)

// A person's name is two capitalized words. Only the labels around the
// name match case-insensitively.
const namePattern = `([A-Z][a-z]+ [A-Z][a-z]+)`

var (
	founderRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i:founded by\s+|co-founder[:\s]+|founder[:\s]+)` + namePattern),
		regexp.MustCompile(namePattern + `,?\s*(?i:co-founder|founder)`),
	}
	ceoRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i:ceo[:\s]+|chief executive officer[:\s]+)` + namePattern),
		regexp.MustCompile(namePattern + `,?\s*(?i:ceo|chief executive officer)`),
	}

	// Capitalized pairs that are never a person.
	nameStopwords = map[string]bool{
		"The": true, "Our": true, "Its": true, "Meet": true, "Chief": true,
		"Executive": true, "Founder": true, "Officer": true, "About": true,
		"Company": true, "Team": true, "With": true, "And": true,
	}

	seriesRe    = regexp.MustCompile(`(?i)series\s*([A-Z])\b`)
	valuationRe = regexp.MustCompile(`(?i)(?:valued at|valuation of|valuation)\D{0,20}\$\s?([\d.]+)\s*(billion|million|B|M)\b`)
)

// FindFounder returns the first founder name mentioned in text.
func FindFounder(text string) string {
	return firstName(founderRes, text)
}

// FindCEO returns the first CEO name mentioned in text.
func FindCEO(text string) string {
	return firstName(ceoRes, text)
}

func firstName(res []*regexp.Regexp, text string) string {
	for _, re := range res {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			if validName(name) {
				return name
			}
		}
	}
	return ""
}

func validName(name string) bool {
	for _, tok := range strings.Fields(name) {
		if nameStopwords[tok] {
			return false
		}
	}
	return name != ""
}

// fundingPatterns returns amount/unit patterns for company. Each has the
// amount in group 1 and the unit in group 2.
func fundingPatterns(company string) []*regexp.Regexp {
	c := regexp.QuoteMeta(company)
	amount := `\$?([\d.]+)\s*(billion|million|B|M)\b`
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + c + `.*?(?:raised|raises|secured|closed|announced).*?` + amount + `\s*(?:series\s*[A-Z]|funding|round)`),
		regexp.MustCompile(`(?i)` + amount + `.*?(?:series\s*[A-Z]|funding|round).*?` + c),
		regexp.MustCompile(`(?i)` + c + `.*?series\s*[A-Z].*?` + amount),
	}
}

// FindFunding scans text for a funding announcement about company and
// phrases it for an email opener: "closing a $40M Series B funding round"
// or "securing $40M in funding".
func FindFunding(company, text string) string {
	if strings.TrimSpace(company) == "" {
		return ""
	}
	for _, re := range fundingPatterns(company) {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		amt := formatAmount(text[loc[2]:loc[3]], text[loc[4]:loc[5]])
		if amt == "" {
			continue
		}
		// Prefer the series named in the matching sentence, then anywhere.
		if s := seriesRe.FindStringSubmatch(text[loc[0]:loc[1]]); s != nil {
			return fmt.Sprintf("closing a %s Series %s funding round", amt, strings.ToUpper(s[1]))
		}
		if s := seriesRe.FindStringSubmatch(text); s != nil {
			return fmt.Sprintf("closing a %s Series %s funding round", amt, strings.ToUpper(s[1]))
		}
		return fmt.Sprintf("securing %s in funding", amt)
	}
	return ""
}

// FindValuation returns a phrase like "a $2.5B valuation".
func FindValuation(text string) string {
	m := valuationRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if amt := formatAmount(m[1], m[2]); amt != "" {
		return "a " + amt + " valuation"
	}
	return ""
}

func formatAmount(amount, unit string) string {
	amount = strings.Trim(amount, ".")
	if amount == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(unit), "b") {
		return "$" + amount + "B"
	}
	return "$" + amount + "M"
}

var achievementVerbs = `(?:announced|announces|launched|launches|partners with|partnered with|introduces|introduced|unveils|unveiled)`

// FindAchievement returns a short phrase about a recent company
// announcement, or "" when none of at least 20 characters is found.
func FindAchievement(company, text string) string {
	if strings.TrimSpace(company) == "" {
		return ""
	}
	text = clip(text, 2000)
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(company) + `[^.\n]*?\b(` + achievementVerbs + `[^.\n]*)`)
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		phrase := strings.TrimSpace(clip(m[1], 100))
		if len(phrase) > 20 {
			return phrase
		}
	}
	return ""
}
