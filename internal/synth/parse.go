package synth

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

type label string

const (
	labelDescription label = "DESCRIPTION"
	labelCEO         label = "CEO_NAME"
	labelTechnology  label = "TECHNOLOGY"
	labelNews        label = "RECENT_NEWS"
	labelMetric      label = "IMPRESSIVE_METRIC"
)

var labels = []label{labelDescription, labelCEO, labelTechnology, labelNews, labelMetric}

func labelNames() []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = string(l)
	}
	return out
}

var labelRe = regexp.MustCompile(`\b(DESCRIPTION|CEO_NAME|TECHNOLOGY|RECENT_NEWS|IMPRESSIVE_METRIC)\s*:`)

var replySchema = gojsonschema.NewGoLoader(func() map[string]any {
	props := make(map[string]any, len(labels))
	for _, l := range labels {
		props[string(l)] = map[string]any{"type": []string{"string", "null"}}
	}
	return map[string]any{
		"type":          "object",
		"properties":    props,
		"minProperties": 1,
	}
}())

// parseReply extracts labeled values from a structured JSON reply, falling
// back to a label scan of free text. Values equal to "unknown" are dropped.
func parseReply(reply string) (map[label]string, bool) {
	if fields, ok := parseJSON(reply); ok {
		return fields, len(fields) > 0
	}
	fields := scanLabels(reply)
	return fields, len(fields) > 0
}

func parseJSON(reply string) (map[label]string, bool) {
	cleaned := cleanJSON(reply)
	if cleaned == "" {
		return nil, false
	}
	res, err := gojsonschema.Validate(replySchema, gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, false
	}
	if !res.Valid() {
		zap.L().Debug("synth: reply failed schema validation", zap.Int("errors", len(res.Errors())))
		return nil, false
	}

	var raw map[string]*string
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, false
	}
	fields := make(map[label]string, len(labels))
	for _, l := range labels {
		if v, ok := raw[string(l)]; ok && v != nil {
			if s := normalizeValue(*v); s != "" {
				fields[l] = s
			}
		}
	}
	return fields, true
}

// cleanJSON strips markdown fences and surrounding prose, keeping the span
// from the first '{' to the last '}'.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// scanLabels reads "LABEL: value" pairs; each value runs to the next label
// or the end of the text. The first occurrence of a label wins.
func scanLabels(text string) map[label]string {
	locs := labelRe.FindAllStringSubmatchIndex(text, -1)
	fields := make(map[label]string, len(labels))
	seen := make(map[label]bool, len(labels))
	for i, loc := range locs {
		l := label(text[loc[2]:loc[3]])
		if seen[l] {
			continue
		}
		seen[l] = true
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if v := normalizeValue(text[loc[1]:end]); v != "" {
			fields[l] = v
		}
	}
	return fields
}

func normalizeValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, "*\"[] \t\n")
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "unknown") {
		return ""
	}
	return v
}
