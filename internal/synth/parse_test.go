package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":"b"}`, `{"a":"b"}`},
		{"fenced", "```json\n{\"a\":\"b\"}\n```", `{"a":"b"}`},
		{"prose around", `Sure! {"a":"b"} Hope that helps.`, `{"a":"b"}`},
		{"no object", "no json here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.in))
		})
	}
}

func TestScanLabels_RunsToNextLabel(t *testing.T) {
	text := "DESCRIPTION: Line one\ncontinues here. CEO_NAME: Jane Doe TECHNOLOGY: AI"
	fields := scanLabels(text)

	assert.Equal(t, "Line one\ncontinues here.", fields[labelDescription])
	assert.Equal(t, "Jane Doe", fields[labelCEO])
	assert.Equal(t, "AI", fields[labelTechnology])
	assert.NotContains(t, fields, labelNews)
}

func TestScanLabels_FirstOccurrenceWins(t *testing.T) {
	fields := scanLabels("CEO_NAME: First Person\nCEO_NAME: Second Person")
	assert.Equal(t, "First Person", fields[labelCEO])
}

func TestScanLabels_StripsDecoration(t *testing.T) {
	fields := scanLabels(`CEO_NAME: **[Jane Doe]**`)
	assert.Equal(t, "Jane Doe", fields[labelCEO])
}

func TestParseReply_InvalidSchemaFallsBackToLabels(t *testing.T) {
	// DESCRIPTION is a number, which the schema rejects.
	fields, ok := parseReply(`{"DESCRIPTION": 5} DESCRIPTION: from labels`)
	assert.True(t, ok)
	assert.Equal(t, "from labels", fields[labelDescription])
}

func TestParseReply_NullValues(t *testing.T) {
	fields, ok := parseReply(`{"DESCRIPTION": "x", "CEO_NAME": null}`)
	assert.True(t, ok)
	assert.Equal(t, "x", fields[labelDescription])
	assert.NotContains(t, fields, labelCEO)
}
