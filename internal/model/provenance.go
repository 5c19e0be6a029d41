package model

// FieldProvenance records which source supplied a merged field and whether
// it replaced a higher-priority value through the specificity rule.
type FieldProvenance struct {
	Field    Field    `json:"field"`
	Source   SourceID `json:"source"`
	Override bool     `json:"override,omitempty"`
}
