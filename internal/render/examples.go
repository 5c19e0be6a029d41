package render

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Example is a hand-written intro used as a few-shot sample.
type Example struct {
	Company string `yaml:"company"`
	Intro   string `yaml:"intro"`
}

type examplesFile struct {
	Examples []Example `yaml:"examples"`
}

// LoadExamples reads few-shot intros from a YAML file. An empty path
// yields no examples.
func LoadExamples(path string) ([]Example, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "render: read examples %s", path)
	}
	return ParseExamples(data)
}

// ParseExamples decodes a YAML examples document, dropping incomplete
// entries.
func ParseExamples(data []byte) ([]Example, error) {
	var f examplesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "render: parse examples")
	}
	out := f.Examples[:0]
	for _, ex := range f.Examples {
		if ex.Company != "" && ex.Intro != "" {
			out = append(out, ex)
		}
	}
	return out, nil
}
