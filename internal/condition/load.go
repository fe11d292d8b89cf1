package condition

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk form of a vocabulary:
//
//	features:
//	  self_cpi_min: 1
//	relations:
//	  "<=": LE
type File struct {
	Features  map[string]int    `yaml:"features"`
	Relations map[string]string `yaml:"relations"`
}

// Load reads a vocabulary YAML document. Omitted relations fall back to
// DefaultRelations; features are always required.
func Load(r io.Reader) (*Vocabulary, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}

	relations := DefaultRelations()
	if len(f.Relations) > 0 {
		relations = make(map[string]Relation, len(f.Relations))
		for op, tag := range f.Relations {
			relations[op] = Relation(tag)
		}
	}
	return NewVocabulary(f.Features, relations)
}

// LoadFile reads a vocabulary from path. An empty path yields the default.
func LoadFile(path string) (*Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer fh.Close()
	return Load(fh)
}

// Marshal renders v in the same YAML shape Load accepts.
func (v *Vocabulary) Marshal() ([]byte, error) {
	f := File{
		Features:  v.features,
		Relations: make(map[string]string, len(v.relations)),
	}
	for op, rel := range v.relations {
		f.Relations[op] = string(rel)
	}
	return yaml.Marshal(f)
}
