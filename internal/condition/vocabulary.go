package condition

import (
	"fmt"
	"maps"
	"slices"
)

// Vocabulary holds the two fixed lookup tables a translator needs. Build it
// once at startup and share it; nothing mutates it afterwards.
type Vocabulary struct {
	features  map[string]int
	relations map[string]Relation
	names     map[int]string
}

// DefaultFeatures returns the feature table of the per-core CPI learner. Each
// call builds a fresh map.
func DefaultFeatures() map[string]int {
	return map[string]int{
		"self_cpi_min":   1,
		"self_cpi_mean":  2,
		"all_cpi_mean":   3,
		"neigh_cpi_mean": 4,
	}
}

// DefaultRelations returns the learner's operator tokens mapped to relation
// tags. Each call builds a fresh map.
func DefaultRelations() map[string]Relation {
	return map[string]Relation{
		"<":  LT,
		"<=": LE,
		">":  GT,
		">=": GE,
		"==": EQ,
		"=":  EQ,
	}
}

// NewVocabulary validates and copies the given tables. Feature ids must be
// positive and unique so they never collide with the sentinels.
func NewVocabulary(features map[string]int, relations map[string]Relation) (*Vocabulary, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("vocabulary has no features")
	}
	if len(relations) == 0 {
		return nil, fmt.Errorf("vocabulary has no relations")
	}

	v := &Vocabulary{
		features:  maps.Clone(features),
		relations: maps.Clone(relations),
		names:     make(map[int]string, len(features)),
	}
	for name, id := range features {
		if name == "" {
			return nil, fmt.Errorf("empty feature name")
		}
		if id <= 0 {
			return nil, fmt.Errorf("feature %q: id must be positive, got %d", name, id)
		}
		if other, dup := v.names[id]; dup {
			return nil, fmt.Errorf("features %q and %q share id %d", other, name, id)
		}
		v.names[id] = name
	}
	for op, rel := range relations {
		if !rel.Valid() {
			return nil, fmt.Errorf("operator %q: unknown relation %q", op, rel)
		}
	}
	return v, nil
}

// DefaultVocabulary returns the built-in tables.
func DefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary(DefaultFeatures(), DefaultRelations())
	if err != nil {
		panic(err)
	}
	return v
}

// Feature looks up a feature id by name.
func (v *Vocabulary) Feature(name string) (int, bool) {
	id, ok := v.features[name]
	return id, ok
}

// FeatureName looks up a feature name by id.
func (v *Vocabulary) FeatureName(id int) (string, bool) {
	name, ok := v.names[id]
	return name, ok
}

// Relation looks up an operator token.
func (v *Vocabulary) Relation(op string) (Relation, bool) {
	rel, ok := v.relations[op]
	return rel, ok
}

// Features returns feature names ordered by id.
func (v *Vocabulary) Features() []string {
	ids := slices.Sorted(maps.Keys(v.names))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, v.names[id])
	}
	return out
}

// Operators returns the operator tokens in sorted order.
func (v *Vocabulary) Operators() []string {
	return slices.Sorted(maps.Keys(v.relations))
}
