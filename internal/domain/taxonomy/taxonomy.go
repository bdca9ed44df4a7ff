// Package taxonomy holds the categorized strength/weakness vocabulary used to
// classify free-text report terms.
package taxonomy

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"gopkg.in/yaml.v3"

	"github.com/okian/scoutbook/internal/domain/model"
)

const (
	defaultSuggestionLimit = 10
	minSuggestionRunes     = 2
)

//go:embed default.yaml
var defaultVocabulary []byte

// Kind selects the strength or weakness list of a category.
type Kind string

// List kinds. Any matches both.
const (
	Strengths  Kind = "strengths"
	Weaknesses Kind = "weaknesses"
	Any        Kind = ""
)

// Classifier maps a bare term to its category.
type Classifier interface {
	Classify(term string) (model.Category, bool)
}

// Suggestion is a canonical phrase offered while typing.
type Suggestion struct {
	Term     string         `json:"term"`
	Category model.Category `json:"category"`
	Label    string         `json:"label"`
	Kind     Kind           `json:"kind"`
}

// document mirrors the YAML layout.
type document struct {
	Categories []struct {
		Name       string   `yaml:"name"`
		Label      string   `yaml:"label"`
		Strengths  []string `yaml:"strengths"`
		Weaknesses []string `yaml:"weaknesses"`
	} `yaml:"categories"`
}

type entry struct {
	term     string
	category model.Category
	kind     Kind
}

// Taxonomy is an immutable term -> category table.
type Taxonomy struct {
	index   map[string]model.Category
	entries []entry
	labels  map[model.Category]string
}

// Default returns the embedded vocabulary. It panics if the embedded file is
// malformed, which is a build defect.
func Default() *Taxonomy {
	t, err := Parse(defaultVocabulary)
	if err != nil {
		panic(fmt.Sprintf("taxonomy: embedded vocabulary: %v", err))
	}
	return t
}

// LoadFile reads a YAML vocabulary from path.
func LoadFile(path string) (*Taxonomy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Load decodes a YAML vocabulary from r.
func Load(r io.Reader) (*Taxonomy, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return Parse(raw)
}

// Parse builds a Taxonomy from YAML bytes.
func Parse(raw []byte) (*Taxonomy, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalid)
	}

	t := &Taxonomy{
		index:  make(map[string]model.Category),
		labels: make(map[model.Category]string),
	}
	for _, c := range doc.Categories {
		cat := model.Category(strings.ToLower(strings.TrimSpace(c.Name)))
		if !knownCategory(cat) {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalid, c.Name)
		}
		t.labels[cat] = c.Label
		if err := t.add(cat, Strengths, c.Strengths); err != nil {
			return nil, err
		}
		if err := t.add(cat, Weaknesses, c.Weaknesses); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Taxonomy) add(cat model.Category, kind Kind, terms []string) error {
	for _, term := range terms {
		key := foldTerm(term)
		if key == "" {
			continue
		}
		if prev, ok := t.index[key]; ok && prev != cat {
			return fmt.Errorf("%w: %q in %s and %s", ErrAmbiguousTerm, term, prev, cat)
		}
		t.index[key] = cat
		t.entries = append(t.entries, entry{term: strings.TrimSpace(term), category: cat, kind: kind})
	}
	return nil
}

// Classify returns the category of term, matching case-insensitively.
func (t *Taxonomy) Classify(term string) (model.Category, bool) {
	cat, ok := t.index[foldTerm(term)]
	return cat, ok
}

// Label returns the display label of a category.
func (t *Taxonomy) Label(cat model.Category) string {
	if l, ok := t.labels[cat]; ok && l != "" {
		return l
	}
	return string(cat)
}

// Terms returns the canonical phrases of one category and kind, in file order.
func (t *Taxonomy) Terms(cat model.Category, kind Kind) []string {
	var out []string
	for _, e := range t.entries {
		if e.category == cat && (kind == Any || e.kind == kind) {
			out = append(out, e.term)
		}
	}
	return out
}

// Len returns the number of canonical phrases.
func (t *Taxonomy) Len() int { return len(t.entries) }

// Suggest returns up to limit canonical phrases fuzzily matching text, best
// match first. Inputs shorter than two characters yield nothing.
func (t *Taxonomy) Suggest(text string, kind Kind, limit int) []Suggestion {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minSuggestionRunes {
		return nil
	}
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}

	var pool []entry
	var targets []string
	for _, e := range t.entries {
		if kind == Any || e.kind == kind {
			pool = append(pool, e)
			targets = append(targets, e.term)
		}
	}

	ranks := fuzzy.RankFindFold(text, targets)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]Suggestion, 0, limit)
	for _, r := range ranks {
		if len(out) == limit {
			break
		}
		e := pool[r.OriginalIndex]
		out = append(out, Suggestion{Term: e.term, Category: e.category, Label: t.Label(e.category), Kind: e.kind})
	}
	return out
}

func knownCategory(c model.Category) bool {
	switch c {
	case model.Technical, model.Tactical, model.Mental, model.Physical:
		return true
	}
	return false
}

func foldTerm(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
