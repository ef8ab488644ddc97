package audit

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed refdata/sections.yaml refdata/wordlists.yaml
var refdataFS embed.FS

// Wordlists holds the lexical reference sets for the message analyzer.
type Wordlists struct {
	Benefit []string `yaml:"benefit"`
	Feature []string `yaml:"feature"`
	Jargon  []string `yaml:"jargon"`
}

// Reference is the immutable static configuration the analyzers run
// against: the per-page-type ideal section checklists and the wordlists.
// Loaded once at startup and shared read-only between requests.
type Reference struct {
	Sections map[PageType][]IdealSection
	Words    Wordlists

	benefitSet map[string]struct{}
	featureSet map[string]struct{}
	jargonSet  map[string]struct{}
}

// LoadReference parses the embedded reference tables and validates the
// invariants the scorers rely on.
func LoadReference() (*Reference, error) {
	ref := &Reference{}

	data, err := refdataFS.ReadFile("refdata/sections.yaml")
	if err != nil {
		return nil, fmt.Errorf("read sections reference: %w", err)
	}
	if err := yaml.Unmarshal(data, &ref.Sections); err != nil {
		return nil, fmt.Errorf("parse sections reference: %w", err)
	}

	data, err = refdataFS.ReadFile("refdata/wordlists.yaml")
	if err != nil {
		return nil, fmt.Errorf("read wordlists: %w", err)
	}
	if err := yaml.Unmarshal(data, &ref.Words); err != nil {
		return nil, fmt.Errorf("parse wordlists: %w", err)
	}

	for _, pt := range []PageType{PageTypeLanding, PageTypeHomepage, PageTypeProduct} {
		sections, ok := ref.Sections[pt]
		if !ok || len(sections) == 0 {
			return nil, fmt.Errorf("sections reference missing page type %q", pt)
		}
		critical := 0
		for _, s := range sections {
			if s.Importance == ImportanceCritical {
				critical++
			}
		}
		// The structure score divides by the critical count.
		if critical == 0 {
			return nil, fmt.Errorf("page type %q defines no critical sections", pt)
		}
	}

	ref.benefitSet = toSet(ref.Words.Benefit)
	ref.featureSet = toSet(ref.Words.Feature)
	ref.jargonSet = toSet(ref.Words.Jargon)
	return ref, nil
}

// IdealFor returns the checklist for the given page type.
func (r *Reference) IdealFor(pt PageType) []IdealSection {
	return r.Sections[pt]
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
