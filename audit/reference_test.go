package audit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReferenceCoversAllPageTypes(t *testing.T) {
	ref := mustRef(t)

	for _, pt := range []PageType{PageTypeLanding, PageTypeHomepage, PageTypeProduct} {
		sections := ref.IdealFor(pt)
		require.NotEmpty(t, sections, "page type %s", pt)

		critical := 0
		for _, s := range sections {
			assert.NotEmpty(t, s.ID, "%s/%s missing id", pt, s.Type)
			assert.NotEmpty(t, s.Name, "%s/%s missing name", pt, s.Type)
			if s.Importance == ImportanceCritical {
				critical++
			}
		}
		assert.Greater(t, critical, 0, "page type %s has no critical sections", pt)
	}
}

func TestReferenceSectionTypesAreCanonical(t *testing.T) {
	ref := mustRef(t)
	canonical := make(map[SectionType]bool, len(sectionOrder))
	for _, s := range sectionOrder {
		canonical[s] = true
	}

	for pt, sections := range ref.Sections {
		seen := make(map[SectionType]bool)
		for _, s := range sections {
			assert.True(t, canonical[s.Type], "%s references unknown section type %q", pt, s.Type)
			assert.False(t, seen[s.Type], "%s lists section type %q twice", pt, s.Type)
			seen[s.Type] = true
		}
	}
}

func TestWordlistsLowercase(t *testing.T) {
	ref := mustRef(t)

	for name, list := range map[string][]string{
		"benefit": ref.Words.Benefit,
		"feature": ref.Words.Feature,
		"jargon":  ref.Words.Jargon,
	} {
		require.NotEmpty(t, list, name)
		for _, w := range list {
			assert.Equal(t, strings.ToLower(w), w, "%s word %q is not lowercase", name, w)
		}
	}
}
