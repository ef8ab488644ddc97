package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructureCompleteLanding(t *testing.T) {
	ref := mustRef(t)
	page := mustPage(t, completeLanding)

	structure, detected := analyzeStructure(page, ref, PageTypeLanding)

	assert.Equal(t, 100, structure.StructureScore)
	assert.Empty(t, structure.MissingSections)
	assert.True(t, structure.HasH1)
	assert.Equal(t, 1, structure.H1Count)

	// One entry per canonical type, no duplicates.
	seen := make(map[SectionType]bool)
	for _, d := range detected {
		require.False(t, seen[d.Type], "duplicate section type %s", d.Type)
		seen[d.Type] = true
	}
	assert.Len(t, detected, len(sectionOrder))
}

func TestStructureBarePage(t *testing.T) {
	ref := mustRef(t)
	page := mustPage(t, barePage)

	structure, _ := analyzeStructure(page, ref, PageTypeLanding)

	assert.Equal(t, 2, structure.H1Count)
	assert.Less(t, structure.StructureScore, 100)
	assert.Contains(t, structure.MissingSections, string(SectionCTA))
	assert.Contains(t, structure.MissingSections, string(SectionProof))
}

func TestMissingSectionsSortedCriticalFirst(t *testing.T) {
	ref := mustRef(t)
	page := mustPage(t, barePage)

	structure, _ := analyzeStructure(page, ref, PageTypeLanding)

	rank := map[Importance]int{ImportanceCritical: 0, ImportanceImportant: 1, ImportanceOptional: 2}
	importanceOf := make(map[string]Importance)
	for _, s := range ref.IdealFor(PageTypeLanding) {
		importanceOf[string(s.Type)] = s.Importance
	}

	prev := -1
	for _, m := range structure.MissingSections {
		cur := rank[importanceOf[m]]
		assert.GreaterOrEqual(t, cur, prev, "missing sections not sorted by importance: %v", structure.MissingSections)
		prev = cur
	}
}

func TestMissingDisjointFromDetected(t *testing.T) {
	ref := mustRef(t)
	for _, html := range []string{completeLanding, barePage} {
		page := mustPage(t, html)
		structure, detected := analyzeStructure(page, ref, PageTypeLanding)

		missing := make(map[string]bool)
		for _, m := range structure.MissingSections {
			missing[m] = true
		}
		for _, d := range detected {
			if d.Detected {
				assert.False(t, missing[string(d.Type)], "section %s both detected and missing", d.Type)
			}
		}
	}
}

func TestStructureScoreMonotonicity(t *testing.T) {
	ref := mustRef(t)

	// Same page with and without the social proof section: adding a
	// critical section must never decrease the score.
	withoutProof := `<html><body>
<header class="hero"><h1>Grow faster</h1><a href="/go">Get started</a></header>
</body></html>`
	withProof := `<html><body>
<header class="hero"><h1>Grow faster</h1><a href="/go">Get started</a></header>
<section class="testimonials"><h2>Trusted by thousands</h2></section>
</body></html>`

	before, _ := analyzeStructure(mustPage(t, withoutProof), ref, PageTypeLanding)
	after, _ := analyzeStructure(mustPage(t, withProof), ref, PageTypeLanding)

	assert.GreaterOrEqual(t, after.StructureScore, before.StructureScore)
}

func TestStructureScoreDeterministic(t *testing.T) {
	ref := mustRef(t)
	a, _ := analyzeStructure(mustPage(t, completeLanding), ref, PageTypeLanding)
	b, _ := analyzeStructure(mustPage(t, completeLanding), ref, PageTypeLanding)
	assert.Equal(t, a, b)
}

func TestDetectedSectionPositions(t *testing.T) {
	ref := mustRef(t)
	page := mustPage(t, completeLanding)

	_, detected := analyzeStructure(page, ref, PageTypeLanding)

	for _, d := range detected {
		if !d.Detected {
			assert.Nil(t, d.Position, "undetected section %s has a position", d.Type)
			continue
		}
		require.NotNil(t, d.Position, "detected section %s missing position", d.Type)
		assert.GreaterOrEqual(t, d.Position.Top, 0)
		assert.LessOrEqual(t, d.Position.Top, 100)
		assert.Greater(t, d.Position.Height, 0)
	}
}

func TestClassifyRegionFooterAndNav(t *testing.T) {
	page := mustPage(t, `<html><body><nav></nav><section class="pricing-table"><h2>Plans</h2></section><footer></footer></body></html>`)
	found, _ := classifyRegions(page.Doc)

	assert.Contains(t, found, SectionNavigation)
	assert.Contains(t, found, SectionFooter)
	assert.Contains(t, found, SectionPricing)
}
