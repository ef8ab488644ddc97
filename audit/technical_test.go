package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeSEOCompletePage(t *testing.T) {
	seo := analyzeSEO(mustPage(t, completeLanding))

	assert.NotEmpty(t, seo.Title)
	assert.NotEmpty(t, seo.MetaDescription)
	assert.True(t, seo.HasCanonical)
	assert.True(t, seo.HasOpenGraph)
	assert.True(t, seo.HasTwitterCards)
	assert.True(t, seo.HasStructuredData)
	assert.Equal(t, []string{"Organization"}, seo.StructuredDataTypes)
	assert.Equal(t, "en", seo.Language)
	assert.NotEmpty(t, seo.Viewport)
	assert.Equal(t, "index,follow", seo.RobotsMeta)
}

func TestAnalyzeSEOBarePage(t *testing.T) {
	seo := analyzeSEO(mustPage(t, barePage))

	assert.Empty(t, seo.Title)
	assert.Empty(t, seo.MetaDescription)
	assert.False(t, seo.HasCanonical)
	assert.False(t, seo.HasStructuredData)
	assert.Empty(t, seo.Language)
}

func TestScoreSEOMonotonicity(t *testing.T) {
	complete := scoreSEO(analyzeSEO(mustPage(t, completeLanding)))
	bare := scoreSEO(analyzeSEO(mustPage(t, barePage)))

	assert.Greater(t, complete, bare)
	assert.GreaterOrEqual(t, bare, 0)
	assert.LessOrEqual(t, complete, 100)
}

func TestImageAltCoverage(t *testing.T) {
	page := mustPage(t, `<html><body>
<img src="/a.png" alt="a">
<img src="/b.png" alt="">
<img src="/c.png">
</body></html>`)
	img := analyzeImages(page.Doc)

	assert.Equal(t, 3, img.Total)
	assert.Equal(t, 1, img.WithAlt)
	assert.Equal(t, 2, img.WithoutAlt)
	assert.ElementsMatch(t, []string{"/b.png", "/c.png"}, img.MissingAltList)
}

func TestLinkCounting(t *testing.T) {
	page := mustPage(t, `<html><body>
<a href="/about">About</a>
<a href="https://example.com/pricing">Pricing</a>
<a href="https://other.example.org">Elsewhere</a>
<a href="mailto:hi@example.com">Mail</a>
<a href="#">Anchor</a>
<a href="/about">Duplicate</a>
</body></html>`)
	links := analyzeLinks(page.Doc, "https://example.com")

	assert.Equal(t, 2, links.Internal)
	assert.Equal(t, 1, links.External)
}

func TestStructuredDataTypesParsing(t *testing.T) {
	assert.Equal(t, []string{"Product"}, structuredDataTypes(`{"@type":"Product"}`))
	assert.Equal(t, []string{"Organization", "WebSite"}, structuredDataTypes(`[{"@type":"Organization"},{"@type":"WebSite"}]`))
	assert.Equal(t, []string{"Person", "Author"}, structuredDataTypes(`{"@type":["Person","Author"]}`))
	assert.Nil(t, structuredDataTypes(`not json at all`))
}

func TestScoreAccessibility(t *testing.T) {
	seo := analyzeSEO(mustPage(t, completeLanding))

	perfect := scoreAccessibility(seo, 1)
	noH1 := scoreAccessibility(seo, 0)
	twoH1 := scoreAccessibility(seo, 2)

	assert.Greater(t, perfect, noH1)
	assert.Greater(t, perfect, twoH1)
	// Zero H1s reads worse than several.
	assert.Greater(t, twoH1, noH1)
}

func TestScorePerformanceLadders(t *testing.T) {
	fast := &FetchedPage{PageSize: 100 * 1024, TTFB: 100 * time.Millisecond, TotalTime: 400 * time.Millisecond}
	slow := &FetchedPage{PageSize: 3 * 1024 * 1024, TTFB: 2 * time.Second, TotalTime: 4 * time.Second}

	assert.Equal(t, 100, scorePerformance(fast))
	assert.Equal(t, 10, scorePerformance(slow))
	assert.Greater(t, scorePerformance(fast), scorePerformance(slow))
}

func TestScoresWithinRange(t *testing.T) {
	for _, html := range []string{completeLanding, barePage, "<html></html>"} {
		page := mustPage(t, html)
		seo := analyzeSEO(page)
		for name, score := range map[string]int{
			"seo":           scoreSEO(seo),
			"accessibility": scoreAccessibility(seo, page.Doc.Find("h1").Length()),
			"performance":   scorePerformance(page),
		} {
			assert.GreaterOrEqual(t, score, 0, name)
			assert.LessOrEqual(t, score, 100, name)
		}
	}
}
