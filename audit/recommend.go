package audit

// Recommendation keys. These are translation keys resolved client-side; the
// catalog is fixed so the client can localize every one of them.
const (
	recAddPageTitle        = "add_page_title"
	recAddMetaDescription  = "add_meta_description"
	recAddH1               = "add_h1"
	recUseSingleH1         = "use_single_h1"
	recAddClearCTA         = "add_clear_cta"
	recShortenSentences    = "shorten_sentences"
	recReduceJargon        = "reduce_jargon"
	recAddBenefitLanguage  = "add_benefit_language"
	recImproveAltCoverage  = "improve_alt_coverage"
	recReducePageWeight    = "reduce_page_weight"
	recImproveServerSpeed  = "improve_server_response"
	recAddLanguageAttr     = "add_language_attribute"
	recAddViewportMeta     = "add_viewport_meta"
	recAddCanonical        = "add_canonical"
	recAddOpenGraph        = "add_open_graph"
	recAddTwitterCards     = "add_twitter_cards"
	recAddStructuredData   = "add_structured_data"
)

// recommendationBuilder accumulates keys per tier, de-duplicating and
// preserving detection order within each tier.
type recommendationBuilder struct {
	seen   map[string]bool
	high   []string
	medium []string
	low    []string
}

func newRecommendationBuilder() *recommendationBuilder {
	return &recommendationBuilder{seen: make(map[string]bool)}
}

func (b *recommendationBuilder) add(key string, p Priority) {
	if b.seen[key] {
		return
	}
	b.seen[key] = true
	switch p {
	case PriorityHigh:
		b.high = append(b.high, key)
	case PriorityMedium:
		b.medium = append(b.medium, key)
	default:
		b.low = append(b.low, key)
	}
}

func (b *recommendationBuilder) build() []Recommendation {
	out := make([]Recommendation, 0, len(b.high)+len(b.medium)+len(b.low))
	for _, k := range b.high {
		out = append(out, Recommendation{Text: k, Priority: PriorityHigh})
	}
	for _, k := range b.medium {
		out = append(out, Recommendation{Text: k, Priority: PriorityMedium})
	}
	for _, k := range b.low {
		out = append(out, Recommendation{Text: k, Priority: PriorityLow})
	}
	return out
}

// buildRecommendations maps every failing check to its catalog key.
// Structural/SEO absence of critical elements is high priority, readability
// and hygiene issues medium, enhancements low.
func buildRecommendations(page *FetchedPage, seo SEOAnalysis, structure StructureAnalysis, msg MessageAnalysis, ideal []IdealSection) []Recommendation {
	b := newRecommendationBuilder()

	if seo.Title == "" {
		b.add(recAddPageTitle, PriorityHigh)
	}
	if seo.MetaDescription == "" {
		b.add(recAddMetaDescription, PriorityHigh)
	}
	switch {
	case structure.H1Count == 0:
		b.add(recAddH1, PriorityHigh)
	case structure.H1Count > 1:
		b.add(recUseSingleH1, PriorityHigh)
	}

	// Missing sections inherit priority from their importance tier.
	missing := make(map[string]bool, len(structure.MissingSections))
	for _, t := range structure.MissingSections {
		missing[t] = true
	}
	for _, s := range ideal {
		if !missing[string(s.Type)] {
			continue
		}
		key := sectionRecommendationKey(s.Type)
		switch s.Importance {
		case ImportanceCritical:
			b.add(key, PriorityHigh)
		case ImportanceImportant:
			b.add(key, PriorityMedium)
		default:
			b.add(key, PriorityLow)
		}
	}

	for _, issue := range msg.Issues {
		switch issue {
		case issueSentencesTooLong:
			b.add(recShortenSentences, PriorityMedium)
		case issueJargonHeavy:
			b.add(recReduceJargon, PriorityMedium)
		case issueNoBenefitLanguage, issueFeatureOrientedCopy:
			b.add(recAddBenefitLanguage, PriorityMedium)
		}
	}

	if seo.Images.WithoutAlt > 0 {
		b.add(recImproveAltCoverage, PriorityMedium)
	}
	if float64(page.PageSize)/1024.0 > 1024 {
		b.add(recReducePageWeight, PriorityMedium)
	}
	if page.TTFB.Milliseconds() > 800 {
		b.add(recImproveServerSpeed, PriorityMedium)
	}
	if seo.Language == "" {
		b.add(recAddLanguageAttr, PriorityMedium)
	}
	if seo.Viewport == "" {
		b.add(recAddViewportMeta, PriorityMedium)
	}

	if !seo.HasCanonical {
		b.add(recAddCanonical, PriorityLow)
	}
	if !seo.HasOpenGraph {
		b.add(recAddOpenGraph, PriorityLow)
	}
	if !seo.HasTwitterCards {
		b.add(recAddTwitterCards, PriorityLow)
	}
	if !seo.HasStructuredData {
		b.add(recAddStructuredData, PriorityLow)
	}

	return b.build()
}

func sectionRecommendationKey(t SectionType) string {
	if t == SectionCTA {
		return recAddClearCTA
	}
	return "add_" + string(t) + "_section"
}
