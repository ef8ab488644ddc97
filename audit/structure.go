package audit

import (
	"math"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// sectionNames is the fallback display name per type, used when the ideal
// checklist for the page type has no entry of that type.
var sectionNames = map[SectionType]string{
	SectionNavigation: "Navigation",
	SectionHero:       "Hero",
	SectionProof:      "Social proof",
	SectionProblem:    "Problem",
	SectionSolution:   "Solution",
	SectionFeatures:   "Features",
	SectionCTA:        "Call to action",
	SectionPricing:    "Pricing",
	SectionFAQ:        "FAQ",
	SectionFooter:     "Footer",
}

// Keyword tables for attribute/heading classification. Attributes (class,
// id) are the strongest signal, heading text second.
var attrKeywords = map[SectionType][]string{
	SectionHero:     {"hero", "banner", "jumbotron", "masthead", "above-the-fold"},
	SectionProof:    {"testimonial", "review", "avis", "temoignage", "témoignage", "social-proof", "trusted", "clients", "logos", "rating"},
	SectionProblem:  {"problem", "probleme", "problème", "pain"},
	SectionSolution: {"solution", "how-it-works", "howitworks"},
	SectionFeatures: {"feature", "benefit", "avantage", "fonctionnalite", "fonctionnalité", "services"},
	SectionCTA:      {"cta", "call-to-action", "calltoaction", "signup", "get-started"},
	SectionPricing:  {"pricing", "tarif", "plans", "prix"},
	SectionFAQ:      {"faq", "accordion"},
	SectionFooter:   {"footer"},
}

var headingKeywords = map[SectionType][]string{
	SectionProof:    {"testimonial", "what our", "ils nous font confiance", "avis", "témoignages", "trusted by", "reviews"},
	SectionProblem:  {"problem", "tired of", "struggling", "marre de", "le problème", "challenge"},
	SectionSolution: {"solution", "how it works", "comment ça marche", "introducing", "découvrez"},
	SectionFeatures: {"features", "fonctionnalités", "benefits", "avantages", "what you get", "everything you need", "services"},
	SectionPricing:  {"pricing", "tarifs", "plans", "prix", "choose your plan"},
	SectionFAQ:      {"faq", "frequently asked", "questions fréquentes", "common questions"},
}

var ctaVerbs = []string{
	"get started", "sign up", "start now", "start free", "try", "book", "buy",
	"order", "subscribe", "join", "download", "contact", "request", "schedule",
	"add to cart", "commencer", "essayer", "réserver", "acheter", "commander",
	"s'inscrire", "inscrivez", "contactez", "demander", "télécharger",
}

// detectedRegion records the first region classified as a given type, by
// its document-order index among all candidate regions.
type detectedRegion struct {
	order int
}

// analyzeStructure classifies the page's regions, scores structure against
// the ideal checklist for the page type and returns both the summary and the
// full per-type detection list.
func analyzeStructure(page *FetchedPage, ref *Reference, pageType PageType) (StructureAnalysis, []DetectedSection) {
	doc := page.Doc
	found, totalRegions := classifyRegions(doc)

	h1Count := doc.Find("h1").Length()
	ideal := ref.IdealFor(pageType)

	foundCritical, totalCritical := 0, 0
	for _, s := range ideal {
		if s.Importance != ImportanceCritical {
			continue
		}
		totalCritical++
		if _, ok := found[s.Type]; ok {
			foundCritical++
		}
	}
	// LoadReference guarantees totalCritical >= 1.
	structureScore := int(math.Round(100 * float64(foundCritical) / float64(totalCritical)))

	analysis := StructureAnalysis{
		StructureScore:   structureScore,
		HasH1:            h1Count > 0,
		H1Count:          h1Count,
		DetectedSections: []string{},
		MissingSections:  []string{},
	}

	for _, t := range sectionOrder {
		if _, ok := found[t]; ok {
			analysis.DetectedSections = append(analysis.DetectedSections, string(t))
		}
	}
	analysis.MissingSections = missingSections(ideal, found)

	return analysis, buildDetectedSections(ideal, found, totalRegions)
}

// classifyRegions walks the page's block-level regions in document order and
// records the first region matching each section type. The region count is
// kept so positions can be expressed as page percentages.
func classifyRegions(doc *goquery.Document) (map[SectionType]detectedRegion, int) {
	found := make(map[SectionType]detectedRegion)
	record := func(t SectionType, order int) {
		if t == SectionUnknown {
			return
		}
		if _, ok := found[t]; !ok {
			found[t] = detectedRegion{order: order}
		}
	}

	regions := doc.Find("header, nav, footer, section, article, aside, main > div, body > div")
	total := regions.Length()
	regions.Each(func(i int, s *goquery.Selection) {
		record(classifyRegion(s), i)
		// A region can carry the page's conversion action regardless of
		// what it primarily is (a hero with a signup button still counts
		// as the CTA being present).
		if hasCTAAction(s) {
			record(SectionCTA, i)
		}
	})

	if total == 0 {
		total = 1
	}
	return found, total
}

func classifyRegion(s *goquery.Selection) SectionType {
	tag := goquery.NodeName(s)
	attrs := regionAttrs(s)

	switch tag {
	case "nav":
		return SectionNavigation
	case "footer":
		return SectionFooter
	case "header":
		// A top header holding a nav is navigation; otherwise it often is
		// the hero block itself.
		if s.Find("nav").Length() > 0 || strings.Contains(attrs, "nav") {
			return SectionNavigation
		}
		if s.Find("h1").Length() > 0 {
			return SectionHero
		}
		return SectionNavigation
	}

	for _, t := range sectionOrder {
		for _, kw := range attrKeywords[t] {
			if strings.Contains(attrs, kw) {
				return t
			}
		}
	}

	heading := strings.ToLower(strings.TrimSpace(s.Find("h1, h2, h3").First().Text()))
	if heading != "" {
		for _, t := range sectionOrder {
			for _, kw := range headingKeywords[t] {
				if strings.Contains(heading, kw) {
					return t
				}
			}
		}
	}

	if s.Find("h1").Length() > 0 {
		return SectionHero
	}
	return SectionUnknown
}

func regionAttrs(s *goquery.Selection) string {
	class, _ := s.Attr("class")
	id, _ := s.Attr("id")
	return strings.ToLower(class + " " + id)
}

// hasCTAAction reports whether the region contains a link or button whose
// label reads as a conversion action.
func hasCTAAction(s *goquery.Selection) bool {
	match := false
	s.Find("a, button, input[type='submit']").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		label := strings.ToLower(strings.TrimSpace(el.Text()))
		if label == "" {
			label, _ = el.Attr("value")
			label = strings.ToLower(label)
		}
		for _, verb := range ctaVerbs {
			if strings.Contains(label, verb) {
				match = true
				return false
			}
		}
		return true
	})
	return match
}

// missingSections lists ideal section types not detected, critical first,
// then by ideal position.
func missingSections(ideal []IdealSection, found map[SectionType]detectedRegion) []string {
	var missing []IdealSection
	for _, s := range ideal {
		if _, ok := found[s.Type]; !ok {
			missing = append(missing, s)
		}
	}
	rank := map[Importance]int{ImportanceCritical: 0, ImportanceImportant: 1, ImportanceOptional: 2}
	sort.SliceStable(missing, func(i, j int) bool {
		if rank[missing[i].Importance] != rank[missing[j].Importance] {
			return rank[missing[i].Importance] < rank[missing[j].Importance]
		}
		return missing[i].IdealPosition < missing[j].IdealPosition
	})

	out := make([]string, 0, len(missing))
	for _, s := range missing {
		out = append(out, string(s.Type))
	}
	return out
}

// buildDetectedSections emits exactly one entry per canonical section type,
// with an approximate page position for detected ones.
func buildDetectedSections(ideal []IdealSection, found map[SectionType]detectedRegion, totalRegions int) []DetectedSection {
	names := make(map[SectionType]string, len(ideal))
	ids := make(map[SectionType]string, len(ideal))
	for _, s := range ideal {
		names[s.Type] = s.Name
		ids[s.Type] = s.ID
	}

	height := int(math.Round(100 / float64(totalRegions)))
	if height < 5 {
		height = 5
	}

	out := make([]DetectedSection, 0, len(sectionOrder))
	for _, t := range sectionOrder {
		name, ok := names[t]
		if !ok {
			name = sectionNames[t]
		}
		id, ok := ids[t]
		if !ok {
			id = "section-" + string(t)
		}
		entry := DetectedSection{ID: id, Type: t, Name: name}
		if region, ok := found[t]; ok {
			entry.Detected = true
			entry.Position = &SectionPosition{
				Top:    int(math.Round(100 * float64(region.order) / float64(totalRegions))),
				Height: height,
			}
		}
		out = append(out, entry)
	}
	return out
}
