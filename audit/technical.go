package audit

import (
	"encoding/json"
	"math"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const missingAltListCap = 20

// analyzeSEO collects the raw SEO observations from the parsed document.
func analyzeSEO(page *FetchedPage) SEOAnalysis {
	doc := page.Doc
	seo := SEOAnalysis{
		StructuredDataTypes: []string{},
	}

	seo.Title = strings.TrimSpace(doc.Find("title").First().Text())
	seo.MetaDescription, _ = doc.Find("meta[name='description']").Attr("content")
	seo.MetaDescription = strings.TrimSpace(seo.MetaDescription)
	seo.MetaDescriptionLength = len(seo.MetaDescription)

	seo.HasCanonical = doc.Find("link[rel='canonical']").Length() > 0
	seo.HasOpenGraph = doc.Find("meta[property^='og:']").Length() > 0
	seo.HasTwitterCards = doc.Find("meta[name^='twitter:']").Length() > 0

	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		types := structuredDataTypes(s.Text())
		if len(types) > 0 {
			seo.HasStructuredData = true
			seo.StructuredDataTypes = append(seo.StructuredDataTypes, types...)
		}
	})

	seo.Language, _ = doc.Find("html").Attr("lang")
	seo.Viewport, _ = doc.Find("meta[name='viewport']").Attr("content")
	seo.RobotsMeta, _ = doc.Find("meta[name='robots']").Attr("content")

	seo.Images = analyzeImages(doc)
	seo.Links = analyzeLinks(doc, page.URL)
	return seo
}

// structuredDataTypes extracts @type values from one JSON-LD block. Both a
// single object and a top-level array are accepted; malformed JSON yields
// nothing rather than failing the audit.
func structuredDataTypes(raw string) []string {
	var types []string
	collect := func(node map[string]interface{}) {
		switch t := node["@type"].(type) {
		case string:
			types = append(types, t)
		case []interface{}:
			for _, v := range t {
				if s, ok := v.(string); ok {
					types = append(types, s)
				}
			}
		}
	}

	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		var nodes []map[string]interface{}
		if err := json.Unmarshal([]byte(trimmed), &nodes); err != nil {
			return nil
		}
		for _, n := range nodes {
			collect(n)
		}
		return types
	}

	var node map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &node); err != nil {
		return nil
	}
	collect(node)
	return types
}

func analyzeImages(doc *goquery.Document) ImageAnalysis {
	img := ImageAnalysis{MissingAltList: []string{}}
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		img.Total++
		if alt, exists := s.Attr("alt"); exists && strings.TrimSpace(alt) != "" {
			img.WithAlt++
			return
		}
		img.WithoutAlt++
		if src, ok := s.Attr("src"); ok && len(img.MissingAltList) < missingAltListCap {
			img.MissingAltList = append(img.MissingAltList, src)
		}
	})
	return img
}

func analyzeLinks(doc *goquery.Document, baseURL string) LinkAnalysis {
	links := LinkAnalysis{}
	base, err := url.Parse(baseURL)
	if err != nil {
		return links
	}
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || href == "#" || strings.HasPrefix(href, "javascript:") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
			return
		}
		if seen[href] {
			return
		}
		seen[href] = true

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Host == "" || strings.EqualFold(resolved.Host, base.Host) {
			links.Internal++
		} else {
			links.External++
		}
	})
	return links
}

// scoreSEO applies the fixed deduction table. Each missing element only
// deducts, so the score is monotone in the set of passing checks.
func scoreSEO(seo SEOAnalysis) int {
	score := 100

	if seo.Title == "" {
		score -= 20
	} else if len(seo.Title) < 30 || len(seo.Title) > 60 {
		score -= 5
	}

	if seo.MetaDescription == "" {
		score -= 20
	} else if seo.MetaDescriptionLength < 120 || seo.MetaDescriptionLength > 160 {
		score -= 5
	}

	if !seo.HasCanonical {
		score -= 10
	}
	if !seo.HasOpenGraph {
		score -= 5
	}
	if !seo.HasTwitterCards {
		score -= 5
	}
	if !seo.HasStructuredData {
		score -= 5
	}
	if seo.Language == "" {
		score -= 10
	}
	if seo.Viewport == "" {
		score -= 10
	}
	if seo.Images.Total > 0 {
		score -= int(math.Round(15 * float64(seo.Images.WithoutAlt) / float64(seo.Images.Total)))
	}

	return clampScore(score)
}

func scoreAccessibility(seo SEOAnalysis, h1Count int) int {
	score := 100

	if seo.Images.Total > 0 {
		score -= int(math.Round(40 * float64(seo.Images.WithoutAlt) / float64(seo.Images.Total)))
	}
	switch {
	case h1Count == 0:
		score -= 25
	case h1Count > 1:
		score -= 10
	}
	if seo.Language == "" {
		score -= 20
	}
	if seo.Viewport == "" {
		score -= 15
	}

	return clampScore(score)
}

// scorePerformance mirrors the payload/latency severity ladder: the bigger
// and slower the page, the deeper the deduction.
func scorePerformance(page *FetchedPage) int {
	score := 100

	sizeKB := float64(page.PageSize) / 1024.0
	switch {
	case sizeKB > 5120:
		score -= 40
	case sizeKB > 2048:
		score -= 30
	case sizeKB > 1024:
		score -= 20
	case sizeKB > 500:
		score -= 10
	}

	totalMs := page.TotalTime.Milliseconds()
	switch {
	case totalMs > 3000:
		score -= 40
	case totalMs > 2000:
		score -= 30
	case totalMs > 1500:
		score -= 20
	case totalMs > 1000:
		score -= 10
	}

	ttfbMs := page.TTFB.Milliseconds()
	switch {
	case ttfbMs > 1200:
		score -= 20
	case ttfbMs > 800:
		score -= 10
	}

	return clampScore(score)
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
