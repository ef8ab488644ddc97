package audit

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var hexColorRe = regexp.MustCompile(`#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)

// analyzeStyle builds a coarse visual fingerprint from the page's CSS
// surface (style blocks and inline styles). It only needs to be good enough
// to steer the mockup generator toward the existing design.
func analyzeStyle(page *FetchedPage) *StyleAnalysis {
	doc := page.Doc

	var css strings.Builder
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		css.WriteString(s.Text())
		css.WriteByte('\n')
	})
	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("style"); ok {
			css.WriteString(v)
			css.WriteByte('\n')
		}
	})
	cssText := strings.ToLower(css.String())

	counts := make(map[string]int)
	for _, c := range hexColorRe.FindAllString(cssText, -1) {
		counts[normalizeHex(c)]++
	}
	if theme, ok := doc.Find("meta[name='theme-color']").Attr("content"); ok {
		if hexColorRe.MatchString(theme) {
			counts[normalizeHex(strings.ToLower(theme))] += 3
		}
	}

	colors := make([]string, 0, len(counts))
	for c := range counts {
		colors = append(colors, c)
	}
	sort.SliceStable(colors, func(i, j int) bool {
		if counts[colors[i]] != counts[colors[j]] {
			return counts[colors[i]] > counts[colors[j]]
		}
		return colors[i] < colors[j]
	})
	if len(colors) > 5 {
		colors = colors[:5]
	}

	style := &StyleAnalysis{
		DominantColors:  colors,
		BackgroundColor: "#ffffff",
		TextColor:       "#111111",
		HasGradients:    strings.Contains(cssText, "gradient"),
		RoundedCorners:  strings.Contains(cssText, "border-radius"),
	}
	if len(colors) > 0 {
		style.PrimaryColor = colors[0]
	}
	if len(colors) > 1 {
		style.SecondaryColor = colors[1]
	}

	if bg := extractDeclaration(cssText, "background-color"); bg != "" {
		style.BackgroundColor = bg
	} else if bg := extractDeclaration(cssText, "background"); bg != "" {
		style.BackgroundColor = bg
	}
	if fg := extractDeclaration(cssText, "color"); fg != "" {
		style.TextColor = fg
	}
	style.IsDarkMode = isDark(style.BackgroundColor)

	style.FontStyle = "sans-serif"
	if fontLooksSerif(cssText) {
		style.FontStyle = "serif"
	}

	switch {
	case style.IsDarkMode && style.HasGradients:
		style.StyleType = "bold"
	case style.FontStyle == "serif":
		style.StyleType = "classic"
	case len(colors) <= 2 && !style.HasGradients:
		style.StyleType = "minimal"
	default:
		style.StyleType = "modern"
	}

	return style
}

// extractDeclaration returns the first hex value assigned to the given CSS
// property, or "".
func extractDeclaration(cssText, prop string) string {
	idx := strings.Index(cssText, prop+":")
	for idx >= 0 {
		rest := cssText[idx+len(prop)+1:]
		end := strings.IndexAny(rest, ";}")
		if end < 0 {
			end = len(rest)
		}
		if m := hexColorRe.FindString(rest[:end]); m != "" {
			return normalizeHex(m)
		}
		next := strings.Index(rest, prop+":")
		if next < 0 {
			return ""
		}
		idx = idx + len(prop) + 1 + next
	}
	return ""
}

func normalizeHex(c string) string {
	c = strings.ToLower(c)
	if len(c) == 4 { // #abc -> #aabbcc
		return "#" + strings.Repeat(string(c[1]), 2) +
			strings.Repeat(string(c[2]), 2) +
			strings.Repeat(string(c[3]), 2)
	}
	return c
}

// isDark uses relative luminance of the background color.
func isDark(hex string) bool {
	if len(hex) != 7 {
		return false
	}
	r, err1 := strconv.ParseInt(hex[1:3], 16, 0)
	g, err2 := strconv.ParseInt(hex[3:5], 16, 0)
	b, err3 := strconv.ParseInt(hex[5:7], 16, 0)
	if err1 != nil || err2 != nil || err3 != nil {
		return false
	}
	luminance := 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
	return luminance < 128
}

func fontLooksSerif(cssText string) bool {
	idx := strings.Index(cssText, "font-family")
	if idx < 0 {
		return false
	}
	rest := cssText[idx:]
	end := strings.IndexAny(rest, ";}")
	if end < 0 {
		end = len(rest)
	}
	family := rest[:end]
	if strings.Contains(family, "sans-serif") {
		return false
	}
	for _, f := range []string{"serif", "georgia", "times", "garamond", "playfair"} {
		if strings.Contains(family, f) {
			return true
		}
	}
	return false
}
