package audit

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// Message issue keys, resolved to prose client-side.
const (
	issueSentencesTooLong    = "sentences_too_long"
	issueJargonHeavy         = "jargon_heavy"
	issueNoBenefitLanguage   = "no_benefit_language"
	issueFeatureOrientedCopy = "feature_oriented_copy"
	issueNotEnoughCopy       = "not_enough_copy"
)

const jargonDeductionCap = 25

// analyzeMessage runs the lexical heuristics over the page's visible text.
func analyzeMessage(page *FetchedPage, ref *Reference) MessageAnalysis {
	text := visibleText(page.Doc)
	words := tokenizeWords(text)
	sentences := countSentences(text)

	msg := MessageAnalysis{
		JargonWords: []string{},
		Issues:      []string{},
	}

	jargonSeen := make(map[string]bool)
	for _, w := range words {
		if _, ok := ref.benefitSet[w]; ok {
			msg.BenefitWordCount++
		}
		if _, ok := ref.featureSet[w]; ok {
			msg.FeatureWordCount++
		}
		if _, ok := ref.jargonSet[w]; ok && !jargonSeen[w] {
			jargonSeen[w] = true
			msg.JargonWords = append(msg.JargonWords, w)
		}
	}

	// No terminator at all means the whole text is one sentence.
	if sentences == 0 {
		sentences = 1
	}
	msg.AvgSentenceLength = float64(len(words)) / float64(sentences)

	score := 100

	switch {
	case msg.AvgSentenceLength > 25:
		score -= 25
		msg.Issues = append(msg.Issues, issueSentencesTooLong)
	case msg.AvgSentenceLength > 20:
		score -= 15
		msg.Issues = append(msg.Issues, issueSentencesTooLong)
	case msg.AvgSentenceLength > 15:
		score -= 5
	}

	if n := len(msg.JargonWords); n > 0 {
		deduction := 5 * n
		if deduction > jargonDeductionCap {
			deduction = jargonDeductionCap
		}
		score -= deduction
		msg.Issues = append(msg.Issues, issueJargonHeavy)
	}

	if msg.BenefitWordCount == 0 {
		score -= 25
		msg.Issues = append(msg.Issues, issueNoBenefitLanguage)
	} else {
		ratio := float64(msg.BenefitWordCount) / float64(msg.BenefitWordCount+msg.FeatureWordCount)
		switch {
		case ratio < 1.0/3.0:
			score -= 20
			msg.Issues = append(msg.Issues, issueFeatureOrientedCopy)
		case ratio < 0.5:
			score -= 10
			msg.Issues = append(msg.Issues, issueFeatureOrientedCopy)
		}
	}

	if len(words) < 50 {
		score -= 10
		msg.Issues = append(msg.Issues, issueNotEnoughCopy)
	}

	msg.MessageScore = clampScore(score)
	return msg
}

// visibleText extracts the body text a visitor actually reads, dropping
// script, style and hidden metadata nodes.
func visibleText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	return strings.Join(strings.Fields(body.Text()), " ")
}

// tokenizeWords lower-cases and strips surrounding punctuation so wordlist
// matching is accent- and case-stable.
func tokenizeWords(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-' && r != '\''
		})
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// countSentences counts terminator runs: "Wait... what?!" is two sentences.
func countSentences(text string) int {
	count := 0
	inRun := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			if !inRun {
				count++
				inRun = true
			}
		default:
			inRun = false
		}
	}
	return count
}
