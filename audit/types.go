package audit

import "time"

// PageType selects which ideal-section checklist a page is audited against.
type PageType string

const (
	PageTypeLanding  PageType = "landing"
	PageTypeHomepage PageType = "homepage"
	PageTypeProduct  PageType = "product"
)

// ValidPageType reports whether s is one of the supported page types.
func ValidPageType(s string) bool {
	switch PageType(s) {
	case PageTypeLanding, PageTypeHomepage, PageTypeProduct:
		return true
	}
	return false
}

// SectionType is the closed set of landing-page section categories the
// structure analyzer can classify.
type SectionType string

const (
	SectionNavigation SectionType = "navigation"
	SectionHero       SectionType = "hero"
	SectionProof      SectionType = "proof"
	SectionProblem    SectionType = "problem"
	SectionSolution   SectionType = "solution"
	SectionFeatures   SectionType = "features"
	SectionCTA        SectionType = "cta"
	SectionPricing    SectionType = "pricing"
	SectionFAQ        SectionType = "faq"
	SectionFooter     SectionType = "footer"
	SectionUnknown    SectionType = "unknown"
)

// sectionOrder is the canonical top-to-bottom ordering used when emitting
// one DetectedSection entry per type.
var sectionOrder = []SectionType{
	SectionNavigation,
	SectionHero,
	SectionProof,
	SectionProblem,
	SectionSolution,
	SectionFeatures,
	SectionCTA,
	SectionPricing,
	SectionFAQ,
	SectionFooter,
}

// Importance tiers for ideal sections.
type Importance string

const (
	ImportanceCritical  Importance = "critical"
	ImportanceImportant Importance = "important"
	ImportanceOptional  Importance = "optional"
)

// Priority tiers for recommendations.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// AuditResult is the root entity returned by the pipeline and persisted to
// the cache.
type AuditResult struct {
	URL              string            `json:"url"`
	PageType         PageType          `json:"pageType"`
	GlobalScore      int               `json:"globalScore"`
	Tier             string            `json:"tier"`
	AnalyzedAt       time.Time         `json:"analyzedAt"`
	FromCache        bool              `json:"fromCache"`
	CachedUntil      *time.Time        `json:"cachedUntil,omitempty"`
	Technical        TechnicalScores   `json:"technical"`
	SEO              SEOAnalysis       `json:"seo"`
	Structure        StructureAnalysis `json:"structure"`
	Message          MessageAnalysis   `json:"message"`
	DetectedSections []DetectedSection `json:"detectedSections"`
	IdealSections    []IdealSection    `json:"idealSections"`
	Recommendations  []Recommendation  `json:"recommendations"`
	Screenshots      *Screenshots      `json:"screenshots,omitempty"`
	StyleAnalysis    *StyleAnalysis    `json:"styleAnalysis,omitempty"`
	JSRendered       bool              `json:"jsRendered"`
}

// TechnicalScores groups the three technical sub-scores.
type TechnicalScores struct {
	Performance   int `json:"performance"`
	SEO           int `json:"seo"`
	Accessibility int `json:"accessibility"`
}

// SEOAnalysis holds the raw observations behind the seo sub-score.
type SEOAnalysis struct {
	Title                 string        `json:"title"`
	MetaDescription       string        `json:"metaDescription"`
	MetaDescriptionLength int           `json:"metaDescriptionLength"`
	HasCanonical          bool          `json:"hasCanonical"`
	HasOpenGraph          bool          `json:"hasOpenGraph"`
	HasTwitterCards       bool          `json:"hasTwitterCards"`
	HasStructuredData     bool          `json:"hasStructuredData"`
	StructuredDataTypes   []string      `json:"structuredDataTypes"`
	Language              string        `json:"language"`
	Viewport              string        `json:"viewport"`
	RobotsMeta            string        `json:"robotsMeta"`
	Images                ImageAnalysis `json:"images"`
	Links                 LinkAnalysis  `json:"links"`
}

type ImageAnalysis struct {
	Total          int      `json:"total"`
	WithAlt        int      `json:"withAlt"`
	WithoutAlt     int      `json:"withoutAlt"`
	MissingAltList []string `json:"missingAltList"`
}

type LinkAnalysis struct {
	Internal int `json:"internal"`
	External int `json:"external"`
}

// StructureAnalysis summarizes section detection for the structure score.
type StructureAnalysis struct {
	StructureScore   int      `json:"structureScore"`
	HasH1            bool     `json:"hasH1"`
	H1Count          int      `json:"h1Count"`
	DetectedSections []string `json:"detectedSections"`
	MissingSections  []string `json:"missingSections"`
}

// MessageAnalysis holds the lexical heuristics behind the message score.
type MessageAnalysis struct {
	MessageScore      int      `json:"messageScore"`
	BenefitWordCount  int      `json:"benefitWordCount"`
	FeatureWordCount  int      `json:"featureWordCount"`
	AvgSentenceLength float64  `json:"avgSentenceLength"`
	JargonWords       []string `json:"jargonWords"`
	Issues            []string `json:"issues"`
}

// DetectedSection is one classified region of the audited page. Exactly one
// entry exists per section type in an audit.
type DetectedSection struct {
	ID       string           `json:"id"`
	Type     SectionType      `json:"type"`
	Name     string           `json:"name"`
	Detected bool             `json:"detected"`
	Position *SectionPosition `json:"position,omitempty"`
}

// SectionPosition approximates where a section sits on the page, as
// percentages of total page height.
type SectionPosition struct {
	Top    int `json:"top"`
	Height int `json:"height"`
}

// IdealSection is one entry of the per-page-type reference checklist.
type IdealSection struct {
	ID            string      `json:"id" yaml:"id"`
	Type          SectionType `json:"type" yaml:"type"`
	Name          string      `json:"name" yaml:"name"`
	Description   string      `json:"description" yaml:"description"`
	Importance    Importance  `json:"importance" yaml:"importance"`
	IdealPosition int         `json:"idealPosition" yaml:"idealPosition"`
}

// Recommendation is a single actionable finding. Text is a translation key
// resolved client-side.
type Recommendation struct {
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
}

// Screenshots carries the two base64 PNG captures from the render service.
type Screenshots struct {
	Viewport   string    `json:"viewport"`
	FullPage   string    `json:"fullPage"`
	CapturedAt time.Time `json:"capturedAt"`
}

// StyleAnalysis is a coarse visual fingerprint of the page, fed to the
// mockup generator so generated sections match the existing design.
type StyleAnalysis struct {
	DominantColors  []string `json:"dominantColors"`
	PrimaryColor    string   `json:"primaryColor"`
	SecondaryColor  string   `json:"secondaryColor"`
	BackgroundColor string   `json:"backgroundColor"`
	TextColor       string   `json:"textColor"`
	IsDarkMode      bool     `json:"isDarkMode"`
	StyleType       string   `json:"styleType"`
	FontStyle       string   `json:"fontStyle"`
	HasGradients    bool     `json:"hasGradients"`
	RoundedCorners  bool     `json:"roundedCorners"`
}
