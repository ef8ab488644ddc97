package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// completeLanding has every ideal landing section, a single H1 and a clean
// metadata head.
const completeLanding = `<!DOCTYPE html>
<html lang="en">
<head>
<title>Acme - Grow your freelance business faster</title>
<meta name="description" content="Acme helps freelancers win more clients, send invoices in seconds and get paid faster, with zero accounting headaches and simple automated follow-ups.">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="robots" content="index,follow">
<link rel="canonical" href="https://acme.example/">
<meta property="og:title" content="Acme">
<meta name="twitter:card" content="summary_large_image">
<script type="application/ld+json">{"@type":"Organization","name":"Acme"}</script>
<style>body{background-color:#ffffff;color:#111111;font-family:Inter,sans-serif}.btn{border-radius:8px;background:#6c5ce7}</style>
</head>
<body>
<nav><a href="/pricing">Pricing</a><a href="/login">Login</a></nav>
<header class="hero"><h1>Win more clients. Get paid faster.</h1><p>Simple tools that save you hours every week.</p><a class="btn" href="/signup">Get started</a></header>
<section class="testimonials"><h2>Trusted by 2,000 freelancers</h2><p>Acme made invoicing easy. I save five hours a week.</p><img src="/avatars/a.png" alt="Customer photo"></section>
<section class="problem"><h2>Tired of chasing late payments?</h2><p>Manual invoicing wastes your evenings. Follow-ups are awkward. Cash flow suffers.</p></section>
<section class="solution"><h2>How it works</h2><p>Connect your clients. Send an invoice in one click. We handle the reminders.</p></section>
<section class="features"><h2>Everything you need</h2><ul><li>Invoices</li><li>Time tracking</li><li>Client portal</li></ul></section>
<section class="cta"><h2>Ready to grow?</h2><a class="btn" href="/signup">Start free trial</a></section>
<section class="faq"><h2>Frequently asked questions</h2><p>Is it free? Yes, to start.</p></section>
<footer><a href="/legal">Legal</a><a href="https://twitter.com/acme">Twitter</a></footer>
</body>
</html>`

// barePage has no title, no meta description, two H1 headings and no
// conversion action anywhere.
const barePage = `<!DOCTYPE html>
<html>
<head></head>
<body>
<section class="intro"><h1>Welcome</h1><p>Our offering includes modules, integrations and configurable settings for the enterprise paradigm with robust scalable synergy.</p></section>
<section class="about"><h1>About us</h1><p>We leverage a holistic turnkey platform architecture</p><img src="/team.jpg"></section>
</body>
</html>`

// mustPage builds a FetchedPage from raw HTML with fixed timing so scoring
// is reproducible in tests.
func mustPage(t *testing.T, html string) *FetchedPage {
	t.Helper()
	page := &FetchedPage{
		URL:        "https://example.com",
		HTML:       []byte(html),
		StatusCode: 200,
		PageSize:   len(html),
		TTFB:       120 * time.Millisecond,
		TotalTime:  480 * time.Millisecond,
	}
	require.NoError(t, page.parse())
	return page
}

func mustRef(t *testing.T) *Reference {
	t.Helper()
	ref, err := LoadReference()
	require.NoError(t, err)
	return ref
}
