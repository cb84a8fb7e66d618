package extract

import (
	"testing"
)

const resultCardHTML = `
<div class="result-card">
  <a href="/profile/123"><div class="covering-link"></div></a>
  <a href="/profile/123"><img alt=""></a>
  <a href="/profile/123">Sam Okafor</a>
  <div class="headline">Platform Engineer at Initech</div>
  <p>Lagos, Nigeria</p>
  <p>Current: Staff Engineer at Acme Corp</p>
  <p>Past: Globex Corporation</p>
</div>`

func TestCardSignals(t *testing.T) {
	doc := parseDoc(t, resultCardHTML)
	card := doc.Find(".result-card")

	loc, companies := CardSignals(card)
	if loc != "Lagos, Nigeria" {
		t.Errorf("location = %q", loc)
	}

	var current, former []string
	for _, sig := range companies {
		if sig.Current {
			current = append(current, sig.Name)
		} else {
			former = append(former, sig.Name)
		}
	}
	if len(current) != 1 || current[0] != "Acme Corp" {
		t.Errorf("current signals = %v, want [Acme Corp]", current)
	}
	if len(former) != 1 || former[0] != "Globex Corporation" {
		t.Errorf("former signals = %v, want [Globex Corporation]", former)
	}
}

func TestCardSignalsHeadlineEmployer(t *testing.T) {
	html := `
<div class="card">
  <a href="#">Dana Fox</a>
  <div class="top-card__headline">Data Scientist at Hooli</div>
</div>`
	doc := parseDoc(t, html)
	_, companies := CardSignals(doc.Find(".card"))
	if len(companies) != 1 || companies[0].Name != "Hooli" || !companies[0].Current {
		t.Errorf("companies = %+v, want current Hooli", companies)
	}
}

func TestCardSignalsFormerPrefix(t *testing.T) {
	html := `
<div class="card">
  <a href="#">Lee Chen</a>
  <div class="top-card__headline">Advisor | ex-Acme</div>
</div>`
	doc := parseDoc(t, html)
	_, companies := CardSignals(doc.Find(".card"))
	if len(companies) != 1 {
		t.Fatalf("companies = %+v", companies)
	}
	if companies[0].Current {
		t.Errorf("ex-prefixed employer must be former: %+v", companies[0])
	}
	if companies[0].Name != "Acme" {
		t.Errorf("name = %q, want Acme with prefix stripped", companies[0].Name)
	}
}

func TestNameAnchor(t *testing.T) {
	doc := parseDoc(t, resultCardHTML)
	card := doc.Find(".result-card")

	a := NameAnchor(card)
	if a == nil {
		t.Fatal("no anchor found")
	}
	if got := CardText(a); got != "Sam Okafor" {
		t.Errorf("anchor text = %q, want Sam Okafor", got)
	}
}

func TestNameAnchorSkipsWrapperLink(t *testing.T) {
	html := `
<div class="card">
  <a href="#">Jordan Reyes — Senior Engineer at Meta Platforms — Warsaw, Poland — Jan 2021 - Present — mutual connections</a>
</div>`
	doc := parseDoc(t, html)
	if a := NameAnchor(doc.Find(".card")); a != nil {
		t.Errorf("whole-card wrapper link must be skipped, got %q", CardText(a))
	}
}

func TestCardSignalsNilAndEmpty(t *testing.T) {
	if loc, cs := CardSignals(nil); loc != "" || cs != nil {
		t.Errorf("nil card: %q %v", loc, cs)
	}
	doc := parseDoc(t, `<div class="card"></div>`)
	if loc, cs := CardSignals(doc.Find(".card")); loc != "" || len(cs) != 0 {
		t.Errorf("empty card: %q %v", loc, cs)
	}
}
