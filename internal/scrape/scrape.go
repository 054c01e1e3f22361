// Package scrape holds the goquery heuristics shared by the HTML sources:
// anchor extraction, "home - away" splitting and box score table discovery.
package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Anchor is a hyperlink with its visible text
type Anchor struct {
	Href string
	Text string
	// Siblings holds the text of the other cells of the link's table row,
	// or the text of the list item around the link, one entry per node
	Siblings []string
	// Context is Siblings joined with single spaces
	Context string
}

var spaceRegex = regexp.MustCompile(`\s+`)

// CleanText collapses runs of whitespace and trims the result
func CleanText(s string) string {
	return strings.TrimSpace(spaceRegex.ReplaceAllString(s, " "))
}

// Anchors returns every <a> element in document order
func Anchors(doc *goquery.Document) []Anchor {
	var anchors []Anchor
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		anchor := Anchor{
			Href: strings.TrimSpace(s.AttrOr("href", "")),
			Text: CleanText(s.Text()),
		}
		anchor.Siblings = siblingTexts(s)
		anchor.Context = strings.Join(anchor.Siblings, " ")
		anchors = append(anchors, anchor)
	})
	return anchors
}

// siblingTexts collects the text around a link without the link itself.
// Inside a table row that is every other cell; inside a list item it is
// every child node that does not hold the link.
func siblingTexts(a *goquery.Selection) []string {
	var parts []string
	add := func(n *goquery.Selection) {
		if text := CleanText(n.Text()); text != "" {
			parts = append(parts, text)
		}
	}

	if cell := a.Closest("td, th"); cell.Length() > 0 {
		cell.Closest("tr").Children().Filter("td, th").Each(func(_ int, c *goquery.Selection) {
			if !c.IsSelection(cell) {
				add(c)
			}
		})
		return parts
	}

	if item := a.Closest("li"); item.Length() > 0 {
		item.Contents().Each(func(_ int, c *goquery.Selection) {
			if c.Is("a") || c.Find("a").Length() > 0 {
				return
			}
			add(c)
		})
	}
	return parts
}

var pairRegex = regexp.MustCompile(`^(.+?)\s+[-–—]\s+(.+)$`)

// SplitPair splits "home – away" text on a spaced hyphen, en dash or em dash
func SplitPair(text string) (home, away string, ok bool) {
	m := pairRegex.FindStringSubmatch(CleanText(text))
	if m == nil {
		return "", "", false
	}
	home = strings.TrimSpace(m[1])
	away = strings.TrimSpace(m[2])
	return home, away, home != "" && away != ""
}

// SplitFirstDash splits on the first "-" regardless of spacing
func SplitFirstDash(text string) (home, away string, ok bool) {
	parts := strings.SplitN(text, "-", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	home = strings.TrimSpace(parts[0])
	away = strings.TrimSpace(parts[1])
	return home, away, home != "" && away != ""
}

// ContainsDigit reports whether s contains an ASCII digit
func ContainsDigit(s string) bool {
	return strings.IndexAny(s, "0123456789") >= 0
}
