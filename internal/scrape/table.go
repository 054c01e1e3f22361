package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gardonyia/basket/internal/models"
)

// Column labels a box score table is normalized to
const (
	ColTeam     = "team"
	ColPlayer   = "player"
	ColPoints   = "points"
	ColAssists  = "assists"
	ColRebounds = "rebounds"
)

type headerPattern struct {
	exact  bool
	needle string
}

// headerPatterns lists, per label, header texts in priority order.
// The first pattern that hits any column wins.
var headerPatterns = map[string][]headerPattern{
	ColPoints: {
		{true, "pts"}, {true, "pt"}, {true, "p"},
		{false, "points"}, {false, "pts"}, {false, "pont"},
	},
	ColAssists: {
		{true, "ast"}, {true, "as"}, {true, "a"},
		{false, "assist"}, {false, "assz"}, {false, "ast"},
	},
	ColRebounds: {
		{true, "reb"}, {true, "tr"}, {true, "tot"}, {true, "r"},
		{false, "total reb"}, {false, "rebounds"}, {false, "lepattan"}, {false, "reb"},
	},
	ColPlayer: {
		{true, "player"}, {true, "name"},
		{false, "player"}, {false, "játékos"}, {false, "jatekos"}, {false, "name"},
	},
	ColTeam: {
		{true, "team"}, {true, "tm"},
		{false, "team"}, {false, "csapat"},
	},
}

// partialHeaders are split columns that substring patterns must not take
// for the label. OREB holds "reb" but is not the rebound total.
var partialHeaders = map[string][]string{
	ColRebounds: {"oreb", "dreb", "off", "def"},
}

// NormalizeHeaders maps header cells to column labels using substring
// matching. Labels without a matching header are absent from the result.
func NormalizeHeaders(headers []string) map[string]int {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(CleanText(h))
	}

	cols := make(map[string]int)
	used := make(map[int]bool)
	for _, label := range []string{ColPoints, ColAssists, ColRebounds, ColPlayer, ColTeam} {
		for _, p := range headerPatterns[label] {
			idx := findHeader(lowered, p, used, partialHeaders[label])
			if idx >= 0 {
				cols[label] = idx
				used[idx] = true
				break
			}
		}
	}
	return cols
}

func findHeader(headers []string, p headerPattern, used map[int]bool, partial []string) int {
	for i, h := range headers {
		if used[i] || h == "" {
			continue
		}
		if p.exact && h == p.needle {
			return i
		}
		if !p.exact && strings.Contains(h, p.needle) && !containsAny(h, partial) {
			return i
		}
	}
	return -1
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// HasPointsColumn reports whether a header row looks like a box score
func HasPointsColumn(headers []string) bool {
	_, ok := NormalizeHeaders(headers)[ColPoints]
	return ok
}

// StatTables scrapes every table whose header row has a points-like column.
// Tables without a team column take their team from the caption or the
// closest preceding heading.
func StatTables(doc *goquery.Document) []models.StatRow {
	var rows []models.StatRow

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		headerRow, bodyRows := splitTable(table)
		if headerRow == nil {
			return
		}

		headers := cellTexts(headerRow)
		cols := NormalizeHeaders(headers)
		if _, ok := cols[ColPoints]; !ok {
			return
		}

		playerIdx, ok := cols[ColPlayer]
		if !ok {
			playerIdx = firstUnmapped(len(headers), cols)
		}
		teamName := tableTeam(table)

		bodyRows.Each(func(_ int, tr *goquery.Selection) {
			cells := cellTexts(tr)
			if len(cells) == 0 || playerIdx < 0 || playerIdx >= len(cells) {
				return
			}
			if isTotalsRow(cells[playerIdx]) {
				return
			}

			input := models.StatRowInput{
				Team:     teamName,
				Player:   cells[playerIdx],
				Points:   cellAt(cells, cols, ColPoints),
				Assists:  cellAt(cells, cols, ColAssists),
				Rebounds: cellAt(cells, cols, ColRebounds),
			}
			if idx, ok := cols[ColTeam]; ok && idx < len(cells) && cells[idx] != "" {
				input.Team = cells[idx]
			}

			if row, ok := input.ToStatRow(); ok {
				rows = append(rows, row)
			}
		})
	})

	return rows
}

// splitTable returns the header row and the data rows of a table
func splitTable(table *goquery.Selection) (*goquery.Selection, *goquery.Selection) {
	if head := table.Find("thead tr").Last(); head.Length() > 0 {
		return head, table.Find("tbody tr")
	}

	all := table.Find("tr")
	if all.Length() < 2 {
		return nil, nil
	}
	return all.First(), all.Slice(1, all.Length())
}

func cellTexts(tr *goquery.Selection) []string {
	var cells []string
	tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, CleanText(cell.Text()))
	})
	return cells
}

func cellAt(cells []string, cols map[string]int, label string) interface{} {
	idx, ok := cols[label]
	if !ok || idx >= len(cells) {
		return nil
	}
	return cells[idx]
}

func firstUnmapped(n int, cols map[string]int) int {
	mapped := make(map[int]bool, len(cols))
	for _, idx := range cols {
		mapped[idx] = true
	}
	for i := 0; i < n; i++ {
		if !mapped[i] {
			return i
		}
	}
	return -1
}

func isTotalsRow(player string) bool {
	p := strings.ToLower(player)
	return p == "" || p == "total" || p == "totals" || p == "team" || p == "összesen"
}

func tableTeam(table *goquery.Selection) string {
	if caption := CleanText(table.Find("caption").First().Text()); caption != "" {
		return caption
	}
	if heading := table.PrevAllFiltered("h1, h2, h3, h4").First(); heading.Length() > 0 {
		return CleanText(heading.Text())
	}
	return ""
}
