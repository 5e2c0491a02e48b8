package main

import (
	"fmt"
	"html"
	"net/http"
	"slices"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
)

type ActiveSearchSignals struct {
	Search string `json:"search"`
}

// Levenshtein calculates the Levenshtein distance between two strings.
func Levenshtein(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	n, m := len(r1), len(r2)
	if n > m {
		r1, r2 = r2, r1
		n, m = m, n
	}

	currentRow := make([]int, n+1)
	for i := 0; i <= n; i++ {
		currentRow[i] = i
	}

	for i := 1; i <= m; i++ {
		previousRow := currentRow
		currentRow = make([]int, n+1)
		currentRow[0] = i
		for j := 1; j <= n; j++ {
			add, del, change := previousRow[j]+1, currentRow[j-1]+1, previousRow[j-1]
			if r1[j-1] != r2[i-1] {
				change++
			}
			currentRow[j] = min(add, min(del, change))
		}
	}
	return currentRow[n]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// handleActiveSearch patches the employee panel with rows matching the
// search signal, scored by substring match then fuzzy distance.
func handleActiveSearch(w http.ResponseWriter, r *http.Request) {
	signals := &ActiveSearchSignals{}
	if err := datastar.ReadSignals(r, signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	query := strings.ToLower(strings.TrimSpace(signals.Search))

	type scored struct {
		EmployeeSummary
		Score int
	}

	storeMu.RLock()
	var results []scored
	for _, s := range summaries {
		if query == "" {
			results = append(results, scored{EmployeeSummary: s})
			continue
		}
		name := strings.ToLower(s.Name)

		score := 1000
		if strings.Contains(name, query) {
			score = 0
		} else if dist := Levenshtein(query, name); dist < 5 {
			score = dist
		}
		if score < 1000 {
			results = append(results, scored{EmployeeSummary: s, Score: score})
		}
	}
	storeMu.RUnlock()

	slices.SortFunc(results, func(a, b scored) int {
		return a.Score - b.Score
	})
	if len(results) > 15 {
		results = results[:15]
	}

	var sb strings.Builder
	sb.WriteString(`<div id="employee-results"><table>`)
	sb.WriteString(`<tr><th>Name</th><th>Early</th><th>Middle</th><th>Late</th><th>Worked</th></tr>`)
	for _, res := range results {
		sb.WriteString(fmt.Sprintf(
			`<tr><td class="name">%s</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td></tr>`,
			html.EscapeString(res.Name), res.Early, res.Middle, res.Late, res.Worked))
	}
	if len(results) == 0 {
		sb.WriteString(`<tr><td colspan="5">No results found</td></tr>`)
	}
	sb.WriteString(`</table></div>`)

	sse := datastar.NewSSE(w, r)
	sse.PatchElements(sb.String())
}
