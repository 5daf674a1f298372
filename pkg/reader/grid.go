package reader

import (
	"strings"

	"github.com/voidshard/tallyman/pkg/columns"
	"github.com/voidshard/tallyman/pkg/domain"
)

// headerScan is how far down a sheet we look for the header row; banks put
// account details above the table.
const headerScan = 25

// fromRows cleans a raw grid and splits it into preamble, header and data.
func fromRows(raw [][]string) *Source {
	rows := clean(raw)
	if len(rows) == 0 {
		return &Source{Table: domain.NewTable(nil, nil)}
	}

	h := headerRow(rows)

	lines := make([]string, 0, h+1)
	for _, r := range rows[:h+1] {
		lines = append(lines, strings.Join(r, ","))
	}

	return &Source{
		Table: domain.NewTable(rows[h], rows[h+1:]),
		Text:  strings.Join(lines, "\n"),
	}
}

// clean trims cells, drops rows with nothing in them, and drops columns that
// are empty in every remaining row.
func clean(raw [][]string) [][]string {
	width := 0
	rows := make([][]string, 0, len(raw))
	for _, r := range raw {
		row := make([]string, len(r))
		empty := true
		for i, c := range r {
			row[i] = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
			if row[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		if len(row) > width {
			width = len(row)
		}
		rows = append(rows, row)
	}

	used := make([]bool, width)
	for _, r := range rows {
		for i, c := range r {
			if c != "" {
				used[i] = true
			}
		}
	}

	for n, r := range rows {
		out := make([]string, 0, width)
		for i := 0; i < width; i++ {
			if !used[i] {
				continue
			}
			if i < len(r) {
				out = append(out, r[i])
			} else {
				out = append(out, "")
			}
		}
		rows[n] = out
	}
	return rows
}

// headerRow is the first row that looks like a table header: enough filled
// cells and something naming a date. Row 0 otherwise.
func headerRow(rows [][]string) int {
	for i := 0; i < len(rows) && i < headerScan; i++ {
		filled := 0
		dated := false
		for _, c := range rows[i] {
			if c == "" {
				continue
			}
			filled++
			if strings.Contains(columns.Normalize(c), "date") {
				dated = true
			}
		}
		if dated && filled >= domain.MinColumns {
			return i
		}
	}
	return 0
}
