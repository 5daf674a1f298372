package reader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"strings"
)

var delimiters = []rune{',', ';', '\t', '|'}

// sniff picks the candidate delimiter seen most often in the first lines.
// Ties go to the earlier candidate, so plain files stay comma separated.
func sniff(data []byte) rune {
	counts := make([]int, len(delimiters))

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 0; n < 20 && sc.Scan(); n++ {
		line := sc.Text()
		for i, d := range delimiters {
			counts[i] += strings.Count(line, string(d))
		}
	}

	best := 0
	for i := range counts {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return delimiters[best]
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniff(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r.ReadAll()
}
