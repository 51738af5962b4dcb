package delim

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// numericRegex matches integers, decimals and scientific notation after
// cleanNumeric has removed currency and grouping characters.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// dominantShare is the fraction of sampled cells a pattern must cover.
// dominantAffix uses the same 90% as integer arithmetic.
const dominantShare = 0.9

// Votes tallies per-column header signals. Match counts header cells that
// look like the data below them, Differ counts those that do not.
type Votes struct {
	Match  int `json:"match"`
	Differ int `json:"differ"`
}

// Headers reports whether the tally indicates a header row. A header is
// assumed unless the header cells look like data more often than not; ties
// and an empty tally mean headers.
func (v Votes) Headers() bool {
	return v.Match <= v.Differ
}

func cleanNumeric(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	return strings.ReplaceAll(s, ",", "")
}

func isNumeric(s string) bool {
	return numericRegex.MatchString(cleanNumeric(s))
}

// VoteHeaders compares each header cell with the non-empty data cells in
// its column.
func VoteHeaders(header []string, rows [][]string) Votes {
	var v Votes
	for col, h := range header {
		var cells []string
		for _, row := range rows {
			if col < len(row) && row[col] != "" {
				cells = append(cells, row[col])
			}
		}
		if len(cells) == 0 {
			continue
		}
		v.add(voteNumeric(h, cells))
		v.add(voteAffix(h, cells))
		v.add(voteLength(h, cells))
		v.add(voteBinary(h, cells))
	}
	return v
}

// vote is +1 for match, -1 for differ and 0 when the signal does not apply.
type vote int

const (
	abstain vote = 0
	match   vote = 1
	differ  vote = -1
)

func (v *Votes) add(x vote) {
	switch x {
	case match:
		v.Match++
	case differ:
		v.Differ++
	}
}

func agree(ok bool) vote {
	if ok {
		return match
	}
	return differ
}

func voteNumeric(h string, cells []string) vote {
	n := 0
	for _, c := range cells {
		if isNumeric(c) {
			n++
		}
	}
	share := float64(n) / float64(len(cells))
	switch {
	case share >= dominantShare:
		return agree(isNumeric(h))
	case share <= 1-dominantShare && isNumeric(h):
		// A number above a text column.
		return differ
	}
	return abstain
}

func voteAffix(h string, cells []string) vote {
	if len(cells) < 2 {
		return abstain
	}
	runes := make([][]rune, len(cells))
	for i, c := range cells {
		runes[i] = []rune(c)
	}
	prefix := dominantAffix(runes, func(r []rune, n int) []rune { return r[:n] })
	suffix := dominantAffix(runes, func(r []rune, n int) []rune { return r[len(r)-n:] })
	if prefix == "" && suffix == "" {
		return abstain
	}
	ok := true
	if prefix != "" && !strings.HasPrefix(h, prefix) {
		ok = false
	}
	if suffix != "" && !strings.HasSuffix(h, suffix) {
		ok = false
	}
	return agree(ok)
}

// dominantAffix returns the longest prefix or suffix, as cut by part, shared
// by at least dominantShare of cells. If no affix of n runes is dominant
// then no longer one is either.
func dominantAffix(cells [][]rune, part func(r []rune, n int) []rune) string {
	need := (len(cells)*9 + 9) / 10
	best := ""
	for n := 1; ; n++ {
		counts := make(map[string]int)
		top, topCount := "", 0
		for _, c := range cells {
			if len(c) < n {
				continue
			}
			p := string(part(c, n))
			counts[p]++
			if counts[p] > topCount {
				top, topCount = p, counts[p]
			}
		}
		if topCount < need {
			return best
		}
		best = top
	}
}

func voteLength(h string, cells []string) vote {
	if len(cells) < 2 {
		return abstain
	}
	counts := make(map[int]int)
	top, topCount := 0, 0
	for _, c := range cells {
		n := utf8.RuneCountInString(c)
		counts[n]++
		if counts[n] > topCount {
			top, topCount = n, counts[n]
		}
	}
	if float64(topCount)/float64(len(cells)) < dominantShare {
		return abstain
	}
	return agree(utf8.RuneCountInString(h) == top)
}

func voteBinary(h string, cells []string) vote {
	if len(cells) < 3 {
		return abstain
	}
	distinct := make(map[string]struct{}, 2)
	for _, c := range cells {
		distinct[c] = struct{}{}
		if len(distinct) > 2 {
			return abstain
		}
	}
	if len(distinct) != 2 {
		return abstain
	}
	_, ok := distinct[h]
	return agree(ok)
}
