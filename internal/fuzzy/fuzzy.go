// Package fuzzy scores approximate string matches.
//
// Similarity is the Ratcliff/Obershelp "gestalt pattern matching" measure,
// computed over code points and reported as an integer percentage.
package fuzzy

import (
	"slices"
	"strings"
)

// Ratio returns the case-insensitive similarity of a and b in [0, 100].
func Ratio(a, b string) int {
	return int(ratio([]rune(strings.ToLower(a)), []rune(strings.ToLower(b))) * 100)
}

// PartialRatio returns the best Ratio of the shorter string against every
// window of the same length in the longer one.
func PartialRatio(a, b string) int {
	s1, s2 := []rune(strings.ToLower(a)), []rune(strings.ToLower(b))
	if len(s1) > len(s2) {
		s1, s2 = s2, s1
	}
	if len(s1) == 0 {
		return 0
	}
	best := 0
	for i := 0; i+len(s1) <= len(s2); i++ {
		if r := int(ratio(s1, s2[i:i+len(s1)]) * 100); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// Match is a scored choice.
type Match struct {
	Choice string `json:"choice"`
	Score  int    `json:"score"`
}

// Extract scores every choice against query with PartialRatio and returns
// the limit best ones, highest first. Equal scores keep the input order.
func Extract(query string, choices []string, limit int) []Match {
	if len(choices) == 0 || limit <= 0 {
		return nil
	}
	out := make([]Match, 0, len(choices))
	for _, c := range choices {
		out = append(out, Match{Choice: c, Score: PartialRatio(query, c)})
	}
	slices.SortStableFunc(out, func(x, y Match) int { return y.Score - x.Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	return 2 * float64(newMatcher(a, b).matches()) / float64(total)
}

// matcher finds the longest common blocks of a and b.
type matcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newMatcher(a, b []rune) *matcher {
	m := &matcher{a: a, b: b, b2j: make(map[rune][]int)}
	for j, r := range b {
		m.b2j[r] = append(m.b2j[r], j)
	}
	// Elements appearing in more than 1% of a long b are ignored as anchors.
	if n := len(b); n >= 200 {
		ntest := n/100 + 1
		for r, idx := range m.b2j {
			if len(idx) > ntest {
				delete(m.b2j, r)
			}
		}
	}
	return m
}

// longest returns the start in a, the start in b and the size of the longest
// matching block in a[alo:ahi] and b[blo:bhi]. The earliest block wins ties.
func (m *matcher) longest(alo, ahi, blo, bhi int) (int, int, int) {
	besti, bestj, bestsize := alo, blo, 0
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	for besti > alo && bestj > blo && m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi && m.a[besti+bestsize] == m.b[bestj+bestsize] {
		bestsize++
	}
	return besti, bestj, bestsize
}

// matches returns the number of elements in all matching blocks.
func (m *matcher) matches() int {
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	total := 0
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		i, j, k := m.longest(s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		total += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return total
}
