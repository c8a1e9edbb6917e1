// Package similarity scores how closely two short free-text phrases
// match, using a Ratcliff/Obershelp matching ratio over runes. It is
// the scoring core of corpus retrieval: robust to partial, reordered,
// and substring overlaps in short noisy maintenance phrases.
package similarity

import "strings"

// Ratio returns 2*M/(len(a)+len(b)) where M is the total length of all
// matching segments found by recursively taking the longest common
// contiguous run and descending into the unmatched remainders.
//
// Both inputs are case-folded before matching. The result is always in
// [0, 1]: 1.0 for identical non-empty strings, 0.0 if either string is
// empty or no runes match. Lengths are counted in runes so multi-byte
// scripts score the same as ASCII.
func Ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	ar := []rune(strings.ToLower(a))
	br := []rune(strings.ToLower(b))
	m := newMatcher(ar, br)
	return 2 * float64(m.matchedTotal()) / float64(len(ar)+len(br))
}

type matcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newMatcher(a, b []rune) *matcher {
	m := &matcher{a: a, b: b, b2j: make(map[rune][]int, len(b))}
	for j, r := range b {
		m.b2j[r] = append(m.b2j[r], j)
	}
	return m
}

type matchBlock struct {
	a, b, size int
}

// longestMatch finds the longest contiguous run common to a[alo:ahi]
// and b[blo:bhi]. Among runs of equal length the earliest in a (then
// in b) is kept; replacement requires a strictly longer run.
func (m *matcher) longestMatch(alo, ahi, blo, bhi int) matchBlock {
	best := matchBlock{a: alo, b: blo}
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > best.size {
				best = matchBlock{a: i - k + 1, b: j - k + 1, size: k}
			}
		}
		j2len = newj2len
	}
	return best
}

// matchedTotal sums the sizes of all matching blocks. The recursion on
// left and right remainders is unrolled onto an explicit stack.
func (m *matcher) matchedTotal() int {
	type span struct {
		alo, ahi, blo, bhi int
	}
	stack := []span{{0, len(m.a), 0, len(m.b)}}
	total := 0
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		blk := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if blk.size == 0 {
			continue
		}
		total += blk.size
		if s.alo < blk.a && s.blo < blk.b {
			stack = append(stack, span{s.alo, blk.a, s.blo, blk.b})
		}
		if blk.a+blk.size < s.ahi && blk.b+blk.size < s.bhi {
			stack = append(stack, span{blk.a + blk.size, s.ahi, blk.b + blk.size, s.bhi})
		}
	}
	return total
}
