// Package worddiff computes word-level edit scripts between two token
// sequences and turns them into highlight sets for rendering.
package worddiff

import "strings"

// OpKind classifies an opcode.
type OpKind int

const (
	Equal OpKind = iota
	Insert
	Delete
	Replace
)

func (k OpKind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Replace:
		return "replace"
	default:
		return "unknown"
	}
}

// Opcode maps old[OldStart:OldEnd] to new[NewStart:NewEnd].
type Opcode struct {
	Kind     OpKind
	OldStart int
	OldEnd   int
	NewStart int
	NewEnd   int
}

// Tokenize splits text on Unicode whitespace.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// Diff returns opcodes that partition both sequences contiguously. Two
// empty inputs produce no opcodes; one empty side produces a single
// insert or delete.
func Diff(oldTokens, newTokens []string) []Opcode {
	n, m := len(oldTokens), len(newTokens)
	switch {
	case n == 0 && m == 0:
		return nil
	case n == 0:
		return []Opcode{{Kind: Insert, NewEnd: m}}
	case m == 0:
		return []Opcode{{Kind: Delete, OldEnd: n}}
	}

	prefix := 0
	for prefix < n && prefix < m && oldTokens[prefix] == newTokens[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < n-prefix && suffix < m-prefix && oldTokens[n-1-suffix] == newTokens[m-1-suffix] {
		suffix++
	}

	edits := myers(oldTokens[prefix:n-suffix], newTokens[prefix:m-suffix])

	b := opcodeBuilder{}
	b.add(Equal, prefix, prefix)
	for _, e := range edits {
		switch e {
		case editEqual:
			b.add(Equal, 1, 1)
		case editDelete:
			b.add(Delete, 1, 0)
		case editInsert:
			b.add(Insert, 0, 1)
		}
	}
	b.add(Equal, suffix, suffix)
	return b.ops
}

type edit byte

const (
	editEqual edit = iota
	editDelete
	editInsert
)

// myers returns the shortest edit script turning a into b, one entry per
// consumed token.
func myers(a, b []string) []edit {
	n, m := len(a), len(b)
	if n == 0 && m == 0 {
		return nil
	}
	maxD := n + m
	off := maxD + 1
	v := make([]int, 2*maxD+3)
	// trace[d] holds v[-d-1 .. d+1] as it stood before round d.
	var trace [][]int

	for d := 0; d <= maxD; d++ {
		snap := make([]int, 2*d+3)
		copy(snap, v[off-d-1:off+d+2])
		trace = append(trace, snap)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[off+k-1] < v[off+k+1]) {
				x = v[off+k+1]
			} else {
				x = v[off+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[off+k] = x
			if x >= n && y >= m {
				return backtrack(trace, n, m)
			}
		}
	}
	return nil
}

func backtrack(trace [][]int, n, m int) []edit {
	var out []edit
	x, y := n, m
	for d := len(trace) - 1; d >= 0; d-- {
		v := trace[d]
		at := func(k int) int { return v[k+d+1] }
		k := x - y

		var prevK int
		if k == -d || (k != d && at(k-1) < at(k+1)) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := at(prevK)
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			out = append(out, editEqual)
			x--
			y--
		}
		if d > 0 {
			if x == prevX {
				out = append(out, editInsert)
			} else {
				out = append(out, editDelete)
			}
		}
		x, y = prevX, prevY
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// opcodeBuilder merges unit steps into maximal opcodes. Adjacent deletes
// and inserts collapse into one replace.
type opcodeBuilder struct {
	ops    []Opcode
	oi, ni int
}

func (b *opcodeBuilder) add(kind OpKind, dOld, dNew int) {
	if dOld == 0 && dNew == 0 {
		return
	}
	if len(b.ops) > 0 {
		last := &b.ops[len(b.ops)-1]
		switch {
		case last.Kind == kind:
			last.OldEnd += dOld
			last.NewEnd += dNew
			b.oi += dOld
			b.ni += dNew
			return
		case kind != Equal && last.Kind != Equal:
			last.Kind = Replace
			last.OldEnd += dOld
			last.NewEnd += dNew
			b.oi += dOld
			b.ni += dNew
			return
		}
	}
	b.ops = append(b.ops, Opcode{
		Kind:     kind,
		OldStart: b.oi,
		OldEnd:   b.oi + dOld,
		NewStart: b.ni,
		NewEnd:   b.ni + dNew,
	})
	b.oi += dOld
	b.ni += dNew
}
