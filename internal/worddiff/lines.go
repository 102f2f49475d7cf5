package worddiff

import "strings"

// LineChange is a line whose text differs positionally between two texts.
// Line is 1-based.
type LineChange struct {
	Line int    `json:"line"`
	Old  string `json:"old"`
	New  string `json:"new"`
}

// LineDiff compares two texts line by line without alignment. It is the
// coarse fallback used for the JSON summary.
func LineDiff(oldText, newText string) []LineChange {
	a := strings.Split(oldText, "\n")
	b := strings.Split(newText, "\n")
	var out []LineChange
	for i := 0; i < max(len(a), len(b)); i++ {
		var o, n string
		if i < len(a) {
			o = a[i]
		}
		if i < len(b) {
			n = b[i]
		}
		if o != n || (i < len(a)) != (i < len(b)) {
			out = append(out, LineChange{Line: i + 1, Old: o, New: n})
		}
	}
	return out
}
