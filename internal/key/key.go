package key

import (
	"regexp"
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/text/width"
)

// Visible replacements for whitespace keys.
const (
	SpaceSymbol = "␣"
	TabSymbol   = "↹"
)

// fullWidthSpace pads full-width labels so columns stay aligned.
const fullWidthSpace = "　"

// Category groups keys for sorting.
type Category int

const (
	// CategorySingle is a key made of exactly one grapheme.
	CategorySingle Category = iota
	// CategoryFunction is a function key such as F1 or F12.
	CategoryFunction
	// CategoryOther is any multi-character key that is not a combo.
	CategoryOther
	// CategoryCombo is a modifier combo such as C-v.
	CategoryCombo
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategorySingle:
		return "single"
	case CategoryFunction:
		return "function"
	case CategoryOther:
		return "other"
	case CategoryCombo:
		return "combo"
	default:
		return "unknown"
	}
}

var (
	functionKeyPattern = regexp.MustCompile(`^F([1-9]|1[0-9]|2[0-4])$`)
	comboPattern       = regexp.MustCompile(`.+-.+`)
)

// Classify returns the sort category of k.
func Classify(k string) Category {
	switch {
	case uniseg.GraphemeClusterCount(k) == 1:
		return CategorySingle
	case functionKeyPattern.MatchString(k):
		return CategoryFunction
	case comboPattern.MatchString(k):
		return CategoryCombo
	default:
		return CategoryOther
	}
}

// Len returns the number of graphemes in k.
func Len(k string) int {
	return uniseg.GraphemeClusterCount(k)
}

// Display replaces whitespace characters with visible symbols.
func Display(k string) string {
	if !strings.ContainsAny(k, " \t") {
		return k
	}
	var b strings.Builder
	for _, r := range k {
		switch r {
		case ' ':
			b.WriteString(SpaceSymbol)
		case '\t':
			b.WriteString(TabSymbol)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FullWidth renders a single printable ASCII key in its full-width form
// and replaces whitespace like Display. Longer keys are left as they are
// apart from whitespace.
func FullWidth(k string) string {
	if len(k) == 1 && k[0] >= '!' && k[0] <= '~' {
		return width.Widen.String(k)
	}
	return Display(k)
}

// PadFullWidth renders k with FullWidth and pads it to n graphemes with
// full-width spaces.
func PadFullWidth(k string, n int) string {
	s := FullWidth(k)
	if pad := n - Len(k); pad > 0 {
		s += strings.Repeat(fullWidthSpace, pad)
	}
	return s
}

// Path renders a sequence of keys the way error and status messages show
// them: each key displayed and joined with a space.
func Path(keys []string) string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = Display(k)
	}
	return strings.Join(out, " ")
}
