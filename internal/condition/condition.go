package condition

import "strings"

// Property names recognized in a condition key.
const (
	PropWhen       = "when"
	PropLanguageID = "languageId"
)

// Condition is a parsed condition key. An empty field is not checked.
type Condition struct {
	When       string
	LanguageID string
}

// Context is the runtime state a condition is evaluated against.
type Context = Condition

// Parse parses a condition key such as "when:a;languageId:go".
// It returns nil, false when the key carries no recognized property.
func Parse(key string) (*Condition, bool) {
	if key == "" {
		return nil, false
	}

	var (
		c     Condition
		found bool
	)
	for _, prop := range strings.Split(key, ";") {
		name, value, _ := strings.Cut(prop, ":")
		switch name {
		case PropWhen:
			c.When = value
			found = true
		case PropLanguageID:
			c.LanguageID = value
			found = true
		}
	}
	if !found || c.IsEmpty() {
		return nil, false
	}
	return &c, true
}

// IsEmpty reports whether no property is set.
func (c *Condition) IsEmpty() bool {
	return c == nil || (c.When == "" && c.LanguageID == "")
}

// String renders the canonical condition key.
func (c *Condition) String() string {
	if c.IsEmpty() {
		return ""
	}
	parts := make([]string, 0, 2)
	if c.When != "" {
		parts = append(parts, PropWhen+":"+c.When)
	}
	if c.LanguageID != "" {
		parts = append(parts, PropLanguageID+":"+c.LanguageID)
	}
	return strings.Join(parts, ";")
}

// Match reports whether every property present in stored equals the same
// property in ctx. Both sides must be present; an empty stored condition
// counts as absent and never matches.
func Match(stored, ctx *Condition) bool {
	if stored.IsEmpty() || ctx == nil {
		return false
	}
	if stored.When != "" && stored.When != ctx.When {
		return false
	}
	if stored.LanguageID != "" && stored.LanguageID != ctx.LanguageID {
		return false
	}
	return true
}

// MatchKey parses key and matches it against ctx.
func MatchKey(key string, ctx *Condition) bool {
	stored, ok := Parse(key)
	if !ok {
		return false
	}
	return Match(stored, ctx)
}

// Equal reports structural equality. Two absent conditions are equal.
func Equal(a, b *Condition) bool {
	aEmpty, bEmpty := a.IsEmpty(), b.IsEmpty()
	if aEmpty || bEmpty {
		return aEmpty == bEmpty
	}
	return a.When == b.When && a.LanguageID == b.LanguageID
}

// KeyEqual reports whether two condition keys parse to equal conditions.
func KeyEqual(k1, k2 string) bool {
	c1, _ := Parse(k1)
	c2, _ := Parse(k2)
	return Equal(c1, c2)
}
