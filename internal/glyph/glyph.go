// Package glyph maps color names to the emoji printed in every response.
package glyph

// Unknown is returned for any name outside the enumeration.
const Unknown = "❓"

// DefaultColor is used when no color argument is given.
const DefaultColor = "blue"

var table = []struct {
	name  string
	glyph string
}{
	{"red", "🔴"},
	{"orange", "🟠"},
	{"yellow", "🟡"},
	{"green", "🟢"},
	{"blue", "🔵"},
	{"purple", "🟣"},
	{"brown", "🟤"},
	{"black", "⚫"},
	{"white", "⚪"},
}

var byName = func() map[string]string {
	m := make(map[string]string, len(table))
	for _, e := range table {
		m[e.name] = e.glyph
	}
	return m
}()

// For returns the glyph for name. Matching is exact and case-sensitive;
// unrecognized names yield Unknown.
func For(name string) string {
	if g, ok := byName[name]; ok {
		return g
	}
	return Unknown
}

// Known reports whether name is one of the recognized colors.
func Known(name string) bool {
	_, ok := byName[name]
	return ok
}

// Names returns the recognized color names in enumeration order.
func Names() []string {
	names := make([]string, len(table))
	for i, e := range table {
		names[i] = e.name
	}
	return names
}
