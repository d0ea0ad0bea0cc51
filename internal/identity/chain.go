package identity

// Strategy produces a value, or reports ok=false when it has none.
type Strategy func() (value string, ok bool)

// Chain evaluates strategies in order and returns the first value produced.
// When no strategy yields a value, def is returned.
func Chain(def string, strategies ...Strategy) string {
	for _, s := range strategies {
		if v, ok := s(); ok {
			return v
		}
	}
	return def
}
