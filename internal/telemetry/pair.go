package telemetry

// PairKey names the directed pair from → to.
func PairKey(from, to string) string {
	return from + "-" + to
}

// Pair is an ordered pair of entity ids.
type Pair struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Key returns the pair key for p.
func (p Pair) Key() string { return PairKey(p.From, p.To) }

// PairKeys converts pairs to keys, preserving order.
func PairKeys(pairs []Pair) []string {
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = p.Key()
	}
	return keys
}
