// Package corpus holds the read-only knowledge bases the retriever
// searches: small ordered collections of field-named records, one
// corpus per retrieval tool. Corpora are loaded once through a Provider
// and never mutated, so a Store is safe to share across concurrent
// pipeline runs.
package corpus

// Kind identifies one of the named corpora.
type Kind string

const (
	KindDiagnostics Kind = "diagnostics"
	KindSOP         Kind = "sop"
	KindWorkorders  Kind = "workorders"
)

// Kinds lists every corpus the store loads, in a fixed order.
func Kinds() []Kind {
	return []Kind{KindDiagnostics, KindSOP, KindWorkorders}
}

// Record is an opaque field-name to value mapping. Field shape varies
// per corpus; a record missing a field simply contributes nothing for
// that field.
type Record map[string]string

// Field returns the named field's value, or "" when absent.
func (r Record) Field(name string) string {
	return r[name]
}

// Provider delivers the ordered records of a corpus. Load order must be
// stable and deterministic because it governs retrieval tie-breaks.
// A missing or absent corpus is an empty slice, not an error.
type Provider interface {
	Name() string
	Load(kind Kind) ([]Record, error)
}

// Store is the in-memory set of loaded corpora.
type Store struct {
	corpora map[Kind][]Record
}

// Load populates a Store from the provider, fetching every known kind.
func Load(p Provider) (*Store, error) {
	s := &Store{corpora: make(map[Kind][]Record, len(Kinds()))}
	for _, kind := range Kinds() {
		records, err := p.Load(kind)
		if err != nil {
			return nil, err
		}
		s.corpora[kind] = records
	}
	return s, nil
}

// Records returns the corpus records in load order. Unknown kinds and
// empty corpora both yield an empty slice.
func (s *Store) Records(kind Kind) []Record {
	if s == nil {
		return nil
	}
	return s.corpora[kind]
}

// Count returns the number of records loaded for a kind.
func (s *Store) Count(kind Kind) int {
	return len(s.Records(kind))
}

// StaticProvider serves fixed in-memory corpora. It backs tests and any
// caller that builds records itself instead of reading corpus files.
type StaticProvider struct {
	Corpora map[Kind][]Record
}

func (p *StaticProvider) Name() string {
	return "static"
}

func (p *StaticProvider) Load(kind Kind) ([]Record, error) {
	return p.Corpora[kind], nil
}
