package scraper

import "github.com/rotisserie/eris"

// Registry maps scraper names to their implementations.
type Registry struct {
	scrapers map[string]Scraper
	order    []string // insertion order for deterministic iteration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		scrapers: make(map[string]Scraper),
	}
}

// Register adds a scraper. Registering a name twice replaces the earlier
// scraper but keeps its position.
func (r *Registry) Register(s Scraper) {
	name := s.Name()
	if _, exists := r.scrapers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.scrapers[name] = s
}

// Get returns a scraper by name.
func (r *Registry) Get(name string) (Scraper, error) {
	s, ok := r.scrapers[name]
	if !ok {
		return nil, eris.Errorf("scraper: unknown scraper %q", name)
	}
	return s, nil
}

// Select returns the named scrapers in the order given, or every scraper
// when names is empty. Duplicate names are collapsed.
func (r *Registry) Select(names []string) ([]Scraper, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	seen := make(map[string]bool, len(names))
	result := make([]Scraper, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		s, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}

// All returns all scrapers in registration order.
func (r *Registry) All() []Scraper {
	result := make([]Scraper, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.scrapers[name])
	}
	return result
}

// AllNames returns all registered scraper names in registration order.
func (r *Registry) AllNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
