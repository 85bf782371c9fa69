package pipeline

import (
	"github.com/vk/fusegrid/internal/errs"
)

// FilterOptions narrows a pipeline before running or projecting it. Every
// non-empty criterion must hold for an entity to be kept. A group is kept or
// dropped as a whole.
type FilterOptions struct {
	// Tags keeps entities carrying at least one of the tags. For a group any
	// member tag counts.
	Tags []string
	// Names keeps the named entities. A group member name selects its group.
	Names []string
	// FromNodes keeps the named entities and everything downstream of them.
	FromNodes []string
	// ToNodes keeps the named entities and everything upstream of them.
	ToNodes []string
}

func (o FilterOptions) empty() bool {
	return len(o.Tags) == 0 && len(o.Names) == 0 && len(o.FromNodes) == 0 && len(o.ToNodes) == 0
}

// Filter returns a new pipeline holding clones of the entities selected by
// opts, in their original order. Unknown names are a ConfigurationError.
func (p *Pipeline) Filter(opts FilterOptions) (*Pipeline, error) {
	if opts.empty() {
		return p.Clone(), nil
	}

	keep := make(map[string]bool, len(p.entities))
	for _, e := range p.entities {
		keep[e.Name()] = true
	}
	restrict := func(allowed map[string]bool) {
		for name := range keep {
			if !allowed[name] {
				keep[name] = false
			}
		}
	}

	if len(opts.Tags) > 0 {
		allowed := make(map[string]bool)
		for _, e := range p.entities {
			for _, tag := range opts.Tags {
				if e.HasTag(tag) {
					allowed[e.Name()] = true
					break
				}
			}
		}
		restrict(allowed)
	}

	if len(opts.Names) > 0 {
		selected, err := p.resolve(opts.Names)
		if err != nil {
			return nil, err
		}
		restrict(selected)
	}

	if len(opts.FromNodes) > 0 || len(opts.ToNodes) > 0 {
		g, err := p.Graph()
		if err != nil {
			return nil, err
		}
		if len(opts.FromNodes) > 0 {
			start, err := p.resolve(opts.FromNodes)
			if err != nil {
				return nil, err
			}
			reached, err := closure(start, g.Dependents)
			if err != nil {
				return nil, err
			}
			restrict(reached)
		}
		if len(opts.ToNodes) > 0 {
			start, err := p.resolve(opts.ToNodes)
			if err != nil {
				return nil, err
			}
			reached, err := closure(start, g.Dependencies)
			if err != nil {
				return nil, err
			}
			restrict(reached)
		}
	}

	var entities []Entity
	for _, e := range p.entities {
		if keep[e.Name()] {
			entities = append(entities, e.Clone())
		}
	}
	return New(entities...)
}

// resolve maps entity or member names to top-level entity names.
func (p *Pipeline) resolve(names []string) (map[string]bool, error) {
	owners := make(map[string]string)
	for _, e := range p.entities {
		for _, n := range e.NodeNames() {
			owners[n] = e.Name()
		}
		owners[e.Name()] = e.Name()
	}
	out := make(map[string]bool, len(names))
	var missing []string
	for _, n := range names {
		owner, ok := owners[n]
		if !ok {
			missing = append(missing, n)
			continue
		}
		out[owner] = true
	}
	if len(missing) > 0 {
		return nil, errs.Configf("pipeline does not contain %v", missing)
	}
	return out, nil
}

// closure expands start along next until no new vertex is found.
func closure(start map[string]bool, next func(string) ([]string, error)) (map[string]bool, error) {
	out := make(map[string]bool, len(start))
	var queue []string
	for name := range start {
		out[name] = true
		queue = append(queue, name)
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		neighbours, err := next(current)
		if err != nil {
			return nil, err
		}
		for _, n := range neighbours {
			if !out[n] {
				out[n] = true
				queue = append(queue, n)
			}
		}
	}
	return out, nil
}
