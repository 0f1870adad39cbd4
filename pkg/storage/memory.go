package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// MemoryProvider is an in-memory StorageProvider with deterministic
// iteration order (creation order for relations, insertion order for
// entities). It backs tests and the CLI demo; it is not durable.
type MemoryProvider struct {
	mu sync.RWMutex

	entities    map[string]*types.Entity
	entityOrder []string

	relations []*types.Relation // creation order
	byKey     map[string]int    // relation key -> index into relations

	entityHistory   map[string][]*types.Entity
	relationHistory map[string][]*types.Relation

	now func() time.Time
}

// NewMemoryProvider returns an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		entities:        make(map[string]*types.Entity),
		byKey:           make(map[string]int),
		entityHistory:   make(map[string][]*types.Entity),
		relationHistory: make(map[string][]*types.Relation),
		now:             time.Now,
	}
}

// WithNow overrides the provider clock, for tests.
func (p *MemoryProvider) WithNow(now func() time.Time) *MemoryProvider {
	p.now = now
	return p
}

// Capabilities reports temporal support; decayed views and semantic search
// stay with the decay model and vector store respectively.
func (p *MemoryProvider) Capabilities() Capabilities { return CapTemporal }

func (p *MemoryProvider) Close(ctx context.Context) error { return nil }

func copyEntity(e *types.Entity) *types.Entity {
	out := *e
	out.Observations = append([]string(nil), e.Observations...)
	return &out
}

func copyRelation(r *types.Relation) *types.Relation {
	out := *r
	return &out
}

func (p *MemoryProvider) GetEntity(ctx context.Context, name string) (*types.Entity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.entities[name]
	if !ok {
		return nil, &types.NotFoundError{Entity: name}
	}
	return copyEntity(e), nil
}

func (p *MemoryProvider) OpenEntities(ctx context.Context, names []string) ([]*types.Entity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*types.Entity, 0, len(names))
	for _, name := range names {
		if e, ok := p.entities[name]; ok {
			out = append(out, copyEntity(e))
		}
	}
	return out, nil
}

func (p *MemoryProvider) CreateEntities(ctx context.Context, entities []*types.Entity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	for _, e := range entities {
		if err := e.Validate(); err != nil {
			return err
		}
		stored := copyEntity(e)
		if prev, ok := p.entities[e.Name]; ok {
			stored.CreatedAt = prev.CreatedAt
			stored.UpdatedAt = now
			stored.Version = prev.Version + 1
		} else {
			if stored.CreatedAt.IsZero() {
				stored.CreatedAt = now
			}
			if stored.Version == 0 {
				stored.Version = 1
			}
			p.entityOrder = append(p.entityOrder, e.Name)
		}
		p.entities[e.Name] = stored
		p.entityHistory[e.Name] = append(p.entityHistory[e.Name], copyEntity(stored))
	}
	return nil
}

func (p *MemoryProvider) DeleteEntities(ctx context.Context, names []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	doomed := make(map[string]bool, len(names))
	for _, name := range names {
		doomed[name] = true
		delete(p.entities, name)
	}
	order := p.entityOrder[:0]
	for _, name := range p.entityOrder {
		if !doomed[name] {
			order = append(order, name)
		}
	}
	p.entityOrder = order

	// Relations referencing a deleted entity go with it.
	kept := p.relations[:0]
	p.byKey = make(map[string]int)
	for _, r := range p.relations {
		if doomed[r.From] || doomed[r.To] {
			continue
		}
		p.byKey[r.Key()] = len(kept)
		kept = append(kept, r)
	}
	p.relations = kept
	return nil
}

func (p *MemoryProvider) DeleteObservations(ctx context.Context, name string, observations []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entities[name]
	if !ok {
		return &types.NotFoundError{Entity: name}
	}
	doomed := make(map[string]bool, len(observations))
	for _, o := range observations {
		doomed[o] = true
	}
	kept := e.Observations[:0]
	for _, o := range e.Observations {
		if !doomed[o] {
			kept = append(kept, o)
		}
	}
	e.Observations = kept
	e.UpdatedAt = p.now()
	e.Version++
	p.entityHistory[name] = append(p.entityHistory[name], copyEntity(e))
	return nil
}

func (p *MemoryProvider) GetRelation(ctx context.Context, from, to, relationType string) (*types.Relation, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	key := (&types.Relation{From: from, To: to, RelationType: relationType}).Key()
	idx, ok := p.byKey[key]
	if !ok {
		return nil, &types.NotFoundError{Entity: from + " -> " + to}
	}
	return copyRelation(p.relations[idx]), nil
}

func (p *MemoryProvider) CreateRelations(ctx context.Context, relations []*types.Relation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	for _, r := range relations {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, ok := p.entities[r.From]; !ok {
			return types.ErrMissingEndpoint
		}
		if _, ok := p.entities[r.To]; !ok {
			return types.ErrMissingEndpoint
		}
		if _, ok := p.byKey[r.Key()]; ok {
			return types.ErrDuplicateRelation
		}
		stored := copyRelation(r)
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = now
		}
		if stored.Version == 0 {
			stored.Version = 1
		}
		p.byKey[stored.Key()] = len(p.relations)
		p.relations = append(p.relations, stored)
		p.relationHistory[stored.Key()] = append(p.relationHistory[stored.Key()], copyRelation(stored))
	}
	return nil
}

func (p *MemoryProvider) UpdateRelation(ctx context.Context, relation *types.Relation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx, ok := p.byKey[relation.Key()]
	if !ok {
		return &types.NotFoundError{Entity: relation.From + " -> " + relation.To}
	}
	if err := relation.Validate(); err != nil {
		return err
	}
	prev := p.relations[idx]
	stored := copyRelation(relation)
	stored.CreatedAt = prev.CreatedAt
	stored.UpdatedAt = p.now()
	stored.Version = prev.Version + 1
	p.relations[idx] = stored
	p.relationHistory[stored.Key()] = append(p.relationHistory[stored.Key()], copyRelation(stored))
	return nil
}

func (p *MemoryProvider) DeleteRelations(ctx context.Context, relations []*types.Relation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	doomed := make(map[string]bool, len(relations))
	for _, r := range relations {
		doomed[r.Key()] = true
	}
	kept := p.relations[:0]
	p.byKey = make(map[string]int)
	for _, r := range p.relations {
		if doomed[r.Key()] {
			continue
		}
		p.byKey[r.Key()] = len(kept)
		kept = append(kept, r)
	}
	p.relations = kept
	return nil
}

func (p *MemoryProvider) GetOutgoingRelations(ctx context.Context, name string) ([]*types.Relation, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []*types.Relation
	for _, r := range p.relations {
		if r.From == name {
			out = append(out, copyRelation(r))
		}
	}
	return out, nil
}

func (p *MemoryProvider) GetIncomingRelations(ctx context.Context, name string) ([]*types.Relation, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []*types.Relation
	for _, r := range p.relations {
		if r.To == name {
			out = append(out, copyRelation(r))
		}
	}
	return out, nil
}

// SearchEntities matches the query case-insensitively against entity name,
// type, and observations. Ranking happens in the graph search strategy;
// this only produces candidates, in insertion order.
func (p *MemoryProvider) SearchEntities(ctx context.Context, query string, opts *SearchOptions) ([]*types.Entity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var typeFilter map[string]bool
	limit := 0
	if opts != nil {
		limit = opts.Limit
		if len(opts.EntityTypes) > 0 {
			typeFilter = make(map[string]bool, len(opts.EntityTypes))
			for _, t := range opts.EntityTypes {
				typeFilter[strings.ToLower(t)] = true
			}
		}
	}

	terms := strings.Fields(strings.ToLower(query))
	var out []*types.Entity
	for _, name := range p.entityOrder {
		e := p.entities[name]
		if typeFilter != nil && !typeFilter[strings.ToLower(e.EntityType)] {
			continue
		}
		if matchesTerms(e, terms) {
			out = append(out, copyEntity(e))
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func matchesTerms(e *types.Entity, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	haystack := strings.ToLower(e.Name) + " " + strings.ToLower(e.EntityType)
	for _, o := range e.Observations {
		haystack += " " + strings.ToLower(o)
	}
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}

func (p *MemoryProvider) LoadGraph(ctx context.Context) (*types.Graph, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	g := &types.Graph{}
	for _, name := range p.entityOrder {
		g.Entities = append(g.Entities, copyEntity(p.entities[name]))
	}
	for _, r := range p.relations {
		g.Relations = append(g.Relations, copyRelation(r))
	}
	return g, nil
}

func (p *MemoryProvider) SaveGraph(ctx context.Context, graph *types.Graph) error {
	if err := p.CreateEntities(ctx, graph.Entities); err != nil {
		return err
	}
	return p.CreateRelations(ctx, graph.Relations)
}

func (p *MemoryProvider) GetEntityHistory(ctx context.Context, name string) ([]*types.Entity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	versions, ok := p.entityHistory[name]
	if !ok {
		return nil, &types.NotFoundError{Entity: name}
	}
	out := make([]*types.Entity, len(versions))
	for i, v := range versions {
		out[i] = copyEntity(v)
	}
	return out, nil
}

func (p *MemoryProvider) GetRelationHistory(ctx context.Context, from, to, relationType string) ([]*types.Relation, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	key := (&types.Relation{From: from, To: to, RelationType: relationType}).Key()
	versions, ok := p.relationHistory[key]
	if !ok {
		return nil, &types.NotFoundError{Entity: from + " -> " + to}
	}
	out := make([]*types.Relation, len(versions))
	for i, v := range versions {
		out[i] = copyRelation(v)
	}
	return out, nil
}

// GetGraphAtTime reconstructs the graph as of the given instant from the
// recorded version history, honoring validity windows.
func (p *MemoryProvider) GetGraphAtTime(ctx context.Context, at time.Time) (*types.Graph, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	g := &types.Graph{}
	for _, name := range p.entityOrder {
		if v := latestEntityBefore(p.entityHistory[name], at); v != nil {
			g.Entities = append(g.Entities, v)
		}
	}
	for _, r := range p.relations {
		if v := latestRelationBefore(p.relationHistory[r.Key()], at); v != nil {
			g.Relations = append(g.Relations, v)
		}
	}
	sort.SliceStable(g.Relations, func(i, j int) bool {
		return g.Relations[i].CreatedAt.Before(g.Relations[j].CreatedAt)
	})
	return g, nil
}

func latestEntityBefore(versions []*types.Entity, at time.Time) *types.Entity {
	var best *types.Entity
	for _, v := range versions {
		if v.LastModified().After(at) {
			continue
		}
		if v.ValidFrom != nil && v.ValidFrom.After(at) {
			continue
		}
		if v.ValidTo != nil && v.ValidTo.Before(at) {
			continue
		}
		best = copyEntity(v)
	}
	return best
}

func latestRelationBefore(versions []*types.Relation, at time.Time) *types.Relation {
	var best *types.Relation
	for _, v := range versions {
		if v.LastModified().After(at) {
			continue
		}
		if v.ValidFrom != nil && v.ValidFrom.After(at) {
			continue
		}
		if v.ValidTo != nil && v.ValidTo.Before(at) {
			continue
		}
		best = copyRelation(v)
	}
	return best
}
