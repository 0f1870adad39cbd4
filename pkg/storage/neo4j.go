package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// Neo4jProvider implements StorageProvider against a Neo4j database.
// Entities are (:Entity {name}) nodes, relations are [:RELATES] edges
// carrying the relation type as a property so arbitrary type strings are
// allowed without dynamic Cypher labels.
type Neo4jProvider struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jProvider connects to Neo4j with basic auth. An empty database
// name selects the server default.
func NewNeo4jProvider(uri, username, password, database string) (*Neo4jProvider, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if database == "" {
		database = "neo4j"
	}
	return &Neo4jProvider{client: client, database: database}, nil
}

// Capabilities reports temporal support; similarity search stays with the
// vector store.
func (p *Neo4jProvider) Capabilities() Capabilities { return CapTemporal }

func (p *Neo4jProvider) Close(ctx context.Context) error {
	return p.client.Close(ctx)
}

func (p *Neo4jProvider) session(ctx context.Context) neo4j.SessionWithContext {
	return p.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: p.database})
}

func (p *Neo4jProvider) read(ctx context.Context, op, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := p.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, &types.StorageError{Op: op, Err: err}
	}
	return result.([]*neo4j.Record), nil
}

func (p *Neo4jProvider) write(ctx context.Context, op, query string, params map[string]any) error {
	session := p.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return nil, res.Err()
	})
	if err != nil {
		return &types.StorageError{Op: op, Err: err}
	}
	return nil
}

func (p *Neo4jProvider) GetEntity(ctx context.Context, name string) (*types.Entity, error) {
	records, err := p.read(ctx, "getEntity",
		`MATCH (e:Entity {name: $name}) RETURN e`,
		map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &types.NotFoundError{Entity: name}
	}
	return entityFromRecord(records[0])
}

func (p *Neo4jProvider) OpenEntities(ctx context.Context, names []string) ([]*types.Entity, error) {
	records, err := p.read(ctx, "openEntities",
		`UNWIND $names AS name
		 MATCH (e:Entity {name: name})
		 RETURN e`,
		map[string]any{"names": names})
	if err != nil {
		return nil, err
	}
	out := make([]*types.Entity, 0, len(records))
	for _, rec := range records {
		e, err := entityFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (p *Neo4jProvider) CreateEntities(ctx context.Context, entities []*types.Entity) error {
	for _, e := range entities {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	rows := make([]map[string]any, len(entities))
	for i, e := range entities {
		rows[i] = entityParams(e)
	}
	return p.write(ctx, "createEntities",
		`UNWIND $rows AS row
		 MERGE (e:Entity {name: row.name})
		 ON CREATE SET e += row.props, e.created_at = row.now, e.version = 1
		 ON MATCH SET e += row.props, e.updated_at = row.now, e.version = e.version + 1`,
		map[string]any{"rows": rows})
}

func (p *Neo4jProvider) DeleteEntities(ctx context.Context, names []string) error {
	return p.write(ctx, "deleteEntities",
		`UNWIND $names AS name
		 MATCH (e:Entity {name: name})
		 DETACH DELETE e`,
		map[string]any{"names": names})
}

func (p *Neo4jProvider) DeleteObservations(ctx context.Context, name string, observations []string) error {
	return p.write(ctx, "deleteObservations",
		`MATCH (e:Entity {name: $name})
		 SET e.observations = [o IN e.observations WHERE NOT o IN $observations],
		     e.updated_at = datetime(),
		     e.version = e.version + 1`,
		map[string]any{"name": name, "observations": observations})
}

func (p *Neo4jProvider) GetRelation(ctx context.Context, from, to, relationType string) (*types.Relation, error) {
	records, err := p.read(ctx, "getRelation",
		`MATCH (a:Entity {name: $from})-[r:RELATES {relation_type: $type}]->(b:Entity {name: $to})
		 RETURN r, a.name AS from, b.name AS to`,
		map[string]any{"from": from, "to": to, "type": relationType})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &types.NotFoundError{Entity: from + " -> " + to}
	}
	return relationFromRecord(records[0])
}

func (p *Neo4jProvider) CreateRelations(ctx context.Context, relations []*types.Relation) error {
	for _, r := range relations {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	rows := make([]map[string]any, len(relations))
	for i, r := range relations {
		rows[i] = relationParams(r)
	}
	return p.write(ctx, "createRelations",
		`UNWIND $rows AS row
		 MATCH (a:Entity {name: row.from}), (b:Entity {name: row.to})
		 MERGE (a)-[r:RELATES {relation_type: row.type}]->(b)
		 ON CREATE SET r += row.props, r.created_at = row.now, r.version = 1`,
		map[string]any{"rows": rows})
}

func (p *Neo4jProvider) UpdateRelation(ctx context.Context, relation *types.Relation) error {
	if err := relation.Validate(); err != nil {
		return err
	}
	row := relationParams(relation)
	return p.write(ctx, "updateRelation",
		`MATCH (a:Entity {name: $row.from})-[r:RELATES {relation_type: $row.type}]->(b:Entity {name: $row.to})
		 SET r += $row.props, r.updated_at = $row.now, r.version = r.version + 1`,
		map[string]any{"row": row})
}

func (p *Neo4jProvider) DeleteRelations(ctx context.Context, relations []*types.Relation) error {
	rows := make([]map[string]any, len(relations))
	for i, r := range relations {
		rows[i] = map[string]any{"from": r.From, "to": r.To, "type": r.RelationType}
	}
	return p.write(ctx, "deleteRelations",
		`UNWIND $rows AS row
		 MATCH (a:Entity {name: row.from})-[r:RELATES {relation_type: row.type}]->(b:Entity {name: row.to})
		 DELETE r`,
		map[string]any{"rows": rows})
}

func (p *Neo4jProvider) GetOutgoingRelations(ctx context.Context, name string) ([]*types.Relation, error) {
	return p.relationsFor(ctx, "getOutgoingRelations",
		`MATCH (a:Entity {name: $name})-[r:RELATES]->(b:Entity)
		 RETURN r, a.name AS from, b.name AS to
		 ORDER BY r.created_at`, name)
}

func (p *Neo4jProvider) GetIncomingRelations(ctx context.Context, name string) ([]*types.Relation, error) {
	return p.relationsFor(ctx, "getIncomingRelations",
		`MATCH (a:Entity)-[r:RELATES]->(b:Entity {name: $name})
		 RETURN r, a.name AS from, b.name AS to
		 ORDER BY r.created_at`, name)
}

func (p *Neo4jProvider) relationsFor(ctx context.Context, op, query, name string) ([]*types.Relation, error) {
	records, err := p.read(ctx, op, query, map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	out := make([]*types.Relation, 0, len(records))
	for _, rec := range records {
		r, err := relationFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// searchBatchSize pages unbounded candidate scans. Search ranking reads
// the complete candidate set, so an unset limit means "everything", not
// "a server-chosen first page".
const searchBatchSize = 1000

func (p *Neo4jProvider) SearchEntities(ctx context.Context, query string, opts *SearchOptions) ([]*types.Entity, error) {
	filter := ""
	entityTypes := []string{}
	limit := 0
	if opts != nil {
		limit = opts.Limit
		if len(opts.EntityTypes) > 0 {
			entityTypes = opts.EntityTypes
			filter = " AND e.entity_type IN $types"
		}
	}

	if limit > 0 {
		return p.searchEntitiesPage(ctx, query, filter, entityTypes, 0, limit)
	}

	// No limit: page until a short batch so every candidate is returned.
	return collectAllPages(func(skip, limit int) ([]*types.Entity, error) {
		return p.searchEntitiesPage(ctx, query, filter, entityTypes, skip, limit)
	})
}

// collectAllPages drains a paged fetch in searchBatchSize steps. A batch
// shorter than the step size marks the end of the result set.
func collectAllPages(fetch func(skip, limit int) ([]*types.Entity, error)) ([]*types.Entity, error) {
	var out []*types.Entity
	for skip := 0; ; skip += searchBatchSize {
		page, err := fetch(skip, searchBatchSize)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < searchBatchSize {
			return out, nil
		}
	}
}

func (p *Neo4jProvider) searchEntitiesPage(ctx context.Context, query, filter string, entityTypes []string, skip, limit int) ([]*types.Entity, error) {
	records, err := p.read(ctx, "searchEntities",
		`MATCH (e:Entity)
		 WHERE (toLower(e.name) CONTAINS toLower($query)
		    OR toLower(e.entity_type) CONTAINS toLower($query)
		    OR any(o IN e.observations WHERE toLower(o) CONTAINS toLower($query)))`+filter+`
		 RETURN e
		 ORDER BY e.created_at, e.name
		 SKIP $skip
		 LIMIT $limit`,
		map[string]any{"query": query, "types": entityTypes, "skip": skip, "limit": limit})
	if err != nil {
		return nil, err
	}
	out := make([]*types.Entity, 0, len(records))
	for _, rec := range records {
		e, err := entityFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (p *Neo4jProvider) LoadGraph(ctx context.Context) (*types.Graph, error) {
	entities, err := p.SearchEntities(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	records, err := p.read(ctx, "loadGraph",
		`MATCH (a:Entity)-[r:RELATES]->(b:Entity)
		 RETURN r, a.name AS from, b.name AS to
		 ORDER BY r.created_at`, nil)
	if err != nil {
		return nil, err
	}
	g := &types.Graph{Entities: entities}
	for _, rec := range records {
		r, err := relationFromRecord(rec)
		if err != nil {
			return nil, err
		}
		g.Relations = append(g.Relations, r)
	}
	return g, nil
}

func (p *Neo4jProvider) SaveGraph(ctx context.Context, graph *types.Graph) error {
	if err := p.CreateEntities(ctx, graph.Entities); err != nil {
		return err
	}
	return p.CreateRelations(ctx, graph.Relations)
}

// History is kept on shadow nodes written by the mutation queries of the
// full storage service; the query engine only needs read access.

func (p *Neo4jProvider) GetEntityHistory(ctx context.Context, name string) ([]*types.Entity, error) {
	records, err := p.read(ctx, "getEntityHistory",
		`MATCH (h:EntityVersion {name: $name})
		 RETURN h AS e
		 ORDER BY h.version`,
		map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &types.NotFoundError{Entity: name}
	}
	out := make([]*types.Entity, 0, len(records))
	for _, rec := range records {
		e, err := entityFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (p *Neo4jProvider) GetRelationHistory(ctx context.Context, from, to, relationType string) ([]*types.Relation, error) {
	records, err := p.read(ctx, "getRelationHistory",
		`MATCH (h:RelationVersion {from: $from, to: $to, relation_type: $type})
		 RETURN h AS r, h.from AS from, h.to AS to
		 ORDER BY h.version`,
		map[string]any{"from": from, "to": to, "type": relationType})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &types.NotFoundError{Entity: from + " -> " + to}
	}
	out := make([]*types.Relation, 0, len(records))
	for _, rec := range records {
		r, err := relationFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (p *Neo4jProvider) GetGraphAtTime(ctx context.Context, at time.Time) (*types.Graph, error) {
	records, err := p.read(ctx, "getGraphAtTime",
		`MATCH (e:Entity)
		 WHERE (e.valid_from IS NULL OR e.valid_from <= $at)
		   AND (e.valid_to IS NULL OR e.valid_to >= $at)
		 RETURN e`,
		map[string]any{"at": at})
	if err != nil {
		return nil, err
	}
	g := &types.Graph{}
	for _, rec := range records {
		e, err := entityFromRecord(rec)
		if err != nil {
			return nil, err
		}
		g.Entities = append(g.Entities, e)
	}
	relRecords, err := p.read(ctx, "getGraphAtTime",
		`MATCH (a:Entity)-[r:RELATES]->(b:Entity)
		 WHERE (r.valid_from IS NULL OR r.valid_from <= $at)
		   AND (r.valid_to IS NULL OR r.valid_to >= $at)
		 RETURN r, a.name AS from, b.name AS to
		 ORDER BY r.created_at`,
		map[string]any{"at": at})
	if err != nil {
		return nil, err
	}
	for _, rec := range relRecords {
		r, err := relationFromRecord(rec)
		if err != nil {
			return nil, err
		}
		g.Relations = append(g.Relations, r)
	}
	return g, nil
}

// Record parsing helpers.

func entityParams(e *types.Entity) map[string]any {
	props := map[string]any{
		"entity_type":  e.EntityType,
		"observations": e.Observations,
		"changed_by":   e.ChangedBy,
	}
	if e.Embedding != nil {
		props["embedding"] = e.Embedding
	}
	if e.ValidFrom != nil {
		props["valid_from"] = *e.ValidFrom
	}
	if e.ValidTo != nil {
		props["valid_to"] = *e.ValidTo
	}
	return map[string]any{"name": e.Name, "props": props, "now": time.Now().UTC()}
}

func relationParams(r *types.Relation) map[string]any {
	props := map[string]any{
		"changed_by": r.ChangedBy,
	}
	if r.Strength != nil {
		props["strength"] = *r.Strength
	}
	if r.Confidence != nil {
		props["confidence"] = *r.Confidence
	}
	if r.Metadata != nil {
		props["metadata"] = r.Metadata
	}
	if r.ValidFrom != nil {
		props["valid_from"] = *r.ValidFrom
	}
	if r.ValidTo != nil {
		props["valid_to"] = *r.ValidTo
	}
	return map[string]any{
		"from": r.From, "to": r.To, "type": r.RelationType,
		"props": props, "now": time.Now().UTC(),
	}
}

func entityFromRecord(rec *neo4j.Record) (*types.Entity, error) {
	value, found := rec.Get("e")
	if !found {
		return nil, fmt.Errorf("record missing entity column")
	}
	node, ok := value.(dbtype.Node)
	if !ok {
		return nil, fmt.Errorf("unexpected entity record type %T", value)
	}
	props := node.Props
	e := &types.Entity{
		Name:       stringProp(props, "name"),
		EntityType: stringProp(props, "entity_type"),
		ChangedBy:  stringProp(props, "changed_by"),
		Version:    intProp(props, "version"),
		CreatedAt:  timeProp(props, "created_at"),
		UpdatedAt:  timeProp(props, "updated_at"),
	}
	if obs, ok := props["observations"].([]any); ok {
		for _, o := range obs {
			if s, ok := o.(string); ok {
				e.Observations = append(e.Observations, s)
			}
		}
	}
	if emb, ok := props["embedding"].([]any); ok {
		for _, v := range emb {
			if f, ok := v.(float64); ok {
				e.Embedding = append(e.Embedding, float32(f))
			}
		}
	}
	e.ValidFrom = timePtrProp(props, "valid_from")
	e.ValidTo = timePtrProp(props, "valid_to")
	return e, nil
}

func relationFromRecord(rec *neo4j.Record) (*types.Relation, error) {
	value, found := rec.Get("r")
	if !found {
		return nil, fmt.Errorf("record missing relation column")
	}
	var props map[string]any
	switch v := value.(type) {
	case dbtype.Relationship:
		props = v.Props
	case dbtype.Node: // history shadow nodes
		props = v.Props
	default:
		return nil, fmt.Errorf("unexpected relation record type %T", value)
	}
	from, _ := rec.Get("from")
	to, _ := rec.Get("to")
	r := &types.Relation{
		From:         fmt.Sprintf("%v", from),
		To:           fmt.Sprintf("%v", to),
		RelationType: stringProp(props, "relation_type"),
		ChangedBy:    stringProp(props, "changed_by"),
		Version:      intProp(props, "version"),
		CreatedAt:    timeProp(props, "created_at"),
		UpdatedAt:    timeProp(props, "updated_at"),
	}
	if s, ok := props["strength"].(float64); ok {
		r.Strength = &s
	}
	if c, ok := props["confidence"].(float64); ok {
		r.Confidence = &c
	}
	if m, ok := props["metadata"].(map[string]any); ok {
		r.Metadata = m
	}
	r.ValidFrom = timePtrProp(props, "valid_from")
	r.ValidTo = timePtrProp(props, "valid_to")
	return r, nil
}

func stringProp(props map[string]any, key string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}

func intProp(props map[string]any, key string) int64 {
	if v, ok := props[key].(int64); ok {
		return v
	}
	return 0
}

func timeProp(props map[string]any, key string) time.Time {
	switch v := props[key].(type) {
	case time.Time:
		return v
	case dbtype.LocalDateTime:
		return v.Time()
	default:
		return time.Time{}
	}
}

func timePtrProp(props map[string]any, key string) *time.Time {
	t := timeProp(props, key)
	if t.IsZero() {
		return nil
	}
	return &t
}
