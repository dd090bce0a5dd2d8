package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
)

// Loader writes a Graph into Neo4j using batched UNWIND queries. Nodes are
// merged on their key so reloading a file updates it in place.
type Loader struct {
	driver neo4j.DriverWithContext
	log    zerolog.Logger
}

func NewLoader(ctx context.Context, uri, user, password string, log zerolog.Logger) (*Loader, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connecting to %s: %w", uri, err)
	}
	return &Loader{driver: driver, log: log}, nil
}

func (l *Loader) Close(ctx context.Context) error {
	return l.driver.Close(ctx)
}

func (l *Loader) run(ctx context.Context, cypher string, params map[string]any) error {
	_, err := neo4j.ExecuteQuery(ctx, l.driver, cypher, params, neo4j.EagerResultTransformer)
	return err
}

// Clean removes every node and relationship previously loaded.
func (l *Loader) Clean(ctx context.Context) error {
	l.log.Info().Msg("cleaning existing contract graph")
	for _, q := range []string{
		"MATCH (n:Violation) DETACH DELETE n",
		"MATCH (n:Function) DETACH DELETE n",
		"MATCH (n:Contract) DETACH DELETE n",
	} {
		if err := l.run(ctx, q, nil); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) CreateIndexes(ctx context.Context) error {
	for _, q := range []string{
		"CREATE INDEX contract_key IF NOT EXISTS FOR (n:Contract) ON (n.key)",
		"CREATE INDEX function_key IF NOT EXISTS FOR (n:Function) ON (n.key)",
		"CREATE INDEX violation_fp IF NOT EXISTS FOR (n:Violation) ON (n.fingerprint)",
	} {
		if err := l.run(ctx, q, nil); err != nil {
			return err
		}
	}
	return nil
}

// Load writes g in dependency order: contracts, functions, edges, violations.
func (l *Loader) Load(ctx context.Context, g *Graph) error {
	steps := []struct {
		name string
		fn   func(context.Context, *Graph) error
	}{
		{"contracts", l.loadContracts},
		{"functions", l.loadFunctions},
		{"inheritance", l.loadInherits},
		{"calls", l.loadCalls},
		{"violations", l.loadViolations},
	}
	for _, s := range steps {
		if err := s.fn(ctx, g); err != nil {
			return fmt.Errorf("loading %s: %w", s.name, err)
		}
	}
	return nil
}

func (l *Loader) loadContracts(ctx context.Context, g *Graph) error {
	l.log.Info().Int("count", len(g.Contracts)).Msg("loading contracts")
	batch := make([]map[string]any, 0, len(g.Contracts))
	for _, c := range g.Contracts {
		batch = append(batch, map[string]any{
			"key": c.Key, "name": c.Name, "kind": c.Kind,
			"abstract": c.Abstract, "file": c.File, "line": c.Line,
		})
	}
	return l.run(ctx,
		`UNWIND $batch AS row
		 MERGE (n:Contract {key: row.key})
		 SET n.name = row.name, n.kind = row.kind, n.abstract = row.abstract,
		     n.file = row.file, n.line = row.line`,
		map[string]any{"batch": batch},
	)
}

func (l *Loader) loadFunctions(ctx context.Context, g *Graph) error {
	l.log.Info().Int("count", len(g.Functions)).Msg("loading functions")
	batch := make([]map[string]any, 0, len(g.Functions))
	for _, fn := range g.Functions {
		batch = append(batch, map[string]any{
			"key": fn.Key, "contract": fn.Contract, "name": fn.Name,
			"visibility": fn.Visibility, "mutability": fn.Mutability,
			"selector": fn.Selector, "line": fn.Line,
		})
	}
	return l.run(ctx,
		`UNWIND $batch AS row
		 MERGE (f:Function {key: row.key})
		 SET f.name = row.name, f.visibility = row.visibility,
		     f.mutability = row.mutability, f.selector = row.selector, f.line = row.line
		 WITH f, row
		 MATCH (c:Contract {key: row.contract})
		 MERGE (c)-[:DECLARES]->(f)`,
		map[string]any{"batch": batch},
	)
}

// loadInherits creates placeholder Contract nodes for bases declared outside
// the unit.
func (l *Loader) loadInherits(ctx context.Context, g *Graph) error {
	l.log.Info().Int("count", len(g.Inherits)).Msg("loading inheritance edges")
	batch := make([]map[string]any, 0, len(g.Inherits))
	for _, e := range g.Inherits {
		batch = append(batch, map[string]any{
			"child": e.Child, "parent": e.Parent, "name": e.Name, "order": e.Order,
		})
	}
	return l.run(ctx,
		`UNWIND $batch AS row
		 MATCH (child:Contract {key: row.child})
		 MERGE (parent:Contract {key: row.parent})
		 ON CREATE SET parent.name = row.name
		 MERGE (child)-[r:INHERITS]->(parent)
		 SET r.order = row.order`,
		map[string]any{"batch": batch},
	)
}

func (l *Loader) loadCalls(ctx context.Context, g *Graph) error {
	l.log.Info().Int("count", len(g.Calls)).Msg("loading call edges")
	batch := make([]map[string]any, 0, len(g.Calls))
	for _, c := range g.Calls {
		batch = append(batch, map[string]any{"caller": c.Caller, "callee": c.Callee})
	}
	return l.run(ctx,
		`UNWIND $batch AS row
		 MATCH (caller:Function {key: row.caller}), (callee:Function {key: row.callee})
		 MERGE (caller)-[:CALLS]->(callee)`,
		map[string]any{"batch": batch},
	)
}

func (l *Loader) loadViolations(ctx context.Context, g *Graph) error {
	if len(g.Violations) == 0 {
		return nil
	}
	l.log.Info().Int("count", len(g.Violations)).Msg("loading violations")
	batch := make([]map[string]any, 0, len(g.Violations))
	for _, v := range g.Violations {
		batch = append(batch, map[string]any{
			"fp": v.Fingerprint, "detector": v.DetectorID, "severity": v.Severity,
			"message": v.Message, "contract": v.Contract, "line": v.Line,
		})
	}
	return l.run(ctx,
		`UNWIND $batch AS row
		 MERGE (v:Violation {fingerprint: row.fp})
		 SET v.detector = row.detector, v.severity = row.severity,
		     v.message = row.message, v.line = row.line
		 WITH v, row
		 MATCH (c:Contract {key: row.contract})
		 MERGE (v)-[:FOUND_IN]->(c)`,
		map[string]any{"batch": batch},
	)
}
