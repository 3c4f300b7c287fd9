package graphexport

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "socialgraph/backend/pkg/errors"
	"socialgraph/backend/pkg/logger"
)

// Runner executes a single Cypher statement and buffers its result.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]interface{}) (*neo4j.EagerResult, error)
}

// Neo4jRunner runs statements against a Neo4j server through the official driver.
type Neo4jRunner struct {
	driver   neo4j.DriverWithContext
	uri      string
	database string
	logger   *zap.Logger
}

// NewNeo4jRunner creates a driver and verifies that the server is reachable.
func NewNeo4jRunner(ctx context.Context, uri, user, password, database string) (*Neo4jRunner, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}

	return &Neo4jRunner{
		driver:   driver,
		uri:      uri,
		database: database,
		logger:   logger.Get(),
	}, nil
}

// Run executes cypher as a write on the configured database.
func (r *Neo4jRunner) Run(ctx context.Context, cypher string, params map[string]interface{}) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, r.driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(r.database),
		neo4j.ExecuteQueryWithWritersRouting(),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewContextCancelled("neo4j query", ctx.Err())
		}
		return nil, apperrors.NewGraphQueryFailed(cypher, err)
	}

	r.logger.Debug("Cypher executed",
		zap.Int("records", len(result.Records)),
		zap.Int("nodes_created", result.Summary.Counters().NodesCreated()),
		zap.Int("relationships_created", result.Summary.Counters().RelationshipsCreated()))
	return result, nil
}

// Close releases the driver
func (r *Neo4jRunner) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}
