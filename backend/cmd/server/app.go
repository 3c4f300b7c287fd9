package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialgraph/backend/internal/api"
	"socialgraph/backend/internal/graph"
	"socialgraph/backend/internal/graphexport"
	"socialgraph/backend/internal/graphql"
	"socialgraph/backend/internal/store"
	"socialgraph/backend/pkg/config"
)

// app wires the store, repository and transports for one process
type app struct {
	db       *store.DB
	repo     *graph.Repository
	exporter *graphexport.Exporter
	runner   *graphexport.Neo4jRunner
}

// newApp seeds the store with the built-in tiers plus an optional fixture
// file, and connects the Neo4j mirror when one is configured.
func newApp(ctx context.Context, cfg *config.Config, fixturePath string, log *zap.Logger) (*app, error) {
	db := store.New()

	tiers, err := store.DefaultFixture()
	if err != nil {
		return nil, fmt.Errorf("failed to load default fixture: %w", err)
	}
	if _, err := db.Load(ctx, tiers); err != nil {
		return nil, fmt.Errorf("failed to seed member types: %w", err)
	}

	if fixturePath != "" {
		f, err := store.LoadFixtureFile(fixturePath)
		if err != nil {
			return nil, err
		}
		refs, err := db.Load(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("failed to load fixture %s: %w", fixturePath, err)
		}
		log.Info("Fixture loaded", zap.String("path", fixturePath), zap.Int("users", len(refs)))
	}

	cascade := graph.CascadeFirstPost
	if cfg.CascadeAllPosts {
		cascade = graph.CascadeAllPosts
	}

	a := &app{
		db:   db,
		repo: graph.NewRepository(db, graph.WithCascadePolicy(cascade)),
	}

	if cfg.ExportEnabled() {
		runner, err := graphexport.NewNeo4jRunner(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
		if err != nil {
			return nil, err
		}
		a.runner = runner
		a.exporter = graphexport.NewExporter(db, runner)
	}
	return a, nil
}

// router builds the HTTP surface: REST, GraphQL and, when configured, export
func (a *app) router(cfg *config.Config) (*gin.Engine, error) {
	executor, err := graphql.NewSocialGraphExecutor(a.repo, graph.NewResolver(a.db))
	if err != nil {
		return nil, fmt.Errorf("failed to build GraphQL executor: %w", err)
	}
	gql, err := graphql.NewHandler(executor, cfg.MaxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to build GraphQL handler: %w", err)
	}

	opts := []api.Option{
		api.WithGraphQL(gql.ServeGraphQL),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
	}
	if a.exporter != nil {
		opts = append(opts, api.WithExporter(a.exporter))
	}
	return api.NewServer(a.repo, opts...).Router(), nil
}

func (a *app) close(ctx context.Context) {
	if a.runner != nil {
		_ = a.runner.Close(ctx)
	}
}
