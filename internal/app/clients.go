package app

import (
	"context"
	"fmt"

	"github.com/yungbote/hetiograph/internal/config"
	"github.com/yungbote/hetiograph/internal/data/graph"
	"github.com/yungbote/hetiograph/internal/data/mirror"
	"github.com/yungbote/hetiograph/internal/platform/neo4jdb"
)

func (a *App) wireGraph(ctx context.Context) error {
	switch a.Cfg.Graph.Backend {
	case config.GraphMemory:
		a.Log.Warn("using in-memory graph store; data is lost on exit")
		a.Graph = graph.NewMemoryStore()
		return nil
	case config.GraphNeo4j:
		client, err := neo4jdb.New(ctx, a.Cfg.Graph.Neo4j, a.Log)
		if err != nil {
			return err
		}
		store := graph.NewNeo4jStore(client, a.Log)
		a.Graph = store
		a.checks["graph"] = client.Ping
		a.closers = append(a.closers, store.Close)
		return nil
	}
	return fmt.Errorf("unknown graph backend %q", a.Cfg.Graph.Backend)
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (a *App) wireMirror(ctx context.Context) error {
	mc := a.Cfg.Mirror
	var (
		store mirror.Store
		err   error
	)
	switch mc.Backend {
	case config.MirrorNone, "":
		return nil
	case config.MirrorPostgres:
		store, err = mirror.OpenPostgres(mc.DSN, a.Log)
	case config.MirrorSQLite:
		store, err = mirror.OpenSQLite(mc.DSN, a.Log)
	case config.MirrorRedis:
		store, err = mirror.NewRedisStore(ctx, mc.Redis, a.Log)
	default:
		return fmt.Errorf("unknown mirror backend %q", mc.Backend)
	}
	if err != nil {
		return err
	}
	a.Mirror = store
	if p, ok := store.(pinger); ok {
		a.checks["mirror"] = p.Ping
	}
	a.closers = append(a.closers, func(context.Context) error { return store.Close() })
	return nil
}
