package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const connKey contextKey = "db_conn"

// WithConn pins a pool connection to the context. Repositories prefer a
// pinned connection over the pool, so several repository calls inside one
// request can share a connection or an open transaction. The caller that
// acquired the connection releases it.
func WithConn(ctx context.Context, conn *pgxpool.Conn) context.Context {
	return context.WithValue(ctx, connKey, conn)
}

// ConnFromContext returns the pinned connection, or nil when the request has
// none and the repository should use the pool directly.
func ConnFromContext(ctx context.Context) *pgxpool.Conn {
	conn, _ := ctx.Value(connKey).(*pgxpool.Conn)
	return conn
}
