package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestConnFromContext_BareContext(t *testing.T) {
	if c := ConnFromContext(context.Background()); c != nil {
		t.Errorf("expected nil conn on bare context, got %v", c)
	}
}

func TestWithConn_RoundTrip(t *testing.T) {
	conn := &pgxpool.Conn{}
	ctx := WithConn(context.Background(), conn)
	if got := ConnFromContext(ctx); got != conn {
		t.Errorf("ConnFromContext returned %v, want the pinned conn", got)
	}
}

func TestWithConn_NilConnStaysInvisible(t *testing.T) {
	// A caller that pins nil must not shadow the pool fallback.
	ctx := WithConn(context.Background(), nil)
	if c := ConnFromContext(ctx); c != nil {
		t.Errorf("expected nil conn, got %v", c)
	}
}
