package database

//go:generate mockgen -destination=mocks/mock_database.go -package=mocks github.com/neo4j-labs/mcp-neo4j-cypher/internal/database Driver,Session,Service

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Driver abstracts the Neo4j driver so the connection lifecycle can be tested
// without a live instance. The underlying driver pools connections internally
// and is safe for concurrent use; a single Driver is shared by all in-flight
// tool calls.
type Driver interface {
	// NewSession creates a new session for the specified database
	NewSession(ctx context.Context, database string) Session

	// VerifyConnectivity checks the driver can establish a valid connection
	VerifyConnectivity(ctx context.Context) error

	// Close releases the underlying connection pool
	Close(ctx context.Context) error
}

// Session abstracts a Neo4j session scoped to one logical unit of work.
type Session interface {
	// ExecuteRead executes the work function inside a read transaction
	ExecuteRead(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error)

	// ExecuteWrite executes the work function inside a write transaction
	ExecuteWrite(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error)

	// Close closes the session
	Close(ctx context.Context) error
}

// Service executes Cypher queries against the configured database. The access
// mode is fixed by the method, not inferred from the query text: read queries
// run inside read transactions which the server will not allow to mutate
// state, write queries run inside write transactions that commit or roll back
// as a unit.
type Service interface {
	// ExecuteReadQuery runs a read-only Cypher query and returns normalized rows
	ExecuteReadQuery(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)

	// ExecuteReadRaw runs a read-only Cypher query and returns raw driver
	// records. Schema sampling needs the backend-native value types before
	// normalization flattens them to transport primitives.
	ExecuteReadRaw(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)

	// ExecuteWriteQuery runs a Cypher query with write access and returns the update counters
	ExecuteWriteQuery(ctx context.Context, cypher string, params map[string]any) (*WriteSummary, error)

	// VerifyConnectivity checks that a connection to the backend can be established
	VerifyConnectivity(ctx context.Context) error
}
