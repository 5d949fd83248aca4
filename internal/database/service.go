package database

import (
	"context"
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/config"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/logger"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/mcperr"
)

// WriteSummary reports the update counters of a write query.
type WriteSummary struct {
	NodesCreated         int  `json:"nodes_created"`
	NodesDeleted         int  `json:"nodes_deleted"`
	RelationshipsCreated int  `json:"relationships_created"`
	RelationshipsDeleted int  `json:"relationships_deleted"`
	PropertiesSet        int  `json:"properties_set"`
	LabelsAdded          int  `json:"labels_added"`
	LabelsRemoved        int  `json:"labels_removed"`
	IndexesAdded         int  `json:"indexes_added"`
	IndexesRemoved       int  `json:"indexes_removed"`
	ConstraintsAdded     int  `json:"constraints_added"`
	ConstraintsRemoved   int  `json:"constraints_removed"`
	ContainsUpdates      bool `json:"contains_updates"`
}

// Neo4jService is the concrete implementation of Service. It borrows the
// shared driver handle from the Provider per call and never closes it.
type Neo4jService struct {
	provider *Provider
	cfg      *config.Config
	log      *logger.Service
}

// NewNeo4jService creates a new Neo4jService instance
func NewNeo4jService(provider *Provider, cfg *config.Config, log *logger.Service) *Neo4jService {
	return &Neo4jService{
		provider: provider,
		cfg:      cfg,
		log:      log,
	}
}

// VerifyConnectivity checks a connection with the Neo4j instance can be
// established, building the shared driver handle if needed.
func (s *Neo4jService) VerifyConnectivity(ctx context.Context) error {
	_, err := s.provider.Acquire(ctx)
	return err
}

// ExecuteReadQuery executes a Cypher query inside a read transaction and
// returns the fully materialized, normalized rows. The configured read timeout
// bounds the whole round trip: rows are collected before the transaction
// closes, and exceeding the deadline cancels the in-flight operation.
func (s *Neo4jService) ExecuteReadQuery(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	records, err := s.ExecuteReadRaw(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return NormalizeRecords(records)
}

// ExecuteReadRaw executes a Cypher query inside a read transaction and returns
// the raw driver records without normalization. Schema sampling relies on the
// backend-native value types being intact.
func (s *Neo4jService) ExecuteReadRaw(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	driver, err := s.provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	session := driver.NewSession(ctx, s.cfg.Database)
	defer func() {
		if err := session.Close(ctx); err != nil {
			s.log.Warn("failed to close session", "error", err)
		}
	}()

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, s.classify(ctx, driver, "read query failed", err)
	}

	records, ok := result.([]*neo4j.Record)
	if !ok {
		return nil, mcperr.Newf(mcperr.KindSerialization, "unexpected read result type %T", result)
	}
	return records, nil
}

// ExecuteWriteQuery executes a Cypher query inside a write transaction and
// returns the update counters. The managed transaction commits or rolls back
// as a unit, so a failure leaves no partial write behind. When the server is
// configured read-only the query is rejected before any backend contact.
func (s *Neo4jService) ExecuteWriteQuery(ctx context.Context, cypher string, params map[string]any) (*WriteSummary, error) {
	if s.cfg.ReadOnly {
		return nil, mcperr.New(mcperr.KindPermission, "server is running in read-only mode, write queries are not permitted")
	}

	driver, err := s.provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	session := driver.NewSession(ctx, s.cfg.Database)
	defer func() {
		if err := session.Close(ctx); err != nil {
			s.log.Warn("failed to close session", "error", err)
		}
	}()

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		return summaryFromCounters(summary.Counters()), nil
	})
	if err != nil {
		return nil, s.classify(ctx, driver, "write query failed", err)
	}

	summary, ok := result.(*WriteSummary)
	if !ok {
		return nil, mcperr.Newf(mcperr.KindSerialization, "unexpected write result type %T", result)
	}
	return summary, nil
}

// classify maps a driver failure onto the error taxonomy. Connection-level
// failures additionally invalidate the shared handle so the next call rebuilds
// it.
func (s *Neo4jService) classify(ctx context.Context, driver Driver, message string, err error) error {
	// Errors already carrying a taxonomy kind pass through untouched
	// (e.g. SerializationError raised while normalizing records).
	if mcperr.KindOf(err) != "" {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		s.log.Warn("query exceeded read timeout", "timeout", s.cfg.ReadTimeout)
		return mcperr.Wrap(mcperr.KindTimeout, "query did not complete within the configured read timeout", err)
	}

	if neo4j.IsConnectivityError(err) {
		s.provider.Invalidate(ctx, driver)
		return mcperr.Wrap(mcperr.KindConnection, message, err)
	}

	// Neo4j server rejections carry a code and message but no Go stack;
	// surface them as-is.
	var neo4jErr *neo4j.Neo4jError
	if errors.As(err, &neo4jErr) {
		return mcperr.Wrap(mcperr.KindQuery, neo4jErr.Msg, err)
	}

	return mcperr.Wrap(mcperr.KindQuery, message, err)
}

func summaryFromCounters(counters neo4j.Counters) *WriteSummary {
	return &WriteSummary{
		NodesCreated:         counters.NodesCreated(),
		NodesDeleted:         counters.NodesDeleted(),
		RelationshipsCreated: counters.RelationshipsCreated(),
		RelationshipsDeleted: counters.RelationshipsDeleted(),
		PropertiesSet:        counters.PropertiesSet(),
		LabelsAdded:          counters.LabelsAdded(),
		LabelsRemoved:        counters.LabelsRemoved(),
		IndexesAdded:         counters.IndexesAdded(),
		IndexesRemoved:       counters.IndexesRemoved(),
		ConstraintsAdded:     counters.ConstraintsAdded(),
		ConstraintsRemoved:   counters.ConstraintsRemoved(),
		ContainsUpdates:      counters.ContainsUpdates(),
	}
}
