package graphexport

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Record Helpers
// ============================================================================

func intFromRecord(record *neo4j.Record, key string) int {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	switch i := val.(type) {
	case int64:
		return int(i)
	case int:
		return i
	}
	return 0
}

func firstRecord(result *neo4j.EagerResult) (*neo4j.Record, bool) {
	if result == nil || len(result.Records) == 0 {
		return nil, false
	}
	return result.Records[0], true
}
