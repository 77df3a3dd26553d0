package repository

import (
	"context"
	"fmt"
)

// PartitionLocker takes transaction scoped advisory locks keyed by partition
type PartitionLocker struct {
	q queryable
}

func newPartitionLockerWithTx(tx queryable) *PartitionLocker {
	return &PartitionLocker{q: tx}
}

// Lock blocks until every key is held. Locks are released at commit or rollback.
// Callers pass keys in sorted order so two writers never wait on each other in a cycle.
func (l *PartitionLocker) Lock(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := l.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return fmt.Errorf("failed to lock %s: %w", key, err)
		}
	}
	return nil
}
