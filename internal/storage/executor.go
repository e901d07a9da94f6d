package storage

import (
	"context"
	"fmt"
)

// Select acquires a connection, runs one read query and returns the column
// names alongside the raw row values. The connection is released on every
// exit path. Acquisition failures map to ErrUnavailable, statement failures
// to *QueryError.
func (s *Store) Select(ctx context.Context, sql string, args ...any) ([]string, [][]any, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	conn, err := s.Pool.Acquire(acquireCtx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, nil, &QueryError{Err: err}
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}
	results := [][]any{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, nil, &QueryError{Err: err}
		}
		results = append(results, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, &QueryError{Err: err}
	}
	return cols, results, nil
}
