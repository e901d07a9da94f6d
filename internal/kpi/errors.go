package kpi

import "errors"

// ErrSystemNotFound marks a system identifier with no registry entry.
var ErrSystemNotFound = errors.New("system not found")

// ErrNoData marks a KPI query that succeeded but returned zero rows. It only
// applies to the snapshot path; an empty series is a valid result.
var ErrNoData = errors.New("no data for system")
