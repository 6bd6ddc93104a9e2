package backend

import "github.com/vytor/enemresultados/internal/repository"

// Ensure Client can stand in for the local store as a snapshot source.
var _ repository.RecordSource = (*Client)(nil)
