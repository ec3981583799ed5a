package ports

import "context"

// SeedRow is one row of the upstream export keyed by column header.
type SeedRow map[string]string

// SeedSource is read-only; nothing in the engine writes back to it.
type SeedSource interface {
	Rows(ctx context.Context) ([]SeedRow, error)
	Describe() string
}
