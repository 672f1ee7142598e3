package core

import "context"

// EntryParser turns one discovered path into a candidate entry
type EntryParser interface {
	Parse(path string) (*CandidateEntry, error)
}

// IconLookup resolves a logical icon name to a file path
type IconLookup interface {
	Resolve(ctx context.Context, name string) (string, bool)
}
