package catalog

import (
	"context"
	"time"
)

/*
The catalog records every distinct definition observed for each message type,
keyed by type name and fingerprint, along with the time it was first seen. It
answers which definition of a type is current, how a type's definition has
changed over time, and which types changed after a given instant.

The catalog only holds fingerprints. Definition text lives in the definition
store and is looked up by fingerprint.
*/

////////////////////////////////////////////////////////////////////////////////

// Entry is a single observed definition of a type.
type Entry struct {
	Name        string    `json:"name"`
	Fingerprint string    `json:"fingerprint"`
	MD5Sum      string    `json:"md5sum"`
	FirstSeen   time.Time `json:"firstSeen"`
}

// Catalog is the interface for catalog implementations.
type Catalog interface {
	// Record notes a definition of a type observed at the given time. It
	// returns true if the definition had not been recorded for the type
	// before. Recording a known definition does not change its first-seen
	// time.
	Record(ctx context.Context, name string, fingerprint string, md5sum string, seen time.Time) (bool, error)

	// Latest returns the most recently first-seen definition of a type.
	Latest(ctx context.Context, name string) (Entry, error)

	// History returns all definitions of a type, oldest first.
	History(ctx context.Context, name string) ([]Entry, error)

	// ChangedSince returns the definitions first seen strictly after since,
	// grouped by type name and ordered oldest first within each group.
	ChangedSince(ctx context.Context, since time.Time) (map[string][]Entry, error)

	// Names returns the names of all cataloged types in sorted order.
	Names(ctx context.Context) ([]string, error)
}
