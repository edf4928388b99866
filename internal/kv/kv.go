// Package kv provides the key-value capability the record store persists through.
//
// Two flavours exist:
//
//   - Durable stores survive restarts (SQLite, see Open).
//   - Session stores live only as long as one browsing session
//     (Memory for the daemon process, Session for CLI invocations sharing a shell).
//
// Components receive a Store rather than touching storage directly:
//
//	durable, err := kv.Open(filepath.Join(dataDir, "quotes.db"))
//	if err != nil {
//	    return err
//	}
//	defer durable.Close()
//
//	session := kv.NewMemory()
//	st, err := store.Load(ctx, durable, session, logger)
package kv

import "context"

// Store is a string-keyed, string-valued persistence capability.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}
