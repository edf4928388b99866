// Package daemon keeps the quote collection in sync in the background.
//
// A Daemon runs one sync cycle at start and then one per Interval until its
// context is cancelled. Manual cycles go through Trigger, which runs on the
// caller's goroutine; when a periodic cycle is already in flight the manual one
// is coalesced by the syncer and returns immediately.
//
// An optional Inbox watches a directory for *.json files. Each file that has
// settled for the debounce interval is imported once and renamed to
// <name>.imported so it is never picked up again.
//
// Usage:
//
//	d, err := daemon.New(syncer, &daemon.Config{Interval: 30 * time.Second})
//	if err != nil {
//		return err
//	}
//	go d.Start(ctx)
//	...
//	result := d.Trigger(ctx)
//	d.Stop()
package daemon
