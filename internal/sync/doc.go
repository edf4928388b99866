// Package sync runs synchronization cycles between the local quote store and
// the remote authority.
//
// # Cycle
//
// One cycle walks a fixed sequence of states:
//
//	Idle → Fetching → Merging → Persisting → Notifying → Pushing → Idle
//	          │                     │                       │
//	          └──────────── Errored ┴───────────────────────┘ → Idle
//
// In order:
//
//  1. Fetch the server snapshot. A failure is logged and announced and the
//     cycle ends: no merge, no push.
//  2. Merge the snapshot into the current collection (server quotes are added
//     when absent, nothing local changes).
//  3. When the merge added quotes: append and persist them, refresh the
//     category index, announce "quotes updated".
//  4. Push the whole collection back. A failure is announced; the merge from
//     step 3 stays committed and the next successful push catches up.
//
// # Re-entrancy
//
// At most one cycle runs at a time. RunCycle called while another cycle is in
// flight returns immediately with OutcomeCoalesced and touches nothing, so a
// timer tick and a manual trigger that overlap produce exactly one fetch and
// one push.
//
// # Errors
//
// RunCycle never returns an error. Failures are reported through the
// notifier, the logger and CycleResult.Err, which keeps the scheduler
// running whatever happens to a single cycle.
//
// Usage
//
//	syncer, err := sync.New(&sync.Config{
//	    Store:    st,
//	    Index:    idx,
//	    Remote:   adapter,
//	    Notifier: notifier,
//	})
//	if err != nil {
//	    return err
//	}
//	result := syncer.RunCycle(ctx)
//	fmt.Println(result.Outcome, result.Added)
package sync
