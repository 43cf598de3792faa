// Package council orchestrates the multi-judge evaluation of a debate
// transcript and aggregates the judges' votes and scores into a
// consensus verdict.
//
// Every judge runs in its own goroutine with an independent retry
// budget; results flow over a channel to a single aggregating consumer,
// which is the only writer of progress state. Individual judge failures
// are absorbed as long as at least two judges succeed (the quorum);
// fewer than two is fatal to the whole stage.
package council
