// Package workerpool implements the job-execution abstraction the server
// hands connection handlers to (spec.md §4.6), grounded in
// original_source/src/threadpool/{naive,queue}.rs: a Direct pool spawning a
// goroutine per job, and a Queued pool running N long-lived workers over a
// shared channel.
package workerpool

// Pool accepts one-shot jobs and guarantees each submitted job eventually
// runs exactly once, unless the pool is closed before the job dequeues — in
// which case the job is discarded silently.
type Pool interface {
	Spawn(job func())
	Close()
}
