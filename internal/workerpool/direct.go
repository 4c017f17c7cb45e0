package workerpool

import "sync"

// Direct spawns a fresh goroutine per submitted job, adapting
// original_source/src/threadpool/naive.rs's thread::spawn-per-job approach.
// Correct under any load, but unbounded concurrency makes it a poor choice
// once a server has many simultaneous connections.
type Direct struct {
	wg sync.WaitGroup
}

var _ Pool = (*Direct)(nil)

// NewDirect returns a ready-to-use Direct pool.
func NewDirect() *Direct {
	return &Direct{}
}

// Spawn runs job in its own goroutine immediately.
func (d *Direct) Spawn(job func()) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		job()
	}()
}

// Close waits for every goroutine spawned so far to finish.
func (d *Direct) Close() {
	d.wg.Wait()
}
