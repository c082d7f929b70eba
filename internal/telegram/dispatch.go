package telegram

import "sync"

// dispatcher runs jobs for one user strictly in submission order while
// different users proceed in parallel. A user's goroutine exits once the
// queue drains.
type dispatcher struct {
	mu     sync.Mutex
	queues map[int64][]func()
	wg     sync.WaitGroup
}

func newDispatcher() *dispatcher {
	return &dispatcher{queues: make(map[int64][]func())}
}

func (d *dispatcher) Submit(userID int64, job func()) {
	d.mu.Lock()
	q, busy := d.queues[userID]
	d.queues[userID] = append(q, job)
	if !busy {
		d.wg.Add(1)
	}
	d.mu.Unlock()

	if !busy {
		go d.drain(userID)
	}
}

func (d *dispatcher) drain(userID int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		q := d.queues[userID]
		if len(q) == 0 {
			delete(d.queues, userID)
			d.mu.Unlock()
			return
		}
		job := q[0]
		d.queues[userID] = q[1:]
		d.mu.Unlock()

		job()
	}
}

// Wait blocks until every submitted job has run.
func (d *dispatcher) Wait() {
	d.wg.Wait()
}
