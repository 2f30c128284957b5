package progress

import (
	"sort"
	"sync"
)

// Board holds the trackers of the runs in this process so they can be read
// from outside the run, e.g. by the admin server.
type Board struct {
	mu       sync.RWMutex
	trackers map[string]*Tracker
}

func NewBoard() *Board {
	return &Board{trackers: map[string]*Tracker{}}
}

// Put registers t under its pipeline name, replacing any earlier run.
func (b *Board) Put(t *Tracker) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trackers[t.pipeline] = t
}

func (b *Board) Get(pipeline string) (Snapshot, bool) {
	b.mu.RLock()
	t, ok := b.trackers[pipeline]
	b.mu.RUnlock()
	if !ok {
		return Snapshot{}, false
	}
	return t.Snapshot(), true
}

// Snapshots returns every tracker's snapshot ordered by pipeline name.
func (b *Board) Snapshots() []Snapshot {
	b.mu.RLock()
	trackers := make([]*Tracker, 0, len(b.trackers))
	for _, t := range b.trackers {
		trackers = append(trackers, t)
	}
	b.mu.RUnlock()

	snaps := make([]Snapshot, 0, len(trackers))
	for _, t := range trackers {
		snaps = append(snaps, t.Snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Pipeline < snaps[j].Pipeline })
	return snaps
}
