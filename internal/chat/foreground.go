package chat

import "sync"

// foregroundRef holds the single foregrounded conversation id. At most one
// conversation is foregrounded at a time; 0 means none.
type foregroundRef struct {
	mu sync.Mutex
	id int64
}

func (f *foregroundRef) current() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

func (f *foregroundRef) set(id int64) {
	f.mu.Lock()
	f.id = id
	f.mu.Unlock()
}

// clear resets the pointer only when it currently equals id.
func (f *foregroundRef) clear(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.id != id {
		return false
	}
	f.id = 0
	return true
}
