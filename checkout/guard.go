package checkout

import "sync"

// Guard admits one payment submission per key at a time. Keys are browser sessions, so a double
// click or a second tab cannot submit the same checkout twice concurrently.
type Guard struct {
	lock     sync.Mutex
	inFlight map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{inFlight: make(map[string]struct{})}
}

// TryAcquire claims key, returning false when a submission for key is already running.
func (g *Guard) TryAcquire(key string) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	if _, busy := g.inFlight[key]; busy {
		return false
	}
	g.inFlight[key] = struct{}{}
	return true
}

func (g *Guard) Release(key string) {
	g.lock.Lock()
	defer g.lock.Unlock()
	delete(g.inFlight, key)
}

// InFlight reports whether key has a submission running.
func (g *Guard) InFlight(key string) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	_, busy := g.inFlight[key]
	return busy
}
