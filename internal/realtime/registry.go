package realtime

import "sync"

// Conn is the slice of a realtime connection the registry needs. The
// transport layer owns the concrete type.
type Conn interface {
	Close() error
}

// Registry tracks at most one live connection per user. A reconnect
// replaces the previous connection; the replaced connection is closed.
type Registry struct {
	mu    sync.Mutex
	conns map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

// Put registers conn for userID, closing and replacing any existing
// connection for the same user.
func (r *Registry) Put(userID string, conn Conn) {
	r.mu.Lock()
	prev, ok := r.conns[userID]
	r.conns[userID] = conn
	r.mu.Unlock()

	if ok && prev != conn {
		_ = prev.Close()
	}
}

// Remove unregisters conn for userID. The connection is only removed
// when it is still the registered one, so a disconnect racing a
// reconnect cannot evict the newer connection.
func (r *Registry) Remove(userID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.conns[userID]; ok && current == conn {
		delete(r.conns, userID)
	}
}

// Get returns the live connection for userID, if any.
func (r *Registry) Get(userID string) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[userID]
	return conn, ok
}

// Len reports the number of connected users.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.conns)
}
