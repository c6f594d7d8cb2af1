package tuya

import (
	"fmt"
	"sync"

	"github.com/victorjacobs/go-floureon/climate"
)

// Registry holds the sessions of all configured devices, keyed by id.
type Registry struct {
	mutex    sync.RWMutex
	sessions map[string]*Session
	ids      []string
}

var _ climate.Registry = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

func (r *Registry) Add(id string, session *Session) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.sessions[id]; ok {
		return fmt.Errorf("device %v already registered", id)
	}

	r.sessions[id] = session
	r.ids = append(r.ids, id)

	return nil
}

func (r *Registry) Device(id string) (climate.Session, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	return session, true
}

// IDs returns device ids in registration order.
func (r *Registry) IDs() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return append([]string(nil), r.ids...)
}
