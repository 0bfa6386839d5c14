package task

import "sync"

// ProjectLocks hands out one mutex per project. Holding it across a whole
// unit of work makes mutations within a project linearizable and keeps a
// cascade invisible until it has fully applied.
type ProjectLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewProjectLocks() *ProjectLocks {
	return &ProjectLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock blocks until the project's mutex is held and returns its release func.
func (l *ProjectLocks) Lock(projectID string) func() {
	l.mu.Lock()
	m, ok := l.locks[projectID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[projectID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
