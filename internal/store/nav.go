package store

import "sync"

// NavStore holds the sidebar visibility.
type NavStore struct {
	mu          sync.RWMutex
	sidebarOpen bool
}

func NewNavStore() *NavStore {
	return &NavStore{}
}

func (n *NavStore) IsSidebarOpen() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.sidebarOpen
}

// ToggleSidebar flips the sidebar and returns the new visibility.
func (n *NavStore) ToggleSidebar() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sidebarOpen = !n.sidebarOpen

	return n.sidebarOpen
}

func (n *NavStore) CloseSidebar() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sidebarOpen = false
}
