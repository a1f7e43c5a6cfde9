// Package overlay tracks which modal panels are open. Only the top panel
// reacts to a dismiss.
package overlay

import "sync"

// Stack is a LIFO of open panel ids
type Stack struct {
	mu  sync.Mutex
	ids []string
}

// Push opens a panel. Pushing an id that is already open moves it to the top.
func (s *Stack) Push(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)
	s.ids = append(s.ids, id)
}

// Pop closes the panel with the given id wherever it sits and reports
// whether it was open.
func (s *Stack) Pop(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}

// Peek returns the top panel
func (s *Stack) Peek() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.ids) == 0 {
		return "", false
	}
	return s.ids[len(s.ids)-1], true
}

// Len returns the number of open panels
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

func (s *Stack) removeLocked(id string) bool {
	for i := len(s.ids) - 1; i >= 0; i-- {
		if s.ids[i] == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return true
		}
	}
	return false
}
