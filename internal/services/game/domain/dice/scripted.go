package dice

import "sync"

// Scripted is a Roller that returns preset faces in order.
//
// Each face is clamped to [1, sides] of the die being rolled. Once the script
// is exhausted the final face repeats, so a single value pins every roll.
type Scripted struct {
	mu    sync.Mutex
	faces []int
	next  int
	calls []int
}

// Script builds a Scripted roller from faces.
func Script(faces ...int) *Scripted {
	return &Scripted{faces: append([]int(nil), faces...)}
}

// Roll returns the next scripted face clamped to the die size.
func (s *Scripted) Roll(sides int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sides)
	if sides <= 0 {
		return 0
	}
	face := 1
	if len(s.faces) > 0 {
		idx := s.next
		if idx >= len(s.faces) {
			idx = len(s.faces) - 1
		} else {
			s.next++
		}
		face = s.faces[idx]
	}
	if face < 1 {
		face = 1
	}
	if face > sides {
		face = sides
	}
	return face
}

// Sides returns the die sizes requested so far, in call order.
func (s *Scripted) Sides() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.calls...)
}
