package cpu

// StackSize is the number of return addresses the call stack can hold.
const StackSize = 24

// Stack is the subroutine return address stack.
//
// The classic interpreters never said what happens when a program calls too
// deep or returns from nowhere. This one refuses: Push on a full stack and Pop
// on an empty one return an error and leave the stack as it was.
type Stack struct {
	entries [StackSize]uint16
	sp      int
}

// Push puts addr on top of the stack.
func (s *Stack) Push(addr uint16) error {
	if s.sp == StackSize {
		return ErrStackOverflow
	}
	s.entries[s.sp] = addr
	s.sp++
	return nil
}

// Pop removes and returns the address on top of the stack.
func (s *Stack) Pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--
	addr := s.entries[s.sp]
	s.entries[s.sp] = 0
	return addr, nil
}

// Peek returns the address on top of the stack without removing it.
func (s *Stack) Peek() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	return s.entries[s.sp-1], nil
}

// Depth returns the number of addresses on the stack.
func (s *Stack) Depth() int {
	return s.sp
}

// Entries returns a copy of the stack contents, bottom first.
func (s *Stack) Entries() []uint16 {
	out := make([]uint16, s.sp)
	copy(out, s.entries[:s.sp])
	return out
}

// Clear empties the stack.
func (s *Stack) Clear() {
	s.entries = [StackSize]uint16{}
	s.sp = 0
}
