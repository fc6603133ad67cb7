package heap

// rootStack is the bounded stack of references the collector treats as
// live without proof. Slot order is insertion order and is meaningful:
// pair construction pops its operands in stack order.
type rootStack struct {
	slots []Ref
	max   int
}

func newRootStack(max int) rootStack {
	return rootStack{
		slots: make([]Ref, 0, max),
		max:   max,
	}
}

func (s *rootStack) push(ref Ref) error {
	if len(s.slots) == s.max {
		return ErrRootOverflow
	}
	s.slots = append(s.slots, ref)
	return nil
}

func (s *rootStack) pop() (Ref, error) {
	if len(s.slots) == 0 {
		return NilRef, ErrRootUnderflow
	}
	ref := s.slots[len(s.slots)-1]
	s.slots = s.slots[:len(s.slots)-1]
	return ref, nil
}

func (s *rootStack) len() int {
	return len(s.slots)
}

func (s *rootStack) reset() {
	s.slots = s.slots[:0]
}
