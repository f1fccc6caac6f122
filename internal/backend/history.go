package backend

// snapshot is one undo step: the full text and the cursor that went with it.
type snapshot struct {
	text   string
	cursor Point
}

// history is a bounded undo/redo stack of snapshots.
type history struct {
	undo []snapshot
	redo []snapshot
	max  int
}

func newHistory(max int) *history {
	if max <= 0 {
		max = DefaultMaxUndoEntries
	}
	return &history{max: max}
}

// push records the state before an edit. Clears the redo stack.
func (h *history) push(s snapshot) {
	if n := len(h.undo); n > 0 && h.undo[n-1] == s {
		return
	}
	h.undo = append(h.undo, s)
	if len(h.undo) > h.max {
		h.undo = h.undo[len(h.undo)-h.max:]
	}
	h.redo = h.redo[:0]
}

// undoTo pops the last state, pushing current onto the redo stack.
func (h *history) undoTo(current snapshot) (snapshot, error) {
	if len(h.undo) == 0 {
		return snapshot{}, ErrNothingToUndo
	}
	s := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	return s, nil
}

// redoTo pops the last undone state, pushing current onto the undo stack.
func (h *history) redoTo(current snapshot) (snapshot, error) {
	if len(h.redo) == 0 {
		return snapshot{}, ErrNothingToRedo
	}
	s := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current)
	return s, nil
}

func (h *history) clear() {
	h.undo = nil
	h.redo = nil
}

func (h *history) canUndo() bool { return len(h.undo) > 0 }
