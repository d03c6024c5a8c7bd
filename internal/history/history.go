package history

import "klondike/internal/game"

// History keeps whole-state snapshots around the live game state. past is
// oldest-first; future is most-recently-undone first. Neither ever holds the
// live state itself.
type History struct {
	past   []game.GameState
	future []game.GameState
	limit  int
}

// New returns an empty history. A positive limit caps how many undo steps
// are kept; the oldest are dropped first.
func New(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{limit: limit}
}

// Record stores prev, the state an accepted action is about to replace, and
// discards anything that could have been redone.
func (h *History) Record(prev game.GameState) {
	h.past = append(h.past, prev)
	if h.limit > 0 && len(h.past) > h.limit {
		h.past = append([]game.GameState(nil), h.past[len(h.past)-h.limit:]...)
	}
	h.future = nil
}

// Undo returns the state before current. ok is false when there is nothing to undo.
func (h *History) Undo(current game.GameState) (game.GameState, bool) {
	if len(h.past) == 0 {
		return current, false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append([]game.GameState{current}, h.future...)
	return prev, true
}

// Redo reapplies the most recently undone state.
func (h *History) Redo(current game.GameState) (game.GameState, bool) {
	if len(h.future) == 0 {
		return current, false
	}
	next := h.future[0]
	h.future = h.future[1:]
	h.past = append(h.past, current)
	return next, true
}

func (h *History) Reset() {
	h.past = nil
	h.future = nil
}

func (h *History) CanUndo() bool { return len(h.past) > 0 }

func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Depth reports the number of undo and redo steps available.
func (h *History) Depth() (past, future int) {
	return len(h.past), len(h.future)
}
