package world

// WidgetTracker tracks which plugin slot owns each in-flight
// server-driven UI widget for one client, so a response packet can be
// routed back to whichever slot opened it. Grounded on
// original_source/src/net/widget_tracker.rs, with a shop slot and a
// battle queue added (see SPEC_FULL.md §4 for the supplemented
// shop/battle features original_source's widget_tracker.rs predates).
type WidgetTracker[T any] struct {
	textboxQueue []T
	bbsQueue     []T
	activeBBS    []T
	battleQueue  []T
	shopOwner    *T
}

// NewWidgetTracker returns an empty tracker.
func NewWidgetTracker[T any]() *WidgetTracker[T] {
	return &WidgetTracker[T]{}
}

// IsEmpty reports whether any widget is queued or open.
func (w *WidgetTracker[T]) IsEmpty() bool {
	return len(w.textboxQueue) == 0 && len(w.bbsQueue) == 0 && len(w.activeBBS) == 0 &&
		len(w.battleQueue) == 0 && w.shopOwner == nil
}

// BoardCount reports how many boards are queued or open.
func (w *WidgetTracker[T]) BoardCount() int {
	return len(w.activeBBS) + len(w.bbsQueue)
}

// TrackTextbox enqueues owner as the slot responsible for the next
// textbox response.
func (w *WidgetTracker[T]) TrackTextbox(owner T) {
	w.textboxQueue = append(w.textboxQueue, owner)
}

// PopTextbox dequeues the oldest textbox owner, FIFO.
func (w *WidgetTracker[T]) PopTextbox() (T, bool) {
	return popFront(&w.textboxQueue)
}

// TrackBoard enqueues owner as a pending board, to be activated by
// OpenBoard.
func (w *WidgetTracker[T]) TrackBoard(owner T) {
	w.bbsQueue = append(w.bbsQueue, owner)
}

// OpenBoard promotes the oldest pending board to active, supporting
// boards opened from within other boards (a stack of active boards).
func (w *WidgetTracker[T]) OpenBoard() {
	owner, ok := popFront(&w.bbsQueue)
	if ok {
		w.activeBBS = append(w.activeBBS, owner)
	}
}

// CurrentBoard returns the innermost active board's owner, if any.
func (w *WidgetTracker[T]) CurrentBoard() (T, bool) {
	if len(w.activeBBS) == 0 {
		var zero T
		return zero, false
	}
	return w.activeBBS[len(w.activeBBS)-1], true
}

// CloseBoard pops the innermost active board, returning to whatever
// board (if any) was open beneath it.
func (w *WidgetTracker[T]) CloseBoard() (T, bool) {
	return popBack(&w.activeBBS)
}

// TrackShop records owner as the slot that opened the shop; a shop has
// no queue since only one can be open per client at a time.
func (w *WidgetTracker[T]) TrackShop(owner T) {
	o := owner
	w.shopOwner = &o
}

// CurrentShop returns the shop's owning slot, if a shop is open.
func (w *WidgetTracker[T]) CurrentShop() (T, bool) {
	if w.shopOwner == nil {
		var zero T
		return zero, false
	}
	return *w.shopOwner, true
}

// CloseShop clears shop ownership, returning whoever owned it.
func (w *WidgetTracker[T]) CloseShop() (T, bool) {
	if w.shopOwner == nil {
		var zero T
		return zero, false
	}
	owner := *w.shopOwner
	w.shopOwner = nil
	return owner, true
}

// TrackBattle enqueues owner as the slot awaiting the next battle
// result.
func (w *WidgetTracker[T]) TrackBattle(owner T) {
	w.battleQueue = append(w.battleQueue, owner)
}

// PopBattle dequeues the oldest battle owner, FIFO.
func (w *WidgetTracker[T]) PopBattle() (T, bool) {
	return popFront(&w.battleQueue)
}

func popFront[T any](queue *[]T) (T, bool) {
	if len(*queue) == 0 {
		var zero T
		return zero, false
	}
	v := (*queue)[0]
	*queue = (*queue)[1:]
	return v, true
}

func popBack[T any](stack *[]T) (T, bool) {
	if len(*stack) == 0 {
		var zero T
		return zero, false
	}
	last := len(*stack) - 1
	v := (*stack)[last]
	*stack = (*stack)[:last]
	return v, true
}
