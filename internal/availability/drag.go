package availability

// Edit describes what to do to a set of cells: either set them to a status
// or advance each one with Status.Next.
type Edit struct {
	Cycle  bool
	Status Status
}

// SetTo returns an edit that sets cells to s.
func SetTo(s Status) Edit {
	return Edit{Status: s}
}

// CycleEdit returns an edit that advances each cell one click.
func CycleEdit() Edit {
	return Edit{Cycle: true}
}

// apply returns the new status of a cell currently at cur.
func (e Edit) apply(cur Status) Status {
	if e.Cycle {
		return cur.Next()
	}
	return e.Status
}

// String returns a short description for logs.
func (e Edit) String() string {
	if e.Cycle {
		return "cycle"
	}
	return "set " + e.Status.String()
}

// Intent is an edit produced by an interaction, to be applied by the
// Controller.
type Intent struct {
	Cells []Cell
	Edit  Edit
}

// DragState is the state of a DragSelector.
type DragState int

const (
	DragIdle DragState = iota
	DragDragging
)

// DragSelector accumulates the cells touched by a press-drag-release gesture.
// It never mutates a grid; releasing yields an Intent instead.
type DragSelector struct {
	state    DragState
	order    []Cell
	selected map[Cell]bool
}

// NewDragSelector returns an idle selector.
func NewDragSelector() *DragSelector {
	return &DragSelector{selected: make(map[Cell]bool)}
}

// State returns the current state.
func (d *DragSelector) State() DragState {
	return d.state
}

// Dragging reports whether a gesture is in progress.
func (d *DragSelector) Dragging() bool {
	return d.state == DragDragging
}

// Selected reports whether a cell is part of the current selection.
func (d *DragSelector) Selected(c Cell) bool {
	return d.selected[c]
}

// Len returns the size of the current selection.
func (d *DragSelector) Len() int {
	return len(d.order)
}

// PointerDown starts a gesture on c. A gesture already in progress is
// discarded.
func (d *DragSelector) PointerDown(c Cell) {
	d.reset()
	if !c.Valid() {
		return
	}
	d.state = DragDragging
	d.add(c)
}

// PointerEnter adds c to the selection while dragging.
func (d *DragSelector) PointerEnter(c Cell) {
	if d.state != DragDragging || !c.Valid() {
		return
	}
	d.add(c)
}

// PointerUp ends the gesture. A selection of several cells marks them all
// unavailable; a single cell is treated as a click and cycles. ok is false
// when no gesture was in progress.
func (d *DragSelector) PointerUp() (intent Intent, ok bool) {
	if d.state != DragDragging || len(d.order) == 0 {
		d.reset()
		return Intent{}, false
	}

	cells := make([]Cell, len(d.order))
	copy(cells, d.order)
	d.reset()

	if len(cells) == 1 {
		return Intent{Cells: cells, Edit: CycleEdit()}, true
	}
	return Intent{Cells: cells, Edit: SetTo(Unavailable)}, true
}

// PointerLeaveGrid cancels the gesture without producing an intent.
func (d *DragSelector) PointerLeaveGrid() {
	d.reset()
}

func (d *DragSelector) add(c Cell) {
	if d.selected[c] {
		return
	}
	d.selected[c] = true
	d.order = append(d.order, c)
}

func (d *DragSelector) reset() {
	d.state = DragIdle
	d.order = nil
	if len(d.selected) > 0 {
		d.selected = make(map[Cell]bool)
	}
}
