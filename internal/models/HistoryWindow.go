package models

// HistoryWindow is a fixed-capacity FIFO of the most recent observations.
// Insertion order is chronological order. Not safe for concurrent use.
type HistoryWindow struct {
	items []Observation
	size  int
	head  int
	count int
}

func NewHistoryWindow(size int) *HistoryWindow {
	if size < 1 {
		size = 1
	}
	return &HistoryWindow{
		items: make([]Observation, size),
		size:  size,
	}
}

// Push appends an observation, evicting the oldest one when full.
func (w *HistoryWindow) Push(o Observation) {
	w.items[w.head] = o.clone()
	w.head = (w.head + 1) % w.size
	if w.count < w.size {
		w.count++
	}
}

// Items returns a copy of the window, oldest first.
func (w *HistoryWindow) Items() []Observation {
	out := make([]Observation, 0, w.count)
	start := (w.head - w.count + w.size) % w.size
	for i := 0; i < w.count; i++ {
		out = append(out, w.items[(start+i)%w.size].clone())
	}
	return out
}

func (w *HistoryWindow) Len() int {
	return w.count
}

func (w *HistoryWindow) Cap() int {
	return w.size
}
