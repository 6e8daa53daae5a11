package task

import "container/list"

// History keeps viewed ids from oldest to newest without duplicates.
// Record and Forget are constant time: the index points straight at list elements.
type History struct {
	order *list.List
	index map[ID]*list.Element
}

func NewHistory() *History {
	return &History{
		order: list.New(),
		index: map[ID]*list.Element{},
	}
}

// Record moves id to the most recent position.
func (h *History) Record(id ID) {
	h.Forget(id)
	h.index[id] = h.order.PushBack(id)
}

func (h *History) Forget(id ID) {
	e, ok := h.index[id]
	if !ok {
		return
	}
	h.order.Remove(e)
	delete(h.index, id)
}

func (h *History) Contains(id ID) bool {
	_, ok := h.index[id]
	return ok
}

func (h *History) Len() int {
	return h.order.Len()
}

// List returns the ids from oldest to newest view.
func (h *History) List() []ID {
	out := make([]ID, 0, h.order.Len())
	for e := h.order.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(ID))
	}
	return out
}
