package task

import "time"

// SlotSize is the granularity of a SlotGrid.
const SlotSize = 15 * time.Minute

// SlotGrid detects conflicts by reserving fixed-size slots instead of comparing
// exact intervals. Two entities conflict when they touch the same slot, so on
// slot-aligned input it agrees with Timeline.Overlapping. A slot may have more
// than one owner when overlapping data was restored.
type SlotGrid struct {
	size  time.Duration
	taken map[int64]map[ID]struct{}
	owned map[ID][]int64
}

func NewSlotGrid(size time.Duration) *SlotGrid {
	if size <= 0 {
		size = SlotSize
	}
	return &SlotGrid{
		size:  size,
		taken: map[int64]map[ID]struct{}{},
		owned: map[ID][]int64{},
	}
}

func (g *SlotGrid) each(t Task, fn func(key int64) bool) {
	start, end, ok := t.interval()
	if !ok {
		return
	}
	for cur := start.Truncate(g.size); cur.Before(end); cur = cur.Add(g.size) {
		if !fn(cur.Unix()) {
			return
		}
	}
}

func (g *SlotGrid) Insert(t Task) {
	g.Remove(t.ID)
	g.each(t, func(key int64) bool {
		owners, ok := g.taken[key]
		if !ok {
			owners = map[ID]struct{}{}
			g.taken[key] = owners
		}
		owners[t.ID] = struct{}{}
		g.owned[t.ID] = append(g.owned[t.ID], key)
		return true
	})
}

func (g *SlotGrid) Remove(id ID) {
	for _, key := range g.owned[id] {
		owners := g.taken[key]
		delete(owners, id)
		if len(owners) == 0 {
			delete(g.taken, key)
		}
	}
	delete(g.owned, id)
}

// Overlapping returns the lowest id sharing a slot with t, other than t itself.
func (g *SlotGrid) Overlapping(t Task) (ID, bool) {
	var (
		other ID
		found bool
	)
	g.each(t, func(key int64) bool {
		for owner := range g.taken[key] {
			if owner != t.ID && (!found || owner < other) {
				other, found = owner, true
			}
		}
		return !found
	})
	return other, found
}
