package table

import (
	"container/heap"
)

// Merge combines independently parsed tables into one table ordered by
// timestamp. Equal timestamps keep argument order, then row order, so the
// merge is stable. Each input keeps its own format; inputs are not modified.
func Merge(tables ...*Table) *Table {
	out := &Table{}
	h := &rowHeap{}
	total := 0

	for i, t := range tables {
		if t == nil {
			continue
		}
		out.dropped = append(out.dropped, t.dropped...)
		out.formats = appendUnique(out.formats, t.formats...)
		total += len(t.rows)
		if len(t.rows) > 0 {
			*h = append(*h, &heapItem{table: i, row: 0, ts: t.rows[0].Timestamp.UnixNano()})
		}
	}
	heap.Init(h)

	out.rows = make([]Message, 0, total)
	for h.Len() > 0 {
		// Pop the oldest row
		item := heap.Pop(h).(*heapItem)
		src := tables[item.table].rows
		out.rows = append(out.rows, src[item.row])

		// Refill from the same table
		if next := item.row + 1; next < len(src) {
			heap.Push(h, &heapItem{table: item.table, row: next, ts: src[next].Timestamp.UnixNano()})
		}
	}

	out.outOfOrder = countOutOfOrder(out.rows)
	return out
}

func appendUnique(dst []string, vals ...string) []string {
	for _, v := range vals {
		dup := false
		for _, d := range dst {
			if d == v {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}

// heapItem points at the next unmerged row of one table.
type heapItem struct {
	table int
	row   int
	ts    int64
}

// rowHeap implements heap.Interface for timestamp-ordered merging.
type rowHeap []*heapItem

func (h rowHeap) Len() int { return len(h) }

func (h rowHeap) Less(i, j int) bool {
	if h[i].ts != h[j].ts {
		return h[i].ts < h[j].ts
	}
	if h[i].table != h[j].table {
		return h[i].table < h[j].table
	}
	return h[i].row < h[j].row
}

func (h rowHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rowHeap) Push(x any) {
	*h = append(*h, x.(*heapItem))
}

func (h *rowHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}
