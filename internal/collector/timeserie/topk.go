package timeserie

import (
	"container/heap"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

type pageEntry struct {
	page  uint64
	count uint64
}

// pageEntries is a max-heap by count; equal counts order by lower page.
type pageEntries []pageEntry

func (e pageEntries) Len() int { return len(e) }
func (e pageEntries) Less(i, j int) bool {
	if e[i].count != e[j].count {
		return e[i].count > e[j].count
	}
	return e[i].page < e[j].page
}
func (e pageEntries) Swap(i, j int) { e[i], e[j] = e[j], e[i] }

func (e *pageEntries) Push(x any) {
	*e = append(*e, x.(pageEntry))
}

func (e *pageEntries) Pop() any {
	old := *e
	n := len(old)
	item := old[n-1]
	*e = old[:n-1]
	return item
}

// TopK returns the k most-sampled pages. When several pages tie at the
// cut-off the lower page numbers are kept.
func TopK(counts map[uint64]uint64, k int) *roaring64.Bitmap {
	hot := roaring64.New()
	if k <= 0 || len(counts) == 0 {
		return hot
	}
	if len(counts) <= k {
		for page := range counts {
			hot.Add(page)
		}
		return hot
	}

	entries := make(pageEntries, 0, len(counts))
	for page, c := range counts {
		entries = append(entries, pageEntry{page: page, count: c})
	}
	// O(m) + O(k*log(m))
	heap.Init(&entries)
	for t := 0; t < k; t++ {
		hot.Add(heap.Pop(&entries).(pageEntry).page)
	}
	return hot
}
