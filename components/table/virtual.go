package table

import "math"

const (
	defaultRowHeight = 48.0
	defaultOverscan  = 10
)

// Virtualizer computes which rows of a long list need to be mounted for a
// scroll position. Rows are assumed to share the estimated height.
type Virtualizer struct {
	Count        int
	EstimateSize float64
	Overscan     int
}

// VirtualItem is a mounted row and its absolute offset.
type VirtualItem struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	Size  float64 `json:"size"`
}

// End returns the item's bottom offset.
func (i VirtualItem) End() float64 {
	return i.Start + i.Size
}

// VirtualWindow is the set of rows to mount plus the scrollable height.
type VirtualWindow struct {
	Items      []VirtualItem `json:"items"`
	TotalSize  float64       `json:"total_size"`
	StartIndex int           `json:"start_index"`
	EndIndex   int           `json:"end_index"`
}

// TotalSize is Count times the estimated row height.
func (v Virtualizer) TotalSize() float64 {
	return float64(v.Count) * v.size()
}

// Range returns the window for the visible region [offset, offset+viewport).
func (v Virtualizer) Range(offset, viewport float64) VirtualWindow {
	window := VirtualWindow{TotalSize: v.TotalSize(), StartIndex: -1, EndIndex: -1}
	if v.Count <= 0 {
		return window
	}
	size := v.size()
	if offset < 0 {
		offset = 0
	}
	if viewport < 0 {
		viewport = 0
	}
	first := int(math.Floor(offset / size))
	last := int(math.Ceil((offset+viewport)/size)) - 1
	if last < first {
		last = first
	}
	first = clamp(first, 0, v.Count-1)
	last = clamp(last, 0, v.Count-1)

	start := clamp(first-v.overscan(), 0, v.Count-1)
	end := clamp(last+v.overscan(), 0, v.Count-1)

	window.StartIndex = start
	window.EndIndex = end
	window.Items = make([]VirtualItem, 0, end-start+1)
	for i := start; i <= end; i++ {
		window.Items = append(window.Items, VirtualItem{
			Index: i,
			Start: float64(i) * size,
			Size:  size,
		})
	}
	return window
}

func (v Virtualizer) size() float64 {
	if v.EstimateSize <= 0 {
		return defaultRowHeight
	}
	return v.EstimateSize
}

func (v Virtualizer) overscan() int {
	if v.Overscan < 0 {
		return 0
	}
	if v.Overscan == 0 {
		return defaultOverscan
	}
	return v.Overscan
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
