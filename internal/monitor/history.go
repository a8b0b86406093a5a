package monitor

import "sync"

// DefaultHistorySize is the default number of data points to retain per metric.
const DefaultHistorySize = 60

// History keeps recent gauge values in ring buffers for sparkline rendering.
// Percentages are stored 0-100; network throughput in bytes per second.
type History struct {
	mu   sync.RWMutex
	size int

	cpu    *ringBuffer
	memory *ringBuffer
	swap   *ringBuffer
	netIn  *ringBuffer
	netOut *ringBuffer
	gpus   map[int]*ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a new history tracker with the specified buffer size.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:   size,
		cpu:    newRingBuffer(size),
		memory: newRingBuffer(size),
		swap:   newRingBuffer(size),
		netIn:  newRingBuffer(size),
		netOut: newRingBuffer(size),
		gpus:   make(map[int]*ringBuffer),
	}
}

// Push records one snapshot. Widgets without a value are skipped, so a
// metric's history only grows while it is available.
func (h *History) Push(snap *Snapshot) {
	if snap == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if snap.CPU.OK() && !snap.CPU.Value.Instantaneous {
		h.cpu.push(snap.CPU.Value.Utilization * 100)
	}
	if snap.Memory.OK() {
		h.memory.push(snap.Memory.Value.UsedFrac() * 100)
	}
	if snap.Swap.OK() && snap.Swap.Value.Total > 0 {
		h.swap.push(snap.Swap.Value.UsedFrac() * 100)
	}

	if snap.Networks.OK() {
		var in, out float64
		seen := false
		for _, n := range *snap.Networks.Value {
			if n.Rate == nil || n.Name == "lo" {
				continue
			}
			in += float64(n.Rate.RxBytes)
			out += float64(n.Rate.TxBytes)
			seen = true
		}
		if seen {
			h.netIn.push(in)
			h.netOut.push(out)
		}
	}

	if snap.GPUs.OK() {
		for _, g := range *snap.GPUs.Value {
			buf, ok := h.gpus[g.Index]
			if !ok {
				buf = newRingBuffer(h.size)
				h.gpus[g.Index] = buf
			}
			buf.push(g.Utilization * 100)
		}
	}
}

// CPU returns up to the last count CPU utilization values, oldest first.
func (h *History) CPU(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cpu.getLast(count)
}

// Memory returns up to the last count memory usage values.
func (h *History) Memory(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.memory.getLast(count)
}

// Swap returns up to the last count swap usage values.
func (h *History) Swap(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.swap.getLast(count)
}

// Network returns receive and transmit throughput across all interfaces
// except loopback.
func (h *History) Network(count int) (in, out []float64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.netIn.getLast(count), h.netOut.getLast(count)
}

// GPU returns utilization history for one device, nil if never seen.
func (h *History) GPU(index, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf, ok := h.gpus[index]
	if !ok {
		return nil
	}
	return buf.getLast(count)
}

// Count returns the number of CPU data points stored.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cpu.count
}

// newRingBuffer creates a new ring buffer with the specified capacity.
func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

// push adds a value to the ring buffer.
func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}

	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head is the next write position, so the newest value sits at head-1.
	start := (r.head - count + r.size) % r.size

	for i := 0; i < count; i++ {
		idx := (start + i) % r.size
		result[i] = r.data[idx]
	}

	return result
}
