package model

// Memory is a point-in-time view of physical memory, in bytes.
type Memory struct {
	Used     uint64 `json:"used" yaml:"used"`
	Freeable uint64 `json:"freeable" yaml:"freeable"`
	Free     uint64 `json:"free" yaml:"free"`
	Total    uint64 `json:"total" yaml:"total"`

	// Linux extras, nil elsewhere.
	Shared    *uint64 `json:"shared,omitempty" yaml:"shared,omitempty"`
	Buffers   *uint64 `json:"buffers,omitempty" yaml:"buffers,omitempty"`
	Cached    *uint64 `json:"cached,omitempty" yaml:"cached,omitempty"`
	Available *uint64 `json:"available,omitempty" yaml:"available,omitempty"`
}

func fraction(part, whole uint64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

// UsedFrac is used memory as a fraction of total.
func (m Memory) UsedFrac() float64 {
	return fraction(m.Used, m.Total)
}

// FreeableFrac is reclaimable cache as a fraction of total.
func (m Memory) FreeableFrac() float64 {
	return fraction(m.Freeable, m.Total)
}

// Swap is swap usage in bytes.
type Swap struct {
	Used  uint64 `json:"used" yaml:"used"`
	Total uint64 `json:"total" yaml:"total"`
}

// UsedFrac is used swap as a fraction of total; zero without swap.
func (s Swap) UsedFrac() float64 {
	return fraction(s.Used, s.Total)
}

// LoadAvg holds the 1, 5 and 15 minute run-queue averages.
type LoadAvg struct {
	One     float64 `json:"one" yaml:"one"`
	Five    float64 `json:"five" yaml:"five"`
	Fifteen float64 `json:"fifteen" yaml:"fifteen"`
}

// PressureLine is one line of a pressure stall file.
type PressureLine struct {
	Avg10  float64 `json:"avg10" yaml:"avg10"`
	Avg60  float64 `json:"avg60" yaml:"avg60"`
	Avg300 float64 `json:"avg300" yaml:"avg300"`
	// Total stall time in microseconds.
	Total uint64 `json:"total" yaml:"total"`
}

// PressureStat is the "some" and "full" lines for one resource. CPU pressure
// has no "full" line on older kernels.
type PressureStat struct {
	Some PressureLine  `json:"some" yaml:"some"`
	Full *PressureLine `json:"full,omitempty" yaml:"full,omitempty"`
}

// Pressure is stall information for CPU, memory and I/O.
type Pressure struct {
	CPU    PressureStat `json:"cpu" yaml:"cpu"`
	Memory PressureStat `json:"memory" yaml:"memory"`
	IO     PressureStat `json:"io" yaml:"io"`
}
