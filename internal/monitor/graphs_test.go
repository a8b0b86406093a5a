package monitor

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Force TrueColor output in tests so we can verify ANSI color codes
	lipgloss.SetColorProfile(termenv.TrueColor)
}

// stripANSI removes color sequences so rendered output can be compared.
func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && r == 'm':
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name   string
		val    float64
		minVal float64
		maxVal float64
		want   float64
	}{
		{name: "middle value", val: 50, minVal: 0, maxVal: 100, want: 0.5},
		{name: "min value", val: 0, minVal: 0, maxVal: 100, want: 0},
		{name: "max value", val: 100, minVal: 0, maxVal: 100, want: 1},
		{name: "empty range returns 0", val: 50, minVal: 0, maxVal: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeValue(tt.val, tt.minVal, tt.maxVal)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestClampInt(t *testing.T) {
	tests := []struct {
		name string
		val  int
		max  int
		want int
	}{
		{name: "within range", val: 5, max: 10, want: 5},
		{name: "at max", val: 10, max: 10, want: 10},
		{name: "over max", val: 15, max: 10, want: 10},
		{name: "negative clamped to zero", val: -5, max: 10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampInt(tt.val, tt.max))
		})
	}
}

func TestResampleData(t *testing.T) {
	tests := []struct {
		name       string
		data       []float64
		targetSize int
		wantLen    int
		wantNil    bool
	}{
		{name: "empty data returns nil", data: []float64{}, targetSize: 10, wantNil: true},
		{name: "zero target returns nil", data: []float64{1, 2, 3}, targetSize: 0, wantNil: true},
		{name: "same size returns original", data: []float64{1, 2, 3}, targetSize: 3, wantLen: 3},
		{name: "single value fills target", data: []float64{42}, targetSize: 5, wantLen: 5},
		{name: "downsampling reduces size", data: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, targetSize: 5, wantLen: 5},
		{name: "upsampling increases size", data: []float64{0, 100}, targetSize: 5, wantLen: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := resampleData(tt.data, tt.targetSize)
			if tt.wantNil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Len(t, result, tt.wantLen)
		})
	}
}

func TestResampleData_DownsamplingPreservesPeaks(t *testing.T) {
	data := []float64{10, 10, 10, 100, 10, 10, 10, 10, 10, 10}

	result := resampleData(data, 5)

	require.Len(t, result, 5)
	assert.Contains(t, result, 100.0, "downsampling should preserve peak values")
}

func TestResampleData_UpsamplingInterpolates(t *testing.T) {
	result := resampleData([]float64{0, 100}, 5)

	require.Len(t, result, 5)
	for i, want := range []float64{0, 25, 50, 75, 100} {
		assert.InDelta(t, want, result[i], 0.1)
	}
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		name  string
		data  []float64
		width int
		max   float64
		want  string
	}{
		{name: "empty", data: nil, width: 5, max: 100, want: ""},
		{name: "zero width", data: []float64{1}, width: 0, max: 100, want: ""},
		{name: "full range", data: []float64{0, 100}, width: 2, max: 100, want: "▁█"},
		{name: "short history is right aligned", data: []float64{100}, width: 3, max: 100, want: "  █"},
		{name: "long history is compressed", data: []float64{0, 100, 0, 0}, width: 2, max: 100, want: "█▁"},
		{name: "all zero rates", data: []float64{0, 0}, width: 2, max: 0, want: "▁▁"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sparkline(tt.data, tt.width, tt.max))
		})
	}
}

func TestPercentSparkline_ColoredByLastValue(t *testing.T) {
	th := Thresholds{Warning: 50, Critical: 80}

	colored := func(c lipgloss.Color, line string) string {
		return lipgloss.NewStyle().Foreground(c).Render(line)
	}

	rising := []float64{10, 95}
	hot := PercentSparkline(rising, 2, th)
	assert.Equal(t, colored(ColorCritical, sparkline(rising, 2, 100)), hot, "critical color")
	assert.NotEqual(t, colored(ColorHealthy, sparkline(rising, 2, 100)), hot)

	falling := []float64{95, 10}
	calm := PercentSparkline(falling, 2, th)
	assert.Equal(t, colored(ColorHealthy, sparkline(falling, 2, 100)), calm, "healthy color")

	assert.Empty(t, PercentSparkline(nil, 10, th))
}

func TestRateSparkline_ScalesToPeak(t *testing.T) {
	out := stripANSI(RateSparkline([]float64{500, 1000}, 2, ColorGraph))
	assert.Equal(t, "▄█", out)
	assert.Empty(t, RateSparkline(nil, 2, ColorGraph))
}
