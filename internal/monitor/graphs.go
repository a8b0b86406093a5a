package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparklineBlocks are block characters for 8-level vertical resolution (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// maxOf returns the largest value in data, or 0 for an empty slice.
func maxOf(data []float64) float64 {
	var m float64
	for _, v := range data {
		if v > m {
			m = v
		}
	}
	return m
}

// normalizeValue converts a value to 0-1 range given min/max bounds.
func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0
}

// clampInt clamps an integer to a range [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func sparkline(data []float64, width int, maxVal float64) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	// Short histories are drawn right-aligned rather than stretched.
	resampled := data
	if len(data) > width {
		resampled = resampleData(data, width)
	}

	var result strings.Builder
	result.WriteString(strings.Repeat(" ", width-len(resampled)))
	for _, val := range resampled {
		normalized := normalizeValue(val, 0, maxVal)
		idx := clampInt(int(normalized*float64(len(sparklineBlocks)-1)), len(sparklineBlocks)-1)
		result.WriteRune(sparklineBlocks[idx])
	}
	return result.String()
}

// PercentSparkline renders percentage data on a fixed 0-100 scale, colored by
// the most recent value.
func PercentSparkline(data []float64, width int, th Thresholds) string {
	line := sparkline(data, width, 100)
	if line == "" {
		return ""
	}
	last := data[len(data)-1]
	return lipgloss.NewStyle().Foreground(th.Color(last)).Render(line)
}

// RateSparkline renders throughput data scaled to its own peak.
func RateSparkline(data []float64, width int, color lipgloss.Color) string {
	line := sparkline(data, width, maxOf(data))
	if line == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(color).Render(line)
}

// resampleData resamples data to the target size.
// When downsampling (compressing), uses max-based sampling to preserve peaks/spikes.
// When upsampling (expanding), uses linear interpolation.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}

	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)

	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	// Downsampling: use max within each bucket to preserve peaks
	if len(data) > targetSize {
		bucketSize := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucketSize)
			end := int(float64(i+1) * bucketSize)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}

			maxVal := data[start]
			for j := start + 1; j < end; j++ {
				if data[j] > maxVal {
					maxVal = data[j]
				}
			}
			result[i] = maxVal
		}
		return result
	}

	// Upsampling: linear interpolation
	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)

		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
		} else {
			result[i] = data[idx]*(1-frac) + data[idx+1]*frac
		}
	}

	return result
}
