package gpu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/hypertop/internal/model"
)

// queryFields is the --query-gpu list; ParseLine expects this column order.
var queryFields = []string{
	"index",
	"name",
	"uuid",
	"utilization.gpu",
	"memory.used",
	"memory.total",
	"temperature.gpu",
	"power.draw",
	"power.limit",
}

const mib = 1024 * 1024

// unsupported reports whether nvidia-smi printed a placeholder instead of a
// value for a metric the device does not expose.
func unsupported(field string) bool {
	switch field {
	case "", "[N/A]", "N/A", "[Not Supported]", "Not Supported", "[Unknown Error]":
		return true
	}
	return false
}

// ParseLine parses one line of:
//
//	nvidia-smi --query-gpu=index,name,uuid,utilization.gpu,memory.used,memory.total,temperature.gpu,power.draw,power.limit --format=csv,noheader,nounits
//
// Temperature and power are optional; the remaining columns are required.
func ParseLine(line string) (model.GPU, error) {
	fields := strings.Split(line, ",")
	if len(fields) < len(queryFields) {
		return model.GPU{}, fmt.Errorf("nvidia-smi output has insufficient fields: expected %d, got %d", len(queryFields), len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	var g model.GPU
	var err error

	if g.Index, err = strconv.Atoi(fields[0]); err != nil {
		return model.GPU{}, fmt.Errorf("failed to parse GPU index %q: %w", fields[0], err)
	}
	g.Name = fields[1]
	if !unsupported(fields[2]) {
		g.UUID = fields[2]
	}

	util, err := requiredFloat(fields[3], "utilization")
	if err != nil {
		return model.GPU{}, err
	}
	g.Utilization = util / 100

	memUsed, err := requiredFloat(fields[4], "memory used")
	if err != nil {
		return model.GPU{}, err
	}
	memTotal, err := requiredFloat(fields[5], "memory total")
	if err != nil {
		return model.GPU{}, err
	}
	g.MemUsed = uint64(memUsed * mib)
	g.MemTotal = uint64(memTotal * mib)

	if g.Temperature, err = optionalFloat(fields[6], "temperature"); err != nil {
		return model.GPU{}, err
	}
	if g.Power, err = optionalFloat(fields[7], "power draw"); err != nil {
		return model.GPU{}, err
	}
	if g.PowerLimit, err = optionalFloat(fields[8], "power limit"); err != nil {
		return model.GPU{}, err
	}
	return g, nil
}

func requiredFloat(s, what string) (float64, error) {
	if unsupported(s) {
		return 0, fmt.Errorf("GPU %s not reported", what)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse GPU %s %q: %w", what, s, err)
	}
	return v, nil
}

func optionalFloat(s, what string) (*float64, error) {
	if unsupported(s) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPU %s %q: %w", what, s, err)
	}
	return &v, nil
}
