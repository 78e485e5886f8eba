package progresso

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
)

// LoadSampler reports global CPU utilization in percent
type LoadSampler interface {
	Sample(ctx context.Context) (float64, error)
}

// CPUSampler samples host CPU utilization through gopsutil. Each sample
// covers the time since the previous one.
type CPUSampler struct{}

// NewCPUSampler creates a CPUSampler
func NewCPUSampler() *CPUSampler {
	return &CPUSampler{}
}

// Sample returns the utilization across all CPUs since the last call
func (s *CPUSampler) Sample(ctx context.Context) (float64, error) {
	pcts, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, fmt.Errorf("sampling cpu: %w", err)
	}
	if len(pcts) == 0 {
		return 0, fmt.Errorf("%w: no cpu sample", ErrDecode)
	}
	return pcts[0], nil
}
