package loaders

import (
	"github.com/SSK015/Workload-Profiling/internal/config"
	"github.com/SSK015/Workload-Profiling/pkg/types"
)

type Reject int

const (
	Accepted Reject = iota
	RejectProcess
	RejectEvent
	RejectZeroAddr
	RejectKernelAddr
	RejectAddrRange
	RejectTime
)

func (r Reject) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectProcess:
		return "process"
	case RejectEvent:
		return "event"
	case RejectZeroAddr:
		return "zero_addr"
	case RejectKernelAddr:
		return "kernel_addr"
	case RejectAddrRange:
		return "addr_range"
	case RejectTime:
		return "max_time"
	default:
		return "unknown"
	}
}

// Filter turns records into samples. It holds the time origin, so use one
// Filter per trace.
type Filter struct {
	Pid           string
	Comm          string
	Event         string
	IncludeKernel bool
	AddrMin       config.HexAddr
	AddrMax       config.HexAddr
	MaxTime       *float64

	t0      float64
	started bool
}

func NewFilter(cfg config.IngestConfig) *Filter {
	return &Filter{
		Pid:           cfg.Pid,
		Comm:          cfg.Comm,
		Event:         cfg.Event,
		IncludeKernel: cfg.IncludeKernel,
		AddrMin:       cfg.AddrMin,
		AddrMax:       cfg.AddrMax,
		MaxTime:       cfg.MaxTime,
	}
}

// Accept applies the filters in order: process identity, event name, zero
// address, kernel address, caller bounds. The first accepted record fixes the
// time origin; accepted samples carry time relative to it.
func (f *Filter) Accept(r Record) (types.Sample, Reject) {
	if f.Pid != "" && r.Pid != f.Pid {
		return types.Sample{}, RejectProcess
	}
	if f.Comm != "" && r.Comm != f.Comm {
		return types.Sample{}, RejectProcess
	}
	if f.Event != "" && r.Event != f.Event {
		return types.Sample{}, RejectEvent
	}
	if r.Addr == 0 {
		return types.Sample{}, RejectZeroAddr
	}
	if !f.IncludeKernel && r.Addr >= types.KERNEL_ADDR_MIN {
		return types.Sample{}, RejectKernelAddr
	}
	if f.AddrMin.Valid && r.Addr < f.AddrMin.Value {
		return types.Sample{}, RejectAddrRange
	}
	if f.AddrMax.Valid && r.Addr >= f.AddrMax.Value {
		return types.Sample{}, RejectAddrRange
	}

	if !f.started {
		f.t0 = r.Time
		f.started = true
	}
	t := r.Time - f.t0
	if t < 0 {
		return types.Sample{}, RejectTime
	}
	if f.MaxTime != nil && t > *f.MaxTime {
		return types.Sample{}, RejectTime
	}
	return types.Sample{Time: t, Event: r.Event, Addr: r.Addr}, Accepted
}
