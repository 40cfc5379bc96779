package main

import (
	"fmt"

	"github.com/funvibe/ctorex/pkg/ctorex"
	"github.com/funvibe/ctorex/pkg/register"
)

// The demo registry mirrors a small signal-processing chain so every CLI
// command has something to instantiate:
//
//	Resample(Momentum(SMA,[100,50,20],[0.2,0.3,0.5]),900)

// MAKind selects the moving-average flavor of a Momentum signal.
type MAKind int

const (
	SMA MAKind = iota
	EMA
	WMA
)

// Signal is the capability shared by every demo type: a scalar signal
// evaluated at a point.
type Signal interface {
	Eval(x float64) float64
}

// Momentum is a weighted blend of moving-average windows.
type Momentum struct {
	Kind    MAKind
	Windows []int64
	Weights []float64
}

func NewMomentum(kind MAKind, windows []int64, weights []float64) (*Momentum, error) {
	if len(windows) != len(weights) {
		return nil, fmt.Errorf("got %d windows but %d weights", len(windows), len(weights))
	}
	return &Momentum{Kind: kind, Windows: windows, Weights: weights}, nil
}

func (m *Momentum) Eval(x float64) float64 {
	sum := 0.0
	for i, w := range m.Windows {
		sum += m.Weights[i] * x / float64(w)
	}
	return sum
}

func (m *Momentum) WindowCount() int64 {
	return int64(len(m.Windows))
}

// Resample wraps a signal and evaluates it on a fixed interval.
type Resample struct {
	Source   Signal
	Interval int64
}

func NewResample(source Signal, interval int64) *Resample {
	return &Resample{Source: source, Interval: interval}
}

func (r *Resample) Eval(x float64) float64 {
	step := float64(r.Interval)
	return r.Source.Eval(float64(int64(x/step)) * step)
}

func (r *Resample) IntervalOf() int64 {
	return r.Interval
}

// defaultInterval is the suggested resampling interval, exposed as a
// static function so foreign callers can query it without an instance.
func defaultInterval() int64 {
	return 900
}

// buildDemoRegistry registers the demo types and enums into a fresh
// registry.
func buildDemoRegistry() (*ctorex.Registry, error) {
	reg := ctorex.NewRegistry()

	err := register.Enum(reg, "MAKind", MAKind(0), []ctorex.EnumSymbol{
		{Label: "SMA", Value: int64(SMA)},
		{Label: "EMA", Value: int64(EMA)},
		{Label: "WMA", Value: int64(WMA)},
	})
	if err != nil {
		return nil, err
	}

	err = register.Type("Momentum").
		Capability("Signal").
		Ctor(NewMomentum).
		Method("eval", (*Momentum).Eval).
		Method("windowCount", (*Momentum).WindowCount).
		Into(reg)
	if err != nil {
		return nil, err
	}

	err = register.Type("Resample").
		Capability("Signal").
		Ctor(NewResample).
		Method("eval", (*Resample).Eval).
		Method("interval", (*Resample).IntervalOf).
		Static("defaultInterval", defaultInterval).
		Into(reg)
	if err != nil {
		return nil, err
	}

	return reg, nil
}
