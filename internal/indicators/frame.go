package indicators

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

// Frame is an annotated bar series: the input bars plus named derived
// columns aligned by position. A Frame is never mutated after construction;
// the With* methods return a new Frame that shares the untouched columns.
type Frame struct {
	bars   []types.OHLCV
	floats map[string][]float64
	ints   map[string][]int
	flags  map[string][]bool
	order  []string
}

// NewFrame builds a Frame over a private copy of bars
func NewFrame(bars []types.OHLCV) *Frame {
	cp := make([]types.OHLCV, len(bars))
	copy(cp, bars)
	return &Frame{
		bars:   cp,
		floats: map[string][]float64{},
		ints:   map[string][]int{},
		flags:  map[string][]bool{},
	}
}

// Len returns the number of bars
func (f *Frame) Len() int {
	return len(f.bars)
}

// Bars returns a copy of the underlying bars
func (f *Frame) Bars() []types.OHLCV {
	cp := make([]types.OHLCV, len(f.bars))
	copy(cp, f.bars)
	return cp
}

// Bar returns the bar at position i
func (f *Frame) Bar(i int) types.OHLCV {
	return f.bars[i]
}

// Columns returns the derived column names in the order they were added
func (f *Frame) Columns() []string {
	cp := make([]string, len(f.order))
	copy(cp, f.order)
	return cp
}

// Has reports whether a base or derived column exists
func (f *Frame) Has(name string) bool {
	if isBaseColumn(name) {
		return true
	}
	if _, ok := f.floats[name]; ok {
		return true
	}
	if _, ok := f.ints[name]; ok {
		return true
	}
	_, ok := f.flags[name]
	return ok
}

// Float returns a copy of a float column. The OHLCV base columns are always available.
func (f *Frame) Float(name string) ([]float64, bool) {
	if isBaseColumn(name) {
		return f.baseColumn(name), true
	}
	col, ok := f.floats[name]
	if !ok {
		return nil, false
	}
	cp := make([]float64, len(col))
	copy(cp, col)
	return cp, true
}

// Int returns a copy of an integer column
func (f *Frame) Int(name string) ([]int, bool) {
	col, ok := f.ints[name]
	if !ok {
		return nil, false
	}
	cp := make([]int, len(col))
	copy(cp, col)
	return cp, true
}

// Flag returns a copy of a boolean column
func (f *Frame) Flag(name string) ([]bool, bool) {
	col, ok := f.flags[name]
	if !ok {
		return nil, false
	}
	cp := make([]bool, len(col))
	copy(cp, col)
	return cp, true
}

// FloatAt returns the value of a float column at position i. Missing
// columns and NaN values report ok=false.
func (f *Frame) FloatAt(name string, i int) (float64, bool) {
	if i < 0 || i >= len(f.bars) {
		return math.NaN(), false
	}
	var v float64
	if isBaseColumn(name) {
		v = baseValue(f.bars[i], name)
	} else {
		col, ok := f.floats[name]
		if !ok {
			return math.NaN(), false
		}
		v = col[i]
	}
	if math.IsNaN(v) {
		return v, false
	}
	return v, true
}

// IntAt returns the value of an integer column at position i
func (f *Frame) IntAt(name string, i int) (int, bool) {
	col, ok := f.ints[name]
	if !ok || i < 0 || i >= len(col) {
		return 0, false
	}
	return col[i], true
}

// FlagAt returns the value of a boolean column at position i
func (f *Frame) FlagAt(name string, i int) (bool, bool) {
	col, ok := f.flags[name]
	if !ok || i < 0 || i >= len(col) {
		return false, false
	}
	return col[i], true
}

// Input returns a float column for use as indicator input. A column that is
// absent or entirely NaN is reported as a MissingColumnError.
func (f *Frame) Input(name string) ([]float64, error) {
	col, ok := f.Float(name)
	if !ok || allNaN(col) {
		return nil, &MissingColumnError{Column: name}
	}
	return col, nil
}

// WithFloat returns a new Frame with the float column set
func (f *Frame) WithFloat(name string, values []float64) *Frame {
	f.checkLen(name, len(values))
	next := f.clone()
	cp := make([]float64, len(values))
	copy(cp, values)
	next.floats[name] = cp
	next.track(name)
	return next
}

// WithInt returns a new Frame with the integer column set
func (f *Frame) WithInt(name string, values []int) *Frame {
	f.checkLen(name, len(values))
	next := f.clone()
	cp := make([]int, len(values))
	copy(cp, values)
	next.ints[name] = cp
	next.track(name)
	return next
}

// WithFlag returns a new Frame with the boolean column set
func (f *Frame) WithFlag(name string, values []bool) *Frame {
	f.checkLen(name, len(values))
	next := f.clone()
	cp := make([]bool, len(values))
	copy(cp, values)
	next.flags[name] = cp
	next.track(name)
	return next
}

func (f *Frame) checkLen(name string, n int) {
	if isBaseColumn(name) {
		panic(fmt.Sprintf("indicators: column %q is a base column", name))
	}
	if n != len(f.bars) {
		panic(fmt.Sprintf("indicators: column %q has %d values for %d bars", name, n, len(f.bars)))
	}
}

// clone copies the column maps; column slices are shared since they are never written
func (f *Frame) clone() *Frame {
	next := &Frame{
		bars:   f.bars,
		floats: make(map[string][]float64, len(f.floats)+1),
		ints:   make(map[string][]int, len(f.ints)+1),
		flags:  make(map[string][]bool, len(f.flags)+1),
		order:  make([]string, len(f.order), len(f.order)+1),
	}
	for k, v := range f.floats {
		next.floats[k] = v
	}
	for k, v := range f.ints {
		next.ints[k] = v
	}
	for k, v := range f.flags {
		next.flags[k] = v
	}
	copy(next.order, f.order)
	return next
}

func (f *Frame) track(name string) {
	for _, n := range f.order {
		if n == name {
			return
		}
	}
	f.order = append(f.order, name)
}

func (f *Frame) baseColumn(name string) []float64 {
	out := make([]float64, len(f.bars))
	for i, b := range f.bars {
		out[i] = baseValue(b, name)
	}
	return out
}

func isBaseColumn(name string) bool {
	switch name {
	case ColOpen, ColHigh, ColLow, ColClose, ColVolume:
		return true
	}
	return false
}

func baseValue(b types.OHLCV, name string) float64 {
	switch name {
	case ColOpen:
		return b.Open
	case ColHigh:
		return b.High
	case ColLow:
		return b.Low
	case ColClose:
		return b.Close
	case ColVolume:
		return b.Volume
	}
	return math.NaN()
}
