package object

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-cilrun/internal/metadata"
)

// Array is an interpreted object carrying element type, rank,
// length(s), lower bounds, and a densely packed value storage slice.
type Array struct {
	Type        *metadata.TypeDescriptor // the array's own type descriptor (Kind == KindArray)
	ElementType *metadata.TypeDescriptor
	Rank        int
	Lengths     []int
	LowerBounds []int
	Data        []Value
}

func (*Array) ilValue() {}

// DebugString renders the array contents.
func (a *Array) DebugString() string {
	parts := make([]string, len(a.Data))
	for i, v := range a.Data {
		parts[i] = v.DebugString()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// NewArray allocates a zero-initialized single-dimension array
// (the common `newarr` case; multi-dimensional arrays extend Rank and
// Lengths but reuse the same flat Data storage with row-major
// indexing via FlatIndex).
func NewArray(arrayType, elemType *metadata.TypeDescriptor, length int) *Array {
	a := &Array{
		Type:        arrayType,
		ElementType: elemType,
		Rank:        1,
		Lengths:     []int{length},
		LowerBounds: []int{0},
		Data:        make([]Value, length),
	}
	for i := range a.Data {
		a.Data[i] = ZeroValue(elemType)
	}
	return a
}

// NewArrayRank allocates a zero-initialized multi-dimensional array.
func NewArrayRank(arrayType, elemType *metadata.TypeDescriptor, lengths, lowerBounds []int) *Array {
	total := 1
	for _, l := range lengths {
		total *= l
	}
	lb := lowerBounds
	if lb == nil {
		lb = make([]int, len(lengths))
	}
	a := &Array{
		Type:        arrayType,
		ElementType: elemType,
		Rank:        len(lengths),
		Lengths:     lengths,
		LowerBounds: lb,
		Data:        make([]Value, total),
	}
	for i := range a.Data {
		a.Data[i] = ZeroValue(elemType)
	}
	return a
}

// Len returns the total element count (product of all dimension
// lengths) — what `ldlen` reports.
func (a *Array) Len() int { return len(a.Data) }

// FlatIndex converts a per-dimension index vector to a flat Data
// offset using row-major layout, bounds-checking against each
// dimension's length and lower bound.
func (a *Array) FlatIndex(indices []int) (int, error) {
	if len(indices) != a.Rank {
		return 0, fmt.Errorf("array rank mismatch: got %d indices, rank is %d", len(indices), a.Rank)
	}
	offset := 0
	for dim := 0; dim < a.Rank; dim++ {
		i := indices[dim] - a.LowerBounds[dim]
		if i < 0 || i >= a.Lengths[dim] {
			return 0, &IndexOutOfRangeError{Index: indices[dim], Length: a.Lengths[dim], Dimension: dim}
		}
		offset = offset*a.Lengths[dim] + i
	}
	return offset, nil
}

// Get reads a[indices...].
func (a *Array) Get(indices ...int) (Value, error) {
	idx, err := a.FlatIndex(indices)
	if err != nil {
		return nil, err
	}
	return a.Data[idx], nil
}

// Set writes a[indices...] = v.
func (a *Array) Set(v Value, indices ...int) error {
	idx, err := a.FlatIndex(indices)
	if err != nil {
		return err
	}
	a.Data[idx] = v
	return nil
}

// IndexOutOfRangeError is the managed IndexOutOfRangeException
// surfaced by out-of-bounds array access.
type IndexOutOfRangeError struct {
	Index, Length, Dimension int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("IndexOutOfRangeException: index %d out of range for dimension %d with length %d",
		e.Index, e.Dimension, e.Length)
}
