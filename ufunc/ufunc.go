// Package ufunc provides elementwise kernels over gonum matrices with an
// optional output buffer.
//
// Every kernel follows the same buffer rule:
//   - dst == nil: a new matrix is allocated for the result.
//   - dst == src (the same *mat.Dense): the result overwrites src in place,
//     without any temporary workspace.
//   - otherwise dst receives the result; it must be empty or have src's shape.
//
// The in-place case walks the raw row-major slice directly. gonum's own
// Dense.Apply isolates an aliased receiver into a scratch copy, which would
// defeat the point of computing in place.
package ufunc

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scibench/pkg/errors"
)

// Func is a scalar function applied to each element.
type Func func(float64) float64

// Apply writes fn(src[i,j]) into dst following the package buffer rule and
// returns the matrix holding the result. An empty src yields an empty result
// and is rejected when dst already has a shape.
func Apply(dst *mat.Dense, fn Func, src mat.Matrix) (*mat.Dense, error) {
	if src == nil {
		return nil, errors.NewValueError("ufunc.Apply", "source matrix is nil")
	}
	if fn == nil {
		return nil, errors.NewValueError("ufunc.Apply", "function is nil")
	}

	r, c := src.Dims()
	if r == 0 || c == 0 {
		if dst == nil {
			return &mat.Dense{}, nil
		}
		if !dst.IsEmpty() {
			dr, dc := dst.Dims()
			if dr != r {
				return nil, errors.NewDimensionError("ufunc.Apply", r, dr, 0)
			}
			return nil, errors.NewDimensionError("ufunc.Apply", c, dc, 1)
		}
		return dst, nil
	}

	if dst == nil {
		dst = mat.NewDense(r, c, nil)
	} else if !dst.IsEmpty() {
		dr, dc := dst.Dims()
		if dr != r {
			return nil, errors.NewDimensionError("ufunc.Apply", r, dr, 0)
		}
		if dc != c {
			return nil, errors.NewDimensionError("ufunc.Apply", c, dc, 1)
		}
	} else {
		dst.ReuseAs(r, c)
	}

	if s, ok := src.(*mat.Dense); ok && s == dst {
		applyInPlace(dst, fn)
		return dst, nil
	}

	dst.Apply(func(_, _ int, v float64) float64 { return fn(v) }, src)
	return dst, nil
}

// applyInPlace overwrites every element of m with fn of itself.
func applyInPlace(m *mat.Dense, fn Func) {
	raw := m.RawMatrix()
	if raw.Stride == raw.Cols {
		data := raw.Data[:raw.Rows*raw.Cols]
		for i, v := range data {
			data[i] = fn(v)
		}
		return
	}
	for i := 0; i < raw.Rows; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
		for j, v := range row {
			row[j] = fn(v)
		}
	}
}

// Cos computes the elementwise cosine.
func Cos(dst *mat.Dense, src mat.Matrix) (*mat.Dense, error) {
	return Apply(dst, math.Cos, src)
}

// Sin computes the elementwise sine.
func Sin(dst *mat.Dense, src mat.Matrix) (*mat.Dense, error) {
	return Apply(dst, math.Sin, src)
}

// Pow raises every element to the power p.
func Pow(dst *mat.Dense, src mat.Matrix, p float64) (*mat.Dense, error) {
	return Apply(dst, func(v float64) float64 { return math.Pow(v, p) }, src)
}
