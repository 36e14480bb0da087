package mathx

import (
	"fmt"
	"math"
)

// Vec is a float64 vector.
type Vec = []float64

// Mat is a 2D float64 matrix stored as row-major [][]float64.
type Mat = [][]float64

// NewMat creates a rows x cols matrix initialized to zero.
// Rows share one backing array so the matrix is a single allocation.
func NewMat(rows, cols int) Mat {
	m := make(Mat, rows)
	data := make([]float64, rows*cols)
	for i := range m {
		m[i] = data[i*cols : (i+1)*cols]
	}
	return m
}

// Dot returns the dot product of a and b.
func Dot(a, b Vec) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// MulMat returns the matrix product a (m x k) times b (k x n).
func MulMat(a, b Mat) Mat {
	m := len(a)
	k := len(b)
	n := len(b[0])
	out := NewMat(m, n)
	for i := 0; i < m; i++ {
		row := out[i]
		for p := 0; p < k; p++ {
			v := a[i][p]
			if v == 0 {
				continue
			}
			bp := b[p]
			for j := 0; j < n; j++ {
				row[j] += v * bp[j]
			}
		}
	}
	return out
}

// MulMatVec returns the product a (m x n) times x (n).
func MulMatVec(a Mat, x Vec) Vec {
	out := make(Vec, len(a))
	for i := range a {
		out[i] = Dot(a[i], x)
	}
	return out
}

// Transpose returns the transpose of a.
func Transpose(a Mat) Mat {
	if len(a) == 0 {
		return nil
	}
	out := NewMat(len(a[0]), len(a))
	for i := range a {
		for j, v := range a[i] {
			out[j][i] = v
		}
	}
	return out
}

// Gram returns a^T a for a (m x n), an n x n symmetric matrix.
func Gram(a Mat) Mat {
	if len(a) == 0 {
		return nil
	}
	n := len(a[0])
	out := NewMat(n, n)
	for _, row := range a {
		for i := 0; i < n; i++ {
			ri := row[i]
			if ri == 0 {
				continue
			}
			oi := out[i]
			for j := i; j < n; j++ {
				oi[j] += ri * row[j]
			}
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			out[i][j] = out[j][i]
		}
	}
	return out
}

// AddDiag adds val to every diagonal entry of the square matrix a, in place.
func AddDiag(a Mat, val float64) {
	for i := range a {
		a[i][i] += val
	}
}

// Solve solves the linear system a x = b for x, where a is n x n and
// b is n x m (m right-hand sides). Uses Gaussian elimination with
// partial pivoting. a and b are modified in place; the returned matrix
// aliases b.
func Solve(a, b Mat) (Mat, error) {
	n := len(a)
	if n == 0 || len(b) != n {
		return nil, fmt.Errorf("mathx: dimension mismatch: a is %dx?, b has %d rows", n, len(b))
	}
	for col := 0; col < n; col++ {
		// Partial pivot
		pivot := col
		maxAbs := math.Abs(a[col][col])
		for r := col + 1; r < n; r++ {
			if abs := math.Abs(a[r][col]); abs > maxAbs {
				maxAbs = abs
				pivot = r
			}
		}
		if maxAbs < 1e-300 {
			return nil, fmt.Errorf("mathx: singular matrix at column %d", col)
		}
		if pivot != col {
			a[col], a[pivot] = a[pivot], a[col]
			b[col], b[pivot] = b[pivot], b[col]
		}
		inv := 1.0 / a[col][col]
		for r := col + 1; r < n; r++ {
			f := a[r][col] * inv
			if f == 0 {
				continue
			}
			a[r][col] = 0
			for c := col + 1; c < n; c++ {
				a[r][c] -= f * a[col][c]
			}
			for c := range b[r] {
				b[r][c] -= f * b[col][c]
			}
		}
	}
	// Back substitution
	for col := n - 1; col >= 0; col-- {
		inv := 1.0 / a[col][col]
		for c := range b[col] {
			b[col][c] *= inv
		}
		for r := 0; r < col; r++ {
			f := a[r][col]
			if f == 0 {
				continue
			}
			for c := range b[r] {
				b[r][c] -= f * b[col][c]
			}
		}
	}
	return b, nil
}
