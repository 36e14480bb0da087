package mathx

import (
	"math"
	"testing"
)

func TestMulMat(t *testing.T) {
	a := Mat{{1, 2}, {3, 4}}
	b := Mat{{5, 6}, {7, 8}}
	got := MulMat(a, b)
	want := Mat{{19, 22}, {43, 50}}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("got[%d][%d] = %f, want %f", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestTranspose(t *testing.T) {
	a := Mat{{1, 2, 3}, {4, 5, 6}}
	at := Transpose(a)
	if len(at) != 3 || len(at[0]) != 2 {
		t.Fatalf("transpose shape = %dx%d, want 3x2", len(at), len(at[0]))
	}
	if at[2][1] != 6 {
		t.Errorf("at[2][1] = %f, want 6", at[2][1])
	}
}

func TestGramMatchesExplicitProduct(t *testing.T) {
	a := Mat{{1, 2}, {3, 4}, {5, 6}}
	got := Gram(a)
	want := MulMat(Transpose(a), a)
	for i := range want {
		for j := range want[i] {
			if math.Abs(got[i][j]-want[i][j]) > 1e-12 {
				t.Errorf("gram[%d][%d] = %f, want %f", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestSolve(t *testing.T) {
	// 2x + y = 5, x + 3y = 10 -> x = 1, y = 3
	a := Mat{{2, 1}, {1, 3}}
	b := Mat{{5}, {10}}
	x, err := Solve(a, b)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if math.Abs(x[0][0]-1) > 1e-12 || math.Abs(x[1][0]-3) > 1e-12 {
		t.Errorf("x = [%f, %f], want [1, 3]", x[0][0], x[1][0])
	}
}

func TestSolveSingular(t *testing.T) {
	a := Mat{{1, 2}, {2, 4}}
	b := Mat{{1}, {2}}
	if _, err := Solve(a, b); err == nil {
		t.Error("expected error for singular matrix")
	}
}

func TestSolveRidgeSystem(t *testing.T) {
	// (H^T H + lambda I) W = H^T Y should be solvable even when H^T H
	// alone is rank deficient.
	h := Mat{{1, 1}, {1, 1}, {1, 1}}
	y := Mat{{1}, {0}, {1}}
	gram := Gram(h)
	AddDiag(gram, 0.1)
	rhs := MulMat(Transpose(h), y)
	w, err := Solve(gram, rhs)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if math.IsNaN(w[0][0]) || math.IsInf(w[0][0], 0) {
		t.Errorf("non-finite solution %f", w[0][0])
	}
}
