package frac

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
)

func TestReduce(t *testing.T) {
	cases := []struct {
		numer     int64
		denom     uint64
		wantNumer int64
		wantDenom uint64
	}{
		{4, 2, 2, 1},
		{2500, 15, 500, 3},
		{-777, 21, -37, 1},
	}
	for _, c := range cases {
		got := New(c.numer, c.denom)
		if got.Numer != c.wantNumer || got.Denom != c.wantDenom {
			t.Errorf("New(%d,%d) = %d/%d, want %d/%d", c.numer, c.denom, got.Numer, got.Denom, c.wantNumer, c.wantDenom)
		}
	}
}

func TestRound(t *testing.T) {
	cases := []struct {
		numer int64
		denom uint64
		want  int64
	}{
		{249, 100, 2},
		{250, 100, 3},
		{251, 100, 3},
		{-249, 100, -2},
		{-250, 100, -3},
		{-251, 100, -3},
		{252, 101, 2},
		{253, 101, 3},
		{-252, 101, -2},
		{-253, 101, -3},
	}
	for _, c := range cases {
		got := New(c.numer, c.denom).Round()
		if got != c.want {
			t.Errorf("New(%d,%d).Round() = %d, want %d", c.numer, c.denom, got, c.want)
		}
	}
}

func TestTheBadOnes(t *testing.T) {
	nan := NaN
	inf := Inf(1)
	negInf := Inf(-1)

	if !math.IsNaN(nan.Float64()) {
		t.Error("NaN.Float64() should be NaN")
	}
	if !math.IsInf(inf.Float64(), 1) {
		t.Error("Inf(1).Float64() should be +Inf")
	}
	if !math.IsInf(negInf.Float64(), -1) {
		t.Error("Inf(-1).Float64() should be -Inf")
	}

	ops := []struct {
		name string
		fn   func(a, b Fraction) Fraction
	}{
		{"add", Fraction.Add},
		{"sub", Fraction.Sub},
		{"mul", Fraction.Mul},
		{"div", Fraction.Div},
	}
	values := map[string]Fraction{"nan": nan, "inf": inf, "neginf": negInf}
	floats := map[string]float64{"nan": math.NaN(), "inf": math.Inf(1), "neginf": math.Inf(-1)}

	for xn, x := range values {
		for yn, y := range values {
			for _, op := range ops {
				got := op.fn(x, y)
				var want float64
				switch op.name {
				case "add":
					want = floats[xn] + floats[yn]
				case "sub":
					want = floats[xn] - floats[yn]
				case "mul":
					want = floats[xn] * floats[yn]
				case "div":
					want = floats[xn] / floats[yn]
				}
				switch {
				case math.IsNaN(want):
					if !got.IsNaN() {
						t.Errorf("%s(%s,%s) = %v, want NaN", op.name, xn, yn, got)
					}
				case math.IsInf(want, 1):
					if !got.IsInf() || got.Numer < 0 {
						t.Errorf("%s(%s,%s) = %v, want +inf", op.name, xn, yn, got)
					}
				case math.IsInf(want, -1):
					if !got.IsInf() || got.Numer > 0 {
						t.Errorf("%s(%s,%s) = %v, want -inf", op.name, xn, yn, got)
					}
				}
			}
		}
	}
}

func TestArithmeticApproximatesFloat(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	ops := []struct {
		name string
		fn   func(a, b Fraction) Fraction
		f    func(a, b float64) float64
	}{
		{"add", Fraction.Add, func(a, b float64) float64 { return a + b }},
		{"sub", Fraction.Sub, func(a, b float64) float64 { return a - b }},
		{"mul", Fraction.Mul, func(a, b float64) float64 { return a * b }},
		{"div", Fraction.Div, func(a, b float64) float64 { return a / b }},
	}
	for i := 0; i < 2000; i++ {
		a := int64(rnd.Int31())
		b := uint64(rnd.Uint32())
		c := int64(rnd.Int31())
		d := uint64(rnd.Uint32())
		x := New(a, b)
		y := New(c, d)
		for _, op := range ops {
			got := op.fn(x, y)
			if got.IsOverflow() {
				continue
			}
			want := op.f(float64(a)/float64(b), float64(c)/float64(d))
			gf := got.Float64()
			if math.IsNaN(want) {
				if !math.IsNaN(gf) {
					t.Fatalf("%s(%d/%d,%d/%d): got %v, want NaN", op.name, a, b, c, d, gf)
				}
				continue
			}
			if math.IsInf(want, 0) {
				if !math.IsInf(gf, 0) || math.Signbit(want) != math.Signbit(gf) {
					t.Fatalf("%s(%d/%d,%d/%d): got %v, want %v", op.name, a, b, c, d, gf, want)
				}
				continue
			}
			if diff := math.Abs(gf - want); diff > 3e-8*math.Max(1, math.Abs(want)) {
				t.Fatalf("%s(%d/%d,%d/%d): got %v, want %v (diff %v)", op.name, a, b, c, d, gf, want, diff)
			}
		}
	}
}

func TestDisplay(t *testing.T) {
	cases := []struct {
		f    Fraction
		want string
	}{
		{New(256, 597), ".429"},
		{New(0, 0), "NaN"},
		{New(1, 0), "inf"},
		{New(-1, 0), "-inf"},
	}
	for _, c := range cases {
		got := fmt.Sprintf("%v", c.f)
		if got != c.want {
			t.Errorf("Format(%d/%d) = %q, want %q", c.f.Numer, c.f.Denom, got, c.want)
		}
	}
}
