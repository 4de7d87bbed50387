package transform_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dft/dft/transform"
)

func round(v complex128) complex128 {
	r := func(x float64) float64 { return math.Round(x*1000) / 1000 }
	return complex(r(real(v))+0, r(imag(v))+0)
}

func ExampleRealFromSlice() {
	t, err := transform.RealFromSlice([]float64{1, 1, 1, 1})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer t.Close()

	half, ok := t.Compute()
	fmt.Println(ok, half.Len())
	for bin := range transform.Spectrum(t) {
		fmt.Println(round(bin))
	}
	// Output:
	// true 3
	// (4+0i)
	// (0+0i)
	// (0+0i)
	// (0+0i)
}

func ExampleTransform_Compute() {
	t, err := transform.NewComplexForward(2)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer t.Close()

	in := t.MutableInput()
	in.Push(1)
	_, ok := t.Compute()
	fmt.Println("half full:", ok)

	in.Push(-1)
	out, ok := t.Compute()
	fmt.Println("full:", ok)
	for _, bin := range out.All() {
		fmt.Println(round(bin))
	}
	// Output:
	// half full: false
	// full: true
	// (0+0i)
	// (2+0i)
}
