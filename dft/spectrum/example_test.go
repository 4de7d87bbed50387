package spectrum_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dft/dft/spectrum"
	"github.com/cwbudde/algo-dft/dft/transform"
)

func ExampleFullMagnitude() {
	t, err := transform.RealFromSlice([]float64{1, 0, -1, 0})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer t.Close()
	t.Compute()

	for _, m := range spectrum.FullMagnitude(t) {
		fmt.Println(math.Round(m*1000) / 1000)
	}
	// Output:
	// 0
	// 2
	// 0
	// 2
}
