package engine

// ExpandHermitian writes the full n-point spectrum of a real sequence into
// dst from its stored half-spectrum. half must hold n/2+1 bins and dst n
// bins; bins above n/2 are the conjugates of their mirror partners.
func ExpandHermitian(dst, half []complex128) {
	n := len(dst)
	stored := min(len(half), n)
	copy(dst, half[:stored])
	for k := stored; k < n; k++ {
		c := half[n-k]
		dst[k] = complex(real(c), -imag(c))
	}
}
