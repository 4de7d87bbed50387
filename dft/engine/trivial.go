package engine

// TrivialKernel returns the kernel for transforms of length 0 and 1, which
// every backend handles the same way: length 0 does nothing and length 1 is
// the identity. ok is false for longer transforms. req must be valid.
func TrivialKernel(req PlanRequest) (kernel func(), ok bool) {
	switch req.Length {
	case 0:
		return func() {}, true
	case 1:
	default:
		return nil, false
	}

	in, out := req.Kinds()
	switch {
	case in == Real:
		src, dst := req.Input.Reals(), req.Output.Complexes()
		return func() { dst[0] = complex(src[0], 0) }, true
	case out == Real:
		src, dst := req.Input.Complexes(), req.Output.Reals()
		return func() { dst[0] = real(src[0]) }, true
	default:
		src, dst := req.Input.Complexes(), req.Output.Complexes()
		return func() { dst[0] = src[0] }, true
	}
}
