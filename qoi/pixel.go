package qoi

type pixel [4]byte

var startPixel = pixel{0, 0, 0, 255}

func (p pixel) R() byte {
	return p[0]
}

func (p pixel) G() byte {
	return p[1]
}

func (p pixel) B() byte {
	return p[2]
}

func (p pixel) A() byte {
	return p[3]
}

// the mulX methods allow for some compiler magic to minimally enhance performance. Also helps with profiling
func (p pixel) mulR() byte {
	return p.R() * 3
}

func (p pixel) mulG() byte {
	return p.G() * 5
}

func (p pixel) mulB() byte {
	return p.B() * 7
}

func (p pixel) mulA() byte {
	return p.A() * 11
}

// Add applies wrapping per-channel deltas.
func (p *pixel) Add(r, g, b byte) {
	p[0] += r
	p[1] += g
	p[2] += b
}

// Minus returns the wrapping per-channel difference p-p2.
func (p pixel) Minus(p2 pixel) (r, g, b, a int8) {
	return int8(p.R() - p2.R()), int8(p.G() - p2.G()), int8(p.B() - p2.B()), int8(p.A() - p2.A())
}

func (p pixel) Hash() byte {
	return (p.mulR() + p.mulG() + p.mulB() + p.mulA()) % windowLength
}
