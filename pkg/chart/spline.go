package chart

// splineSteps is the number of interpolated segments between two points.
const splineSteps = 8

// catmullRom returns a smoothed polyline through the points (xs[i], ys[i])
// using a uniform Catmull-Rom spline. The curve passes through every input
// point; the end tangents reuse the first and last points. Interpolated
// values are clamped to [lo, hi].
func catmullRom(xs, ys []float64, lo, hi float64) ([]float64, []float64) {
	n := len(xs)
	if n < 3 {
		return append([]float64(nil), xs...), append([]float64(nil), ys...)
	}

	outX := make([]float64, 0, (n-1)*splineSteps+1)
	outY := make([]float64, 0, (n-1)*splineSteps+1)
	at := func(i int) (float64, float64) {
		i = max(0, min(n-1, i))
		return xs[i], ys[i]
	}

	for i := 0; i < n-1; i++ {
		x0, y0 := at(i - 1)
		x1, y1 := at(i)
		x2, y2 := at(i + 1)
		x3, y3 := at(i + 2)
		for s := 0; s < splineSteps; s++ {
			t := float64(s) / splineSteps
			outX = append(outX, catmull(x0, x1, x2, x3, t))
			outY = append(outY, clamp(catmull(y0, y1, y2, y3, t), lo, hi))
		}
	}
	outX = append(outX, xs[n-1])
	outY = append(outY, ys[n-1])
	return outX, outY
}

func catmull(p0, p1, p2, p3, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return 0.5 * ((2 * p1) +
		(-p0+p2)*t +
		(2*p0-5*p1+4*p2-p3)*t2 +
		(-p0+3*p1-3*p2+p3)*t3)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
