package palette

import "math"

// 25^7, used by the G and R_C terms of CIEDE2000.
const pow25To7 = 6103515625.0

// DeltaE76 is the Euclidean distance between two Lab colours.
// It is only good enough for coarse candidate selection.
func DeltaE76(x, y Lab) float64 {
	dl, da, db := x.L-y.L, x.A-y.A, x.B-y.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// DeltaE00 returns the CIEDE2000 colour difference with kL = kC = kH = 1.
func DeltaE00(x, y Lab) float64 {
	c1 := math.Hypot(x.A, x.B)
	c2 := math.Hypot(y.A, y.B)
	cBar7 := math.Pow((c1+c2)/2, 7)
	g := 0.5 * (1 - math.Sqrt(cBar7/(cBar7+pow25To7)))

	a1p := (1 + g) * x.A
	a2p := (1 + g) * y.A
	c1p := math.Hypot(a1p, x.B)
	c2p := math.Hypot(a2p, y.B)
	h1p := primeHue(x.B, a1p)
	h2p := primeHue(y.B, a2p)
	cpProduct := c1p * c2p

	dLp := y.L - x.L
	dCp := c2p - c1p
	dhp := 0.0
	if cpProduct != 0 {
		dhp = h2p - h1p
		if dhp > 180 {
			dhp -= 360
		} else if dhp < -180 {
			dhp += 360
		}
	}
	dHp := 2 * math.Sqrt(cpProduct) * math.Sin(deg2Rad(dhp/2))

	lBarp := (x.L + y.L) / 2
	cBarp := (c1p + c2p) / 2
	hBarp := h1p + h2p
	if cpProduct != 0 {
		switch {
		case math.Abs(h1p-h2p) <= 180:
			hBarp /= 2
		case hBarp < 360:
			hBarp = (hBarp + 360) / 2
		default:
			hBarp = (hBarp - 360) / 2
		}
	}

	t := 1 -
		0.17*math.Cos(deg2Rad(hBarp-30)) +
		0.24*math.Cos(deg2Rad(2*hBarp)) +
		0.32*math.Cos(deg2Rad(3*hBarp+6)) -
		0.20*math.Cos(deg2Rad(4*hBarp-63))
	dTheta := 30 * math.Exp(-math.Pow((hBarp-275)/25, 2))
	cBarp7 := math.Pow(cBarp, 7)
	rc := 2 * math.Sqrt(cBarp7/(cBarp7+pow25To7))
	l50 := (lBarp - 50) * (lBarp - 50)
	sl := 1 + 0.015*l50/math.Sqrt(20+l50)
	sc := 1 + 0.045*cBarp
	sh := 1 + 0.015*cBarp*t
	rt := -math.Sin(deg2Rad(2*dTheta)) * rc

	lt, ct, ht := dLp/sl, dCp/sc, dHp/sh
	return math.Sqrt(lt*lt + ct*ct + ht*ht + rt*ct*ht)
}

// HueDistance is the shortest angular distance between two hues, in [0, 180].
func HueDistance(h1, h2 float64) float64 {
	d := math.Abs(h1 - h2)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// primeHue is atan2(b, a′) in degrees, 0 for the achromatic case.
func primeHue(b, ap float64) float64 {
	if b == 0 && ap == 0 {
		return 0
	}
	h := math.Atan2(b, ap) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h
}

func deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180
}
