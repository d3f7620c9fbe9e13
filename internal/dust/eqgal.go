package dust

import "math"

// Rotation from equatorial J2000 to galactic coordinates, IAU 1958
// definition.
var eqToGal = [3][3]float64{
	{-0.054875539726, -0.873437108010, -0.483834985808},
	{+0.494109453312, -0.444829589425, +0.746982251810},
	{-0.867666135858, -0.198076386122, +0.455983795705},
}

// EquatorialToGalactic converts J2000 (RA, Dec) to galactic (l, b).
// All angles are in degrees; l comes back in [0, 360).
func EquatorialToGalactic(ra, dec float64) (gall, galb float64) {
	const radeg = 180 / math.Pi

	cosd := math.Cos(dec / radeg)
	v := [3]float64{
		math.Cos(ra/radeg) * cosd,
		math.Sin(ra/radeg) * cosd,
		math.Sin(dec / radeg),
	}

	var g [3]float64
	for i := 0; i < 3; i++ {
		g[i] = eqToGal[i][0]*v[0] + eqToGal[i][1]*v[1] + eqToGal[i][2]*v[2]
	}

	r := math.Hypot(g[0], g[1])
	if r != 0 {
		gall = math.Atan2(g[1], g[0]) * radeg
	}
	galb = math.Atan2(g[2], r) * radeg

	gall -= 360.0 * math.Floor(gall/360.0)
	return gall, galb
}
