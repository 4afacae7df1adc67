package vec

import "github.com/chewxy/math32"

// AngleMod folds a degrees value into [0,360).
func AngleMod(a float32) float32 {
	return a - math32.Floor(a/360)*360
}

type Number interface {
	int64 | float64 | float32 | int
}

func Clamp[K Number](min, val, max K) K {
	if min > val {
		return min
	} else if max < val {
		return max
	}
	return val
}

// Lerp3f is the scalar analogue of Lerp, used to interpolate trace
// fractions alongside the corresponding Vec3 position.
func Lerp3f(a, b, frac float32) float32 {
	return a + (b-a)*frac
}
