package geom

import "math"

func Abs(v Element) Element {
	if v < 0 {
		return -v
	}
	return v
}

func Clamp(v, min, max Element) Element {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func DegToRad(deg Element) Element {
	return deg * math.Pi / 180
}

func RadToDeg(rad Element) Element {
	return rad * 180 / math.Pi
}
