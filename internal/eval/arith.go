package eval

import "math"

// addInt returns x+y and false if the sum overflows.
func addInt(x, y int64) (int64, bool) {
	s := x + y
	if (y > 0 && s < x) || (y < 0 && s > x) {
		return 0, false
	}
	return s, true
}

// subInt returns x-y and false if the difference overflows.
func subInt(x, y int64) (int64, bool) {
	d := x - y
	if (y > 0 && d > x) || (y < 0 && d < x) {
		return 0, false
	}
	return d, true
}

// mulInt returns x*y and false if the product overflows.
func mulInt(x, y int64) (int64, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}
	if (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
		return 0, false
	}
	p := x * y
	if p/y != x {
		return 0, false
	}
	return p, true
}
