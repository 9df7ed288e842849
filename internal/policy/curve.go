package policy

import (
	"sort"

	"codeberg.org/mutker/r730fanctl/internal/errors"
)

const (
	minDutyCycle = 0
	maxDutyCycle = 100
)

// Point maps an integer CPU temperature to a fan duty cycle percentage.
type Point struct {
	Temperature int `mapstructure:"temperature" json:"temperature" yaml:"temperature"`
	DutyCycle   int `mapstructure:"duty_cycle" json:"duty_cycle" yaml:"duty_cycle"`
}

// Curve is a validated duty cycle curve over a contiguous temperature band.
type Curve struct {
	points []Point
	duty   map[int]int
}

// NewCurve sorts and validates points. Temperatures must be unique and
// contiguous, duty cycles within 0..100 and non-decreasing with temperature.
func NewCurve(points []Point) (Curve, error) {
	errFactory := errors.New()

	if len(points) == 0 {
		return Curve{}, errFactory.WithMessage(errors.ErrInvalidCurve, "duty cycle curve is empty")
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Temperature < sorted[j].Temperature
	})

	duty := make(map[int]int, len(sorted))
	for i, p := range sorted {
		if p.DutyCycle < minDutyCycle || p.DutyCycle > maxDutyCycle {
			return Curve{}, errFactory.WithData(errors.ErrInvalidCurve, p).
				WithMessage("duty cycle out of range 0-100")
		}
		if i > 0 {
			prev := sorted[i-1]
			switch {
			case p.Temperature == prev.Temperature:
				return Curve{}, errFactory.WithData(errors.ErrInvalidCurve, p).
					WithMessage("duplicate curve temperature")
			case p.Temperature != prev.Temperature+1:
				return Curve{}, errFactory.WithData(errors.ErrInvalidCurve, p).
					WithMessage("curve temperatures are not contiguous")
			case p.DutyCycle < prev.DutyCycle:
				return Curve{}, errFactory.WithData(errors.ErrInvalidCurve, p).
					WithMessage("duty cycle decreases as temperature rises")
			}
		}
		duty[p.Temperature] = p.DutyCycle
	}

	return Curve{points: sorted, duty: duty}, nil
}

// MustCurve is NewCurve for known-good literals.
func MustCurve(points ...Point) Curve {
	c, err := NewCurve(points)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the duty cycle for an exact temperature key.
func (c Curve) Lookup(temperature int) (int, bool) {
	d, ok := c.duty[temperature]
	return d, ok
}

// Lowest returns the smallest duty cycle on the curve.
func (c Curve) Lowest() int {
	return c.points[0].DutyCycle
}

// MinTemperature returns the lowest temperature key.
func (c Curve) MinTemperature() int {
	return c.points[0].Temperature
}

// MaxTemperature returns the highest temperature key, which is also the
// CPU safety ceiling.
func (c Curve) MaxTemperature() int {
	return c.points[len(c.points)-1].Temperature
}

// Points returns a copy of the curve in ascending temperature order.
func (c Curve) Points() []Point {
	out := make([]Point, len(c.points))
	copy(out, c.points)
	return out
}
