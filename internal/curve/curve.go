package curve

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidLevel is returned when a level has no curve.
var ErrInvalidLevel = errors.New("invalid level")

// Level bounds of the built-in table.
const (
	MinLevel = 2
	MaxLevel = 10
)

// Curve is an ordered list of target speeds (km/h), one per lap.
type Curve []float64

// Table maps a level to its speed curve. Entries are never mutated.
type Table map[int]Curve

// Default speed curves: each level rises, peaks, then tapers.
var Default = Table{
	2:  {2.0, 2.5, 3.0, 3.5, 4.0, 4.5, 5.0, 5.3, 5.6, 5.9, 6.2, 6.5, 6.8, 6.5, 6.0, 5.5, 5.0, 4.5, 4.0, 3.5},
	3:  {3.0, 3.5, 4.0, 4.5, 5.0, 5.5, 6.0, 6.3, 6.6, 6.9, 7.2, 7.5, 7.8, 8.1, 7.5, 7.0, 6.5, 6.0, 5.5, 5.0, 4.5},
	4:  {4.0, 4.5, 5.0, 5.5, 6.0, 6.3, 7.0, 7.3, 7.6, 7.9, 8.2, 8.5, 8.8, 9.1, 9.4, 9.0, 8.5, 8.0, 7.5, 7.0, 6.5, 6.0, 5.5},
	5:  {5.0, 5.5, 6.0, 6.5, 7.0, 7.5, 8.0, 8.3, 8.6, 8.9, 9.2, 9.5, 9.8, 10.1, 10.4, 10.7, 10.5, 10.0, 9.5, 9.0, 8.5, 8.0, 7.5, 7.0, 6.5},
	6:  {6.0, 6.5, 7.0, 7.5, 8.0, 8.5, 9.0, 9.3, 9.6, 9.9, 10.2, 10.5, 10.8, 11.1, 11.4, 11.7, 12.1, 11.5, 11.0, 10.5, 10.0, 9.5, 9.0, 8.5, 8.0, 7.5},
	7:  {7.0, 7.5, 8.0, 8.5, 9.0, 9.5, 10.0, 10.3, 10.6, 10.9, 11.2, 11.5, 11.8, 12.1, 12.4, 12.7, 13.0, 12.5, 12.0, 11.5, 11.0, 10.5, 10.0, 9.5, 9.0, 8.5},
	8:  {8.0, 8.5, 9.0, 9.5, 10.0, 10.5, 11.0, 11.3, 11.6, 11.9, 12.2, 12.5, 12.8, 13.1, 13.4, 13.7, 14.0, 13.5, 13.0, 12.5, 12.0, 11.5, 11.0, 10.5, 10.0, 9.5, 9.0},
	9:  {9.0, 9.5, 10.0, 10.5, 11.0, 11.5, 12.0, 12.3, 12.6, 12.9, 13.2, 13.5, 13.8, 14.1, 14.4, 14.7, 15.0, 14.5, 14.0, 13.5, 13.0, 12.5, 12.0, 11.5, 11.0, 10.5, 10.0},
	10: {10.0, 10.5, 11.0, 11.5, 12.0, 12.5, 13.0, 13.3, 13.6, 13.9, 14.2, 14.5, 14.8, 15.1, 15.4, 15.7, 16.0, 15.5, 15.0, 14.5, 14.0, 13.5, 13.0, 12.5, 12.0, 11.5, 11.0},
}

// Lookup returns a copy of the curve for level.
func (t Table) Lookup(level int) (Curve, error) {
	c, ok := t[level]
	if !ok || len(c) == 0 {
		return nil, fmt.Errorf("%w %d: valid levels are %v", ErrInvalidLevel, level, t.Levels())
	}
	out := make(Curve, len(c))
	copy(out, c)
	return out, nil
}

// Levels lists the defined levels in ascending order.
func (t Table) Levels() []int {
	levels := make([]int, 0, len(t))
	for l := range t {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	return levels
}

// Lookup resolves a level against the default table.
func Lookup(level int) (Curve, error) {
	return Default.Lookup(level)
}
