// Package progress turns a client's raw session history into the
// derived values the evolution chart and the printable report show:
// per-point before/after series, first/last valid entries, the overall
// variation and first-vs-last comparisons.
package progress

import (
	"math"
	"sort"
	"time"

	"github.com/elleandro/studio-admin/internal/praxis"
)

// Point is one of the eight fixed body measurement points.
type Point string

const (
	PointRightArm   Point = "braco_direito"
	PointLeftArm    Point = "braco_esquerdo"
	PointHip        Point = "quadril"
	PointGlutes     Point = "gluteos"
	PointRightThigh Point = "coxa_direita"
	PointLeftThigh  Point = "coxa_esquerda"
	PointRightLeg   Point = "perna_direita"
	PointLeftLeg    Point = "perna_esquerda"
)

var pointLabels = map[Point]string{
	PointRightArm:   "Braço direito",
	PointLeftArm:    "Braço esquerdo",
	PointHip:        "Quadril",
	PointGlutes:     "Glúteos",
	PointRightThigh: "Coxa direita",
	PointLeftThigh:  "Coxa esquerda",
	PointRightLeg:   "Perna direita",
	PointLeftLeg:    "Perna esquerda",
}

// Points returns all body points in their fixed display order.
func Points() []Point {
	return []Point{
		PointRightArm, PointLeftArm,
		PointHip, PointGlutes,
		PointRightThigh, PointLeftThigh,
		PointRightLeg, PointLeftLeg,
	}
}

func (p Point) Label() string {
	return pointLabels[p]
}

func ParsePoint(s string) (Point, bool) {
	p := Point(s)
	_, ok := pointLabels[p]
	return p, ok
}

// Row is one session annotated with the selected point's values.
type Row struct {
	SessionID int64
	Date      time.Time
	DateRaw   string
	Before    *float64
	After     *float64
	Pain      *float64
	Swelling  *float64
	LegWeight *float64
}

// Delta is the within-session change for the row's point, nil unless
// both before and after are present.
func (r Row) Delta() *float64 {
	return delta(r.Before, r.After)
}

// HasValue reports whether the row carries any value for its point.
func (r Row) HasValue() bool {
	return r.Before != nil || r.After != nil
}

// History is a client's session sequence for one selected point,
// ordered by session time ascending.
type History struct {
	Point Point
	Rows  []Row
}

// BuildHistory sorts the sessions by time and extracts the selected
// point's measurement from each. Sessions with unparseable timestamps
// sort first (as zero time) rather than being dropped.
func BuildHistory(sessions []praxis.EvolutionSession, point Point) History {
	rows := make([]Row, 0, len(sessions))
	for _, s := range sessions {
		row := Row{
			SessionID: s.ID,
			Date:      ParseDate(s.Date),
			DateRaw:   s.Date,
			Pain:      s.Pain,
			Swelling:  s.Swelling,
			LegWeight: s.LegWeight,
		}
		for _, m := range s.Measurements {
			if Point(m.Point) == point {
				row.Before = m.Before
				row.After = m.After
				break
			}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	return History{Point: point, Rows: rows}
}

// FirstValid returns the earliest row with any value for the point,
// or nil when no session measured it.
func (h History) FirstValid() *Row {
	for i := range h.Rows {
		if h.Rows[i].HasValue() {
			return &h.Rows[i]
		}
	}
	return nil
}

// LastValid returns the latest row with any value for the point.
func (h History) LastValid() *Row {
	for i := len(h.Rows) - 1; i >= 0; i-- {
		if h.Rows[i].HasValue() {
			return &h.Rows[i]
		}
	}
	return nil
}

// Variation is the overall change for the point across the whole
// history: the start prefers the first valid "before" (falling back to
// "after"), the end prefers the last valid "after" (falling back to
// "before"). Nil when the point was never measured.
func (h History) Variation() *float64 {
	first := h.FirstValid()
	last := h.LastValid()
	if first == nil || last == nil {
		return nil
	}

	start := first.Before
	if start == nil {
		start = first.After
	}
	end := last.After
	if end == nil {
		end = last.Before
	}
	if start == nil || end == nil {
		return nil
	}

	v := round1(*end - *start)
	return &v
}

// CompareRow is one line of the report's first-vs-last measurement
// table.
type CompareRow struct {
	Point       Point
	Label       string
	FirstBefore *float64
	FirstAfter  *float64
	LastBefore  *float64
	LastAfter   *float64
	DeltaBefore *float64
	DeltaAfter  *float64
}

// Compare builds the eight-point comparison between the first and last
// session of a client. Either detail may be nil (no sessions yet); the
// rows still come out, with nil values.
func Compare(first, last *praxis.SessionDetail) []CompareRow {
	firstByPoint := measurementsByPoint(first)
	lastByPoint := measurementsByPoint(last)

	rows := make([]CompareRow, 0, len(Points()))
	for _, p := range Points() {
		f := firstByPoint[p]
		l := lastByPoint[p]
		rows = append(rows, CompareRow{
			Point:       p,
			Label:       p.Label(),
			FirstBefore: f.Before,
			FirstAfter:  f.After,
			LastBefore:  l.Before,
			LastAfter:   l.After,
			DeltaBefore: delta(f.Before, l.Before),
			DeltaAfter:  delta(f.After, l.After),
		})
	}
	return rows
}

func measurementsByPoint(detail *praxis.SessionDetail) map[Point]praxis.Measurement {
	byPoint := make(map[Point]praxis.Measurement)
	if detail == nil {
		return byPoint
	}
	for _, m := range detail.Measurements {
		byPoint[Point(m.Point)] = m
	}
	return byPoint
}

// ParseDate parses an upstream session timestamp. Anything unparseable
// comes back as the zero time so the session still sorts and renders.
func ParseDate(s string) time.Time {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func delta(from, to *float64) *float64 {
	if from == nil || to == nil {
		return nil
	}
	d := round1(*to - *from)
	return &d
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
