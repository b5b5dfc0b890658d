package progress

import (
	"testing"

	"github.com/elleandro/studio-admin/internal/praxis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func sessionWith(id int64, date string, before, after *float64) praxis.EvolutionSession {
	return praxis.EvolutionSession{
		Session: praxis.Session{ID: id, Date: date},
		Measurements: []praxis.Measurement{
			{Point: string(PointRightLeg), Before: before, After: after},
		},
	}
}

func TestHistory_Variation(t *testing.T) {
	sessions := []praxis.EvolutionSession{
		sessionWith(1, "2026-01-10T10:00:00Z", f(10), f(8)),
		sessionWith(2, "2026-01-17T10:00:00Z", nil, nil),
		sessionWith(3, "2026-01-24T10:00:00Z", nil, f(6)),
	}

	h := BuildHistory(sessions, PointRightLeg)
	require.Len(t, h.Rows, 3)

	first := h.FirstValid()
	require.NotNil(t, first)
	assert.Equal(t, int64(1), first.SessionID)

	last := h.LastValid()
	require.NotNil(t, last)
	assert.Equal(t, int64(3), last.SessionID)

	// start is the first session's "before" (10), end is the last
	// session's "after" (6)
	variation := h.Variation()
	require.NotNil(t, variation)
	assert.Equal(t, -4.0, *variation)
}

func TestHistory_Empty(t *testing.T) {
	h := BuildHistory(nil, PointHip)
	assert.Empty(t, h.Rows)
	assert.Nil(t, h.FirstValid())
	assert.Nil(t, h.LastValid())
	assert.Nil(t, h.Variation())
}

func TestHistory_PointNeverMeasured(t *testing.T) {
	sessions := []praxis.EvolutionSession{
		sessionWith(1, "2026-01-10T10:00:00Z", f(10), f(8)),
		sessionWith(2, "2026-01-17T10:00:00Z", f(9), nil),
	}

	// the sessions measured the right leg only
	h := BuildHistory(sessions, PointGlutes)
	require.Len(t, h.Rows, 2)
	assert.Nil(t, h.FirstValid())
	assert.Nil(t, h.LastValid())
	assert.Nil(t, h.Variation())
}

func TestHistory_SortsByDate(t *testing.T) {
	sessions := []praxis.EvolutionSession{
		sessionWith(2, "2026-02-01T10:00:00Z", f(9), nil),
		sessionWith(3, "not-a-timestamp", nil, f(7)),
		sessionWith(1, "2026-01-01T10:00:00Z", f(10), f(8)),
	}

	h := BuildHistory(sessions, PointRightLeg)
	require.Len(t, h.Rows, 3)
	// unparseable timestamp sorts as zero time, i.e. first
	assert.Equal(t, int64(3), h.Rows[0].SessionID)
	assert.Equal(t, int64(1), h.Rows[1].SessionID)
	assert.Equal(t, int64(2), h.Rows[2].SessionID)
}

func TestRow_Delta(t *testing.T) {
	assert.Nil(t, Row{Before: f(10)}.Delta())
	assert.Nil(t, Row{After: f(8)}.Delta())
	assert.Nil(t, Row{}.Delta())

	d := Row{Before: f(10.25), After: f(8)}.Delta()
	require.NotNil(t, d)
	assert.Equal(t, -2.3, *d)
}

func TestHistory_VariationFallbacks(t *testing.T) {
	// first session only has "after", last only has "before"
	sessions := []praxis.EvolutionSession{
		sessionWith(1, "2026-01-10T10:00:00Z", nil, f(11)),
		sessionWith(2, "2026-01-17T10:00:00Z", f(9.5), nil),
	}

	h := BuildHistory(sessions, PointRightLeg)
	variation := h.Variation()
	require.NotNil(t, variation)
	assert.Equal(t, -1.5, *variation)
}

func TestCompare(t *testing.T) {
	first := &praxis.SessionDetail{
		Session: praxis.Session{ID: 1},
		Measurements: []praxis.Measurement{
			{Point: string(PointRightLeg), Before: f(50), After: f(48)},
			{Point: string(PointHip), Before: f(100), After: nil},
		},
	}
	last := &praxis.SessionDetail{
		Session: praxis.Session{ID: 9},
		Measurements: []praxis.Measurement{
			{Point: string(PointRightLeg), Before: f(47), After: f(45.2)},
		},
	}

	rows := Compare(first, last)
	require.Len(t, rows, 8)

	byPoint := make(map[Point]CompareRow)
	for _, r := range rows {
		byPoint[r.Point] = r
	}

	leg := byPoint[PointRightLeg]
	require.NotNil(t, leg.DeltaBefore)
	assert.Equal(t, -3.0, *leg.DeltaBefore)
	require.NotNil(t, leg.DeltaAfter)
	assert.Equal(t, -2.8, *leg.DeltaAfter)

	// hip was only measured in the first session, deltas stay nil
	hip := byPoint[PointHip]
	assert.Equal(t, 100.0, *hip.FirstBefore)
	assert.Nil(t, hip.LastBefore)
	assert.Nil(t, hip.DeltaBefore)
	assert.Nil(t, hip.DeltaAfter)

	// a point measured in neither session still produces a row
	glutes := byPoint[PointGlutes]
	assert.Nil(t, glutes.FirstBefore)
	assert.Nil(t, glutes.DeltaAfter)
}

func TestCompare_NilDetails(t *testing.T) {
	rows := Compare(nil, nil)
	require.Len(t, rows, 8)
	for _, r := range rows {
		assert.Nil(t, r.FirstBefore)
		assert.Nil(t, r.DeltaBefore)
	}
}

func TestParsePoint(t *testing.T) {
	p, ok := ParsePoint("perna_direita")
	assert.True(t, ok)
	assert.Equal(t, PointRightLeg, p)
	assert.Equal(t, "Perna direita", p.Label())

	_, ok = ParsePoint("cabeca")
	assert.False(t, ok)
}
