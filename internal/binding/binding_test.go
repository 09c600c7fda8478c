package binding

import (
	"bytes"
	"context"
	"testing"

	"github.com/KaramelBytes/choropleth-cli/internal/classify"
	"github.com/KaramelBytes/choropleth-cli/internal/colorscale"
	"github.com/KaramelBytes/choropleth-cli/internal/match"
	"github.com/KaramelBytes/choropleth-cli/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, content string) *table.Table {
	t.Helper()
	tbl, res, err := table.Parse("data.csv", []byte(content), table.DefaultOptions())
	require.NoError(t, err)
	require.True(t, res.IsValid, res.Errors)
	return tbl
}

func input(t *testing.T, tbl *table.Table, candidates []string) Input {
	t.Helper()
	m, err := classify.ParseMethod("equalInterval")
	require.NoError(t, err)
	s, err := colorscale.Lookup("buenos-aries")
	require.NoError(t, err)
	return Input{
		Table:        tbl,
		Candidates:   candidates,
		RegionColumn: "region",
		ValueColumn:  "pop",
		Scheme:       s,
		Method:       m,
		Buckets:      2,
		Match:        match.DefaultOptions(),
	}
}

func TestBindScenario(t *testing.T) {
	tbl := parse(t, "region,pop\nCalifornia,39\nTexas,29\n")
	res, err := Bind(context.Background(), input(t, tbl, []string{"california", "texas", "oregon"}))
	require.NoError(t, err)

	require.Len(t, res.Matches, 2)
	assert.Equal(t, "california", res.Matches[0].Matched)
	assert.Equal(t, 1.0, res.Matches[0].Confidence)
	assert.Equal(t, "texas", res.Matches[1].Matched)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, "california", res.Rows[0].MatchedRegionID)
	assert.Equal(t, "texas", res.Rows[1].MatchedRegionID)

	assert.Equal(t, []float64{29, 34, 39}, res.Classification.Breaks)
	assert.Equal(t, res.Scale[1], res.Rows[0].Color)
	assert.Equal(t, res.Scale[0], res.Rows[1].Color)

	c, ok := res.ColorFor("california")
	require.True(t, ok)
	assert.Equal(t, res.Rows[0].Color, c)
	_, ok = res.ColorFor("oregon")
	assert.False(t, ok)
	assert.Empty(t, res.Warnings)
	assert.Len(t, res.Legend, 2)
}

func TestBindSoftFailures(t *testing.T) {
	tbl := parse(t, "region,pop\nAtlantis,n/a\nTexas,29\nTexas,31\n")
	res, err := Bind(context.Background(), input(t, tbl, []string{"texas"}))
	require.NoError(t, err)

	require.Len(t, res.Rows, 3)
	assert.Empty(t, res.Rows[0].MatchedRegionID)
	assert.Equal(t, colorscale.Neutral, res.Rows[0].Color)
	assert.Contains(t, res.Warnings, "1 regions could not be matched")
	assert.Contains(t, res.Warnings, "1 rows have a non-numeric pop value")

	// The last row for a region decides its color.
	c, _ := res.ColorFor("texas")
	assert.Equal(t, res.Rows[2].Color, c)
}

func TestBindWithoutRegions(t *testing.T) {
	tbl := parse(t, "region,pop\nTexas,29\n")
	res, err := Bind(context.Background(), input(t, tbl, nil))
	require.NoError(t, err)
	assert.Empty(t, res.Colors)
	assert.Contains(t, res.Warnings, "no regions extracted")
}

func TestBindErrors(t *testing.T) {
	tbl := parse(t, "region,pop\nTexas,29\n")
	in := input(t, tbl, []string{"texas"})

	in.ValueColumn = "gdp"
	_, err := Bind(context.Background(), in)
	assert.ErrorIs(t, err, ErrColumnNotFound)

	in.ValueColumn = "pop"
	in.Buckets = 0
	_, err = Bind(context.Background(), in)
	assert.ErrorIs(t, err, classify.ErrInvalidBucketCount)

	in.Table = nil
	_, err = Bind(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestAugmentRoundTrip(t *testing.T) {
	tbl := parse(t, "region,pop,note\nCalifornia,39.0,\"west, coast\"\nTexs,29,\nNowhere,1,x\n")
	res, err := Bind(context.Background(), input(t, tbl, []string{"California", "Texas"}))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf, res.Augment(tbl), ','))
	back := parse(t, buf.String())

	assert.Equal(t, []string{"region", "pop", "note", ColMatchedRegion, ColMatchConfidence}, back.Headers())
	for _, col := range tbl.Headers() {
		orig, _ := tbl.Column(col)
		again, _ := back.Column(col)
		for i := range orig {
			assert.Equal(t, orig[i].Raw, again[i].Raw)
		}
	}
	matched, _ := back.Column(ColMatchedRegion)
	conf, _ := back.Column(ColMatchConfidence)
	assert.Equal(t, "California", matched[0].Raw)
	assert.Equal(t, "1.00", conf[0].Raw)
	assert.Equal(t, "Texas", matched[1].Raw)
	assert.Empty(t, matched[2].Raw)
}

func TestSessionRecompute(t *testing.T) {
	tbl := parse(t, "region,pop\nCalifornia,39\nTexas,29\n")
	s := NewSession(input(t, tbl, []string{"california", "texas"}))
	assert.NotEmpty(t, s.ID)
	assert.Nil(t, s.Result())

	first, err := s.Recompute(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, s.Result())
	assert.Equal(t, uint64(1), first.Generation)

	gen := s.Update(func(in *Input) { in.Buckets = 4 })
	assert.Equal(t, uint64(2), gen)
	second, err := s.Recompute(context.Background())
	require.NoError(t, err)
	assert.Len(t, second.Classification.Breaks, 5)
	assert.Same(t, second, s.Result())
}

func TestSessionKeepsNewestResult(t *testing.T) {
	tbl := parse(t, "region,pop\nTexas,29\n")
	s := NewSession(input(t, tbl, []string{"texas"}))
	newest, err := s.Recompute(context.Background())
	require.NoError(t, err)

	// A recompute that started from the same generation is not newer.
	stale, err := s.Recompute(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, stale, s.Result())
	assert.Same(t, newest, s.Result())
}

func TestSessionFailedRecomputeKeepsPrevious(t *testing.T) {
	tbl := parse(t, "region,pop\nTexas,29\n")
	s := NewSession(input(t, tbl, []string{"texas"}))
	ok, err := s.Recompute(context.Background())
	require.NoError(t, err)

	s.Update(func(in *Input) { in.RegionColumn = "state" })
	_, err = s.Recompute(context.Background())
	assert.ErrorIs(t, err, ErrColumnNotFound)
	assert.Same(t, ok, s.Result())
}
