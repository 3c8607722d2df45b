package market

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func bar(d string, c float64) Candle {
	return Candle{Time: day(d), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
}

func TestReadCSVWithHeader(t *testing.T) {
	t.Parallel()

	in := `Date,Open,High,Low,Close,Adj Close,Volume
2024-01-03,101,103,100,102,101.5,2000
2024-01-02,100,102,99,101,100.5,1000
2024-01-02,1,1,1,1,1,1
bogus,1,2,3,4,5,6
`
	cs, stats, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, cs, 2)

	assert.Equal(t, "2024-01-02", cs[0].Day())
	assert.Equal(t, 101.0, cs[0].Close, "Close wins over Adj Close")
	assert.Equal(t, 1000.0, cs[0].Volume)
	assert.Equal(t, "2024-01-03", cs[1].Day())

	assert.Equal(t, 4, stats.Rows)
	assert.Equal(t, 1, stats.BadLines)
	assert.Equal(t, 1, stats.Duplicates)
}

func TestReadCSVNoHeaderNoVolume(t *testing.T) {
	t.Parallel()

	in := "2024-01-02,100,102,99,101\n2024-01-03,101,103,100,102\n"
	cs, stats, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, 0.0, cs[0].Volume)
	assert.Equal(t, 0, stats.BadLines)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	t.Parallel()

	src := []Candle{bar("2024-02-01", 10), bar("2024-02-02", 11.25)}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, src))

	got, _, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestAlignDropsUnsharedDates(t *testing.T) {
	t.Parallel()

	target := []Candle{bar("2024-01-02", 1), bar("2024-01-03", 2), bar("2024-01-04", 3), bar("2024-01-05", 4)}
	bench := []Candle{bar("2024-01-05", 40), bar("2024-01-02", 10), bar("2024-01-04", 30)}

	p := Align(target, bench)
	require.True(t, p.HasBench())
	require.Equal(t, 3, p.Len())
	require.Len(t, p.Bench, 3)

	for i := range p.Target {
		assert.Equal(t, p.Target[i].Day(), p.Bench[i].Day())
		if i > 0 {
			assert.True(t, p.Target[i].Time.After(p.Target[i-1].Time))
		}
	}
	assert.Equal(t, 4.0, p.Target[2].Close)
	assert.Equal(t, 40.0, p.Bench[2].Close)
}

func TestAlignWithoutBench(t *testing.T) {
	t.Parallel()

	target := []Candle{bar("2024-01-03", 2), bar("2024-01-02", 1)}

	p := Align(target, nil)
	assert.False(t, p.HasBench())
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, "2024-01-02", p.Target[0].Day())

	// A benchmark with no shared dates is treated as unavailable.
	p = Align(target, []Candle{bar("2023-06-01", 5)})
	assert.False(t, p.HasBench())
	assert.Equal(t, 2, p.Len())
}

func TestAfter(t *testing.T) {
	t.Parallel()

	cs := []Candle{bar("2024-01-02", 1), bar("2024-01-03", 2), bar("2024-01-04", 3), bar("2024-01-05", 4)}
	got := After(cs, day("2024-01-02"), 2)
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].Close)
	assert.Equal(t, 3.0, got[1].Close)

	assert.Len(t, After(cs, day("2024-01-02"), 0), 3)
	assert.Empty(t, After(cs, day("2024-01-05"), 0))
}
