package sqlstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	q := `SELECT a FROM t WHERE x = ? AND y IN (SELECT z FROM u WHERE w = ?)`

	pg := New(nil, DialectPostgres)
	assert.Equal(t, `SELECT a FROM t WHERE x = $1 AND y IN (SELECT z FROM u WHERE w = $2)`, pg.Rebind(q))

	lite := New(nil, DialectSQLite)
	assert.Equal(t, q, lite.Rebind(q))
}

func TestTimeValueScan(t *testing.T) {
	want := time.Date(2024, 3, 31, 21, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		src  any
		want time.Time
	}{
		{"time", want.In(time.FixedZone("CET", 3600)), want},
		{"timestamp text", "2024-03-31 21:00:00", want},
		{"driver text", "2024-03-31 22:00:00+01:00", want},
		{"rfc3339", []byte("2024-03-31T21:00:00Z"), want},
		{"date", "2024-03-31", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v timeValue
			require.NoError(t, v.Scan(tt.src))
			assert.True(t, v.Valid)
			assert.True(t, tt.want.Equal(v.Time), "got %s", v.Time)
		})
	}

	var v timeValue
	require.NoError(t, v.Scan(nil))
	assert.False(t, v.Valid)
	assert.Error(t, v.Scan("31/03/2024"))
	assert.Error(t, v.Scan(42))
}

func TestNextDayParam(t *testing.T) {
	assert.Equal(t, "2024-03-01", nextDayParam(time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)))
}
