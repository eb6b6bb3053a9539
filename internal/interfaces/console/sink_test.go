package console

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewSinkTo(&buf)

	require.NoError(t, s.WriteProgress("\r[WMRECON] 1/6"))
	require.NoError(t, s.WriteReport(time.Date(2024, 3, 31, 8, 30, 0, 0, time.UTC), "PASS wealth"))
	require.NoError(t, s.NewLine())

	assert.Equal(t, "\r[WMRECON] 1/6\r\033[K2024-03-31 08:30:00 PASS wealth\n\n", buf.String())
}
