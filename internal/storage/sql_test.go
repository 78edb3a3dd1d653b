package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := OpenHistory(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestHistory_RecordAndCases(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()

	first := sampleReport()
	require.NoError(t, h.Record(ctx, first))

	second := sampleReport()
	second.RunID = "0c9a7d52-52a4-4d8e-8a4f-0d8d3c6f1e77"
	second.Reruns = nil
	for i := range second.Results {
		second.Results[i].Passed = true
		second.Results[i].Error = ""
	}
	require.NoError(t, h.Record(ctx, second))

	cases, err := h.Cases(ctx)
	require.NoError(t, err)
	require.Len(t, cases, 3)

	// ordered by failures, then flakes
	assert.Equal(t, CaseHistory{Name: "TestWithFrames (FirefoxTests)", Runs: 2, Passed: 1, Failed: 1, AvgSeconds: 8}, cases[0])
	assert.Equal(t, CaseHistory{Name: "TestPlayVideo (EdgeTests)", Runs: 2, Passed: 1, Flaky: 1, AvgSeconds: 30}, cases[1])
	assert.Equal(t, CaseHistory{Name: "TestTitle (ChromeTests)", Runs: 2, Passed: 2, AvgSeconds: 12.5}, cases[2])
}

func TestHistory_DuplicateRunRejected(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, sampleReport()))
	assert.Error(t, h.Record(ctx, sampleReport()))

	// the failed transaction left nothing behind
	cases, err := h.Cases(ctx)
	require.NoError(t, err)
	assert.Len(t, cases, 3)
	assert.Equal(t, 1, cases[0].Runs)
}

func TestOpenHistory_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := OpenHistory(ctx, "postgres", "postgres://localhost/db")
	assert.ErrorContains(t, err, "unsupported history driver")

	_, err = OpenHistory(ctx, DriverMySQL, "not a dsn")
	assert.ErrorContains(t, err, "invalid mysql dsn")
}
