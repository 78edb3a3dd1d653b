package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbolsens-legion/docker-selenium/internal/config"
	"github.com/jbolsens-legion/docker-selenium/internal/domain"
)

func sampleReport() *domain.Report {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Report{
		RunID:     "7b0d1f4e-3c55-4f0b-9d55-8f6a2b7f9a10",
		Seed:      42,
		Workers:   3,
		StartedAt: start,
		Duration:  90 * time.Second,
		Results: []domain.CaseResult{
			{Name: "TestTitle (ChromeTests)", Attempt: 1, Passed: true, StartedAt: start, Seconds: 12.5},
			{Name: "TestPlayVideo (EdgeTests)", Attempt: 1, Passed: false, StartedAt: start, Seconds: 30, Error: "timeout"},
			{Name: "TestWithFrames (FirefoxTests)", Attempt: 1, Passed: false, StartedAt: start, Seconds: 8,
				Failures: []string{"content should be MIDDLE: want MIDDLE, got TOP"}},
		},
		Reruns: []domain.CaseResult{
			{Name: "TestPlayVideo (EdgeTests)", Attempt: 2, Passed: true, StartedAt: start, Seconds: 20},
			{Name: "TestWithFrames (FirefoxTests)", Attempt: 2, Passed: false, StartedAt: start, Seconds: 7, Error: "again"},
		},
	}
}

func newTestStorage(t *testing.T) *JSONStorage {
	t.Helper()
	cfg := config.New()
	cfg.OutputJSONDir = filepath.Join(t.TempDir(), "storage")
	return NewJSONStorage(cfg)
}

func TestNewOutput(t *testing.T) {
	out := NewOutput(sampleReport())

	assert.Equal(t, "7b0d1f4e-3c55-4f0b-9d55-8f6a2b7f9a10", out.Meta.RunID)
	assert.Equal(t, uint64(42), out.Meta.Seed)
	assert.Equal(t, 3, out.Meta.TotalTestCases)
	assert.Equal(t, 1, out.Meta.PassedTestCases)
	assert.Equal(t, 2, out.Meta.FailedFirstPass)
	assert.Equal(t, 1, out.Meta.FlakyTestCases)
	assert.Equal(t, 1, out.Meta.FailedTestCases)
	assert.Equal(t, "1m30s", out.Meta.Duration)
	assert.Equal(t, "2026-03-01T12:00:00Z", out.Meta.Timestamp)
	assert.Len(t, out.Details, 3)
	assert.Len(t, out.Reruns, 2)
}

func TestJSONStorage_SaveLoad(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.Save(sampleReport()))

	out, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 3, out.Meta.TotalTestCases)
	require.Len(t, out.Details, 3)
	assert.Equal(t, []string{"content should be MIDDLE: want MIDDLE, got TOP"}, out.Details[2].Failures)

	failures := out.Failures()
	require.Len(t, failures, 2)
	assert.True(t, failures[0].Flaky)
	assert.False(t, failures[1].Flaky)
	assert.Equal(t, 2, failures[1].Index)
}

func TestJSONStorage_SaveOutputKeepsResolved(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.Save(sampleReport()))

	out, err := s.Load()
	require.NoError(t, err)
	out.Details[1].Resolved = true
	require.NoError(t, s.SaveOutput(out))

	again, err := s.Load()
	require.NoError(t, err)
	assert.True(t, again.Details[1].Resolved)
	assert.True(t, again.Failures()[0].Resolved)
}

func TestJSONStorage_LoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := newTestStorage(t).Load()
		assert.ErrorContains(t, err, "read results file")
	})

	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{"},
		{name: "missing meta", content: `{"details": []}`},
		{name: "bad attempt", content: `{"meta": {"run_id": "x", "total_test_cases": 1, "failed_test_cases": 0, "timestamp": "t"},
			"details": [{"name": "a", "attempt": 3, "passed": true}]}`},
		{name: "negative count", content: `{"meta": {"run_id": "x", "total_test_cases": -1, "failed_test_cases": 0, "timestamp": "t"}, "details": null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStorage(t)
			path := s.cfg.GetOutputPath()
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := s.Load()
			assert.Error(t, err)
		})
	}
}

func TestValidateResults_EmptyRun(t *testing.T) {
	data := []byte(`{"meta": {"run_id": "x", "total_test_cases": 0, "failed_test_cases": 0, "timestamp": "t"}, "details": null, "reruns": null}`)
	assert.NoError(t, ValidateResults(data))
}
