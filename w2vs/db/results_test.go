package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/records"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResultStoreIntegration runs against a real libsql file database
func TestResultStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping libsql integration test in short mode")
	}

	dsn := filepath.Join(t.TempDir(), "nested", "results.db")
	store, err := NewResultStore(dsn)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	t.Run("SaveAndReadRun", func(t *testing.T) {
		results := []records.Result{
			{ID: 12, Positive: 0.75},
			{ID: 3, Positive: 0.125},
		}
		id, err := store.SaveRun(ctx, "model.onnx", "test.csv", results)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)

		got, err := store.Results(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []records.Result{{ID: 3, Positive: 0.125}, {ID: 12, Positive: 0.75}}, got)
	})

	t.Run("ListRuns", func(t *testing.T) {
		id, err := store.SaveRun(ctx, "other.onnx", "holdout.csv", nil)
		require.NoError(t, err)

		runs, err := store.Runs(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(runs), 2)

		var found *Run
		for i := range runs {
			if runs[i].ID == id {
				found = &runs[i]
			}
		}
		require.NotNil(t, found)
		assert.Equal(t, "other.onnx", found.ModelPath)
		assert.Equal(t, "holdout.csv", found.Source)
		assert.Equal(t, 0, found.Count)
		assert.False(t, found.Timestamp.IsZero())
		assert.WithinDuration(t, time.Now(), found.Timestamp, time.Hour)
	})

	t.Run("UnknownRun", func(t *testing.T) {
		got, err := store.Results(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("DuplicateRowsRollBack", func(t *testing.T) {
		before, err := store.Runs(ctx)
		require.NoError(t, err)

		_, err = store.SaveRun(ctx, "model.onnx", "dup.csv", []records.Result{{ID: 1}, {ID: 1}})
		require.Error(t, err)

		after, err := store.Runs(ctx)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})
}

func TestConnectToDBRequiresDSN(t *testing.T) {
	_, err := ConnectToDB("")
	assert.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	tests := []struct {
		name  string
		value any
		want  time.Time
	}{
		{"Null", nil, time.Time{}},
		{"DateTime", "2024-03-09 14:05:07", want},
		{"Bytes", []byte("2024-03-09 14:05:07"), want},
		{"RFC3339", "2024-03-09T14:05:07Z", want},
		{"RFC3339Offset", "2024-03-09T16:05:07+02:00", want},
		{"Fraction", "2024-03-09 14:05:07.250", want.Add(250 * time.Millisecond)},
		{"Time", want.In(time.FixedZone("x", 3600)), want},
		{"Unix", want.Unix(), want},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimestamp(tt.value)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := parseTimestamp("yesterday")
	assert.ErrorContains(t, err, `invalid timestamp "yesterday"`)
	_, err = parseTimestamp(3.5)
	assert.ErrorContains(t, err, "unexpected timestamp type float64")
}
