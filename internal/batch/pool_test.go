package batch

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_KeepsInputOrder(t *testing.T) {
	paths := []string{"a.wml", "b.wml", "bad.wml", "c.wml", "d.wml"}
	var calls atomic.Int32

	results := NewPool(3).Run(context.Background(), paths, func(ctx context.Context, path string) (string, error) {
		calls.Add(1)
		if strings.HasPrefix(path, "bad") {
			return "", errors.New("broken")
		}
		return strings.ToUpper(path), nil
	})

	require.Len(t, results, len(paths))
	assert.EqualValues(t, len(paths), calls.Load())
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
		assert.GreaterOrEqual(t, r.WorkerID, 1)
		assert.LessOrEqual(t, r.WorkerID, 3)
	}
	assert.Equal(t, "A.WML", results[0].Summary)
	assert.EqualError(t, results[2].Err, "broken")
	assert.Equal(t, 1, Failed(results))
}

func TestPool_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewPool(2).Run(ctx, []string{"a", "b"}, func(ctx context.Context, path string) (string, error) {
		t.Errorf("job %s should not run", path)
		return "", nil
	})

	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
	assert.Equal(t, 2, Failed(results))
}

func TestPool_NoJobs(t *testing.T) {
	results := NewPool(0).Run(context.Background(), nil, func(ctx context.Context, path string) (string, error) {
		return "", nil
	})
	assert.Empty(t, results)
}
