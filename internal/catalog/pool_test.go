package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/skillgap/internal/types"
)

type fakeSource struct {
	mu       sync.Mutex
	active   int
	peak     int
	failures map[string]bool
	calls    atomic.Int32
}

func (f *fakeSource) Courses(_ context.Context, _, _, subject string) ([]types.Course, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	f.mu.Unlock()

	time.Sleep(10 * time.Millisecond)

	f.mu.Lock()
	f.active--
	f.mu.Unlock()

	if f.failures[subject] {
		return nil, errors.New("HTTP 503")
	}
	return []types.Course{
		{Subject: subject, Number: "100"},
		{Subject: subject, Number: "200"},
	}, nil
}

func TestFetchAll_IsolatesFailures(t *testing.T) {
	source := &fakeSource{failures: map[string]bool{"MATH": true}}
	fetcher := NewFetcher(source, 3, nil)

	result := fetcher.FetchAll(context.Background(), "2025", "fall", []string{"CS", "MATH", "STAT"})

	assert.Equal(t, []string{"MATH"}, result.Failed)
	assert.Len(t, result.Courses, 4)
	assert.Equal(t, "CS", result.Courses[0].Subject)
	assert.Equal(t, "STAT", result.Courses[2].Subject)
}

func TestFetchAll_BoundsConcurrency(t *testing.T) {
	source := &fakeSource{}
	fetcher := NewFetcher(source, 3, nil)
	subjects := []string{"CS", "STAT", "MATH", "IS", "INFO", "ECE", "BADM", "ECON"}

	result := fetcher.FetchAll(context.Background(), "2025", "fall", subjects)

	assert.Len(t, result.Courses, 16)
	assert.Empty(t, result.Failed)
	assert.Equal(t, int32(8), source.calls.Load())
	assert.LessOrEqual(t, source.peak, 3)
}

func TestFetchAll_NoSubjects(t *testing.T) {
	result := NewFetcher(&fakeSource{}, 0, nil).FetchAll(context.Background(), "2025", "fall", nil)
	assert.Empty(t, result.Courses)
	assert.Empty(t, result.Failed)
}
