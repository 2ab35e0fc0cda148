package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusboard/internal/apperr"
	"campusboard/internal/gate"
	"campusboard/internal/lifecycle"
	"campusboard/internal/models"
)

type fakeCounter struct {
	counts map[models.ContentType]map[models.Status]int
	err    error
}

func (f fakeCounter) CountByStatus(context.Context) (map[models.ContentType]map[models.Status]int, error) {
	return f.counts, f.err
}

func TestSubmissionCollector(t *testing.T) {
	collector := &SubmissionCollector{counter: fakeCounter{counts: map[models.ContentType]map[models.Status]int{
		models.ContentNews:        {models.StatusPending: 3, models.StatusPublished: 10},
		models.ContentSharespeare: {models.StatusDraft: 1},
	}}}

	expected := `
# HELP campusboard_submissions Current number of submissions by content type and status
# TYPE campusboard_submissions gauge
campusboard_submissions{content_type="news",status="PENDING"} 3
campusboard_submissions{content_type="news",status="PUBLISHED"} 10
campusboard_submissions{content_type="sharespeare",status="DRAFT"} 1
`
	require.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected)))
}

func TestSubmissionCollector_Error(t *testing.T) {
	collector := &SubmissionCollector{counter: fakeCounter{err: errors.New("db down")}}
	assert.Equal(t, 0, testutil.CollectAndCount(collector))
}

func TestTransitionCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	hook := Register(reg, nil)
	ctx := context.Background()

	ok := lifecycle.Event{ContentType: models.ContentNews, Action: gate.Approve}
	lost := lifecycle.Event{ContentType: models.ContentNews, Action: gate.Approve, Err: apperr.ErrAlreadyTransitioned}

	require.NoError(t, hook.AfterTransition(ctx, ok))
	require.NoError(t, hook.AfterTransition(ctx, ok))
	require.NoError(t, hook.AfterTransition(ctx, lost))

	assert.Equal(t, 2.0, testutil.ToFloat64(hook.counter.WithLabelValues("news", "approve", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(hook.counter.WithLabelValues("news", "approve", "AlreadyTransitioned")))
}
