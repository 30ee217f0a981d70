package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndRecent(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	base := time.Unix(1700000000, 0)
	require.NoError(t, s.Record(ctx, Pass{
		ID: "p1", Kind: "initial", Rendered: 12, Duration: 150 * time.Millisecond, StartedAt: base,
	}))
	require.NoError(t, s.Record(ctx, Pass{
		ID: "p2", Kind: "incremental", NoOp: true, StartedAt: base.Add(time.Minute),
	}))
	require.NoError(t, s.Record(ctx, Pass{
		ID: "p3", Kind: "incremental", Error: "render posts/a.vox: boom", StartedAt: base.Add(2 * time.Minute),
	}))

	passes, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, passes, 2)
	assert.Equal(t, "p3", passes[0].ID)
	assert.Equal(t, "render posts/a.vox: boom", passes[0].Error)
	assert.Equal(t, "p2", passes[1].ID)
	assert.True(t, passes[1].NoOp)
}

func TestRecentDefaultLimit(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	passes, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, passes)
}
