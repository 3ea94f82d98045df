package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// The reference behavior: period 50ms, completion delays [0ms, 150ms, 50ms],
// unsubscribe at 250ms. Start order [0 1 2], completion order [0 2 1].
func TestRunScenario_ReferenceBehavior(t *testing.T) {
	cases := []struct {
		policy string
		want   []int
	}{
		{policy: "ordered", want: []int{0, 1, 2}},
		{policy: "unordered", want: []int{0, 2, 1}},
		{policy: "recent", want: []int{0, 2}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.policy, func(t *testing.T) {
			t.Parallel()
			got, err := runScenario(tc.policy, 50*time.Millisecond, referenceDelays, 250*time.Millisecond, zap.NewNop())
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRunScenario_UnknownPolicy(t *testing.T) {
	t.Parallel()
	_, err := runScenario("bogus", 50*time.Millisecond, referenceDelays, 250*time.Millisecond, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}
