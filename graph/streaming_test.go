package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCountingGraph(t *testing.T, stop int) *StateRunnable[TestState] {
	t.Helper()
	g := NewStateGraph[TestState]()
	g.AddNode("count", "count", func(ctx context.Context, state TestState) (TestState, error) {
		return TestState{Count: 1}, nil
	})
	g.AddConditionalEdge("count", func(ctx context.Context, state TestState) string {
		if state.Count >= stop {
			return END
		}
		return "count"
	}, "count", END)
	g.SetEntryPoint("count")
	g.SetSchema(NewStructSchema(TestState{}, mergeTestState))

	runnable, err := g.Compile()
	require.NoError(t, err)
	return runnable
}

func TestStream_EmitsEveryStepThenDone(t *testing.T) {
	runnable := newCountingGraph(t, 3)

	var events []StreamEvent[TestState]
	for ev := range runnable.Stream(context.Background(), TestState{}, &Config{ThreadID: "run-42"}) {
		events = append(events, ev)
	}

	require.Len(t, events, 4)
	for i, ev := range events[:3] {
		assert.Equal(t, i, ev.Step)
		assert.Equal(t, "count", ev.NodeName)
		assert.Equal(t, i+1, ev.State.Count)
		assert.Equal(t, "run-42", ev.RunID)
		assert.False(t, ev.Done)
	}
	assert.Equal(t, END, events[2].Next)

	last := events[3]
	assert.True(t, last.Done)
	assert.NoError(t, last.Error)
	assert.Equal(t, 3, last.State.Count)
	assert.Equal(t, "run-42", last.RunID)
}

func TestStream_GeneratesRunID(t *testing.T) {
	runnable := newCountingGraph(t, 1)

	var runIDs []string
	for ev := range runnable.Stream(context.Background(), TestState{}, nil) {
		runIDs = append(runIDs, ev.RunID)
	}
	require.Len(t, runIDs, 2)
	assert.NotEmpty(t, runIDs[0])
	assert.Equal(t, runIDs[0], runIDs[1])
}

func TestStream_ErrorEndsWithDoneEvent(t *testing.T) {
	boom := errors.New("search backend down")

	g := NewStateGraph[TestState]()
	g.AddNode("fail", "fail", func(ctx context.Context, state TestState) (TestState, error) {
		return state, boom
	})
	g.AddEdge("fail", END)
	g.SetEntryPoint("fail")
	runnable, err := g.Compile()
	require.NoError(t, err)

	var events []StreamEvent[TestState]
	for ev := range runnable.Stream(context.Background(), TestState{}, nil) {
		events = append(events, ev)
	}

	require.Len(t, events, 1)
	assert.True(t, events[0].Done)
	assert.ErrorIs(t, events[0].Error, boom)
}

func TestStream_RecursionLimitReported(t *testing.T) {
	runnable := newCountingGraph(t, 100)

	var last StreamEvent[TestState]
	n := 0
	for ev := range runnable.Stream(context.Background(), TestState{}, &Config{RecursionLimit: 5}) {
		last = ev
		n++
	}

	assert.Equal(t, 6, n)
	var recErr *GraphRecursionError
	assert.ErrorAs(t, last.Error, &recErr)
}

func TestStream_ConsumerCancels(t *testing.T) {
	runnable := newCountingGraph(t, 1000)
	ctx, cancel := context.WithCancel(context.Background())

	events := runnable.Stream(ctx, TestState{}, &Config{RecursionLimit: 1000})
	first := <-events
	assert.Equal(t, 0, first.Step)
	cancel()

	// channel must be closed without a Done event
	for ev := range events {
		assert.False(t, ev.Done)
	}
}
