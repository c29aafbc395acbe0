package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustTrigger(t *testing.T) *Trigger {
	t.Helper()
	trigger, err := NewTrigger("hanna", "thanks")
	require.NoError(t, err)
	return trigger
}

func TestNewTriggerRejectsEmptyWords(t *testing.T) {
	t.Parallel()

	_, err := NewTrigger("", "thanks")
	require.Error(t, err)

	_, err = NewTrigger("hanna", "  ")
	require.Error(t, err)
}

func TestTriggerMatchWakeVariants(t *testing.T) {
	t.Parallel()

	trigger := mustTrigger(t)
	for _, wake := range []string{"hanna", "hana", "anna", "ana"} {
		payload, ok := trigger.Match("hey " + wake + " open the door thanks")
		require.True(t, ok, "wake variant %q", wake)
		require.Equal(t, "open the door", payload)
	}
}

func TestTriggerMatchAckVariants(t *testing.T) {
	t.Parallel()

	trigger := mustTrigger(t)

	payload, ok := trigger.Match("hanna dim the lights thank you")
	require.True(t, ok)
	require.Equal(t, "dim the lights", payload)

	payload, ok = trigger.Match("hanna dim the lights thanks")
	require.True(t, ok)
	require.Equal(t, "dim the lights", payload)
}

func TestTriggerMatchFirstMatchWins(t *testing.T) {
	t.Parallel()

	trigger := mustTrigger(t)
	payload, ok := trigger.Match("hanna first thanks hanna second thanks")
	require.True(t, ok)
	require.Equal(t, "first", payload)
}

func TestTriggerMatchEmptyPayload(t *testing.T) {
	t.Parallel()

	trigger := mustTrigger(t)
	payload, ok := trigger.Match("hanna thanks")
	require.True(t, ok)
	require.Empty(t, payload)
}

func TestTriggerNoMatchWithoutAck(t *testing.T) {
	t.Parallel()

	trigger := mustTrigger(t)
	_, ok := trigger.Match("hanna open the door")
	require.False(t, ok)
}

func TestNormalizeStripsPunctuationAndLowercases(t *testing.T) {
	t.Parallel()

	got := Normalize("Hey Hanna, please; open: the door! Thanks?")
	require.Equal(t, "hey hanna  please  open  the door  thanks ", got)
}

func TestFeedExtractsPayloadAcrossPunctuation(t *testing.T) {
	t.Parallel()

	e := NewExtractor(mustTrigger(t), 0)
	payload, matched := e.Feed("hey hanna, please open the door, thanks")
	require.True(t, matched)
	require.Equal(t, "please open the door", payload)
}

func TestFeedAccumulatesAcrossCalls(t *testing.T) {
	t.Parallel()

	e := NewExtractor(mustTrigger(t), 0)

	_, matched := e.Feed("hey hanna please open")
	require.False(t, matched)
	require.NotEmpty(t, e.Pending())

	payload, matched := e.Feed("the door thanks")
	require.True(t, matched)
	require.Equal(t, "please open the door", payload)
}

func TestFeedNoAckKeepsGrowing(t *testing.T) {
	t.Parallel()

	e := NewExtractor(mustTrigger(t), 0)
	before := len(e.Pending())
	_, matched := e.Feed("hanna do something")
	require.False(t, matched)
	require.Greater(t, len(e.Pending()), before)

	_, matched = e.Feed("and something else")
	require.False(t, matched)
	require.Contains(t, e.Pending(), "and something else")
}

func TestFeedResetsAccumulatorAfterMatch(t *testing.T) {
	t.Parallel()

	e := NewExtractor(mustTrigger(t), 0)
	_, matched := e.Feed("hanna open the door thanks")
	require.True(t, matched)
	require.Empty(t, e.Pending())

	// Text before the previous ack cannot participate in a new match.
	_, matched = e.Feed("thanks")
	require.False(t, matched)
}

func TestFeedCapDropsOldestHalf(t *testing.T) {
	t.Parallel()

	e := NewExtractor(mustTrigger(t), 64)
	e.Feed(strings.Repeat("x", 200))
	require.LessOrEqual(t, len([]rune(e.Pending())), 101)

	// A trigger arriving after the cap still matches.
	payload, matched := e.Feed("hanna shut down thanks")
	require.True(t, matched)
	require.Equal(t, "shut down", payload)
}
