package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSkripsiTransitions(t *testing.T) {
	allowed := [][2]SkripsiStatus{
		{SkripsiStatusDraft, SkripsiStatusSubmitted},
		{SkripsiStatusSubmitted, SkripsiStatusUnderReview},
		{SkripsiStatusUnderReview, SkripsiStatusRevision},
		{SkripsiStatusUnderReview, SkripsiStatusApproved},
		{SkripsiStatusUnderReview, SkripsiStatusRejected},
		{SkripsiStatusRevision, SkripsiStatusSubmitted},
	}
	for _, tr := range allowed {
		require.True(t, CanTransition(tr[0], tr[1]), "%s -> %s should be allowed", tr[0], tr[1])
	}

	denied := [][2]SkripsiStatus{
		{SkripsiStatusDraft, SkripsiStatusApproved},
		{SkripsiStatusSubmitted, SkripsiStatusApproved},
		{SkripsiStatusApproved, SkripsiStatusRevision},
		{SkripsiStatusRejected, SkripsiStatusSubmitted},
		{SkripsiStatusRevision, SkripsiStatusUnderReview},
	}
	for _, tr := range denied {
		require.False(t, CanTransition(tr[0], tr[1]), "%s -> %s should be denied", tr[0], tr[1])
	}
}

func TestKnownViolationKind(t *testing.T) {
	for _, kind := range []ViolationKind{
		ViolationRightClick, ViolationShortcut, ViolationTabSwitch,
		ViolationFullscreenExit, ViolationDevToolsHeuristic,
	} {
		require.True(t, KnownViolationKind(kind))
		require.NotEmpty(t, ViolationDescription(kind))
	}
	require.False(t, KnownViolationKind("SCREEN_RECORDING"))
}
