package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorClassification(t *testing.T) {
	wrapped := fmt.Errorf("process 3: %w", ErrPreviousNotProcessed)
	require.ErrorIs(t, wrapped, ErrPreviousNotProcessed)
	require.Equal(t, KindValidation, KindOf(wrapped))
	require.Equal(t, uint32(109), CodeOf(wrapped))

	plain := errors.New("disk full")
	require.Equal(t, KindInternal, KindOf(plain))
	require.Equal(t, uint32(1), CodeOf(plain))

	require.Equal(t, "authorization: only the owner in genesis config can initialize the token", ErrNotOwner.Error())
}

func TestDecodeRejectsBadAttributes(t *testing.T) {
	ev := EncodeEvent(&EventVoteSubmitted{ProposalIndex: 2, Voter: "V", Ballot: BallotNo})
	require.Equal(t, EventVoteSubmittedType, ev.Type)
	require.Equal(t, &EventVoteSubmitted{ProposalIndex: 2, Voter: "V", Ballot: BallotNo}, DecodeEventVoteSubmitted(ev))

	ev.Attributes[0].Value = "not-a-number"
	require.Nil(t, DecodeEventVoteSubmitted(ev))
}
