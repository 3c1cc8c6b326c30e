package proposal

import (
	"testing"

	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) *Queue {
	db, err := state.NewMemStateDB(cmtlog.NewNopLogger())
	require.NoError(t, err)
	return NewQueue(db.NewState())
}

func TestAppendAssignsSequentialIndexes(t *testing.T) {
	q := newTestQueue(t)
	last, err := q.Last()
	require.NoError(t, err)
	require.Nil(t, last)

	for i := uint64(0); i < 3; i++ {
		idx, err := q.Append(types.Proposal{Index: 99, Proposer: "P", Applicant: "A", SharesRequested: i})
		require.NoError(t, err)
		require.Equal(t, i, idx)
	}
	n, err := q.Len()
	require.NoError(t, err)
	require.Equal(t, uint64(3), n)

	last, err = q.Last()
	require.NoError(t, err)
	require.Equal(t, uint64(2), last.Index)
	require.Equal(t, uint64(2), last.SharesRequested)
}

func TestGetOutOfRange(t *testing.T) {
	q := newTestQueue(t)
	_, err := q.Get(0)
	require.ErrorIs(t, err, types.ErrProposalNotFound)

	_, err = q.Append(types.Proposal{Proposer: "P"})
	require.NoError(t, err)
	p, err := q.Get(0)
	require.NoError(t, err)
	require.Equal(t, "P", p.Proposer)

	_, err = q.Get(1)
	require.ErrorIs(t, err, types.ErrProposalNotFound)
}

func TestRecordVote(t *testing.T) {
	q := newTestQueue(t)
	idx, err := q.Append(types.Proposal{Proposer: "P"})
	require.NoError(t, err)
	p, err := q.Get(idx)
	require.NoError(t, err)

	require.ErrorIs(t, q.RecordVote(p, "V1", types.Ballot(2)), types.ErrInvalidBallot)
	require.NoError(t, q.RecordVote(p, "V1", types.BallotYes))
	require.NoError(t, q.RecordVote(p, "V2", types.BallotNo))
	require.NoError(t, q.RecordVote(p, "V3", types.BallotYes))
	require.ErrorIs(t, q.RecordVote(p, "V1", types.BallotNo), types.ErrAlreadyVoted)

	stored, err := q.Get(idx)
	require.NoError(t, err)
	require.Equal(t, uint32(2), stored.YesVotes)
	require.Equal(t, uint32(1), stored.NoVotes)

	b, found, err := q.Ballot("V2", idx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, types.BallotNo, b)

	voted, err := q.HasVoted("V4", idx)
	require.NoError(t, err)
	require.False(t, voted)
}

func TestMarkProcessedOnce(t *testing.T) {
	q := newTestQueue(t)
	idx, err := q.Append(types.Proposal{Proposer: "P"})
	require.NoError(t, err)
	p, err := q.Get(idx)
	require.NoError(t, err)

	require.NoError(t, q.MarkProcessed(p, true))
	stored, err := q.Get(idx)
	require.NoError(t, err)
	require.True(t, stored.Processed)
	require.True(t, stored.DidPass)

	require.ErrorIs(t, q.MarkProcessed(stored, false), types.ErrAlreadyProcessed)
}
