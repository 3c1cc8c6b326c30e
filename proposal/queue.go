// Package proposal keeps the append-only proposal queue and the ballots cast
// on each entry.
package proposal

import (
	"errors"

	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/types"
	"github.com/ethereum/go-ethereum/common/math"
)

type Store interface {
	Proposal(idx uint64) (*types.Proposal, error)
	SetProposal(p *types.Proposal) error
	NextProposalIndex() (uint64, error)
	SetNextProposalIndex(n uint64) error
	Ballot(voter string, idx uint64) (types.Ballot, bool, error)
	SetBallot(voter string, idx uint64, b types.Ballot) error
}

type Queue struct {
	store Store
}

func NewQueue(store Store) *Queue {
	return &Queue{store: store}
}

func (q *Queue) Len() (uint64, error) {
	return q.store.NextProposalIndex()
}

// Append stores p at the end of the queue and returns its index.
func (q *Queue) Append(p types.Proposal) (uint64, error) {
	idx, err := q.store.NextProposalIndex()
	if err != nil {
		return 0, err
	}
	next, overflow := math.SafeAdd(idx, 1)
	if overflow {
		return 0, types.ErrArithmeticOverflow
	}
	p.Index = idx
	if err = q.store.SetProposal(&p); err != nil {
		return 0, err
	}
	if err = q.store.SetNextProposalIndex(next); err != nil {
		return 0, err
	}
	return idx, nil
}

func (q *Queue) Get(idx uint64) (*types.Proposal, error) {
	n, err := q.store.NextProposalIndex()
	if err != nil {
		return nil, err
	}
	if idx >= n {
		return nil, types.ErrProposalNotFound
	}
	p, err := q.store.Proposal(idx)
	if errors.Is(err, state.ErrNotFound) {
		return nil, types.ErrProposalNotFound
	}
	return p, err
}

// Last returns the most recently appended proposal, or nil when the queue is
// empty.
func (q *Queue) Last() (*types.Proposal, error) {
	n, err := q.store.NextProposalIndex()
	if err != nil || n == 0 {
		return nil, err
	}
	return q.Get(n - 1)
}

func (q *Queue) Update(p *types.Proposal) error {
	n, err := q.store.NextProposalIndex()
	if err != nil {
		return err
	}
	if p.Index >= n {
		return types.ErrProposalNotFound
	}
	return q.store.SetProposal(p)
}

func (q *Queue) MarkProcessed(p *types.Proposal, didPass bool) error {
	if p.Processed {
		return types.ErrAlreadyProcessed
	}
	p.Processed = true
	p.DidPass = didPass
	return q.Update(p)
}

func (q *Queue) HasVoted(voter string, idx uint64) (bool, error) {
	_, found, err := q.store.Ballot(voter, idx)
	return found, err
}

func (q *Queue) Ballot(voter string, idx uint64) (types.Ballot, bool, error) {
	return q.store.Ballot(voter, idx)
}

// RecordVote stores voter's ballot on p and bumps the matching tally. A voter
// gets one ballot per proposal.
func (q *Queue) RecordVote(p *types.Proposal, voter string, b types.Ballot) error {
	if !b.Valid() {
		return types.ErrInvalidBallot
	}
	voted, err := q.HasVoted(voter, p.Index)
	if err != nil {
		return err
	}
	if voted {
		return types.ErrAlreadyVoted
	}
	switch b {
	case types.BallotYes:
		if p.YesVotes == ^uint32(0) {
			return types.ErrArithmeticOverflow
		}
		p.YesVotes++
	case types.BallotNo:
		if p.NoVotes == ^uint32(0) {
			return types.ErrArithmeticOverflow
		}
		p.NoVotes++
	}
	if err = q.store.SetBallot(voter, p.Index, b); err != nil {
		return err
	}
	return q.Update(p)
}
