// Package dao is the governance engine. It validates and applies the five
// governance operations against a state.State, one operation at a time.
//
// Each operation runs on a cache of the caller's state. Preconditions are
// checked before anything is written, the cache is flushed only on success
// and events reach the sink only after the flush.
package dao

import (
	"errors"
	"fmt"

	"github.com/calehh/hac-dao/ledger"
	"github.com/calehh/hac-dao/member"
	"github.com/calehh/hac-dao/proposal"
	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common/math"
)

// ErrDepositMissing means a queued proposal has no unrefunded deposit record.
// The state is inconsistent, so it is not a rejection but an internal error.
var ErrDepositMissing = errors.New("proposal deposit record missing")

type Engine struct {
	cfg    Config
	clock  Clock
	sink   EventSink
	logger cmtlog.Logger
}

func New(cfg Config, clock Clock, sink EventSink, logger cmtlog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = NopSink
	}
	return &Engine{
		cfg:    cfg,
		clock:  clock,
		sink:   sink,
		logger: logger.With("module", "dao"),
	}, nil
}

// WithSink returns an engine sharing config and clock that emits to sink.
func (e *Engine) WithSink(sink EventSink) *Engine {
	ne := *e
	ne.sink = sink
	return &ne
}

func (e *Engine) Config() Config {
	return e.cfg
}

// op is the working set of a single operation.
type op struct {
	st      *state.State
	now     uint64
	ledger  *ledger.Ledger
	members *member.Registry
	queue   *proposal.Queue
	events  []types.Event
}

func (o *op) emit(ev types.Event) {
	o.events = append(o.events, ev)
}

func (e *Engine) run(st *state.State, name string, fn func(o *op) error) error {
	cst := st.Cache()
	o := &op{
		st:      cst,
		now:     e.clock.Now(),
		ledger:  ledger.New(cst),
		members: member.NewRegistry(cst),
		queue:   proposal.NewQueue(cst),
	}
	if err := fn(o); err != nil {
		cst.Discard()
		e.logger.Debug("operation rejected", "op", name, "time", o.now, "err", err)
		return err
	}
	if err := cst.Write(); err != nil {
		return fmt.Errorf("%s: write state: %w", name, err)
	}
	for _, ev := range o.events {
		e.sink.Emit(ev)
	}
	return nil
}

// Initialize mints amount to the owner and makes the owner the first member.
func (e *Engine) Initialize(st *state.State, caller string, amount uint64) error {
	return e.run(st, "initialize", func(o *op) error {
		if caller != e.cfg.Owner {
			return types.ErrNotOwner
		}
		total, err := o.st.TotalShares()
		if err != nil {
			return err
		}
		total, overflow := math.SafeAdd(total, amount)
		if overflow {
			return types.ErrArithmeticOverflow
		}
		if err = o.ledger.Initialize(caller, amount); err != nil {
			return err
		}
		if err = o.members.Register(caller, 0); err != nil {
			return err
		}
		if err = o.st.SetTotalShares(total); err != nil {
			return err
		}
		o.emit(&types.EventInitialized{Owner: caller, Amount: amount})
		return nil
	})
}

// SubmitProposal locks the minimum deposit from proposer and queues a request
// for sharesRequested new shares on behalf of applicant.
func (e *Engine) SubmitProposal(st *state.State, proposer, applicant string, sharesRequested uint64) (idx uint64, err error) {
	err = e.run(st, "submit_proposal", func(o *op) error {
		bal, err := o.ledger.BalanceOf(proposer)
		if err != nil {
			return err
		}
		if bal < e.cfg.MinimumDeposit {
			return types.ErrDepositTooSmall
		}
		start, err := e.startingPeriod(o)
		if err != nil {
			return err
		}
		requested, err := o.st.TotalSharesRequested()
		if err != nil {
			return err
		}
		requested, overflow := math.SafeAdd(requested, sharesRequested)
		if overflow {
			return types.ErrArithmeticOverflow
		}
		if err = o.ledger.Lock(proposer, e.cfg.MinimumDeposit); err != nil {
			return err
		}
		idx, err = o.queue.Append(types.Proposal{
			Proposer:        proposer,
			Applicant:       applicant,
			SharesRequested: sharesRequested,
			StartingPeriod:  start,
		})
		if err != nil {
			return err
		}
		if err = o.st.SetProposalDeposit(idx, types.Deposit{Proposer: proposer, Amount: e.cfg.MinimumDeposit}); err != nil {
			return err
		}
		if err = o.st.SetTotalSharesRequested(requested); err != nil {
			return err
		}
		o.emit(&types.EventProposalSubmitted{
			ProposalIndex:   idx,
			Proposer:        proposer,
			Applicant:       applicant,
			SharesRequested: sharesRequested,
			StartingPeriod:  start,
		})
		return nil
	})
	return
}

// startingPeriod schedules a new proposal one offset after the later of now
// and the most recent proposal's starting period.
func (e *Engine) startingPeriod(o *op) (uint64, error) {
	last, err := o.queue.Last()
	if err != nil {
		return 0, err
	}
	base := o.now
	if last != nil && o.now <= last.StartingPeriod {
		base = last.StartingPeriod
	}
	start, overflow := math.SafeAdd(base, e.cfg.StartingPeriodOffset)
	if overflow {
		return 0, types.ErrArithmeticOverflow
	}
	return start, nil
}

func (e *Engine) votingEnd(p *types.Proposal) (uint64, error) {
	end, overflow := math.SafeAdd(p.StartingPeriod, e.cfg.VotingPeriodLength)
	if overflow {
		return 0, types.ErrArithmeticOverflow
	}
	return end, nil
}

func (e *Engine) SubmitVote(st *state.State, voter string, index uint64, ballot types.Ballot) error {
	return e.run(st, "submit_vote", func(o *op) error {
		p, err := o.queue.Get(index)
		if err != nil {
			return err
		}
		if !ballot.Valid() {
			return types.ErrInvalidBallot
		}
		if o.now <= p.StartingPeriod {
			return types.ErrVotingNotStarted
		}
		end, err := e.votingEnd(p)
		if err != nil {
			return err
		}
		if o.now >= end {
			return types.ErrVotingExpired
		}
		voted, err := o.queue.HasVoted(voter, index)
		if err != nil {
			return err
		}
		if voted {
			return types.ErrAlreadyVoted
		}
		if p.Aborted {
			return types.ErrProposalAborted
		}
		if err = o.queue.RecordVote(p, voter, ballot); err != nil {
			return err
		}
		if ballot == types.BallotYes {
			if err = o.members.RecordYesVote(voter, index); err != nil {
				return err
			}
		}
		o.emit(&types.EventVoteSubmitted{ProposalIndex: index, Voter: voter, Ballot: ballot})
		return nil
	})
}

// ProcessProposal settles the proposal at index once its voting window has
// closed. Proposals settle strictly in queue order. The proposer gets the
// deposit back minus the processing reward, which goes to caller.
func (e *Engine) ProcessProposal(st *state.State, caller string, index uint64) (didPass bool, err error) {
	err = e.run(st, "process_proposal", func(o *op) error {
		p, err := o.queue.Get(index)
		if err != nil {
			return err
		}
		end, err := e.votingEnd(p)
		if err != nil {
			return err
		}
		if o.now <= end {
			return types.ErrProposalNotReady
		}
		if p.Processed {
			return types.ErrAlreadyProcessed
		}
		if index > 0 {
			prev, err := o.queue.Get(index - 1)
			if err != nil {
				return err
			}
			if !prev.Processed {
				return types.ErrPreviousNotProcessed
			}
		}

		didPass = p.YesVotes > p.NoVotes && !p.Aborted
		if didPass {
			if err = e.admit(o, p); err != nil {
				return err
			}
		}
		if err = o.queue.MarkProcessed(p, didPass); err != nil {
			return err
		}
		requested, err := o.st.TotalSharesRequested()
		if err != nil {
			return err
		}
		requested, underflow := math.SafeSub(requested, p.SharesRequested)
		if underflow {
			return types.ErrArithmeticUnderflow
		}
		if err = o.st.SetTotalSharesRequested(requested); err != nil {
			return err
		}
		deposit, found, err := o.st.ProposalDeposit(index)
		if err != nil {
			return err
		}
		if !found || deposit.Refunded {
			return fmt.Errorf("%w: proposal %d", ErrDepositMissing, index)
		}
		refund, underflow := math.SafeSub(deposit.Amount, e.cfg.ProcessingReward)
		if underflow {
			return types.ErrArithmeticUnderflow
		}
		if err = o.ledger.Unlock(deposit.Proposer, refund); err != nil {
			return err
		}
		deposit.Refunded = true
		if err = o.st.SetProposalDeposit(index, deposit); err != nil {
			return err
		}
		if err = o.ledger.Transfer(p.Proposer, caller, e.cfg.ProcessingReward); err != nil {
			return err
		}
		o.emit(&types.EventTransferred{From: p.Proposer, To: caller, Amount: e.cfg.ProcessingReward})
		o.emit(&types.EventProposalProcessed{
			ProposalIndex:   index,
			Applicant:       p.Applicant,
			Proposer:        p.Proposer,
			SharesRequested: p.SharesRequested,
			DidPass:         didPass,
		})
		return nil
	})
	if err == nil {
		e.logger.Info("proposal processed", "index", index, "didPass", didPass, "caller", caller)
	}
	return
}

// admit grants the requested shares of a passed proposal.
func (e *Engine) admit(o *op, p *types.Proposal) error {
	total, err := o.st.TotalShares()
	if err != nil {
		return err
	}
	total, overflow := math.SafeAdd(total, p.SharesRequested)
	if overflow {
		return types.ErrArithmeticOverflow
	}
	isMember, err := o.members.Exists(p.Applicant)
	if err != nil {
		return err
	}
	if !isMember {
		if err = o.members.Register(p.Applicant, p.Index); err != nil {
			return err
		}
	}
	if err = o.ledger.Mint(p.Applicant, p.SharesRequested); err != nil {
		return err
	}
	return o.st.SetTotalShares(total)
}

func (e *Engine) Transfer(st *state.State, from, to string, amount uint64) error {
	return e.run(st, "transfer", func(o *op) error {
		if err := o.ledger.Transfer(from, to, amount); err != nil {
			return err
		}
		o.emit(&types.EventTransferred{From: from, To: to, Amount: amount})
		return nil
	})
}

func (e *Engine) Proposal(st *state.State, index uint64) (*types.Proposal, error) {
	return proposal.NewQueue(st).Get(index)
}

func (e *Engine) Deposit(st *state.State, index uint64) (types.Deposit, bool, error) {
	return st.ProposalDeposit(index)
}

func (e *Engine) ProposalCount(st *state.State) (uint64, error) {
	return proposal.NewQueue(st).Len()
}

func (e *Engine) Member(st *state.State, addr string) (types.Member, bool, error) {
	return member.NewRegistry(st).Get(addr)
}

func (e *Engine) Account(st *state.State, addr string) (types.Balance, error) {
	return ledger.New(st).Account(addr)
}

func (e *Engine) Ballot(st *state.State, voter string, index uint64) (types.Ballot, bool, error) {
	return proposal.NewQueue(st).Ballot(voter, index)
}

func (e *Engine) TotalShares(st *state.State) (uint64, error) {
	return st.TotalShares()
}

func (e *Engine) TotalSharesRequested(st *state.State) (uint64, error) {
	return st.TotalSharesRequested()
}
