package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/calehh/hac-dao/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var (
	KeyState                = "s"
	KeyParams               = "g"
	KeyBalance              = "b%s"
	KeyMember               = "m%s"
	KeyNonce                = "n%s"
	KeyProposalBody         = "p%020d"
	KeyProposalDeposit      = "d%020d"
	KeyBallot               = "v%s/%020d"
	KeyTotalShares          = "c/total_shares"
	KeyTotalSharesRequested = "c/total_shares_requested"
	KeyNextProposalIndex    = "c/next_proposal_index"
	KeyInitialized          = "c/initialized"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrCorruptedRecord = errors.New("corrupted record")
)

var counterEncoding = proto.MarshalOptions{Deterministic: true}

// State is a write-buffered view of the governance store. Writes become
// visible to the parent only after Write.
type State struct {
	logger cmtlog.Logger
	store  KVStore
	cache  *CacheStore
}

func NewState(store KVStore, logger cmtlog.Logger) *State {
	c := NewCacheStore(store)
	return &State{
		logger: logger,
		store:  c,
		cache:  c,
	}
}

// Cache returns a child state whose writes are dropped unless Write is called.
func (s *State) Cache() *State {
	return NewState(s.store, s.logger)
}

func (s *State) Write() error {
	return s.cache.Write()
}

func (s *State) Discard() {
	s.cache.Discard()
}

func (s *State) Logger() cmtlog.Logger {
	return s.logger
}

func (s *State) get(key string) ([]byte, error) {
	val, err := s.store.Get([]byte(key))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return val, nil
}

func (s *State) set(key string, val []byte) error {
	if err := s.store.Set([]byte(key), val); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *State) getUint64(key string) (uint64, error) {
	val, err := s.get(key)
	if err != nil || val == nil {
		return 0, err
	}
	v := new(wrapperspb.UInt64Value)
	if err = proto.Unmarshal(val, v); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrCorruptedRecord, key, err)
	}
	return v.GetValue(), nil
}

func (s *State) setUint64(key string, n uint64) error {
	val, err := counterEncoding.Marshal(wrapperspb.UInt64(n))
	if err != nil {
		return err
	}
	return s.set(key, val)
}

func (s *State) Balance(addr string) (b types.Balance, found bool, err error) {
	val, err := s.get(fmt.Sprintf(KeyBalance, addr))
	if err != nil || val == nil {
		return
	}
	if err = rlp.DecodeBytes(val, &b); err != nil {
		err = fmt.Errorf("%w: balance %s: %v", ErrCorruptedRecord, addr, err)
		return
	}
	found = true
	return
}

func (s *State) SetBalance(addr string, b types.Balance) error {
	val, err := rlp.EncodeToBytes(&b)
	if err != nil {
		return err
	}
	return s.set(fmt.Sprintf(KeyBalance, addr), val)
}

func (s *State) Initialized() (bool, error) {
	val, err := s.get(KeyInitialized)
	if err != nil || val == nil {
		return false, err
	}
	v := new(wrapperspb.BoolValue)
	if err = proto.Unmarshal(val, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorruptedRecord, KeyInitialized, err)
	}
	return v.GetValue(), nil
}

func (s *State) SetInitialized() error {
	val, err := counterEncoding.Marshal(wrapperspb.Bool(true))
	if err != nil {
		return err
	}
	return s.set(KeyInitialized, val)
}

func (s *State) Member(addr string) (m types.Member, found bool, err error) {
	val, err := s.get(fmt.Sprintf(KeyMember, addr))
	if err != nil || val == nil {
		return
	}
	if err = json.Unmarshal(val, &m); err != nil {
		err = fmt.Errorf("%w: member %s: %v", ErrCorruptedRecord, addr, err)
		return
	}
	found = true
	return
}

func (s *State) SetMember(addr string, m types.Member) error {
	val, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.set(fmt.Sprintf(KeyMember, addr), val)
}

func (s *State) Proposal(idx uint64) (*types.Proposal, error) {
	val, err := s.get(fmt.Sprintf(KeyProposalBody, idx))
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, ErrNotFound
	}
	proposal := new(types.Proposal)
	if err = json.Unmarshal(val, proposal); err != nil {
		return nil, fmt.Errorf("%w: proposal %d: %v", ErrCorruptedRecord, idx, err)
	}
	return proposal, nil
}

func (s *State) SetProposal(p *types.Proposal) error {
	val, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.set(fmt.Sprintf(KeyProposalBody, p.Index), val)
}

func (s *State) ProposalDeposit(idx uint64) (d types.Deposit, found bool, err error) {
	val, err := s.get(fmt.Sprintf(KeyProposalDeposit, idx))
	if err != nil || val == nil {
		return
	}
	if err = rlp.DecodeBytes(val, &d); err != nil {
		err = fmt.Errorf("%w: deposit %d: %v", ErrCorruptedRecord, idx, err)
		return
	}
	found = true
	return
}

func (s *State) SetProposalDeposit(idx uint64, d types.Deposit) error {
	val, err := rlp.EncodeToBytes(&d)
	if err != nil {
		return err
	}
	return s.set(fmt.Sprintf(KeyProposalDeposit, idx), val)
}

func (s *State) Ballot(voter string, idx uint64) (b types.Ballot, found bool, err error) {
	val, err := s.get(fmt.Sprintf(KeyBallot, voter, idx))
	if err != nil || val == nil {
		return
	}
	if len(val) != 1 {
		err = fmt.Errorf("%w: ballot %s/%d", ErrCorruptedRecord, voter, idx)
		return
	}
	return types.Ballot(val[0]), true, nil
}

func (s *State) SetBallot(voter string, idx uint64, b types.Ballot) error {
	return s.set(fmt.Sprintf(KeyBallot, voter, idx), []byte{byte(b)})
}

func (s *State) NextProposalIndex() (uint64, error) {
	return s.getUint64(KeyNextProposalIndex)
}

func (s *State) SetNextProposalIndex(n uint64) error {
	return s.setUint64(KeyNextProposalIndex, n)
}

func (s *State) TotalShares() (uint64, error) {
	return s.getUint64(KeyTotalShares)
}

func (s *State) SetTotalShares(n uint64) error {
	return s.setUint64(KeyTotalShares, n)
}

func (s *State) TotalSharesRequested() (uint64, error) {
	return s.getUint64(KeyTotalSharesRequested)
}

func (s *State) SetTotalSharesRequested(n uint64) error {
	return s.setUint64(KeyTotalSharesRequested, n)
}

func (s *State) Nonce(addr string) (nonce uint64, err error) {
	val, err := s.get(fmt.Sprintf(KeyNonce, addr))
	if err != nil || val == nil {
		return
	}
	if err = rlp.DecodeBytes(val, &nonce); err != nil {
		err = fmt.Errorf("%w: nonce %s: %v", ErrCorruptedRecord, addr, err)
	}
	return
}

func (s *State) SetNonce(addr string, nonce uint64) error {
	val, err := rlp.EncodeToBytes(nonce)
	if err != nil {
		return err
	}
	return s.set(fmt.Sprintf(KeyNonce, addr), val)
}

// Params returns the raw governance parameters stored at genesis.
func (s *State) Params() ([]byte, error) {
	return s.get(KeyParams)
}

func (s *State) SetParams(raw []byte) error {
	return s.set(KeyParams, raw)
}
