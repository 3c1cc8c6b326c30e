package member

import (
	"github.com/calehh/hac-dao/types"
)

type Store interface {
	Member(addr string) (types.Member, bool, error)
	SetMember(addr string, m types.Member) error
}

type Registry struct {
	store Store
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

func (r *Registry) Exists(addr string) (bool, error) {
	m, found, err := r.store.Member(addr)
	if err != nil {
		return false, err
	}
	return found && m.Exists, nil
}

func (r *Registry) Get(addr string) (types.Member, bool, error) {
	return r.store.Member(addr)
}

func (r *Registry) Register(addr string, highestIndex uint64) error {
	return r.store.SetMember(addr, types.Member{
		Exists:              true,
		HighestIndexYesVote: highestIndex,
	})
}

// RecordYesVote raises the member's yes-vote high-water mark. Accounts that
// are not members are left untouched.
func (r *Registry) RecordYesVote(addr string, proposalIndex uint64) error {
	m, found, err := r.store.Member(addr)
	if err != nil {
		return err
	}
	if !found || !m.Exists {
		return nil
	}
	if proposalIndex < m.HighestIndexYesVote {
		return nil
	}
	m.HighestIndexYesVote = proposalIndex
	return r.store.SetMember(addr, m)
}
