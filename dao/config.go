package dao

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/math"
)

var (
	ErrInvalidVotingPeriod    = errors.New("voting_period_length must be positive")
	ErrRewardExceedsDeposit   = errors.New("processing_reward must not exceed minimum_deposit")
	ErrMissingOwner           = errors.New("owner must be set")
	ErrStartingPeriodOverflow = errors.New("starting_period_offset plus voting_period_length overflows")
)

// Config holds the governance parameters. They are fixed at genesis.
type Config struct {
	StartingPeriodOffset uint64 `json:"starting_period_offset"`
	VotingPeriodLength   uint64 `json:"voting_period_length"`
	MinimumDeposit       uint64 `json:"minimum_deposit"`
	ProcessingReward     uint64 `json:"processing_reward"`
	Owner                string `json:"owner"`
	InitialSupply        uint64 `json:"initial_supply"`
}

func DefaultConfig() Config {
	return Config{
		StartingPeriodOffset: 5,
		VotingPeriodLength:   10,
		MinimumDeposit:       10,
		ProcessingReward:     1,
	}
}

func (c Config) Validate() error {
	if c.VotingPeriodLength == 0 {
		return ErrInvalidVotingPeriod
	}
	if c.ProcessingReward > c.MinimumDeposit {
		return ErrRewardExceedsDeposit
	}
	if c.Owner == "" {
		return ErrMissingOwner
	}
	if _, overflow := math.SafeAdd(c.StartingPeriodOffset, c.VotingPeriodLength); overflow {
		return ErrStartingPeriodOverflow
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("offset=%d voting=%d deposit=%d reward=%d owner=%s",
		c.StartingPeriodOffset, c.VotingPeriodLength, c.MinimumDeposit, c.ProcessingReward, c.Owner)
}

func ParseConfig(raw []byte) (c Config, err error) {
	if err = json.Unmarshal(raw, &c); err != nil {
		return
	}
	err = c.Validate()
	return
}

func (c Config) Marshal() ([]byte, error) {
	return json.Marshal(c)
}
