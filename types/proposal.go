package types

type Proposal struct {
	Index           uint64 `json:"index"`
	Proposer        string `json:"proposer"`
	Applicant       string `json:"applicant"`
	SharesRequested uint64 `json:"shares_requested"`
	StartingPeriod  uint64 `json:"starting_period"`
	YesVotes        uint32 `json:"yes_votes"`
	NoVotes         uint32 `json:"no_votes"`
	Processed       bool   `json:"processed"`
	DidPass         bool   `json:"did_pass"`
	Aborted         bool   `json:"aborted"`
}

type Member struct {
	Exists              bool   `json:"exists"`
	HighestIndexYesVote uint64 `json:"highest_index_yes_vote"`
}

// Balance is the token record of one account.
type Balance struct {
	Free   uint64 `json:"balance"`
	Locked uint64 `json:"locked_deposit"`
}

// Deposit is the amount a proposer escrowed when submitting a proposal.
// Refunded is set once processing released it.
type Deposit struct {
	Proposer string `json:"proposer"`
	Amount   uint64 `json:"amount"`
	Refunded bool   `json:"refunded"`
}

type Ballot uint8

const (
	BallotYes Ballot = 0
	BallotNo  Ballot = 1
)

func (b Ballot) Valid() bool {
	return b == BallotYes || b == BallotNo
}

func (b Ballot) String() string {
	switch b {
	case BallotYes:
		return "yes"
	case BallotNo:
		return "no"
	}
	return "invalid"
}
