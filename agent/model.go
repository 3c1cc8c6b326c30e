package agent

// sqlite models

type Height struct {
	Id     uint64 `gorm:"primary_key" json:"id"`
	Height uint64 `json:"height"`
}

const (
	ProposalStatusVoting uint64 = iota
	ProposalStatusPassed
	ProposalStatusFailed
)

type Proposal struct {
	Id              uint64 `gorm:"primary_key;AUTO_INCREMENT" json:"-"`
	ProposalIndex   uint64 `gorm:"unique_index" json:"proposal_index"`
	Proposer        string `gorm:"index" json:"proposer"`
	Applicant       string `gorm:"index" json:"applicant"`
	SharesRequested uint64 `json:"shares_requested"`
	StartingPeriod  uint64 `json:"starting_period"`
	YesVotes        uint64 `json:"yes_votes"`
	NoVotes         uint64 `json:"no_votes"`
	Status          uint64 `json:"status"`
	NewHeight       uint64 `json:"new_height"`
	ProcessHeight   uint64 `json:"process_height"`
}

type ProposalVote struct {
	Id       uint64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Proposal uint64 `gorm:"index" json:"proposal"`
	Voter    string `gorm:"index" json:"voter"`
	Ballot   uint8  `json:"ballot"`
	Height   uint64 `json:"height"`
}

// Member records shares granted by genesis initialization and passed
// proposals. Transfers are not applied; the ledger holds live balances.
type Member struct {
	Address       string `gorm:"primary_key" json:"address"`
	SharesGranted uint64 `json:"shares_granted"`
	JoinHeight    uint64 `json:"join_height"`
}

type Transfer struct {
	Id        uint64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Sender    string `gorm:"index" json:"from"`
	Recipient string `gorm:"index" json:"to"`
	Amount    uint64 `json:"amount"`
	Height    uint64 `json:"height"`
}
