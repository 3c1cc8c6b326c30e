package types

import (
	"fmt"
	"strconv"

	abci "github.com/cometbft/cometbft/abci/types"
)

const (
	EventInitializedType       = "initialized"
	EventProposalSubmittedType = "submit_proposal"
	EventVoteSubmittedType     = "submit_vote"
	EventProposalProcessedType = "process_proposal"
	EventTransferredType       = "transfer"
)

// Event is one notification produced by a governance operation.
type Event interface {
	EventType() string
}

type EventInitialized struct {
	Owner  string `json:"owner"`
	Amount uint64 `json:"amount"`
}

func (*EventInitialized) EventType() string { return EventInitializedType }

type EventProposalSubmitted struct {
	ProposalIndex   uint64 `json:"proposalIndex"`
	Proposer        string `json:"proposer"`
	Applicant       string `json:"applicant"`
	SharesRequested uint64 `json:"sharesRequested"`
	StartingPeriod  uint64 `json:"startingPeriod"`
}

func (*EventProposalSubmitted) EventType() string { return EventProposalSubmittedType }

type EventVoteSubmitted struct {
	ProposalIndex uint64 `json:"proposalIndex"`
	Voter         string `json:"voter"`
	Ballot        Ballot `json:"ballot"`
}

func (*EventVoteSubmitted) EventType() string { return EventVoteSubmittedType }

type EventProposalProcessed struct {
	ProposalIndex   uint64 `json:"proposalIndex"`
	Applicant       string `json:"applicant"`
	Proposer        string `json:"proposer"`
	SharesRequested uint64 `json:"sharesRequested"`
	DidPass         bool   `json:"didPass"`
}

func (*EventProposalProcessed) EventType() string { return EventProposalProcessedType }

type EventTransferred struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

func (*EventTransferred) EventType() string { return EventTransferredType }

// EncodeEvent converts a governance event into its ABCI form.
func EncodeEvent(event Event) abci.Event {
	switch e := event.(type) {
	case *EventInitialized:
		return EncodeEventInitialized(e)
	case *EventProposalSubmitted:
		return EncodeEventProposalSubmitted(e)
	case *EventVoteSubmitted:
		return EncodeEventVoteSubmitted(e)
	case *EventProposalProcessed:
		return EncodeEventProposalProcessed(e)
	case *EventTransferred:
		return EncodeEventTransferred(e)
	}
	panic(fmt.Sprintf("unknown event %T", event))
}

func EncodeEventInitialized(event *EventInitialized) abci.Event {
	return abci.Event{
		Type: EventInitializedType,
		Attributes: []abci.EventAttribute{
			{Key: "owner", Value: event.Owner, Index: true},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
		},
	}
}

func DecodeEventInitialized(originEvent abci.Event) *EventInitialized {
	event := &EventInitialized{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "owner":
			event.Owner = v.Value
		case "amount":
			amount, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Amount = amount
		}
	}
	return event
}

func EncodeEventProposalSubmitted(event *EventProposalSubmitted) abci.Event {
	return abci.Event{
		Type: EventProposalSubmittedType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.ProposalIndex), Index: true},
			{Key: "proposer", Value: event.Proposer, Index: true},
			{Key: "applicant", Value: event.Applicant, Index: true},
			{Key: "sharesRequested", Value: fmt.Sprintf("%v", event.SharesRequested), Index: false},
			{Key: "startingPeriod", Value: fmt.Sprintf("%v", event.StartingPeriod), Index: false},
		},
	}
}

func DecodeEventProposalSubmitted(originEvent abci.Event) *EventProposalSubmitted {
	event := &EventProposalSubmitted{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.ProposalIndex = proposal
		case "proposer":
			event.Proposer = v.Value
		case "applicant":
			event.Applicant = v.Value
		case "sharesRequested":
			shares, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.SharesRequested = shares
		case "startingPeriod":
			period, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.StartingPeriod = period
		}
	}
	return event
}

func EncodeEventVoteSubmitted(event *EventVoteSubmitted) abci.Event {
	return abci.Event{
		Type: EventVoteSubmittedType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.ProposalIndex), Index: true},
			{Key: "voter", Value: event.Voter, Index: true},
			{Key: "ballot", Value: fmt.Sprintf("%v", uint8(event.Ballot)), Index: false},
		},
	}
}

func DecodeEventVoteSubmitted(originEvent abci.Event) *EventVoteSubmitted {
	event := &EventVoteSubmitted{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.ProposalIndex = proposal
		case "voter":
			event.Voter = v.Value
		case "ballot":
			ballot, err := strconv.ParseUint(v.Value, 10, 8)
			if err != nil {
				return nil
			}
			event.Ballot = Ballot(ballot)
		}
	}
	return event
}

func EncodeEventProposalProcessed(event *EventProposalProcessed) abci.Event {
	return abci.Event{
		Type: EventProposalProcessedType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.ProposalIndex), Index: true},
			{Key: "applicant", Value: event.Applicant, Index: true},
			{Key: "proposer", Value: event.Proposer, Index: true},
			{Key: "sharesRequested", Value: fmt.Sprintf("%v", event.SharesRequested), Index: false},
			{Key: "didPass", Value: fmt.Sprintf("%v", event.DidPass), Index: false},
		},
	}
}

func DecodeEventProposalProcessed(originEvent abci.Event) *EventProposalProcessed {
	event := &EventProposalProcessed{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.ProposalIndex = proposal
		case "applicant":
			event.Applicant = v.Value
		case "proposer":
			event.Proposer = v.Value
		case "sharesRequested":
			shares, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.SharesRequested = shares
		case "didPass":
			didPass, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.DidPass = didPass
		}
	}
	return event
}

func EncodeEventTransferred(event *EventTransferred) abci.Event {
	return abci.Event{
		Type: EventTransferredType,
		Attributes: []abci.EventAttribute{
			{Key: "from", Value: event.From, Index: true},
			{Key: "to", Value: event.To, Index: true},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
		},
	}
}

func DecodeEventTransferred(originEvent abci.Event) *EventTransferred {
	event := &EventTransferred{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "from":
			event.From = v.Value
		case "to":
			event.To = v.Value
		case "amount":
			amount, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Amount = amount
		}
	}
	return event
}
