package types

import (
	"errors"
	"fmt"
)

type ErrorKind uint8

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindInsufficientBalance
	KindArithmeticOverflow
	KindArithmeticUnderflow
	KindAuthorization
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInsufficientBalance:
		return "insufficient_balance"
	case KindArithmeticOverflow:
		return "arithmetic_overflow"
	case KindArithmeticUnderflow:
		return "arithmetic_underflow"
	case KindAuthorization:
		return "authorization"
	default:
		return "internal"
	}
}

// Error is a rejected operation. Code is reported as the ABCI result code.
type Error struct {
	Code    uint32
	Kind    ErrorKind
	Message string
}

func NewError(code uint32, kind ErrorKind, message string) *Error {
	return &Error{Code: code, Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

var (
	ErrProposalNotFound     = NewError(101, KindValidation, "proposal does not exist")
	ErrInvalidBallot        = NewError(102, KindValidation, "vote must be either 0(yes) or 1(no)")
	ErrVotingNotStarted     = NewError(103, KindValidation, "voting period has not started")
	ErrVotingExpired        = NewError(104, KindValidation, "proposal voting period has expired")
	ErrAlreadyVoted         = NewError(105, KindValidation, "member has already voted on this proposal")
	ErrProposalAborted      = NewError(106, KindValidation, "proposal has been aborted")
	ErrProposalNotReady     = NewError(107, KindValidation, "proposal is not ready to be processed")
	ErrAlreadyProcessed     = NewError(108, KindValidation, "proposal has already been processed")
	ErrPreviousNotProcessed = NewError(109, KindValidation, "previous proposal must be processed")
	ErrAlreadyInitialized   = NewError(110, KindValidation, "token already initialized")
	ErrMalformedTx          = NewError(111, KindValidation, "transaction body does not match its type")
	ErrInvalidAddress       = NewError(112, KindValidation, "account id is not an upper-case hex address")

	ErrInsufficientBalance = NewError(201, KindInsufficientBalance, "not enough balance")
	ErrNoBalanceRecord     = NewError(202, KindInsufficientBalance, "account does not own this token")
	ErrDepositTooSmall     = NewError(203, KindInsufficientBalance, "balance is smaller than the minimum deposit")

	ErrArithmeticOverflow  = NewError(301, KindArithmeticOverflow, "arithmetic overflow")
	ErrArithmeticUnderflow = NewError(302, KindArithmeticUnderflow, "arithmetic underflow")

	ErrNotOwner = NewError(401, KindAuthorization, "only the owner in genesis config can initialize the token")
)

// KindOf reports the kind of a domain error; anything else is internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the ABCI result code for err. Non-domain errors map to 1.
func CodeOf(err error) uint32 {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 1
}
