package service

import (
	"errors"
	"fmt"
)

// ErrorCode classifies domain failures so the presentation layer can
// render them without string matching. Store/transport failures are
// never given a code; they stay plain wrapped errors, which lets a
// caller tell "your request was invalid" apart from "we couldn't reach
// the store".
type ErrorCode string

const (
	CodeInvalidAmount     ErrorCode = "INVALID_AMOUNT"
	CodeSameAccount       ErrorCode = "SAME_ACCOUNT"
	CodeIdentityMissing   ErrorCode = "IDENTITY_MISSING"
	CodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	CodeBankInsufficient  ErrorCode = "BANK_INSUFFICIENT"
	CodeGameNotFound      ErrorCode = "GAME_NOT_FOUND"
	CodePlayerNotFound    ErrorCode = "PLAYER_NOT_FOUND"
	CodeAlreadyMember     ErrorCode = "ALREADY_MEMBER"
)

// Error is a domain failure with enough structure for callers to act
// on: the code, the offending field and a human-readable message.
type Error struct {
	Code    ErrorCode
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// AsDomainError unwraps err into a *Error if it carries one.
func AsDomainError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func ErrInvalidAmount(amount int64) *Error {
	return &Error{
		Code:    CodeInvalidAmount,
		Field:   "amount",
		Message: fmt.Sprintf("amount must be a positive integer, got %d", amount),
	}
}

func ErrSameAccount(playerID string) *Error {
	return &Error{
		Code:    CodeSameAccount,
		Field:   "to",
		Message: fmt.Sprintf("cannot transfer from account %s to itself", playerID),
	}
}

func ErrIdentityMissing() *Error {
	return &Error{
		Code:    CodeIdentityMissing,
		Field:   "uid",
		Message: "participant identity is required",
	}
}

func ErrInsufficientFunds(have, need int64) *Error {
	return &Error{
		Code:    CodeInsufficientFunds,
		Field:   "amount",
		Message: fmt.Sprintf("insufficient balance: have %d, need %d", have, need),
	}
}

func ErrBankInsufficient(have, need int64) *Error {
	return &Error{
		Code:    CodeBankInsufficient,
		Field:   "amount",
		Message: fmt.Sprintf("insufficient bank balance: have %d, need %d", have, need),
	}
}

func ErrGameNotFound(gameID string) *Error {
	return &Error{
		Code:    CodeGameNotFound,
		Field:   "gameId",
		Message: fmt.Sprintf("game %s not found", gameID),
	}
}

func ErrPlayerNotFound(playerID string) *Error {
	return &Error{
		Code:    CodePlayerNotFound,
		Field:   "playerId",
		Message: fmt.Sprintf("player account %s not found", playerID),
	}
}

func ErrAlreadyMember(uid string) *Error {
	return &Error{
		Code:    CodeAlreadyMember,
		Field:   "uid",
		Message: fmt.Sprintf("identity %s already joined this game", uid),
	}
}
