package state

import (
	"errors"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrProposalNotFound   = errors.New("proposal not found")
	ErrQuizNotFound       = errors.New("quiz not found for this proposal")
	ErrVoteNotFound       = errors.New("vote not found")
	ErrDelegationNotFound = errors.New("delegation not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrDelegateeNotFound  = errors.New("delegatee not found")

	ErrProposalNotActive = errors.New("proposal is not active")
	ErrAlreadyIntegrated = errors.New("comment is already integrated")
	ErrAlreadyRevoked    = errors.New("delegation is already revoked")
	ErrProposalHasVotes  = errors.New("proposal has votes or is closed/escalated")

	ErrNotProposalAuthor = errors.New("only the proposal author may do this")
	ErrNotDelegator      = errors.New("user not authorized to revoke this delegation")

	ErrDuplicateVote        = errors.New("user has already voted on this proposal")
	ErrDuplicateDelegation  = errors.New("user has already delegated for this proposal")
	ErrDuplicateCommentVote = errors.New("user has already voted on this comment")
	ErrDuplicateQuiz        = errors.New("a quiz already exists for this proposal")
	ErrUsernameTaken        = errors.New("username already registered")

	ErrInsufficientAcent = errors.New("insufficient Acent balance")
	ErrInsufficientDcent = errors.New("insufficient Dcent balance")

	ErrVoterNotCompetent     = errors.New("user must pass the quiz before voting directly")
	ErrDelegateeNotCompetent = errors.New("delegatee must have passed the quiz for this proposal")
	ErrDelegatorCompetent    = errors.New("user has passed the quiz and should vote directly")

	ErrScopeNotHigher = errors.New("new scope must be higher than current scope")

	// ErrValidation is the sentinel wrapped by malformed-payload
	// failures, e.g. an empty title or a question without a correct
	// option.
	ErrValidation = errors.New("validation failed")
)

// Kind classifies engine failures for the transport layer. Every
// business-rule failure maps to a stable kind; anything unrecognized
// is treated as a storage fault.
type Kind uint8

const (
	KindNotFound Kind = iota + 1
	KindInvalidState
	KindUnauthorized
	KindConflict
	KindInsufficientFunds
	KindCompetenceRequired
	KindValidation
	KindStorageUnavailable
)

var kindTable = map[Kind][]error{
	KindNotFound: {
		ErrUserNotFound, ErrProposalNotFound, ErrQuizNotFound, ErrVoteNotFound,
		ErrDelegationNotFound, ErrCommentNotFound, ErrDelegateeNotFound,
	},
	KindInvalidState: {
		ErrProposalNotActive, ErrAlreadyIntegrated, ErrAlreadyRevoked, ErrProposalHasVotes,
	},
	KindUnauthorized: {
		ErrNotProposalAuthor, ErrNotDelegator,
	},
	KindConflict: {
		ErrDuplicateVote, ErrDuplicateDelegation, ErrDuplicateCommentVote,
		ErrDuplicateQuiz, ErrUsernameTaken,
	},
	KindInsufficientFunds: {
		ErrInsufficientAcent, ErrInsufficientDcent,
	},
	KindCompetenceRequired: {
		ErrVoterNotCompetent, ErrDelegateeNotCompetent, ErrDelegatorCompetent,
	},
	KindValidation: {
		ErrScopeNotHigher, ErrValidation,
	},
}

func KindOf(err error) Kind {
	for kind, errs := range kindTable {
		for _, e := range errs {
			if errors.Is(err, e) {
				return kind
			}
		}
	}
	return KindStorageUnavailable
}
