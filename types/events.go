package types

// Engine events. One event per committed mutation; the indexer
// consumes them to maintain the read model. Events are only published
// after the state version holding the mutation has been saved.

const (
	EventUserRegisteredType    = "user_registered"
	EventProposalType          = "proposal"
	EventProposalStatusType    = "proposal_status"
	EventProposalDeletedType   = "proposal_deleted"
	EventQuizType              = "quiz"
	EventQuizPassedType        = "quiz_passed"
	EventVoteType              = "vote"
	EventDelegationType        = "delegation"
	EventDelegationRevokedType = "delegation_revoked"
	EventCommentType           = "comment"
	EventCommentVoteType       = "comment_vote"
	EventCommentIntegratedType = "comment_integrated"
	EventLedgerEntryType       = "ledger_entry"
)

type Event interface {
	EventType() string
}

type EventUserRegistered struct {
	User User `json:"user"`
}

func (EventUserRegistered) EventType() string { return EventUserRegisteredType }

// EventProposal fires on creation and on author edits.
type EventProposal struct {
	Proposal Proposal `json:"proposal"`
}

func (EventProposal) EventType() string { return EventProposalType }

type EventProposalStatus struct {
	Proposal uint64         `json:"proposal"`
	Status   ProposalStatus `json:"status"`
	// Escalation spawns a child proposal at a higher scope.
	EscalatedTo uint64 `json:"escalatedTo,omitempty"`
}

func (EventProposalStatus) EventType() string { return EventProposalStatusType }

type EventProposalDeleted struct {
	Proposal uint64 `json:"proposal"`
}

func (EventProposalDeleted) EventType() string { return EventProposalDeletedType }

type EventQuiz struct {
	Quiz Quiz `json:"quiz"`
}

func (EventQuiz) EventType() string { return EventQuizType }

type EventQuizPassed struct {
	Quiz  uint64 `json:"quiz"`
	User  uint64 `json:"user"`
	Score uint64 `json:"score"`
	// FirstPass is false when the user had already passed; re-passing
	// awards nothing.
	FirstPass bool `json:"firstPass"`
}

func (EventQuizPassed) EventType() string { return EventQuizPassedType }

type EventVote struct {
	Vote Vote `json:"vote"`
	// Absorbed is the number of delegations folded into the vote.
	Absorbed uint64 `json:"absorbed"`
}

func (EventVote) EventType() string { return EventVoteType }

type EventDelegation struct {
	Delegation Delegation `json:"delegation"`
}

func (EventDelegation) EventType() string { return EventDelegationType }

type EventDelegationRevoked struct {
	Delegation uint64 `json:"delegation"`
	RevokedAt  int64  `json:"revokedAt"`
}

func (EventDelegationRevoked) EventType() string { return EventDelegationRevokedType }

type EventComment struct {
	Comment Comment `json:"comment"`
}

func (EventComment) EventType() string { return EventCommentType }

type EventCommentVote struct {
	Comment   uint64            `json:"comment"`
	Voter     uint64            `json:"voter"`
	Choice    CommentVoteChoice `json:"choice"`
	Upvotes   uint64            `json:"upvotes"`
	Downvotes uint64            `json:"downvotes"`
}

func (EventCommentVote) EventType() string { return EventCommentVoteType }

type EventCommentIntegrated struct {
	Comment  uint64 `json:"comment"`
	Proposal uint64 `json:"proposal"`
	// Automatic marks threshold-triggered integrations; manual ones
	// come from the proposal author.
	Automatic    bool  `json:"automatic"`
	IntegratedAt int64 `json:"integratedAt"`
}

func (EventCommentIntegrated) EventType() string { return EventCommentIntegratedType }

type EventLedgerEntry struct {
	Entry LedgerEntry `json:"entry"`
}

func (EventLedgerEntry) EventType() string { return EventLedgerEntryType }
