package types

import (
	"fmt"
)

// Scope is the ordered escalation hierarchy for proposals. A proposal
// may only escalate to a strictly higher scope.
type Scope uint8

const (
	ScopeUnknown Scope = iota
	ScopeNeighborhood
	ScopeCity
	ScopeState
	ScopeRegion
	ScopeCountry
	ScopeGlobal
)

var scopeNames = map[Scope]string{
	ScopeNeighborhood: "neighborhood",
	ScopeCity:         "city",
	ScopeState:        "state",
	ScopeRegion:       "region",
	ScopeCountry:      "country",
	ScopeGlobal:       "global",
}

func (s Scope) String() string {
	if n, ok := scopeNames[s]; ok {
		return n
	}
	return fmt.Sprintf("scope(%d)", uint8(s))
}

func (s Scope) Valid() bool {
	_, ok := scopeNames[s]
	return ok
}

// Higher reports whether s is strictly higher than o in the hierarchy.
func (s Scope) Higher(o Scope) bool {
	return s > o
}

func ParseScope(v string) (Scope, error) {
	for s, n := range scopeNames {
		if n == v {
			return s, nil
		}
	}
	return ScopeUnknown, fmt.Errorf("unknown scope %q", v)
}

type ProposalStatus uint8

const (
	ProposalStatusActive ProposalStatus = iota
	ProposalStatusClosed
	ProposalStatusEscalated
)

func (s ProposalStatus) String() string {
	switch s {
	case ProposalStatusActive:
		return "active"
	case ProposalStatusClosed:
		return "closed"
	case ProposalStatusEscalated:
		return "escalated"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

type VoteChoice uint8

const (
	VoteYes VoteChoice = iota + 1
	VoteNo
)

func (c VoteChoice) String() string {
	switch c {
	case VoteYes:
		return "yes"
	case VoteNo:
		return "no"
	}
	return fmt.Sprintf("choice(%d)", uint8(c))
}

func ParseVoteChoice(v string) (VoteChoice, error) {
	switch v {
	case "yes":
		return VoteYes, nil
	case "no":
		return VoteNo, nil
	}
	return 0, fmt.Errorf("vote choice must be yes or no, got %q", v)
}

type CommentVoteChoice uint8

const (
	CommentVoteUp CommentVoteChoice = iota + 1
	CommentVoteDown
)

func (c CommentVoteChoice) String() string {
	switch c {
	case CommentVoteUp:
		return "up"
	case CommentVoteDown:
		return "down"
	}
	return fmt.Sprintf("choice(%d)", uint8(c))
}

func ParseCommentVoteChoice(v string) (CommentVoteChoice, error) {
	switch v {
	case "up":
		return CommentVoteUp, nil
	case "down":
		return CommentVoteDown, nil
	}
	return 0, fmt.Errorf("comment vote choice must be up or down, got %q", v)
}

type Currency uint8

const (
	CurrencyAcent Currency = iota + 1
	CurrencyDcent
)

func (c Currency) String() string {
	switch c {
	case CurrencyAcent:
		return "acent"
	case CurrencyDcent:
		return "dcent"
	}
	return fmt.Sprintf("currency(%d)", uint8(c))
}

func ParseCurrency(v string) (Currency, error) {
	switch v {
	case "acent":
		return CurrencyAcent, nil
	case "dcent":
		return CurrencyDcent, nil
	}
	return 0, fmt.Errorf("unknown currency %q", v)
}

// TxnType tags every ledger entry with the action that produced it.
type TxnType uint8

const (
	TxnQuizPass TxnType = iota + 1
	TxnVoteCast
	TxnProposalCreation
	TxnDelegationGiven
	TxnDelegationReceived
	TxnDelegationRevoked
	TxnCommentCreation
	TxnCommentVote
	TxnCommentUpvoteReceived
	TxnCommentIntegration
	TxnProposalVoteReceived
)

var txnTypeNames = map[TxnType]string{
	TxnQuizPass:              "quiz_pass",
	TxnVoteCast:              "vote_cast",
	TxnProposalCreation:      "proposal_creation",
	TxnDelegationGiven:       "delegation_given",
	TxnDelegationReceived:    "delegation_received",
	TxnDelegationRevoked:     "delegation_revoked",
	TxnCommentCreation:       "comment_creation",
	TxnCommentVote:           "comment_vote",
	TxnCommentUpvoteReceived: "comment_upvote_received",
	TxnCommentIntegration:    "comment_integration",
	TxnProposalVoteReceived:  "proposal_vote_received",
}

func (t TxnType) String() string {
	if n, ok := txnTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("txn(%d)", uint8(t))
}

type EntityKind uint8

const (
	EntityNone EntityKind = iota
	EntityProposal
	EntityQuiz
	EntityVote
	EntityDelegation
	EntityComment
)

func (k EntityKind) String() string {
	switch k {
	case EntityProposal:
		return "proposal"
	case EntityQuiz:
		return "quiz"
	case EntityVote:
		return "vote"
	case EntityDelegation:
		return "delegation"
	case EntityComment:
		return "comment"
	}
	return ""
}

type Location struct {
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Country string `json:"country"`
}

// User carries the wallet and participation sets. Credentials and
// sessions live outside the engine.
type User struct {
	Index        uint64   `json:"index"`
	Username     string   `json:"username"`
	Name         string   `json:"name"`
	Location     Location `json:"location"`
	AcentBalance uint64   `json:"acentBalance"`
	DcentBalance uint64   `json:"dcentBalance"`
	// PassedQuizzes is keyed by quiz index so the competence gate is a
	// single map lookup.
	PassedQuizzes       map[uint64]bool `json:"passedQuizzes"`
	DelegationsGiven    []uint64        `json:"delegationsGiven"`
	DelegationsReceived []uint64        `json:"delegationsReceived"`
	CreatedAt           int64           `json:"createdAt"`
}

func (u *User) HasPassed(quizIdx uint64) bool {
	return u.PassedQuizzes[quizIdx]
}

type Proposal struct {
	Index              uint64         `json:"index"`
	Author             uint64         `json:"author"`
	Title              string         `json:"title"`
	Content            string         `json:"content"`
	Scope              Scope          `json:"scope"`
	Location           Location       `json:"location"`
	Status             ProposalStatus `json:"status"`
	YesVotes           uint64         `json:"yesVotes"`
	NoVotes            uint64         `json:"noVotes"`
	Comments           []uint64       `json:"comments"`
	IntegratedComments []uint64       `json:"integratedComments"`
	EscalatedTo        uint64         `json:"escalatedTo,omitempty"`
	CreatedAt          int64          `json:"createdAt"`
	ClosedAt           int64          `json:"closedAt,omitempty"`
}

type QuizOption struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

type QuizQuestion struct {
	Text        string       `json:"text"`
	Options     []QuizOption `json:"options"`
	Explanation string       `json:"explanation,omitempty"`
}

type Quiz struct {
	Index        uint64         `json:"index"`
	Proposal     uint64         `json:"proposal"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Questions    []QuizQuestion `json:"questions"`
	PassingScore uint64         `json:"passingScore"`
	CreatedAt    int64          `json:"createdAt"`
}

// QuizAnswer references a question and the option selected for it.
// Attempts may be sparse; unanswered questions score zero.
type QuizAnswer struct {
	QuestionIndex  int `json:"questionIndex"`
	SelectedOption int `json:"selectedOption"`
}

type Vote struct {
	Index    uint64     `json:"index"`
	Proposal uint64     `json:"proposal"`
	Voter    uint64     `json:"voter"`
	Choice   VoteChoice `json:"choice"`
	// DelegatedVotes lists the delegation indexes absorbed into this
	// vote. Absorbed weight inherits the voter's choice.
	DelegatedVotes []uint64 `json:"delegatedVotes"`
	CreatedAt      int64    `json:"createdAt"`
}

func (v *Vote) Weight() uint64 {
	return 1 + uint64(len(v.DelegatedVotes))
}

type Delegation struct {
	Index     uint64 `json:"index"`
	Proposal  uint64 `json:"proposal"`
	Delegator uint64 `json:"delegator"`
	Delegatee uint64 `json:"delegatee"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"createdAt"`
	RevokedAt int64  `json:"revokedAt,omitempty"`
}

type CommentBallot struct {
	Voter  uint64            `json:"voter"`
	Choice CommentVoteChoice `json:"choice"`
}

type Comment struct {
	Index    uint64 `json:"index"`
	Proposal uint64 `json:"proposal"`
	Author   uint64 `json:"author"`
	Content  string `json:"content"`
	// IsCompetent is fixed at creation from the author's quiz status.
	IsCompetent  bool            `json:"isCompetent"`
	Upvotes      uint64          `json:"upvotes"`
	Downvotes    uint64          `json:"downvotes"`
	Voters       []CommentBallot `json:"voters"`
	IsIntegrated bool            `json:"isIntegrated"`
	IntegratedAt int64           `json:"integratedAt,omitempty"`
	CreatedAt    int64           `json:"createdAt"`
}

func (c *Comment) HasVoted(user uint64) bool {
	for _, b := range c.Voters {
		if b.Voter == user {
			return true
		}
	}
	return false
}

// LedgerEntry is one append-only record of a balance change. Entries
// are never mutated or deleted; balances on User are the materialized
// view, the ledger is the audit trail.
type LedgerEntry struct {
	Index         uint64     `json:"index"`
	User          uint64     `json:"user"`
	Amount        int64      `json:"amount"`
	Currency      Currency   `json:"currency"`
	Type          TxnType    `json:"type"`
	RelatedEntity uint64     `json:"relatedEntity,omitempty"`
	EntityKind    EntityKind `json:"entityKind,omitempty"`
	Description   string     `json:"description"`
	CreatedAt     int64      `json:"createdAt"`
}
