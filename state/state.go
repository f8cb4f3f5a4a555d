package state

import (
	"encoding/json"
	"fmt"
	"time"

	"cosmossdk.io/log"
	"github.com/civicore/civ-app/types"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/rlp"
)

// Token economy constants. Amounts are in whole cents of the
// respective currency.
const (
	StartAcentBalance = 1
	ProposalCost      = 5
	CommentCost       = 3

	QuizPassReward        = 1
	VoteCastReward        = 1
	DelegationGivenReward = 1
	DelegationRevokedCost = 1
	CommentVoteReward     = 1
	CommentUpvoteReward   = 1
	IntegrationReward     = 1
	ProposalYesVoteReward = 1

	DefaultPassingScore = 70

	// A comment auto-integrates once it has at least
	// IntegrationMinVotes ballots and at least half of them are
	// upvotes.
	IntegrationMinVotes = 10
)

var (
	KeyHeader           = "s"
	KeyUserBody         = "u%v"
	KeyUserIndex        = "ui%s"
	KeyProposalBody     = "p%v"
	KeyQuizBody         = "q%v"
	KeyQuizByProposal   = "qp%v"
	KeyVoteBody         = "v%v"
	KeyVoteByVoter      = "vp%v_%v"
	KeyDelegationBody   = "g%v"
	KeyActiveDelegation = "gp%v_%v"
	KeyCommentBody      = "c%v"
	KeyLedgerBody       = "t%v"
)

// Header carries the allocation counters for every collection. It is
// persisted under KeyHeader in the same version as the entities it
// numbers.
type Header struct {
	UserIdx       uint64 `json:"userIdx"`
	ProposalIdx   uint64 `json:"proposalIdx"`
	QuizIdx       uint64 `json:"quizIdx"`
	VoteIdx       uint64 `json:"voteIdx"`
	DelegationIdx uint64 `json:"delegationIdx"`
	CommentIdx    uint64 `json:"commentIdx"`
	LedgerIdx     uint64 `json:"ledgerIdx"`
}

// State is the rules engine over the working tree. It is not safe for
// concurrent use; StateDB serializes access.
type State struct {
	logger log.Logger
	db     *iavl.MutableTree

	header *Header
	now    func() time.Time
	events []types.Event
}

func newState(db *iavl.MutableTree, logger log.Logger, now func() time.Time) *State {
	return &State{
		logger: logger,
		db:     db,
		header: new(Header),
		now:    now,
	}
}

func (s *State) load() error {
	val, err := s.db.Get([]byte(KeyHeader))
	if err != nil {
		return err
	}
	if val == nil {
		return nil
	}
	return json.Unmarshal(val, s.header)
}

func (s *State) emit(ev types.Event) {
	s.events = append(s.events, ev)
}

func (s *State) takeEvents() []types.Event {
	evs := s.events
	s.events = nil
	return evs
}

// commit persists the header and saves a new tree version. Everything
// written since the previous version lands atomically.
func (s *State) commit() error {
	val, err := json.Marshal(s.header)
	if err != nil {
		return err
	}
	if _, err = s.db.Set([]byte(KeyHeader), val); err != nil {
		return err
	}
	_, _, err = s.db.SaveVersion()
	return err
}

// rollback discards the working set and restores the header from the
// last saved version.
func (s *State) rollback() {
	s.db.Rollback()
	s.events = nil
	if err := s.load(); err != nil {
		s.logger.Error("reload header after rollback", "err", err)
	}
}

func (s *State) getJSON(key string, out any) (bool, error) {
	val, err := s.db.Get([]byte(key))
	if err != nil {
		return false, err
	}
	if val == nil {
		return false, nil
	}
	return true, json.Unmarshal(val, out)
}

func (s *State) putJSON(key string, v any) error {
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.Set([]byte(key), val)
	return err
}

func (s *State) getUser(idx uint64) (*types.User, error) {
	u := new(types.User)
	ok, err := s.getJSON(fmt.Sprintf(KeyUserBody, idx), u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	if u.PassedQuizzes == nil {
		u.PassedQuizzes = make(map[uint64]bool)
	}
	return u, nil
}

func (s *State) putUser(u *types.User) error {
	return s.putJSON(fmt.Sprintf(KeyUserBody, u.Index), u)
}

// findUserIdx resolves a username to an index; returns (0, false, nil)
// when the name is unused.
func (s *State) findUserIdx(username string) (uint64, bool, error) {
	val, err := s.db.Get([]byte(fmt.Sprintf(KeyUserIndex, username)))
	if err != nil {
		return 0, false, err
	}
	if val == nil {
		return 0, false, nil
	}
	var idx uint64
	if err := rlp.DecodeBytes(val, &idx); err != nil {
		return 0, false, err
	}
	return idx, true, nil
}

func (s *State) getProposal(idx uint64) (*types.Proposal, error) {
	p := new(types.Proposal)
	ok, err := s.getJSON(fmt.Sprintf(KeyProposalBody, idx), p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProposalNotFound
	}
	return p, nil
}

func (s *State) putProposal(p *types.Proposal) error {
	return s.putJSON(fmt.Sprintf(KeyProposalBody, p.Index), p)
}

func (s *State) getQuiz(idx uint64) (*types.Quiz, error) {
	q := new(types.Quiz)
	ok, err := s.getJSON(fmt.Sprintf(KeyQuizBody, idx), q)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrQuizNotFound
	}
	return q, nil
}

func (s *State) putQuiz(q *types.Quiz) error {
	return s.putJSON(fmt.Sprintf(KeyQuizBody, q.Index), q)
}

// getQuizByProposal resolves the proposal's quiz by reverse lookup.
// The proposal entity itself carries no quiz reference. Returns
// (nil, nil) when the proposal has no quiz.
func (s *State) getQuizByProposal(proposalIdx uint64) (*types.Quiz, error) {
	val, err := s.db.Get([]byte(fmt.Sprintf(KeyQuizByProposal, proposalIdx)))
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, nil
	}
	var idx uint64
	if err := rlp.DecodeBytes(val, &idx); err != nil {
		return nil, err
	}
	return s.getQuiz(idx)
}

func (s *State) getVote(idx uint64) (*types.Vote, error) {
	v := new(types.Vote)
	ok, err := s.getJSON(fmt.Sprintf(KeyVoteBody, idx), v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrVoteNotFound
	}
	return v, nil
}

func (s *State) putVote(v *types.Vote) error {
	return s.putJSON(fmt.Sprintf(KeyVoteBody, v.Index), v)
}

func (s *State) voteExists(proposalIdx, voterIdx uint64) (bool, error) {
	val, err := s.db.Get([]byte(fmt.Sprintf(KeyVoteByVoter, proposalIdx, voterIdx)))
	if err != nil {
		return false, err
	}
	return val != nil, nil
}

func (s *State) getDelegation(idx uint64) (*types.Delegation, error) {
	d := new(types.Delegation)
	ok, err := s.getJSON(fmt.Sprintf(KeyDelegationBody, idx), d)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDelegationNotFound
	}
	return d, nil
}

func (s *State) putDelegation(d *types.Delegation) error {
	return s.putJSON(fmt.Sprintf(KeyDelegationBody, d.Index), d)
}

func (s *State) activeDelegationExists(proposalIdx, delegatorIdx uint64) (bool, error) {
	val, err := s.db.Get([]byte(fmt.Sprintf(KeyActiveDelegation, proposalIdx, delegatorIdx)))
	if err != nil {
		return false, err
	}
	return val != nil, nil
}

// activeDelegationsTo collects the active delegations on a proposal
// whose delegatee is the given user, in index order.
func (s *State) activeDelegationsTo(proposalIdx, delegateeIdx uint64) ([]*types.Delegation, error) {
	start := []byte(fmt.Sprintf(KeyActiveDelegation, proposalIdx, ""))
	end := PrefixEndBytes(start)
	it, err := s.db.Iterator(start, end, true)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []*types.Delegation
	for ; it.Valid(); it.Next() {
		var idx uint64
		if err := rlp.DecodeBytes(it.Value(), &idx); err != nil {
			return nil, err
		}
		d, err := s.getDelegation(idx)
		if err != nil {
			return nil, err
		}
		if d.Active && d.Delegatee == delegateeIdx {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *State) getComment(idx uint64) (*types.Comment, error) {
	c := new(types.Comment)
	ok, err := s.getJSON(fmt.Sprintf(KeyCommentBody, idx), c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCommentNotFound
	}
	return c, nil
}

func (s *State) putComment(c *types.Comment) error {
	return s.putJSON(fmt.Sprintf(KeyCommentBody, c.Index), c)
}

// isCompetent reports whether the user has passed the proposal's quiz.
// A proposal without a quiz has no competent users.
func (s *State) isCompetent(u *types.User, proposalIdx uint64) (bool, error) {
	quiz, err := s.getQuizByProposal(proposalIdx)
	if err != nil {
		return false, err
	}
	if quiz == nil {
		return false, nil
	}
	return u.HasPassed(quiz.Index), nil
}

// creditUser applies a signed amount to one balance. Debits must have
// been checked against the balance before calling; a debit below zero
// is a programming error.
func (s *State) creditUser(userIdx uint64, currency types.Currency, amount int64) (*types.User, error) {
	u, err := s.getUser(userIdx)
	if err != nil {
		return nil, err
	}
	switch currency {
	case types.CurrencyAcent:
		next := int64(u.AcentBalance) + amount
		if next < 0 {
			return nil, fmt.Errorf("acent balance of user %v would go negative", userIdx)
		}
		u.AcentBalance = uint64(next)
	case types.CurrencyDcent:
		next := int64(u.DcentBalance) + amount
		if next < 0 {
			return nil, fmt.Errorf("dcent balance of user %v would go negative", userIdx)
		}
		u.DcentBalance = uint64(next)
	}
	if err := s.putUser(u); err != nil {
		return nil, err
	}
	return u, nil
}

func PrefixEndBytes(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}

	end := make([]byte, len(prefix))
	copy(end, prefix)

	for {
		if end[len(end)-1] != byte(255) {
			end[len(end)-1]++
			break
		}

		end = end[:len(end)-1]

		if len(end) == 0 {
			end = nil
			break
		}
	}

	return end
}
