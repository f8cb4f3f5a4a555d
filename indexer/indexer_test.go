package indexer

import (
	"path/filepath"
	"testing"

	"cosmossdk.io/log"
	"github.com/civicore/civ-app/types"
	"github.com/stretchr/testify/require"
)

func newTestIndexer(t *testing.T) *Indexer {
	t.Helper()
	idx, err := NewIndexer(log.NewNopLogger(), filepath.Join(t.TempDir(), "indexer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func feedUser(idx *Indexer, id uint64, username, city string) {
	idx.handleEvent(types.EventUserRegistered{User: types.User{
		Index:        id,
		Username:     username,
		Name:         "Citizen " + username,
		Location:     types.Location{City: city, Country: "PT"},
		AcentBalance: 1,
		CreatedAt:    1700000000,
	}})
}

func feedProposal(idx *Indexer, id, author uint64, scope types.Scope, city string) {
	idx.handleEvent(types.EventProposal{Proposal: types.Proposal{
		Index:     id,
		Author:    author,
		Title:     "Proposal",
		Content:   "Content",
		Scope:     scope,
		Location:  types.Location{City: city, Country: "PT"},
		Status:    types.ProposalStatusActive,
		CreatedAt: 1700000000,
	}})
}

func TestUserAndBalanceProjection(t *testing.T) {
	idx := newTestIndexer(t)
	feedUser(idx, 1, "alice", "Lisbon")

	u, err := idx.getUserById(1)
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.EqualValues(t, 1, u.AcentBalance)

	// Ledger events apply balance deltas on the read model.
	idx.handleEvent(types.EventLedgerEntry{Entry: types.LedgerEntry{
		Index: 1, User: 1, Amount: -5, Currency: types.CurrencyAcent,
		Type: types.TxnProposalCreation, Description: "Created proposal: x",
	}})
	idx.handleEvent(types.EventLedgerEntry{Entry: types.LedgerEntry{
		Index: 2, User: 1, Amount: 2, Currency: types.CurrencyDcent,
		Type: types.TxnCommentVote, Description: "Voted up on comment",
	}})

	u, err = idx.getUserById(1)
	require.NoError(t, err)
	require.EqualValues(t, -4, u.AcentBalance)
	require.EqualValues(t, 2, u.DcentBalance)

	txns, total, err := idx.getTransactionsByUser(1, "", 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	// Newest first.
	require.EqualValues(t, 2, txns[0].Id)

	txns, total, err = idx.getTransactionsByUser(1, "dcent", 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "comment_vote", txns[0].Type)
}

func TestProposalProjection(t *testing.T) {
	idx := newTestIndexer(t)
	feedUser(idx, 1, "alice", "Lisbon")
	feedProposal(idx, 1, 1, types.ScopeNeighborhood, "Lisbon")
	feedProposal(idx, 2, 1, types.ScopeCity, "Porto")

	proposals, total, err := idx.getProposals("", "", "", 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.EqualValues(t, 2, proposals[0].Id) // newest first
	require.Equal(t, "alice", proposals[0].AuthorUsername)

	proposals, total, err = idx.getProposals("city", "", "", 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Porto", proposals[0].City)

	idx.handleEvent(types.EventProposalStatus{Proposal: 1, Status: types.ProposalStatusEscalated, EscalatedTo: 2})
	row, err := idx.getProposalById(1)
	require.NoError(t, err)
	require.Equal(t, "escalated", row.Status)
	require.EqualValues(t, 2, row.EscalatedTo)

	proposals, total, err = idx.getProposals("", "active", "", 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.EqualValues(t, 2, proposals[0].Id)

	idx.handleEvent(types.EventProposalDeleted{Proposal: 2})
	_, err = idx.getProposalById(2)
	require.Error(t, err)
}

func TestVoteProjection(t *testing.T) {
	idx := newTestIndexer(t)
	feedUser(idx, 1, "alice", "Lisbon")
	feedProposal(idx, 1, 1, types.ScopeCity, "Lisbon")

	idx.handleEvent(types.EventVote{Vote: types.Vote{
		Index: 1, Proposal: 1, Voter: 2, Choice: types.VoteYes,
		DelegatedVotes: []uint64{1, 2}, CreatedAt: 1700000100,
	}, Absorbed: 2})

	votes, total, err := idx.getVotesByProposal(1, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "yes", votes[0].Choice)
	require.EqualValues(t, 3, votes[0].Weight)

	row, err := idx.getProposalById(1)
	require.NoError(t, err)
	require.EqualValues(t, 3, row.YesVotes)
}

func TestCommentProjection(t *testing.T) {
	idx := newTestIndexer(t)
	feedUser(idx, 1, "alice", "Lisbon")
	feedProposal(idx, 1, 1, types.ScopeCity, "Lisbon")

	idx.handleEvent(types.EventComment{Comment: types.Comment{
		Index: 1, Proposal: 1, Author: 2, Content: "first", CreatedAt: 1700000100,
	}})
	idx.handleEvent(types.EventComment{Comment: types.Comment{
		Index: 2, Proposal: 1, Author: 3, Content: "second", CreatedAt: 1700000200,
	}})
	idx.handleEvent(types.EventCommentVote{Comment: 2, Voter: 4, Choice: types.CommentVoteUp, Upvotes: 1})

	comments, total, err := idx.getCommentsByProposal(1, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	// Most upvoted first.
	require.EqualValues(t, 2, comments[0].Id)

	idx.handleEvent(types.EventCommentIntegrated{Comment: 2, Proposal: 1, Automatic: true, IntegratedAt: 1700000300})
	row, err := idx.getProposalById(1)
	require.NoError(t, err)
	require.EqualValues(t, 2, row.CommentCnt)
	require.EqualValues(t, 1, row.IntegratedCnt)

	comments, _, err = idx.getCommentsByProposal(1, 0, 10)
	require.NoError(t, err)
	require.True(t, comments[0].IsIntegrated)
}

func TestDelegationProjection(t *testing.T) {
	idx := newTestIndexer(t)
	idx.handleEvent(types.EventDelegation{Delegation: types.Delegation{
		Index: 1, Proposal: 1, Delegator: 2, Delegatee: 3, Active: true, CreatedAt: 1700000100,
	}})

	given, total, err := idx.getDelegationsByDelegator(2, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.True(t, given[0].Active)

	received, total, err := idx.getDelegationsByDelegatee(3, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.EqualValues(t, 1, received[0].Id)

	idx.handleEvent(types.EventDelegationRevoked{Delegation: 1, RevokedAt: 1700000200})
	given, _, err = idx.getDelegationsByDelegator(2, 0, 10)
	require.NoError(t, err)
	require.False(t, given[0].Active)
	require.EqualValues(t, 1700000200, given[0].RevokeTime)
}

func TestQuizProjection(t *testing.T) {
	idx := newTestIndexer(t)
	idx.handleEvent(types.EventQuiz{Quiz: types.Quiz{
		Index: 1, Proposal: 1, Title: "Basics", PassingScore: 70,
		Questions: []types.QuizQuestion{{Text: "q"}}, CreatedAt: 1700000100,
	}})
	row, err := idx.getQuizByProposal(1)
	require.NoError(t, err)
	require.Equal(t, 1, row.QuestionCnt)

	idx.handleEvent(types.EventQuizPassed{Quiz: 1, User: 2, Score: 100, FirstPass: true})
	// Re-passes are not recorded.
	idx.handleEvent(types.EventQuizPassed{Quiz: 1, User: 2, Score: 100, FirstPass: false})
	passes, total, err := idx.getQuizPassesByQuiz(1, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.EqualValues(t, 2, passes[0].User)

	// The same records are reachable per user, newest first.
	idx.handleEvent(types.EventQuizPassed{Quiz: 3, User: 2, Score: 80, FirstPass: true})
	idx.handleEvent(types.EventQuizPassed{Quiz: 3, User: 5, Score: 90, FirstPass: true})
	passes, total, err = idx.getQuizPassesByUser(2, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.EqualValues(t, 3, passes[0].Quiz)
	require.EqualValues(t, 1, passes[1].Quiz)
}

func TestLeaderboard(t *testing.T) {
	idx := newTestIndexer(t)
	feedUser(idx, 1, "alice", "Lisbon")
	feedUser(idx, 2, "bob", "Porto")
	idx.handleEvent(types.EventLedgerEntry{Entry: types.LedgerEntry{
		Index: 1, User: 2, Amount: 10, Currency: types.CurrencyAcent, Type: types.TxnQuizPass,
	}})

	users, err := idx.getLeaderboard("acent", 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, users[0].Id)
}
