package state

import (
	"fmt"
	"testing"

	"github.com/civicore/civ-app/types"
	"github.com/stretchr/testify/require"
)

func TestPostCommentCompetent(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	p := seedProposal(t, db, alice.Index)
	seedQuiz(t, db, alice.Index, p.Index)
	passQuiz(t, db, bob.Index, p.Index)

	c, err := db.PostComment(bob.Index, p.Index, "Add drainage on the west side.")
	require.NoError(t, err)
	require.True(t, c.IsCompetent)

	// Competent comments are free.
	_, dcent, err := db.Balances(bob.Index)
	require.NoError(t, err)
	require.EqualValues(t, 0, dcent)

	got, err := db.GetProposal(p.Index)
	require.NoError(t, err)
	require.Contains(t, got.Comments, c.Index)
}

func TestPostCommentNonCompetent(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	p := seedProposal(t, db, alice.Index)
	seedQuiz(t, db, alice.Index, p.Index)

	_, err := db.PostComment(bob.Index, p.Index, "I have opinions.")
	require.ErrorIs(t, err, ErrInsufficientDcent)

	fund(t, db, bob.Index, 0, CommentCost)
	c, err := db.PostComment(bob.Index, p.Index, "I have opinions.")
	require.NoError(t, err)
	require.False(t, c.IsCompetent)

	_, dcent, err := db.Balances(bob.Index)
	require.NoError(t, err)
	require.EqualValues(t, 0, dcent)

	entries := ledgerFor(t, db, bob.Index)
	require.Len(t, entries, 1)
	require.Equal(t, types.TxnCommentCreation, entries[0].Type)
	require.EqualValues(t, -CommentCost, entries[0].Amount)
}

func TestPostCommentRules(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	p := seedProposal(t, db, alice.Index)
	seedQuiz(t, db, alice.Index, p.Index)
	passQuiz(t, db, bob.Index, p.Index)

	_, err := db.PostComment(bob.Index, p.Index, "   ")
	require.ErrorIs(t, err, ErrValidation)

	_, err = db.CloseProposal(alice.Index, p.Index)
	require.NoError(t, err)
	_, err = db.PostComment(bob.Index, p.Index, "Too late.")
	require.ErrorIs(t, err, ErrProposalNotActive)
}

func TestVoteOnComment(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	p := seedProposal(t, db, alice.Index)
	seedQuiz(t, db, alice.Index, p.Index)
	passQuiz(t, db, bob.Index, p.Index)
	c, err := db.PostComment(bob.Index, p.Index, "Add drainage.")
	require.NoError(t, err)

	got, err := db.VoteOnComment(carol.Index, c.Index, types.CommentVoteUp)
	require.NoError(t, err)
	require.EqualValues(t, 1, got.Upvotes)

	// Voter earns 1 Dcent, the comment author earns 1 Dcent on upvotes.
	_, dcent, err := db.Balances(carol.Index)
	require.NoError(t, err)
	require.EqualValues(t, CommentVoteReward, dcent)
	_, dcent, err = db.Balances(bob.Index)
	require.NoError(t, err)
	require.EqualValues(t, CommentUpvoteReward, dcent)

	_, err = db.VoteOnComment(carol.Index, c.Index, types.CommentVoteDown)
	require.ErrorIs(t, err, ErrDuplicateCommentVote)

	// Downvotes reward the voter only.
	got, err = db.VoteOnComment(alice.Index, c.Index, types.CommentVoteDown)
	require.NoError(t, err)
	require.EqualValues(t, 1, got.Downvotes)
	_, dcent, err = db.Balances(bob.Index)
	require.NoError(t, err)
	require.EqualValues(t, CommentUpvoteReward, dcent)
}

func TestAutoIntegration(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	p := seedProposal(t, db, alice.Index)
	seedQuiz(t, db, alice.Index, p.Index)
	fund(t, db, bob.Index, 0, CommentCost)
	c, err := db.PostComment(bob.Index, p.Index, "Non-competent but popular.")
	require.NoError(t, err)

	// Five up, four down: nine ballots, below the threshold.
	for i := 0; i < 5; i++ {
		v := seedUser(t, db, fmt.Sprintf("up%d", i))
		_, err := db.VoteOnComment(v.Index, c.Index, types.CommentVoteUp)
		require.NoError(t, err)
	}
	for i := 0; i < 4; i++ {
		v := seedUser(t, db, fmt.Sprintf("down%d", i))
		_, err := db.VoteOnComment(v.Index, c.Index, types.CommentVoteDown)
		require.NoError(t, err)
	}
	got, err := db.GetComment(c.Index)
	require.NoError(t, err)
	require.False(t, got.IsIntegrated)

	// Tenth ballot lands exactly on 50% up: integrates.
	last := seedUser(t, db, "down4")
	got, err = db.VoteOnComment(last.Index, c.Index, types.CommentVoteDown)
	require.NoError(t, err)
	require.True(t, got.IsIntegrated)
	require.NotZero(t, got.IntegratedAt)

	prop, err := db.GetProposal(p.Index)
	require.NoError(t, err)
	require.Contains(t, prop.IntegratedComments, c.Index)

	// Non-competent standing converts to 1 Acent for the author.
	acent, _, err := db.Balances(bob.Index)
	require.NoError(t, err)
	require.EqualValues(t, StartAcentBalance+IntegrationReward, acent)

	// Further ballots never re-fire the conversion.
	extra := seedUser(t, db, "late")
	_, err = db.VoteOnComment(extra.Index, c.Index, types.CommentVoteUp)
	require.NoError(t, err)
	var conversions int
	for _, e := range ledgerFor(t, db, bob.Index) {
		if e.Type == types.TxnCommentIntegration {
			conversions++
		}
	}
	require.Equal(t, 1, conversions)
}

func TestAutoIntegrationBelowHalf(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	p := seedProposal(t, db, alice.Index)
	seedQuiz(t, db, alice.Index, p.Index)
	fund(t, db, bob.Index, 0, CommentCost)
	c, err := db.PostComment(bob.Index, p.Index, "Unpopular.")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		v := seedUser(t, db, fmt.Sprintf("up%d", i))
		_, err := db.VoteOnComment(v.Index, c.Index, types.CommentVoteUp)
		require.NoError(t, err)
	}
	for i := 0; i < 6; i++ {
		v := seedUser(t, db, fmt.Sprintf("down%d", i))
		_, err := db.VoteOnComment(v.Index, c.Index, types.CommentVoteDown)
		require.NoError(t, err)
	}

	got, err := db.GetComment(c.Index)
	require.NoError(t, err)
	require.False(t, got.IsIntegrated)
}

func TestIntegrateCommentManual(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	p := seedProposal(t, db, alice.Index)
	seedQuiz(t, db, alice.Index, p.Index)
	fund(t, db, bob.Index, 0, CommentCost)
	c, err := db.PostComment(bob.Index, p.Index, "Worth folding in.")
	require.NoError(t, err)

	_, err = db.IntegrateComment(bob.Index, c.Index)
	require.ErrorIs(t, err, ErrNotProposalAuthor)

	got, err := db.IntegrateComment(alice.Index, c.Index)
	require.NoError(t, err)
	require.True(t, got.IsIntegrated)

	acent, _, err := db.Balances(bob.Index)
	require.NoError(t, err)
	require.EqualValues(t, StartAcentBalance+IntegrationReward, acent)

	_, err = db.IntegrateComment(alice.Index, c.Index)
	require.ErrorIs(t, err, ErrAlreadyIntegrated)
}

func TestIntegrateCompetentCommentNoConversion(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	p := seedProposal(t, db, alice.Index)
	seedQuiz(t, db, alice.Index, p.Index)
	passQuiz(t, db, bob.Index, p.Index)
	c, err := db.PostComment(bob.Index, p.Index, "Competent take.")
	require.NoError(t, err)

	got, err := db.IntegrateComment(alice.Index, c.Index)
	require.NoError(t, err)
	require.True(t, got.IsIntegrated)

	// Competent authors already earn on the Acent track; integration
	// pays nothing further.
	acent, _, err := db.Balances(bob.Index)
	require.NoError(t, err)
	require.EqualValues(t, StartAcentBalance+QuizPassReward, acent)
}
