package state

import (
	"testing"

	"github.com/civicore/civ-app/types"
	"github.com/stretchr/testify/require"
)

func TestCreateProposal(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	fund(t, db, alice.Index, ProposalCost, 0)

	p, err := db.CreateProposal(alice.Index, "Repave Rua Nova", "Potholes everywhere.",
		types.ScopeNeighborhood, types.Location{City: "Lisbon", Country: "PT"})
	require.NoError(t, err)
	require.Equal(t, types.ProposalStatusActive, p.Status)
	require.EqualValues(t, 0, p.YesVotes)
	require.EqualValues(t, 0, p.NoVotes)

	acent, _, err := db.Balances(alice.Index)
	require.NoError(t, err)
	require.EqualValues(t, StartAcentBalance, acent)

	entries := ledgerFor(t, db, alice.Index)
	require.Len(t, entries, 1)
	require.EqualValues(t, -ProposalCost, entries[0].Amount)
	require.Equal(t, types.CurrencyAcent, entries[0].Currency)
	require.Equal(t, types.TxnProposalCreation, entries[0].Type)
	require.Equal(t, p.Index, entries[0].RelatedEntity)
}

func TestCreateProposalInsufficientFunds(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")

	// Starting balance is 1, below the 5 Acent cost.
	_, err := db.CreateProposal(alice.Index, "Repave Rua Nova", "Potholes.",
		types.ScopeNeighborhood, types.Location{City: "Lisbon", Country: "PT"})
	require.ErrorIs(t, err, ErrInsufficientAcent)
}

func TestCreateProposalValidation(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	fund(t, db, alice.Index, ProposalCost, 0)
	loc := types.Location{City: "Lisbon", Country: "PT"}

	_, err := db.CreateProposal(alice.Index, "  ", "Content.", types.ScopeCity, loc)
	require.ErrorIs(t, err, ErrValidation)
	_, err = db.CreateProposal(alice.Index, "Title", "", types.ScopeCity, loc)
	require.ErrorIs(t, err, ErrValidation)
	_, err = db.CreateProposal(alice.Index, "Title", "Content.", types.Scope(42), loc)
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateProposal(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	p := seedProposal(t, db, alice.Index)

	_, err := db.UpdateProposal(bob.Index, p.Index, "Hijacked", "Mine now.")
	require.ErrorIs(t, err, ErrNotProposalAuthor)

	got, err := db.UpdateProposal(alice.Index, p.Index, "Repave Rua Nova properly", "With drainage this time.")
	require.NoError(t, err)
	require.Equal(t, "Repave Rua Nova properly", got.Title)

	_, err = db.CloseProposal(alice.Index, p.Index)
	require.NoError(t, err)
	_, err = db.UpdateProposal(alice.Index, p.Index, "Too late", "Closed already.")
	require.ErrorIs(t, err, ErrProposalNotActive)
}

func TestCloseProposal(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	p := seedProposal(t, db, alice.Index)

	got, err := db.CloseProposal(alice.Index, p.Index)
	require.NoError(t, err)
	require.Equal(t, types.ProposalStatusClosed, got.Status)
	require.NotZero(t, got.ClosedAt)

	// Terminal: closing twice fails and no currency ever moved.
	_, err = db.CloseProposal(alice.Index, p.Index)
	require.ErrorIs(t, err, ErrProposalNotActive)
	require.Len(t, ledgerFor(t, db, alice.Index), 1) // creation debit only
}

func TestEscalateProposal(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	p := seedProposal(t, db, alice.Index)
	seedQuiz(t, db, alice.Index, p.Index)
	passQuiz(t, db, bob.Index, p.Index)
	_, err := db.CastVote(bob.Index, p.Index, types.VoteYes)
	require.NoError(t, err)

	_, _, err = db.EscalateProposal(bob.Index, p.Index, types.ScopeCity)
	require.ErrorIs(t, err, ErrNotProposalAuthor)
	_, _, err = db.EscalateProposal(alice.Index, p.Index, types.ScopeNeighborhood)
	require.ErrorIs(t, err, ErrScopeNotHigher)

	old, child, err := db.EscalateProposal(alice.Index, p.Index, types.ScopeCity)
	require.NoError(t, err)
	require.Equal(t, types.ProposalStatusEscalated, old.Status)
	require.Equal(t, child.Index, old.EscalatedTo)
	require.Equal(t, old.Title, child.Title)
	require.Equal(t, old.Content, child.Content)
	require.Equal(t, types.ScopeCity, child.Scope)
	require.Equal(t, types.ProposalStatusActive, child.Status)
	// Votes do not carry over.
	require.EqualValues(t, 0, child.YesVotes)
	require.EqualValues(t, 0, child.NoVotes)

	// The escalated parent is terminal.
	_, _, err = db.EscalateProposal(alice.Index, p.Index, types.ScopeCountry)
	require.ErrorIs(t, err, ErrProposalNotActive)
}

func TestDeleteProposal(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	p := seedProposal(t, db, alice.Index)

	require.NoError(t, db.DeleteProposal(alice.Index, p.Index))
	_, err := db.GetProposal(p.Index)
	require.ErrorIs(t, err, ErrProposalNotFound)

	// Creation cost refunded: back to the starting balance.
	acent, _, err := db.Balances(alice.Index)
	require.NoError(t, err)
	require.EqualValues(t, StartAcentBalance+ProposalCost, acent)

	entries := ledgerFor(t, db, alice.Index)
	require.Len(t, entries, 2)
	require.EqualValues(t, ProposalCost, entries[1].Amount)
	require.Equal(t, types.TxnProposalCreation, entries[1].Type)
}

func TestDeleteProposalWithVotes(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	p := seedProposal(t, db, alice.Index)
	seedQuiz(t, db, alice.Index, p.Index)
	passQuiz(t, db, bob.Index, p.Index)
	_, err := db.CastVote(bob.Index, p.Index, types.VoteNo)
	require.NoError(t, err)

	require.ErrorIs(t, db.DeleteProposal(alice.Index, p.Index), ErrProposalHasVotes)
	require.ErrorIs(t, db.DeleteProposal(bob.Index, p.Index), ErrNotProposalAuthor)
}

func TestDeleteClosedProposal(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	p := seedProposal(t, db, alice.Index)
	_, err := db.CloseProposal(alice.Index, p.Index)
	require.NoError(t, err)

	require.ErrorIs(t, db.DeleteProposal(alice.Index, p.Index), ErrProposalHasVotes)
}
