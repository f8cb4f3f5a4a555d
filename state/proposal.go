package state

import (
	"fmt"
	"strings"

	"github.com/civicore/civ-app/types"
)

// CreateProposal spends 5 Acents from the author and opens a new
// active proposal with zeroed tallies.
func (s *State) CreateProposal(authorIdx uint64, title, content string, scope types.Scope, location types.Location) (*types.Proposal, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if !scope.Valid() {
		return nil, fmt.Errorf("%w: invalid scope", ErrValidation)
	}
	author, err := s.getUser(authorIdx)
	if err != nil {
		return nil, err
	}
	if author.AcentBalance < ProposalCost {
		return nil, ErrInsufficientAcent
	}

	s.header.ProposalIdx++
	proposal := &types.Proposal{
		Index:     s.header.ProposalIdx,
		Author:    authorIdx,
		Title:     title,
		Content:   content,
		Scope:     scope,
		Location:  location,
		Status:    types.ProposalStatusActive,
		CreatedAt: s.now().Unix(),
	}
	if err := s.putProposal(proposal); err != nil {
		return nil, err
	}

	author.AcentBalance -= ProposalCost
	if err := s.putUser(author); err != nil {
		return nil, err
	}
	if _, err := s.appendLedger(authorIdx, -ProposalCost, types.CurrencyAcent, types.TxnProposalCreation,
		proposal.Index, types.EntityProposal, "Created proposal: "+title); err != nil {
		return nil, err
	}
	s.emit(types.EventProposal{Proposal: *proposal})
	return proposal, nil
}

// UpdateProposal lets the author edit title and content while the
// proposal is active.
func (s *State) UpdateProposal(authorIdx, proposalIdx uint64, title, content string) (*types.Proposal, error) {
	proposal, err := s.getProposal(proposalIdx)
	if err != nil {
		return nil, err
	}
	if proposal.Author != authorIdx {
		return nil, ErrNotProposalAuthor
	}
	if proposal.Status != types.ProposalStatusActive {
		return nil, ErrProposalNotActive
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	proposal.Title = title
	proposal.Content = content
	if err := s.putProposal(proposal); err != nil {
		return nil, err
	}
	s.emit(types.EventProposal{Proposal: *proposal})
	return proposal, nil
}

// CloseProposal moves an active proposal to its closed terminal state.
// No currency moves.
func (s *State) CloseProposal(authorIdx, proposalIdx uint64) (*types.Proposal, error) {
	proposal, err := s.getProposal(proposalIdx)
	if err != nil {
		return nil, err
	}
	if proposal.Author != authorIdx {
		return nil, ErrNotProposalAuthor
	}
	if proposal.Status != types.ProposalStatusActive {
		return nil, ErrProposalNotActive
	}

	proposal.Status = types.ProposalStatusClosed
	proposal.ClosedAt = s.now().Unix()
	if err := s.putProposal(proposal); err != nil {
		return nil, err
	}
	s.emit(types.EventProposalStatus{Proposal: proposal.Index, Status: proposal.Status})
	return proposal, nil
}

// EscalateProposal retires the proposal into its escalated terminal
// state and spawns a child at a strictly higher scope, same author,
// same content, tallies reset.
func (s *State) EscalateProposal(authorIdx, proposalIdx uint64, newScope types.Scope) (*types.Proposal, *types.Proposal, error) {
	proposal, err := s.getProposal(proposalIdx)
	if err != nil {
		return nil, nil, err
	}
	if proposal.Author != authorIdx {
		return nil, nil, ErrNotProposalAuthor
	}
	if proposal.Status != types.ProposalStatusActive {
		return nil, nil, ErrProposalNotActive
	}
	if !newScope.Valid() {
		return nil, nil, fmt.Errorf("%w: invalid scope", ErrValidation)
	}
	if !newScope.Higher(proposal.Scope) {
		return nil, nil, ErrScopeNotHigher
	}

	s.header.ProposalIdx++
	child := &types.Proposal{
		Index:     s.header.ProposalIdx,
		Author:    authorIdx,
		Title:     proposal.Title,
		Content:   proposal.Content,
		Scope:     newScope,
		Location:  proposal.Location,
		Status:    types.ProposalStatusActive,
		CreatedAt: s.now().Unix(),
	}
	if err := s.putProposal(child); err != nil {
		return nil, nil, err
	}

	proposal.Status = types.ProposalStatusEscalated
	proposal.EscalatedTo = child.Index
	if err := s.putProposal(proposal); err != nil {
		return nil, nil, err
	}
	s.emit(types.EventProposalStatus{Proposal: proposal.Index, Status: proposal.Status, EscalatedTo: child.Index})
	s.emit(types.EventProposal{Proposal: *child})
	return proposal, child, nil
}

// DeleteProposal removes a proposal that never collected a vote and
// refunds the creation cost.
func (s *State) DeleteProposal(authorIdx, proposalIdx uint64) error {
	proposal, err := s.getProposal(proposalIdx)
	if err != nil {
		return err
	}
	if proposal.Author != authorIdx {
		return ErrNotProposalAuthor
	}
	if proposal.Status != types.ProposalStatusActive || proposal.YesVotes > 0 || proposal.NoVotes > 0 {
		return ErrProposalHasVotes
	}

	if _, _, err := s.db.Remove([]byte(fmt.Sprintf(KeyProposalBody, proposalIdx))); err != nil {
		return err
	}
	if _, err := s.creditUser(authorIdx, types.CurrencyAcent, ProposalCost); err != nil {
		return err
	}
	if _, err := s.appendLedger(authorIdx, ProposalCost, types.CurrencyAcent, types.TxnProposalCreation,
		0, types.EntityNone, "Refund for deleted proposal: "+proposal.Title); err != nil {
		return err
	}
	s.emit(types.EventProposalDeleted{Proposal: proposalIdx})
	return nil
}
