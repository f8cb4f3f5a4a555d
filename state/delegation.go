package state

import (
	"errors"
	"fmt"

	"github.com/civicore/civ-app/types"
	"github.com/ethereum/go-ethereum/rlp"
)

// Delegate hands the delegator's voting weight on one proposal to a
// competent delegatee. Competent delegators must vote directly
// instead.
func (s *State) Delegate(delegatorIdx, proposalIdx, delegateeIdx uint64) (*types.Delegation, error) {
	proposal, err := s.getProposal(proposalIdx)
	if err != nil {
		return nil, err
	}
	if proposal.Status != types.ProposalStatusActive {
		return nil, ErrProposalNotActive
	}
	delegatee, err := s.getUser(delegateeIdx)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrDelegateeNotFound
		}
		return nil, err
	}
	competent, err := s.isCompetent(delegatee, proposalIdx)
	if err != nil {
		return nil, err
	}
	if !competent {
		return nil, ErrDelegateeNotCompetent
	}
	exists, err := s.activeDelegationExists(proposalIdx, delegatorIdx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateDelegation
	}
	delegator, err := s.getUser(delegatorIdx)
	if err != nil {
		return nil, err
	}
	delegatorCompetent, err := s.isCompetent(delegator, proposalIdx)
	if err != nil {
		return nil, err
	}
	if delegatorCompetent {
		return nil, ErrDelegatorCompetent
	}

	s.header.DelegationIdx++
	delegation := &types.Delegation{
		Index:     s.header.DelegationIdx,
		Proposal:  proposalIdx,
		Delegator: delegatorIdx,
		Delegatee: delegateeIdx,
		Active:    true,
		CreatedAt: s.now().Unix(),
	}
	if err := s.putDelegation(delegation); err != nil {
		return nil, err
	}
	idxVal, err := rlp.EncodeToBytes(delegation.Index)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Set([]byte(fmt.Sprintf(KeyActiveDelegation, proposalIdx, delegatorIdx)), idxVal); err != nil {
		return nil, err
	}

	delegator.DelegationsGiven = append(delegator.DelegationsGiven, delegation.Index)
	delegator.DcentBalance += DelegationGivenReward
	if err := s.putUser(delegator); err != nil {
		return nil, err
	}
	delegatee, err = s.getUser(delegateeIdx)
	if err != nil {
		return nil, err
	}
	delegatee.DelegationsReceived = append(delegatee.DelegationsReceived, delegation.Index)
	if err := s.putUser(delegatee); err != nil {
		return nil, err
	}

	if _, err := s.appendLedger(delegatorIdx, DelegationGivenReward, types.CurrencyDcent, types.TxnDelegationGiven,
		delegation.Index, types.EntityDelegation,
		fmt.Sprintf("Delegated vote to %s for proposal: %s", delegatee.Username, proposal.Title)); err != nil {
		return nil, err
	}
	s.emit(types.EventDelegation{Delegation: *delegation})
	return delegation, nil
}

// RevokeDelegation deactivates a delegation. The Dcent earned on
// delegating is forfeited, but only when the balance still covers it;
// at zero the debit and its ledger entry are skipped.
func (s *State) RevokeDelegation(userIdx, delegationIdx uint64) (*types.Delegation, error) {
	delegation, err := s.getDelegation(delegationIdx)
	if err != nil {
		return nil, err
	}
	if delegation.Delegator != userIdx {
		return nil, ErrNotDelegator
	}
	if !delegation.Active {
		return nil, ErrAlreadyRevoked
	}
	proposal, err := s.getProposal(delegation.Proposal)
	if err != nil {
		if errors.Is(err, ErrProposalNotFound) {
			return nil, ErrProposalNotActive
		}
		return nil, err
	}
	if proposal.Status != types.ProposalStatusActive {
		return nil, ErrProposalNotActive
	}

	delegation.Active = false
	delegation.RevokedAt = s.now().Unix()
	if err := s.putDelegation(delegation); err != nil {
		return nil, err
	}
	if _, _, err := s.db.Remove([]byte(fmt.Sprintf(KeyActiveDelegation, delegation.Proposal, userIdx))); err != nil {
		return nil, err
	}

	user, err := s.getUser(userIdx)
	if err != nil {
		return nil, err
	}
	if user.DcentBalance > 0 {
		user.DcentBalance -= DelegationRevokedCost
		if err := s.putUser(user); err != nil {
			return nil, err
		}
		if _, err := s.appendLedger(userIdx, -DelegationRevokedCost, types.CurrencyDcent, types.TxnDelegationRevoked,
			delegation.Index, types.EntityDelegation,
			"Revoked delegation for proposal: "+proposal.Title); err != nil {
			return nil, err
		}
	}
	s.emit(types.EventDelegationRevoked{Delegation: delegation.Index, RevokedAt: delegation.RevokedAt})
	return delegation, nil
}
