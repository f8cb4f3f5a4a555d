package state

import (
	"fmt"

	"github.com/civicore/civ-app/types"
	"github.com/ethereum/go-ethereum/rlp"
)

// CastVote records a direct vote. All active delegations pointing at
// the voter on this proposal are absorbed: the tally moves by one plus
// the absorbed count, all on the voter's choice. Votes are immutable
// once cast; revoking a delegation afterwards does not unwind them.
func (s *State) CastVote(voterIdx, proposalIdx uint64, choice types.VoteChoice) (*types.Vote, error) {
	if choice != types.VoteYes && choice != types.VoteNo {
		return nil, fmt.Errorf("%w: vote choice must be yes or no", ErrValidation)
	}
	proposal, err := s.getProposal(proposalIdx)
	if err != nil {
		return nil, err
	}
	if proposal.Status != types.ProposalStatusActive {
		return nil, ErrProposalNotActive
	}
	exists, err := s.voteExists(proposalIdx, voterIdx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateVote
	}
	voter, err := s.getUser(voterIdx)
	if err != nil {
		return nil, err
	}
	competent, err := s.isCompetent(voter, proposalIdx)
	if err != nil {
		return nil, err
	}
	if !competent {
		return nil, ErrVoterNotCompetent
	}

	absorbed, err := s.activeDelegationsTo(proposalIdx, voterIdx)
	if err != nil {
		return nil, err
	}
	delegated := make([]uint64, len(absorbed))
	for i, d := range absorbed {
		delegated[i] = d.Index
	}

	s.header.VoteIdx++
	vote := &types.Vote{
		Index:          s.header.VoteIdx,
		Proposal:       proposalIdx,
		Voter:          voterIdx,
		Choice:         choice,
		DelegatedVotes: delegated,
		CreatedAt:      s.now().Unix(),
	}
	if err := s.putVote(vote); err != nil {
		return nil, err
	}
	idxVal, err := rlp.EncodeToBytes(vote.Index)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Set([]byte(fmt.Sprintf(KeyVoteByVoter, proposalIdx, voterIdx)), idxVal); err != nil {
		return nil, err
	}

	weight := vote.Weight()
	if choice == types.VoteYes {
		proposal.YesVotes += weight
	} else {
		proposal.NoVotes += weight
	}
	if err := s.putProposal(proposal); err != nil {
		return nil, err
	}

	voter.AcentBalance += VoteCastReward
	if len(absorbed) > 0 {
		voter.DcentBalance += uint64(len(absorbed))
	}
	if err := s.putUser(voter); err != nil {
		return nil, err
	}
	if _, err := s.appendLedger(voterIdx, VoteCastReward, types.CurrencyAcent, types.TxnVoteCast,
		proposal.Index, types.EntityProposal,
		fmt.Sprintf("Cast %s vote on proposal: %s", choice, proposal.Title)); err != nil {
		return nil, err
	}
	if len(absorbed) > 0 {
		if _, err := s.appendLedger(voterIdx, int64(len(absorbed)), types.CurrencyDcent, types.TxnDelegationReceived,
			proposal.Index, types.EntityProposal,
			fmt.Sprintf("Received %d delegations for voting on proposal: %s", len(absorbed), proposal.Title)); err != nil {
			return nil, err
		}
	}

	// The author reward fires only on yes votes.
	if choice == types.VoteYes {
		if _, err := s.creditUser(proposal.Author, types.CurrencyAcent, ProposalYesVoteReward); err != nil {
			return nil, err
		}
		if _, err := s.appendLedger(proposal.Author, ProposalYesVoteReward, types.CurrencyAcent, types.TxnProposalVoteReceived,
			proposal.Index, types.EntityProposal,
			"Received yes vote on proposal: "+proposal.Title); err != nil {
			return nil, err
		}
	}

	s.emit(types.EventVote{Vote: *vote, Absorbed: uint64(len(absorbed))})
	return vote, nil
}
