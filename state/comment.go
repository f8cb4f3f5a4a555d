package state

import (
	"fmt"
	"strings"

	"github.com/civicore/civ-app/types"
)

// PostComment records a comment on an active proposal. Competent
// authors comment for free and their comments are marked competent;
// everyone else spends 3 Dcents.
func (s *State) PostComment(authorIdx, proposalIdx uint64, content string) (*types.Comment, error) {
	proposal, err := s.getProposal(proposalIdx)
	if err != nil {
		return nil, err
	}
	if proposal.Status != types.ProposalStatusActive {
		return nil, ErrProposalNotActive
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	author, err := s.getUser(authorIdx)
	if err != nil {
		return nil, err
	}
	competent, err := s.isCompetent(author, proposalIdx)
	if err != nil {
		return nil, err
	}
	if !competent && author.DcentBalance < CommentCost {
		return nil, ErrInsufficientDcent
	}

	s.header.CommentIdx++
	comment := &types.Comment{
		Index:       s.header.CommentIdx,
		Proposal:    proposalIdx,
		Author:      authorIdx,
		Content:     content,
		IsCompetent: competent,
		CreatedAt:   s.now().Unix(),
	}
	if err := s.putComment(comment); err != nil {
		return nil, err
	}
	proposal.Comments = append(proposal.Comments, comment.Index)
	if err := s.putProposal(proposal); err != nil {
		return nil, err
	}

	if !competent {
		author.DcentBalance -= CommentCost
		if err := s.putUser(author); err != nil {
			return nil, err
		}
		if _, err := s.appendLedger(authorIdx, -CommentCost, types.CurrencyDcent, types.TxnCommentCreation,
			comment.Index, types.EntityComment,
			"Created non-competent comment on proposal: "+proposal.Title); err != nil {
			return nil, err
		}
	}
	s.emit(types.EventComment{Comment: *comment})
	return comment, nil
}

// VoteOnComment records one up/down ballot per voter, pays the
// engagement rewards and runs the auto-integration check.
func (s *State) VoteOnComment(voterIdx, commentIdx uint64, choice types.CommentVoteChoice) (*types.Comment, error) {
	if choice != types.CommentVoteUp && choice != types.CommentVoteDown {
		return nil, fmt.Errorf("%w: comment vote choice must be up or down", ErrValidation)
	}
	comment, err := s.getComment(commentIdx)
	if err != nil {
		return nil, err
	}
	proposal, err := s.getProposal(comment.Proposal)
	if err != nil {
		return nil, err
	}
	if proposal.Status != types.ProposalStatusActive {
		return nil, ErrProposalNotActive
	}
	if comment.HasVoted(voterIdx) {
		return nil, ErrDuplicateCommentVote
	}
	if _, err := s.getUser(voterIdx); err != nil {
		return nil, err
	}

	comment.Voters = append(comment.Voters, types.CommentBallot{Voter: voterIdx, Choice: choice})
	if choice == types.CommentVoteUp {
		comment.Upvotes++
	} else {
		comment.Downvotes++
	}
	if err := s.putComment(comment); err != nil {
		return nil, err
	}

	if _, err := s.creditUser(voterIdx, types.CurrencyDcent, CommentVoteReward); err != nil {
		return nil, err
	}
	if _, err := s.appendLedger(voterIdx, CommentVoteReward, types.CurrencyDcent, types.TxnCommentVote,
		comment.Index, types.EntityComment,
		fmt.Sprintf("Voted %s on comment for proposal: %s", choice, proposal.Title)); err != nil {
		return nil, err
	}
	if choice == types.CommentVoteUp {
		if _, err := s.creditUser(comment.Author, types.CurrencyDcent, CommentUpvoteReward); err != nil {
			return nil, err
		}
		if _, err := s.appendLedger(comment.Author, CommentUpvoteReward, types.CurrencyDcent, types.TxnCommentUpvoteReceived,
			comment.Index, types.EntityComment,
			"Received upvote on comment for proposal: "+proposal.Title); err != nil {
			return nil, err
		}
	}
	s.emit(types.EventCommentVote{
		Comment:   comment.Index,
		Voter:     voterIdx,
		Choice:    choice,
		Upvotes:   comment.Upvotes,
		Downvotes: comment.Downvotes,
	})

	// Auto-integration: at least IntegrationMinVotes ballots, at least
	// half of them up, not yet integrated. The isIntegrated check makes
	// the transition fire exactly once.
	total := comment.Upvotes + comment.Downvotes
	if total >= IntegrationMinVotes && comment.Upvotes*2 >= total && !comment.IsIntegrated {
		if err := s.integrate(comment, proposal, true); err != nil {
			return nil, err
		}
	}
	return comment, nil
}

// IntegrateComment is the manual trigger, restricted to the proposal
// author.
func (s *State) IntegrateComment(actorIdx, commentIdx uint64) (*types.Comment, error) {
	comment, err := s.getComment(commentIdx)
	if err != nil {
		return nil, err
	}
	proposal, err := s.getProposal(comment.Proposal)
	if err != nil {
		return nil, err
	}
	if proposal.Author != actorIdx {
		return nil, ErrNotProposalAuthor
	}
	if proposal.Status != types.ProposalStatusActive {
		return nil, ErrProposalNotActive
	}
	if comment.IsIntegrated {
		return nil, ErrAlreadyIntegrated
	}
	if err := s.integrate(comment, proposal, false); err != nil {
		return nil, err
	}
	return comment, nil
}

// integrate flips the monotonic isIntegrated flag and performs the
// currency conversion. Only non-competent comments convert: their
// accumulated Dcent-track standing becomes 1 Acent for the author.
// Competent authors already earn on the Acent track and gain nothing
// further here.
func (s *State) integrate(comment *types.Comment, proposal *types.Proposal, automatic bool) error {
	comment.IsIntegrated = true
	comment.IntegratedAt = s.now().Unix()
	if err := s.putComment(comment); err != nil {
		return err
	}
	proposal.IntegratedComments = append(proposal.IntegratedComments, comment.Index)
	if err := s.putProposal(proposal); err != nil {
		return err
	}

	if !comment.IsCompetent {
		if _, err := s.creditUser(comment.Author, types.CurrencyAcent, IntegrationReward); err != nil {
			return err
		}
		desc := "Comment integrated into proposal: " + proposal.Title
		if !automatic {
			desc = "Comment manually integrated into proposal: " + proposal.Title
		}
		if _, err := s.appendLedger(comment.Author, IntegrationReward, types.CurrencyAcent, types.TxnCommentIntegration,
			comment.Index, types.EntityComment, desc); err != nil {
			return err
		}
	}
	s.emit(types.EventCommentIntegrated{
		Comment:      comment.Index,
		Proposal:     proposal.Index,
		Automatic:    automatic,
		IntegratedAt: comment.IntegratedAt,
	})
	return nil
}
