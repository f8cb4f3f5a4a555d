package state

import (
	"fmt"
	"math"
	"strings"

	"github.com/civicore/civ-app/types"
	"github.com/ethereum/go-ethereum/rlp"
)

func validateQuizPayload(title, description string, questions []types.QuizQuestion, passingScore uint64) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if len(questions) == 0 {
		return fmt.Errorf("%w: at least one question is required", ErrValidation)
	}
	if passingScore > 100 {
		return fmt.Errorf("%w: passing score must be between 0 and 100", ErrValidation)
	}
	for _, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: question text is required", ErrValidation)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: question %q needs at least two options", ErrValidation, q.Text)
		}
		hasCorrect := false
		for _, o := range q.Options {
			if o.Correct {
				hasCorrect = true
				break
			}
		}
		if !hasCorrect {
			return fmt.Errorf("%w: question %q must have at least one correct answer", ErrValidation, q.Text)
		}
	}
	return nil
}

// CreateQuiz attaches a quiz to a proposal. Only the proposal author
// may create one, and a proposal holds at most one quiz.
func (s *State) CreateQuiz(authorIdx, proposalIdx uint64, title, description string, questions []types.QuizQuestion, passingScore uint64) (*types.Quiz, error) {
	proposal, err := s.getProposal(proposalIdx)
	if err != nil {
		return nil, err
	}
	if proposal.Author != authorIdx {
		return nil, ErrNotProposalAuthor
	}
	existing, err := s.getQuizByProposal(proposalIdx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateQuiz
	}
	if passingScore == 0 {
		passingScore = DefaultPassingScore
	}
	if err := validateQuizPayload(title, description, questions, passingScore); err != nil {
		return nil, err
	}

	s.header.QuizIdx++
	quiz := &types.Quiz{
		Index:        s.header.QuizIdx,
		Proposal:     proposalIdx,
		Title:        title,
		Description:  description,
		Questions:    questions,
		PassingScore: passingScore,
		CreatedAt:    s.now().Unix(),
	}
	if err := s.putQuiz(quiz); err != nil {
		return nil, err
	}
	idxVal, err := rlp.EncodeToBytes(quiz.Index)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Set([]byte(fmt.Sprintf(KeyQuizByProposal, proposalIdx)), idxVal); err != nil {
		return nil, err
	}
	s.emit(types.EventQuiz{Quiz: *quiz})
	return quiz, nil
}

// UpdateQuiz replaces a quiz's content. Passing score is kept when the
// payload leaves it zero.
func (s *State) UpdateQuiz(authorIdx, quizIdx uint64, title, description string, questions []types.QuizQuestion, passingScore uint64) (*types.Quiz, error) {
	quiz, err := s.getQuiz(quizIdx)
	if err != nil {
		return nil, err
	}
	proposal, err := s.getProposal(quiz.Proposal)
	if err != nil {
		return nil, err
	}
	if proposal.Author != authorIdx {
		return nil, ErrNotProposalAuthor
	}
	if passingScore == 0 {
		passingScore = quiz.PassingScore
	}
	if err := validateQuizPayload(title, description, questions, passingScore); err != nil {
		return nil, err
	}

	quiz.Title = title
	quiz.Description = description
	quiz.Questions = questions
	quiz.PassingScore = passingScore
	if err := s.putQuiz(quiz); err != nil {
		return nil, err
	}
	s.emit(types.EventQuiz{Quiz: *quiz})
	return quiz, nil
}

// AttemptResult reports a scored quiz attempt.
type AttemptResult struct {
	Score          uint64 `json:"score"`
	Passed         bool   `json:"passed"`
	CorrectAnswers int    `json:"correctAnswers"`
	TotalQuestions int    `json:"totalQuestions"`
}

// scoreAttempt counts an answer as correct only when the referenced
// question exists, the referenced option exists and that option is
// flagged correct.
func scoreAttempt(quiz *types.Quiz, answers []types.QuizAnswer) (score uint64, correct int) {
	total := len(quiz.Questions)
	if total == 0 {
		return 0, 0
	}
	for _, a := range answers {
		if a.QuestionIndex < 0 || a.QuestionIndex >= total {
			continue
		}
		q := quiz.Questions[a.QuestionIndex]
		if a.SelectedOption < 0 || a.SelectedOption >= len(q.Options) {
			continue
		}
		if q.Options[a.SelectedOption].Correct {
			correct++
		}
	}
	score = uint64(math.Round(float64(correct) / float64(total) * 100))
	return score, correct
}

// SubmitQuizAttempt scores an attempt against the proposal's quiz. The
// first pass adds the quiz to the user's passed set and awards 1
// Acent; re-passing changes nothing.
func (s *State) SubmitQuizAttempt(userIdx, proposalIdx uint64, answers []types.QuizAnswer) (*AttemptResult, error) {
	quiz, err := s.getQuizByProposal(proposalIdx)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrQuizNotFound
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: answers are required", ErrValidation)
	}
	user, err := s.getUser(userIdx)
	if err != nil {
		return nil, err
	}

	score, correct := scoreAttempt(quiz, answers)
	passed := score >= quiz.PassingScore
	res := &AttemptResult{
		Score:          score,
		Passed:         passed,
		CorrectAnswers: correct,
		TotalQuestions: len(quiz.Questions),
	}
	if !passed {
		return res, nil
	}

	if user.HasPassed(quiz.Index) {
		s.emit(types.EventQuizPassed{Quiz: quiz.Index, User: userIdx, Score: score, FirstPass: false})
		return res, nil
	}
	user.PassedQuizzes[quiz.Index] = true
	user.AcentBalance += QuizPassReward
	if err := s.putUser(user); err != nil {
		return nil, err
	}
	if _, err := s.appendLedger(userIdx, QuizPassReward, types.CurrencyAcent, types.TxnQuizPass,
		quiz.Index, types.EntityQuiz, fmt.Sprintf("Passed quiz for proposal: %s", quiz.Title)); err != nil {
		return nil, err
	}
	s.emit(types.EventQuizPassed{Quiz: quiz.Index, User: userIdx, Score: score, FirstPass: true})
	return res, nil
}
