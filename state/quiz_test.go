package state

import (
	"testing"

	"github.com/civicore/civ-app/types"
	"github.com/stretchr/testify/require"
)

func TestCreateQuiz(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	p := seedProposal(t, db, alice.Index)

	_, err := db.CreateQuiz(bob.Index, p.Index, "Quiz", "Desc", quizQuestions(), 0)
	require.ErrorIs(t, err, ErrNotProposalAuthor)

	q := seedQuiz(t, db, alice.Index, p.Index)
	require.Equal(t, p.Index, q.Proposal)
	require.EqualValues(t, DefaultPassingScore, q.PassingScore)

	_, err = db.CreateQuiz(alice.Index, p.Index, "Second quiz", "Desc", quizQuestions(), 0)
	require.ErrorIs(t, err, ErrDuplicateQuiz)

	got, err := db.GetQuizByProposal(p.Index)
	require.NoError(t, err)
	require.Equal(t, q.Index, got.Index)
}

func TestCreateQuizValidation(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	p := seedProposal(t, db, alice.Index)

	_, err := db.CreateQuiz(alice.Index, p.Index, "", "Desc", quizQuestions(), 0)
	require.ErrorIs(t, err, ErrValidation)
	_, err = db.CreateQuiz(alice.Index, p.Index, "Quiz", "Desc", nil, 0)
	require.ErrorIs(t, err, ErrValidation)
	_, err = db.CreateQuiz(alice.Index, p.Index, "Quiz", "Desc", quizQuestions(), 101)
	require.ErrorIs(t, err, ErrValidation)

	oneOption := []types.QuizQuestion{{
		Text:    "Lonely question?",
		Options: []types.QuizOption{{Text: "Only choice", Correct: true}},
	}}
	_, err = db.CreateQuiz(alice.Index, p.Index, "Quiz", "Desc", oneOption, 0)
	require.ErrorIs(t, err, ErrValidation)

	noCorrect := []types.QuizQuestion{{
		Text:    "Unanswerable?",
		Options: []types.QuizOption{{Text: "Wrong"}, {Text: "Also wrong"}},
	}}
	_, err = db.CreateQuiz(alice.Index, p.Index, "Quiz", "Desc", noCorrect, 0)
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateQuiz(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	p := seedProposal(t, db, alice.Index)
	q := seedQuiz(t, db, alice.Index, p.Index)

	_, err := db.UpdateQuiz(bob.Index, q.Index, "New title", "New desc", quizQuestions(), 80)
	require.ErrorIs(t, err, ErrNotProposalAuthor)

	got, err := db.UpdateQuiz(alice.Index, q.Index, "New title", "New desc", quizQuestions(), 80)
	require.NoError(t, err)
	require.EqualValues(t, 80, got.PassingScore)

	// Zero keeps the previous passing score.
	got, err = db.UpdateQuiz(alice.Index, q.Index, "Newer title", "New desc", quizQuestions(), 0)
	require.NoError(t, err)
	require.EqualValues(t, 80, got.PassingScore)
}

func TestScoreAttempt(t *testing.T) {
	quiz := &types.Quiz{
		PassingScore: DefaultPassingScore,
		Questions: []types.QuizQuestion{
			{Text: "Q1", Options: []types.QuizOption{{Text: "a", Correct: true}, {Text: "b"}}},
			{Text: "Q2", Options: []types.QuizOption{{Text: "a"}, {Text: "b", Correct: true}}},
			{Text: "Q3", Options: []types.QuizOption{{Text: "a", Correct: true}, {Text: "b"}}},
		},
	}

	score, correct := scoreAttempt(quiz, []types.QuizAnswer{
		{QuestionIndex: 0, SelectedOption: 0},
		{QuestionIndex: 1, SelectedOption: 1},
	})
	require.EqualValues(t, 67, score) // 2/3 rounds to 67
	require.Equal(t, 2, correct)

	// Out-of-range references are skipped, not errors.
	score, correct = scoreAttempt(quiz, []types.QuizAnswer{
		{QuestionIndex: -1, SelectedOption: 0},
		{QuestionIndex: 7, SelectedOption: 0},
		{QuestionIndex: 2, SelectedOption: 9},
		{QuestionIndex: 2, SelectedOption: 0},
	})
	require.EqualValues(t, 33, score)
	require.Equal(t, 1, correct)
}

func TestSubmitQuizAttempt(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	p := seedProposal(t, db, alice.Index)
	q := seedQuiz(t, db, alice.Index, p.Index)

	_, err := db.SubmitQuizAttempt(bob.Index, p.Index, nil)
	require.ErrorIs(t, err, ErrValidation)

	// Wrong answer: scored, not passed, no award.
	res, err := db.SubmitQuizAttempt(bob.Index, p.Index, []types.QuizAnswer{{QuestionIndex: 0, SelectedOption: 1}})
	require.NoError(t, err)
	require.False(t, res.Passed)
	require.EqualValues(t, 0, res.Score)

	res, err = db.SubmitQuizAttempt(bob.Index, p.Index, []types.QuizAnswer{{QuestionIndex: 0, SelectedOption: 0}})
	require.NoError(t, err)
	require.True(t, res.Passed)
	require.EqualValues(t, 100, res.Score)

	u, err := db.GetUser(bob.Index)
	require.NoError(t, err)
	require.True(t, u.HasPassed(q.Index))
	require.EqualValues(t, StartAcentBalance+QuizPassReward, u.AcentBalance)

	// Re-passing is idempotent: no second award, no second entry.
	res, err = db.SubmitQuizAttempt(bob.Index, p.Index, []types.QuizAnswer{{QuestionIndex: 0, SelectedOption: 0}})
	require.NoError(t, err)
	require.True(t, res.Passed)
	u, err = db.GetUser(bob.Index)
	require.NoError(t, err)
	require.EqualValues(t, StartAcentBalance+QuizPassReward, u.AcentBalance)
	require.Len(t, ledgerFor(t, db, bob.Index), 1)
}

func TestSubmitQuizAttemptNoQuiz(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	p := seedProposal(t, db, alice.Index)

	_, err := db.SubmitQuizAttempt(alice.Index, p.Index, []types.QuizAnswer{{QuestionIndex: 0, SelectedOption: 0}})
	require.ErrorIs(t, err, ErrQuizNotFound)
}
