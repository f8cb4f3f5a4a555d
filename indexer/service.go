package indexer

import (
	"net/http"

	"github.com/civicore/civ-app/state"
	"github.com/civicore/civ-app/types"
	"github.com/gin-gonic/gin"
)

// Service is the HTTP surface. Mutations go straight to the engine;
// reads are served from the indexer's sqlite model, except balances and
// quiz content which come from the engine because they must be exact.
type Service struct {
	engine     *gin.Engine
	db         *state.StateDB
	indexer    *Indexer
	listenAddr string
}

func NewService(listenAddr string, db *state.StateDB, indexer *Indexer) *Service {
	r := gin.Default()
	s := &Service{
		engine:     r,
		db:         db,
		indexer:    indexer,
		listenAddr: listenAddr,
	}
	s.engine.POST("/register", s.handleRegister)
	s.engine.POST("/createProposal", s.handleCreateProposal)
	s.engine.POST("/updateProposal", s.handleUpdateProposal)
	s.engine.POST("/closeProposal", s.handleCloseProposal)
	s.engine.POST("/escalateProposal", s.handleEscalateProposal)
	s.engine.POST("/deleteProposal", s.handleDeleteProposal)
	s.engine.POST("/createQuiz", s.handleCreateQuiz)
	s.engine.POST("/updateQuiz", s.handleUpdateQuiz)
	s.engine.POST("/submitQuizAttempt", s.handleSubmitQuizAttempt)
	s.engine.POST("/castVote", s.handleCastVote)
	s.engine.POST("/delegate", s.handleDelegate)
	s.engine.POST("/revokeDelegation", s.handleRevokeDelegation)
	s.engine.POST("/postComment", s.handlePostComment)
	s.engine.POST("/voteComment", s.handleVoteComment)
	s.engine.POST("/integrateComment", s.handleIntegrateComment)

	s.engine.POST("/getProposals", s.handleGetProposals)
	s.engine.POST("/getQuiz", s.handleGetQuiz)
	s.engine.POST("/getQuizPasses", s.handleGetQuizPasses)
	s.engine.POST("/getVotes", s.handleGetVotes)
	s.engine.POST("/getComments", s.handleGetComments)
	s.engine.POST("/getDelegations", s.handleGetDelegations)
	s.engine.POST("/getTransactions", s.handleGetTransactions)
	s.engine.POST("/getBalance", s.handleGetBalance)
	s.engine.POST("/getUser", s.handleGetUser)
	s.engine.POST("/getLeaderboard", s.handleGetLeaderboard)
	s.engine.POST("/getAuditHash", s.handleGetAuditHash)
	return s
}

func (s *Service) Start() error {
	return s.engine.Run(s.listenAddr)
}

// httpStatus maps engine failure kinds onto HTTP statuses.
func httpStatus(err error) int {
	switch state.KindOf(err) {
	case state.KindNotFound:
		return http.StatusNotFound
	case state.KindUnauthorized:
		return http.StatusUnauthorized
	case state.KindConflict:
		return http.StatusConflict
	case state.KindInsufficientFunds:
		return http.StatusPaymentRequired
	case state.KindCompetenceRequired:
		return http.StatusForbidden
	case state.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func abortWith(c *gin.Context, err error) {
	c.JSON(httpStatus(err), gin.H{"error": err.Error()})
}

type RegisterReq struct {
	Username string         `json:"username"`
	Name     string         `json:"name"`
	Location types.Location `json:"location"`
}

func (s *Service) handleRegister(c *gin.Context) {
	var requestData RegisterReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := s.db.RegisterUser(requestData.Username, requestData.Name, requestData.Location)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

type CreateProposalReq struct {
	User     uint64         `json:"user"`
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Scope    string         `json:"scope"`
	Location types.Location `json:"location"`
}

func (s *Service) handleCreateProposal(c *gin.Context) {
	var requestData CreateProposalReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	scope, err := types.ParseScope(requestData.Scope)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := s.db.CreateProposal(requestData.User, requestData.Title, requestData.Content, scope, requestData.Location)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposal": p})
}

type UpdateProposalReq struct {
	User     uint64 `json:"user"`
	Proposal uint64 `json:"proposal"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

func (s *Service) handleUpdateProposal(c *gin.Context) {
	var requestData UpdateProposalReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := s.db.UpdateProposal(requestData.User, requestData.Proposal, requestData.Title, requestData.Content)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposal": p})
}

type ProposalActionReq struct {
	User     uint64 `json:"user"`
	Proposal uint64 `json:"proposal"`
}

func (s *Service) handleCloseProposal(c *gin.Context) {
	var requestData ProposalActionReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := s.db.CloseProposal(requestData.User, requestData.Proposal)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposal": p})
}

type EscalateProposalReq struct {
	User     uint64 `json:"user"`
	Proposal uint64 `json:"proposal"`
	NewScope string `json:"newScope"`
}

func (s *Service) handleEscalateProposal(c *gin.Context) {
	var requestData EscalateProposalReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	scope, err := types.ParseScope(requestData.NewScope)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	old, child, err := s.db.EscalateProposal(requestData.User, requestData.Proposal, scope)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposal": old, "escalated": child})
}

func (s *Service) handleDeleteProposal(c *gin.Context) {
	var requestData ProposalActionReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.db.DeleteProposal(requestData.User, requestData.Proposal); err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": requestData.Proposal})
}

type CreateQuizReq struct {
	User         uint64               `json:"user"`
	Proposal     uint64               `json:"proposal"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Questions    []types.QuizQuestion `json:"questions"`
	PassingScore uint64               `json:"passingScore"`
}

func (s *Service) handleCreateQuiz(c *gin.Context) {
	var requestData CreateQuizReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := s.db.CreateQuiz(requestData.User, requestData.Proposal, requestData.Title,
		requestData.Description, requestData.Questions, requestData.PassingScore)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quiz": q})
}

type UpdateQuizReq struct {
	User         uint64               `json:"user"`
	Quiz         uint64               `json:"quiz"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Questions    []types.QuizQuestion `json:"questions"`
	PassingScore uint64               `json:"passingScore"`
}

func (s *Service) handleUpdateQuiz(c *gin.Context) {
	var requestData UpdateQuizReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := s.db.UpdateQuiz(requestData.User, requestData.Quiz, requestData.Title,
		requestData.Description, requestData.Questions, requestData.PassingScore)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quiz": q})
}

type SubmitQuizAttemptReq struct {
	User     uint64             `json:"user"`
	Proposal uint64             `json:"proposal"`
	Answers  []types.QuizAnswer `json:"answers"`
}

func (s *Service) handleSubmitQuizAttempt(c *gin.Context) {
	var requestData SubmitQuizAttemptReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.db.SubmitQuizAttempt(requestData.User, requestData.Proposal, requestData.Answers)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res})
}

type CastVoteReq struct {
	User     uint64 `json:"user"`
	Proposal uint64 `json:"proposal"`
	Choice   string `json:"choice"`
}

func (s *Service) handleCastVote(c *gin.Context) {
	var requestData CastVoteReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	choice, err := types.ParseVoteChoice(requestData.Choice)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := s.db.CastVote(requestData.User, requestData.Proposal, choice)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vote": v})
}

type DelegateReq struct {
	User      uint64 `json:"user"`
	Proposal  uint64 `json:"proposal"`
	Delegatee uint64 `json:"delegatee"`
}

func (s *Service) handleDelegate(c *gin.Context) {
	var requestData DelegateReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := s.db.Delegate(requestData.User, requestData.Proposal, requestData.Delegatee)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delegation": d})
}

type RevokeDelegationReq struct {
	User       uint64 `json:"user"`
	Delegation uint64 `json:"delegation"`
}

func (s *Service) handleRevokeDelegation(c *gin.Context) {
	var requestData RevokeDelegationReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := s.db.RevokeDelegation(requestData.User, requestData.Delegation)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delegation": d})
}

type PostCommentReq struct {
	User     uint64 `json:"user"`
	Proposal uint64 `json:"proposal"`
	Content  string `json:"content"`
}

func (s *Service) handlePostComment(c *gin.Context) {
	var requestData PostCommentReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	comment, err := s.db.PostComment(requestData.User, requestData.Proposal, requestData.Content)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

type VoteCommentReq struct {
	User    uint64 `json:"user"`
	Comment uint64 `json:"comment"`
	Choice  string `json:"choice"`
}

func (s *Service) handleVoteComment(c *gin.Context) {
	var requestData VoteCommentReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	choice, err := types.ParseCommentVoteChoice(requestData.Choice)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	comment, err := s.db.VoteOnComment(requestData.User, requestData.Comment, choice)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

type IntegrateCommentReq struct {
	User    uint64 `json:"user"`
	Comment uint64 `json:"comment"`
}

func (s *Service) handleIntegrateComment(c *gin.Context) {
	var requestData IntegrateCommentReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	comment, err := s.db.IntegrateComment(requestData.User, requestData.Comment)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

type GetProposalsReq struct {
	ProposalId uint64 `json:"proposalId"`
	Author     uint64 `json:"author"`
	Scope      string `json:"scope"`
	Status     string `json:"status"`
	City       string `json:"city"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

type GetProposalsResponse struct {
	Proposals []ProposalRow `json:"proposals"`
	Total     uint64        `json:"total"`
}

func (s *Service) handleGetProposals(c *gin.Context) {
	var response GetProposalsResponse
	response.Proposals = make([]ProposalRow, 0)
	var requestData GetProposalsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.PageSize == 0 {
		requestData.PageSize = 20
	}

	if requestData.ProposalId != 0 {
		proposal, err := s.indexer.getProposalById(requestData.ProposalId)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		response.Proposals = append(response.Proposals, proposal)
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}
	if requestData.Author != 0 {
		proposals, total, err := s.indexer.getProposalsByAuthor(requestData.Author, requestData.Page, requestData.PageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Proposals = proposals
		response.Total = total
		c.JSON(http.StatusOK, response)
		return
	}
	proposals, total, err := s.indexer.getProposals(requestData.Scope, requestData.Status, requestData.City,
		requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Proposals = proposals
	response.Total = total
	c.JSON(http.StatusOK, response)
}

type GetQuizReq struct {
	Proposal uint64 `json:"proposal"`
}

// QuizQuestionView is the taker-facing shape: option texts without the
// correct flags.
type QuizQuestionView struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type GetQuizResponse struct {
	Quiz      QuizRow            `json:"quiz"`
	Questions []QuizQuestionView `json:"questions"`
}

func (s *Service) handleGetQuiz(c *gin.Context) {
	var requestData GetQuizReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	row, err := s.indexer.getQuizByProposal(requestData.Proposal)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	quiz, err := s.db.GetQuizByProposal(requestData.Proposal)
	if err != nil {
		abortWith(c, err)
		return
	}
	questions := make([]QuizQuestionView, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		view := QuizQuestionView{Text: q.Text}
		for _, o := range q.Options {
			view.Options = append(view.Options, o.Text)
		}
		questions = append(questions, view)
	}
	c.JSON(http.StatusOK, GetQuizResponse{Quiz: *row, Questions: questions})
}

type GetQuizPassesReq struct {
	Quiz     uint64 `json:"quiz"`
	User     uint64 `json:"user"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type GetQuizPassesResponse struct {
	Passes []QuizPassRow `json:"passes"`
	Total  uint64        `json:"total"`
}

// handleGetQuizPasses lists first-pass records either for one quiz
// (who qualified) or for one user (which quizzes they passed).
func (s *Service) handleGetQuizPasses(c *gin.Context) {
	var response GetQuizPassesResponse
	response.Passes = make([]QuizPassRow, 0)
	var requestData GetQuizPassesReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.PageSize == 0 {
		requestData.PageSize = 20
	}
	var err error
	if requestData.Quiz != 0 {
		response.Passes, response.Total, err = s.indexer.getQuizPassesByQuiz(requestData.Quiz, requestData.Page, requestData.PageSize)
	} else if requestData.User != 0 {
		response.Passes, response.Total, err = s.indexer.getQuizPassesByUser(requestData.User, requestData.Page, requestData.PageSize)
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quiz or user is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, response)
}

type GetVotesReq struct {
	Proposal uint64 `json:"proposal"`
	Voter    uint64 `json:"voter"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type GetVotesResponse struct {
	Votes []VoteRow `json:"votes"`
	Total uint64    `json:"total"`
}

func (s *Service) handleGetVotes(c *gin.Context) {
	var response GetVotesResponse
	response.Votes = make([]VoteRow, 0)
	var requestData GetVotesReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.PageSize == 0 {
		requestData.PageSize = 20
	}
	var err error
	if requestData.Proposal != 0 {
		response.Votes, response.Total, err = s.indexer.getVotesByProposal(requestData.Proposal, requestData.Page, requestData.PageSize)
	} else if requestData.Voter != 0 {
		response.Votes, response.Total, err = s.indexer.getVotesByVoter(requestData.Voter, requestData.Page, requestData.PageSize)
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "proposal or voter is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, response)
}

type GetCommentsReq struct {
	Proposal uint64 `json:"proposal"`
	Author   uint64 `json:"author"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type GetCommentsResponse struct {
	Comments []CommentRow `json:"comments"`
	Total    uint64       `json:"total"`
}

func (s *Service) handleGetComments(c *gin.Context) {
	var response GetCommentsResponse
	response.Comments = make([]CommentRow, 0)
	var requestData GetCommentsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.PageSize == 0 {
		requestData.PageSize = 20
	}
	var err error
	if requestData.Proposal != 0 {
		response.Comments, response.Total, err = s.indexer.getCommentsByProposal(requestData.Proposal, requestData.Page, requestData.PageSize)
	} else if requestData.Author != 0 {
		response.Comments, response.Total, err = s.indexer.getCommentsByAuthor(requestData.Author, requestData.Page, requestData.PageSize)
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "proposal or author is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, response)
}

type GetDelegationsReq struct {
	Proposal  uint64 `json:"proposal"`
	Delegator uint64 `json:"delegator"`
	Delegatee uint64 `json:"delegatee"`
	Page      int    `json:"page"`
	PageSize  int    `json:"pageSize"`
}

type GetDelegationsResponse struct {
	Delegations []DelegationRow `json:"delegations"`
	Total       uint64          `json:"total"`
}

func (s *Service) handleGetDelegations(c *gin.Context) {
	var response GetDelegationsResponse
	response.Delegations = make([]DelegationRow, 0)
	var requestData GetDelegationsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.PageSize == 0 {
		requestData.PageSize = 20
	}
	var err error
	if requestData.Delegator != 0 {
		response.Delegations, response.Total, err = s.indexer.getDelegationsByDelegator(requestData.Delegator, requestData.Page, requestData.PageSize)
	} else if requestData.Delegatee != 0 {
		response.Delegations, response.Total, err = s.indexer.getDelegationsByDelegatee(requestData.Delegatee, requestData.Page, requestData.PageSize)
	} else if requestData.Proposal != 0 {
		response.Delegations, response.Total, err = s.indexer.getDelegationsByProposal(requestData.Proposal, requestData.Page, requestData.PageSize)
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "proposal, delegator or delegatee is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, response)
}

type GetTransactionsReq struct {
	User     uint64 `json:"user"`
	Currency string `json:"currency"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type GetTransactionsResponse struct {
	Transactions []TransactionRow `json:"transactions"`
	Total        uint64           `json:"total"`
}

func (s *Service) handleGetTransactions(c *gin.Context) {
	var response GetTransactionsResponse
	response.Transactions = make([]TransactionRow, 0)
	var requestData GetTransactionsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.User == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user is required"})
		return
	}
	if requestData.PageSize == 0 {
		requestData.PageSize = 20
	}
	txns, total, err := s.indexer.getTransactionsByUser(requestData.User, requestData.Currency,
		requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Transactions = txns
	response.Total = total
	c.JSON(http.StatusOK, response)
}

type GetBalanceReq struct {
	User uint64 `json:"user"`
}

func (s *Service) handleGetBalance(c *gin.Context) {
	var requestData GetBalanceReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	acent, dcent, err := s.db.Balances(requestData.User)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"acent": acent, "dcent": dcent})
}

type GetUserReq struct {
	User     uint64 `json:"user"`
	Username string `json:"username"`
}

func (s *Service) handleGetUser(c *gin.Context) {
	var requestData GetUserReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var row *UserRow
	var err error
	if requestData.User != 0 {
		row, err = s.indexer.getUserById(requestData.User)
	} else if requestData.Username != "" {
		row, err = s.indexer.getUserByUsername(requestData.Username)
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user or username is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": row})
}

type GetLeaderboardReq struct {
	Currency string `json:"currency"`
	Limit    int    `json:"limit"`
}

func (s *Service) handleGetLeaderboard(c *gin.Context) {
	var requestData GetLeaderboardReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.Limit == 0 {
		requestData.Limit = 20
	}
	users, err := s.indexer.getLeaderboard(requestData.Currency, requestData.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *Service) handleGetAuditHash(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"hash": s.db.AuditHash().Hex()})
}
