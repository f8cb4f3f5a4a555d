package indexer

import (
	"context"

	"cosmossdk.io/log"
	"github.com/civicore/civ-app/types"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// Indexer maintains the sqlite read model from the engine's event
// stream. It is eventually consistent: a mutation is visible here only
// after its event has been consumed. Balances served from the rows are
// reconstructed from ledger events; the engine remains authoritative.
type Indexer struct {
	logger log.Logger
	db     *gorm.DB
	events chan types.Event

	eventHandlers map[string]eventHandler
}

type eventHandler func(ev types.Event)

func NewIndexer(logger log.Logger, dbPath string) (*Indexer, error) {
	logger = logger.With("module", "indexer")
	logger.Info("open indexer db", "dbPath", dbPath)
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&UserRow{}, &ProposalRow{}, &QuizRow{}, &QuizPassRow{},
		&VoteRow{}, &DelegationRow{}, &CommentRow{}, &TransactionRow{}).Error; err != nil {
		return nil, err
	}

	c := &Indexer{
		logger: logger,
		db:     db,
		events: make(chan types.Event, 256),
	}
	c.eventHandlers = map[string]eventHandler{
		types.EventUserRegisteredType:    c.handleUserRegistered,
		types.EventProposalType:          c.handleProposal,
		types.EventProposalStatusType:    c.handleProposalStatus,
		types.EventProposalDeletedType:   c.handleProposalDeleted,
		types.EventQuizType:              c.handleQuiz,
		types.EventQuizPassedType:        c.handleQuizPassed,
		types.EventVoteType:              c.handleVote,
		types.EventDelegationType:        c.handleDelegation,
		types.EventDelegationRevokedType: c.handleDelegationRevoked,
		types.EventCommentType:           c.handleComment,
		types.EventCommentVoteType:       c.handleCommentVote,
		types.EventCommentIntegratedType: c.handleCommentIntegrated,
		types.EventLedgerEntryType:       c.handleLedgerEntry,
	}
	return c, nil
}

// Events returns the sink to hand to StateDB.Subscribe.
func (c *Indexer) Events() chan<- types.Event {
	return c.events
}

func (c *Indexer) Close() error {
	return c.db.Close()
}

func (c *Indexer) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.events:
			c.handleEvent(ev)
		}
	}
}

func (c *Indexer) handleEvent(ev types.Event) {
	if h, ok := c.eventHandlers[ev.EventType()]; ok {
		h(ev)
	}
}

func (c *Indexer) handleUserRegistered(e types.Event) {
	ev, ok := e.(types.EventUserRegistered)
	if !ok {
		c.logger.Error("decode event fail", "event", e.EventType())
		return
	}
	row := UserRow{
		Id:           ev.User.Index,
		Username:     ev.User.Username,
		Name:         ev.User.Name,
		City:         ev.User.Location.City,
		State:        ev.User.Location.State,
		Country:      ev.User.Location.Country,
		AcentBalance: int64(ev.User.AcentBalance),
		DcentBalance: int64(ev.User.DcentBalance),
		CreateTime:   ev.User.CreatedAt,
	}
	if err := c.db.Save(&row).Error; err != nil {
		c.logger.Error("save user fail", "err", err)
	}
}

func (c *Indexer) handleProposal(e types.Event) {
	ev, ok := e.(types.EventProposal)
	if !ok {
		c.logger.Error("decode event fail", "event", e.EventType())
		return
	}
	row := ProposalRow{
		Id:            ev.Proposal.Index,
		Author:        ev.Proposal.Author,
		Title:         ev.Proposal.Title,
		Content:       ev.Proposal.Content,
		Scope:         ev.Proposal.Scope.String(),
		City:          ev.Proposal.Location.City,
		Country:       ev.Proposal.Location.Country,
		Status:        ev.Proposal.Status.String(),
		YesVotes:      ev.Proposal.YesVotes,
		NoVotes:       ev.Proposal.NoVotes,
		CommentCnt:    uint64(len(ev.Proposal.Comments)),
		IntegratedCnt: uint64(len(ev.Proposal.IntegratedComments)),
		EscalatedTo:   ev.Proposal.EscalatedTo,
		CreateTime:    ev.Proposal.CreatedAt,
		CloseTime:     ev.Proposal.ClosedAt,
	}
	author, err := c.getUserById(ev.Proposal.Author)
	if err != nil {
		c.logger.Error("get author fail", "err", err)
	} else {
		row.AuthorUsername = author.Username
	}
	if err := c.db.Save(&row).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *Indexer) handleProposalStatus(e types.Event) {
	ev, ok := e.(types.EventProposalStatus)
	if !ok {
		c.logger.Error("decode event fail", "event", e.EventType())
		return
	}
	var row ProposalRow
	if err := c.db.First(&row, ev.Proposal).Error; err != nil {
		c.logger.Error("get proposal fail", "err", err)
		return
	}
	row.Status = ev.Status.String()
	row.EscalatedTo = ev.EscalatedTo
	if err := c.db.Save(&row).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *Indexer) handleProposalDeleted(e types.Event) {
	ev, ok := e.(types.EventProposalDeleted)
	if !ok {
		c.logger.Error("decode event fail", "event", e.EventType())
		return
	}
	if err := c.db.Delete(&ProposalRow{Id: ev.Proposal}).Error; err != nil {
		c.logger.Error("delete proposal fail", "err", err)
	}
}

func (c *Indexer) handleQuiz(e types.Event) {
	ev, ok := e.(types.EventQuiz)
	if !ok {
		c.logger.Error("decode event fail", "event", e.EventType())
		return
	}
	row := QuizRow{
		Id:           ev.Quiz.Index,
		Proposal:     ev.Quiz.Proposal,
		Title:        ev.Quiz.Title,
		Description:  ev.Quiz.Description,
		QuestionCnt:  len(ev.Quiz.Questions),
		PassingScore: ev.Quiz.PassingScore,
		CreateTime:   ev.Quiz.CreatedAt,
	}
	if err := c.db.Save(&row).Error; err != nil {
		c.logger.Error("save quiz fail", "err", err)
	}
}

func (c *Indexer) handleQuizPassed(e types.Event) {
	ev, ok := e.(types.EventQuizPassed)
	if !ok {
		c.logger.Error("decode event fail", "event", e.EventType())
		return
	}
	if !ev.FirstPass {
		return
	}
	row := QuizPassRow{
		Quiz:  ev.Quiz,
		User:  ev.User,
		Score: ev.Score,
	}
	if err := c.db.Create(&row).Error; err != nil {
		c.logger.Error("save quiz pass fail", "err", err)
	}
}

func (c *Indexer) handleVote(e types.Event) {
	ev, ok := e.(types.EventVote)
	if !ok {
		c.logger.Error("decode event fail", "event", e.EventType())
		return
	}
	row := VoteRow{
		Id:         ev.Vote.Index,
		Proposal:   ev.Vote.Proposal,
		Voter:      ev.Vote.Voter,
		Choice:     ev.Vote.Choice.String(),
		Weight:     ev.Vote.Weight(),
		Absorbed:   ev.Absorbed,
		CreateTime: ev.Vote.CreatedAt,
	}
	if err := c.db.Save(&row).Error; err != nil {
		c.logger.Error("save vote fail", "err", err)
		return
	}
	var proposal ProposalRow
	if err := c.db.First(&proposal, ev.Vote.Proposal).Error; err != nil {
		c.logger.Error("get proposal fail", "err", err)
		return
	}
	if ev.Vote.Choice == types.VoteYes {
		proposal.YesVotes += ev.Vote.Weight()
	} else {
		proposal.NoVotes += ev.Vote.Weight()
	}
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *Indexer) handleDelegation(e types.Event) {
	ev, ok := e.(types.EventDelegation)
	if !ok {
		c.logger.Error("decode event fail", "event", e.EventType())
		return
	}
	row := DelegationRow{
		Id:         ev.Delegation.Index,
		Proposal:   ev.Delegation.Proposal,
		Delegator:  ev.Delegation.Delegator,
		Delegatee:  ev.Delegation.Delegatee,
		Active:     ev.Delegation.Active,
		CreateTime: ev.Delegation.CreatedAt,
	}
	if err := c.db.Save(&row).Error; err != nil {
		c.logger.Error("save delegation fail", "err", err)
	}
}

func (c *Indexer) handleDelegationRevoked(e types.Event) {
	ev, ok := e.(types.EventDelegationRevoked)
	if !ok {
		c.logger.Error("decode event fail", "event", e.EventType())
		return
	}
	// Map update: a struct save would skip the zero-valued active field.
	err := c.db.Model(&DelegationRow{}).Where("id = ?", ev.Delegation).
		Updates(map[string]interface{}{"active": false, "revoke_time": ev.RevokedAt}).Error
	if err != nil {
		c.logger.Error("save delegation fail", "err", err)
	}
}

func (c *Indexer) handleComment(e types.Event) {
	ev, ok := e.(types.EventComment)
	if !ok {
		c.logger.Error("decode event fail", "event", e.EventType())
		return
	}
	row := CommentRow{
		Id:          ev.Comment.Index,
		Proposal:    ev.Comment.Proposal,
		Author:      ev.Comment.Author,
		Content:     ev.Comment.Content,
		IsCompetent: ev.Comment.IsCompetent,
		CreateTime:  ev.Comment.CreatedAt,
	}
	if err := c.db.Save(&row).Error; err != nil {
		c.logger.Error("save comment fail", "err", err)
		return
	}
	if err := c.db.Model(&ProposalRow{}).Where("id = ?", ev.Comment.Proposal).
		Update("comment_cnt", gorm.Expr("comment_cnt + 1")).Error; err != nil {
		c.logger.Error("bump comment count fail", "err", err)
	}
}

func (c *Indexer) handleCommentVote(e types.Event) {
	ev, ok := e.(types.EventCommentVote)
	if !ok {
		c.logger.Error("decode event fail", "event", e.EventType())
		return
	}
	var row CommentRow
	if err := c.db.First(&row, ev.Comment).Error; err != nil {
		c.logger.Error("get comment fail", "err", err)
		return
	}
	row.Upvotes = ev.Upvotes
	row.Downvotes = ev.Downvotes
	if err := c.db.Save(&row).Error; err != nil {
		c.logger.Error("save comment fail", "err", err)
	}
}

func (c *Indexer) handleCommentIntegrated(e types.Event) {
	ev, ok := e.(types.EventCommentIntegrated)
	if !ok {
		c.logger.Error("decode event fail", "event", e.EventType())
		return
	}
	var row CommentRow
	if err := c.db.First(&row, ev.Comment).Error; err != nil {
		c.logger.Error("get comment fail", "err", err)
		return
	}
	row.IsIntegrated = true
	row.IntegrateTime = ev.IntegratedAt
	if err := c.db.Save(&row).Error; err != nil {
		c.logger.Error("save comment fail", "err", err)
		return
	}
	if err := c.db.Model(&ProposalRow{}).Where("id = ?", ev.Proposal).
		Update("integrated_cnt", gorm.Expr("integrated_cnt + 1")).Error; err != nil {
		c.logger.Error("bump integrated count fail", "err", err)
	}
}

func (c *Indexer) handleLedgerEntry(e types.Event) {
	ev, ok := e.(types.EventLedgerEntry)
	if !ok {
		c.logger.Error("decode event fail", "event", e.EventType())
		return
	}
	row := TransactionRow{
		Id:            ev.Entry.Index,
		User:          ev.Entry.User,
		Amount:        ev.Entry.Amount,
		Currency:      ev.Entry.Currency.String(),
		Type:          ev.Entry.Type.String(),
		RelatedEntity: ev.Entry.RelatedEntity,
		EntityKind:    ev.Entry.EntityKind.String(),
		Description:   ev.Entry.Description,
		CreateTime:    ev.Entry.CreatedAt,
	}
	if err := c.db.Save(&row).Error; err != nil {
		c.logger.Error("save transaction fail", "err", err)
		return
	}
	col := "acent_balance"
	if ev.Entry.Currency == types.CurrencyDcent {
		col = "dcent_balance"
	}
	if err := c.db.Model(&UserRow{}).Where("id = ?", ev.Entry.User).
		Update(col, gorm.Expr(col+" + ?", ev.Entry.Amount)).Error; err != nil {
		c.logger.Error("apply balance delta fail", "err", err)
	}
}

func (c *Indexer) getUserById(id uint64) (*UserRow, error) {
	var row UserRow
	err := c.db.First(&row, id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (c *Indexer) getUserByUsername(username string) (*UserRow, error) {
	var row UserRow
	err := c.db.Where("username = ?", username).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (c *Indexer) getProposalById(id uint64) (ProposalRow, error) {
	var row ProposalRow
	err := c.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		return ProposalRow{}, err
	}
	return row, nil
}

func (c *Indexer) getProposals(scope, status, city string, page, pageSize int) ([]ProposalRow, uint64, error) {
	q := c.db.Model(&ProposalRow{})
	if scope != "" {
		q = q.Where("scope = ?", scope)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if city != "" {
		q = q.Where("city = ?", city)
	}
	var proposals []ProposalRow
	err := q.Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = q.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *Indexer) getProposalsByAuthor(author uint64, page, pageSize int) ([]ProposalRow, uint64, error) {
	var proposals []ProposalRow
	err := c.db.Where("author = ?", author).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&ProposalRow{}).Where("author = ?", author).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *Indexer) getQuizByProposal(proposal uint64) (*QuizRow, error) {
	var row QuizRow
	err := c.db.Where("proposal = ?", proposal).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (c *Indexer) getQuizPassesByQuiz(quiz uint64, page, pageSize int) ([]QuizPassRow, uint64, error) {
	var passes []QuizPassRow
	err := c.db.Where("quiz = ?", quiz).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&passes).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&QuizPassRow{}).Where("quiz = ?", quiz).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return passes, total, nil
}

// getQuizPassesByUser lists the quizzes a user has passed, newest
// first.
func (c *Indexer) getQuizPassesByUser(user uint64, page, pageSize int) ([]QuizPassRow, uint64, error) {
	var passes []QuizPassRow
	err := c.db.Where("user = ?", user).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&passes).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&QuizPassRow{}).Where("user = ?", user).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return passes, total, nil
}

func (c *Indexer) getVotesByProposal(proposal uint64, page, pageSize int) ([]VoteRow, uint64, error) {
	var votes []VoteRow
	err := c.db.Where("proposal = ?", proposal).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&VoteRow{}).Where("proposal = ?", proposal).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return votes, total, nil
}

func (c *Indexer) getVotesByVoter(voter uint64, page, pageSize int) ([]VoteRow, uint64, error) {
	var votes []VoteRow
	err := c.db.Where("voter = ?", voter).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&VoteRow{}).Where("voter = ?", voter).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return votes, total, nil
}

// getCommentsByProposal orders by upvotes so the strongest comments
// surface first.
func (c *Indexer) getCommentsByProposal(proposal uint64, page, pageSize int) ([]CommentRow, uint64, error) {
	var comments []CommentRow
	err := c.db.Where("proposal = ?", proposal).Order("upvotes desc, id desc").
		Offset(page * pageSize).Limit(pageSize).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&CommentRow{}).Where("proposal = ?", proposal).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (c *Indexer) getCommentsByAuthor(author uint64, page, pageSize int) ([]CommentRow, uint64, error) {
	var comments []CommentRow
	err := c.db.Where("author = ?", author).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&CommentRow{}).Where("author = ?", author).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (c *Indexer) getDelegationsByDelegator(delegator uint64, page, pageSize int) ([]DelegationRow, uint64, error) {
	var delegations []DelegationRow
	err := c.db.Where("delegator = ?", delegator).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&delegations).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&DelegationRow{}).Where("delegator = ?", delegator).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return delegations, total, nil
}

func (c *Indexer) getDelegationsByDelegatee(delegatee uint64, page, pageSize int) ([]DelegationRow, uint64, error) {
	var delegations []DelegationRow
	err := c.db.Where("delegatee = ?", delegatee).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&delegations).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&DelegationRow{}).Where("delegatee = ?", delegatee).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return delegations, total, nil
}

func (c *Indexer) getDelegationsByProposal(proposal uint64, page, pageSize int) ([]DelegationRow, uint64, error) {
	var delegations []DelegationRow
	err := c.db.Where("proposal = ?", proposal).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&delegations).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&DelegationRow{}).Where("proposal = ?", proposal).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return delegations, total, nil
}

func (c *Indexer) getTransactionsByUser(user uint64, currency string, page, pageSize int) ([]TransactionRow, uint64, error) {
	q := c.db.Model(&TransactionRow{}).Where("user = ?", user)
	if currency != "" {
		q = q.Where("currency = ?", currency)
	}
	var txns []TransactionRow
	err := q.Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&txns).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = q.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

func (c *Indexer) getLeaderboard(currency string, limit int) ([]UserRow, error) {
	col := "acent_balance"
	if currency == "dcent" {
		col = "dcent_balance"
	}
	var users []UserRow
	err := c.db.Order(col + " desc").Limit(limit).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
