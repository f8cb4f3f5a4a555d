package indexer

// sqlite read models, maintained from engine events

type UserRow struct {
	Id           uint64 `gorm:"primaryKey" json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	AcentBalance int64  `json:"acent_balance"`
	DcentBalance int64  `json:"dcent_balance"`
	CreateTime   int64  `json:"create_time"`
}

type ProposalRow struct {
	Id             uint64 `gorm:"primaryKey" json:"id"`
	Author         uint64 `json:"author"`
	AuthorUsername string `json:"author_username"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	Scope          string `json:"scope"`
	City           string `json:"city"`
	Country        string `json:"country"`
	Status         string `json:"status"`
	YesVotes       uint64 `json:"yes_votes"`
	NoVotes        uint64 `json:"no_votes"`
	CommentCnt     uint64 `json:"comment_cnt"`
	IntegratedCnt  uint64 `json:"integrated_cnt"`
	EscalatedTo    uint64 `json:"escalated_to"`
	CreateTime     int64  `json:"create_time"`
	CloseTime      int64  `json:"close_time"`
}

type QuizRow struct {
	Id           uint64 `gorm:"primaryKey" json:"id"`
	Proposal     uint64 `json:"proposal"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	QuestionCnt  int    `json:"question_cnt"`
	PassingScore uint64 `json:"passing_score"`
	CreateTime   int64  `json:"create_time"`
}

type QuizPassRow struct {
	Id    uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Quiz  uint64 `json:"quiz"`
	User  uint64 `json:"user"`
	Score uint64 `json:"score"`
}

type VoteRow struct {
	Id         uint64 `gorm:"primaryKey" json:"id"`
	Proposal   uint64 `json:"proposal"`
	Voter      uint64 `json:"voter"`
	Choice     string `json:"choice"`
	Weight     uint64 `json:"weight"`
	Absorbed   uint64 `json:"absorbed"`
	CreateTime int64  `json:"create_time"`
}

type DelegationRow struct {
	Id         uint64 `gorm:"primaryKey" json:"id"`
	Proposal   uint64 `json:"proposal"`
	Delegator  uint64 `json:"delegator"`
	Delegatee  uint64 `json:"delegatee"`
	Active     bool   `json:"active"`
	CreateTime int64  `json:"create_time"`
	RevokeTime int64  `json:"revoke_time"`
}

type CommentRow struct {
	Id            uint64 `gorm:"primaryKey" json:"id"`
	Proposal      uint64 `json:"proposal"`
	Author        uint64 `json:"author"`
	Content       string `json:"content"`
	IsCompetent   bool   `json:"is_competent"`
	Upvotes       uint64 `json:"upvotes"`
	Downvotes     uint64 `json:"downvotes"`
	IsIntegrated  bool   `json:"is_integrated"`
	IntegrateTime int64  `json:"integrate_time"`
	CreateTime    int64  `json:"create_time"`
}

type TransactionRow struct {
	Id            uint64 `gorm:"primaryKey" json:"id"`
	User          uint64 `json:"user"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Type          string `json:"type"`
	RelatedEntity uint64 `json:"related_entity"`
	EntityKind    string `json:"entity_kind"`
	Description   string `json:"description"`
	CreateTime    int64  `json:"create_time"`
}
