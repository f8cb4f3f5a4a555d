package state

import (
	"sync"
	"time"

	"cosmossdk.io/log"
	"github.com/civicore/civ-app/types"
	"github.com/cosmos/iavl"
	dbm "github.com/cosmos/iavl/db"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// StateDB serializes every mutating operation behind one write lock:
// an operation reads, validates and writes against the working tree,
// then either commits a new version or rolls the working set back.
// Uniqueness checks and balance mutations are atomic by construction.
type StateDB struct {
	mtx sync.RWMutex
	// pub guards subs and orders event delivery. apply acquires it
	// before releasing the write lock, so subscribers always receive
	// batches in commit order.
	pub sync.Mutex

	dir    string
	logger log.Logger
	db     *iavl.MutableTree

	state *State
	subs  []chan<- types.Event
}

func NewStateDB(dir string, logger log.Logger) (*StateDB, error) {
	logger = logger.With("module", "civdb")
	ldb, err := dbm.NewDB("civ", "goleveldb", dir)
	if err != nil {
		return nil, err
	}
	tdb := iavl.NewMutableTree(ldb, 128, true, logger)
	version, err := tdb.Load()
	if err != nil {
		return nil, err
	}
	logger.Info("load db success", "version", version)
	st := newState(tdb, logger, time.Now)
	if err := st.load(); err != nil {
		logger.Error("load state header fail", "err", err)
		return nil, err
	}
	return &StateDB{
		dir:    dir,
		logger: logger,
		db:     tdb,
		state:  st,
	}, nil
}

func (db *StateDB) Close() error {
	return db.db.Close()
}

// SetClock replaces the timestamp source. Used by tests.
func (db *StateDB) SetClock(now func() time.Time) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	db.state.now = now
}

// Subscribe registers an event sink. Events for a mutation are sent
// after its version is saved; batches arrive in commit order.
func (db *StateDB) Subscribe(ch chan<- types.Event) {
	db.pub.Lock()
	defer db.pub.Unlock()
	db.subs = append(db.subs, ch)
}

func (db *StateDB) publish(evs []types.Event) {
	for _, ev := range evs {
		for _, ch := range db.subs {
			ch <- ev
		}
	}
}

// apply runs one mutating operation as an atomic unit.
func (db *StateDB) apply(op func(*State) error) error {
	db.mtx.Lock()
	if err := op(db.state); err != nil {
		db.state.rollback()
		db.mtx.Unlock()
		return err
	}
	if err := db.state.commit(); err != nil {
		db.logger.Error("commit fail", "err", err)
		db.state.rollback()
		db.mtx.Unlock()
		return err
	}
	evs := db.state.takeEvents()
	// Take pub before releasing the write lock: a later commit cannot
	// overtake this batch on the way to the subscribers, and the sends
	// themselves happen without the write lock held.
	db.pub.Lock()
	db.mtx.Unlock()
	db.publish(evs)
	db.pub.Unlock()
	return nil
}

func (db *StateDB) RegisterUser(username, name string, location types.Location) (u *types.User, err error) {
	err = db.apply(func(s *State) error {
		u, err = s.RegisterUser(username, name, location)
		return err
	})
	return
}

func (db *StateDB) CreateProposal(author uint64, title, content string, scope types.Scope, location types.Location) (p *types.Proposal, err error) {
	err = db.apply(func(s *State) error {
		p, err = s.CreateProposal(author, title, content, scope, location)
		return err
	})
	return
}

func (db *StateDB) UpdateProposal(author, proposal uint64, title, content string) (p *types.Proposal, err error) {
	err = db.apply(func(s *State) error {
		p, err = s.UpdateProposal(author, proposal, title, content)
		return err
	})
	return
}

func (db *StateDB) CloseProposal(author, proposal uint64) (p *types.Proposal, err error) {
	err = db.apply(func(s *State) error {
		p, err = s.CloseProposal(author, proposal)
		return err
	})
	return
}

func (db *StateDB) EscalateProposal(author, proposal uint64, newScope types.Scope) (old, child *types.Proposal, err error) {
	err = db.apply(func(s *State) error {
		old, child, err = s.EscalateProposal(author, proposal, newScope)
		return err
	})
	return
}

func (db *StateDB) DeleteProposal(author, proposal uint64) error {
	return db.apply(func(s *State) error {
		return s.DeleteProposal(author, proposal)
	})
}

func (db *StateDB) CreateQuiz(author, proposal uint64, title, description string, questions []types.QuizQuestion, passingScore uint64) (q *types.Quiz, err error) {
	err = db.apply(func(s *State) error {
		q, err = s.CreateQuiz(author, proposal, title, description, questions, passingScore)
		return err
	})
	return
}

func (db *StateDB) UpdateQuiz(author, quiz uint64, title, description string, questions []types.QuizQuestion, passingScore uint64) (q *types.Quiz, err error) {
	err = db.apply(func(s *State) error {
		q, err = s.UpdateQuiz(author, quiz, title, description, questions, passingScore)
		return err
	})
	return
}

func (db *StateDB) SubmitQuizAttempt(user, proposal uint64, answers []types.QuizAnswer) (res *AttemptResult, err error) {
	err = db.apply(func(s *State) error {
		res, err = s.SubmitQuizAttempt(user, proposal, answers)
		return err
	})
	return
}

func (db *StateDB) CastVote(voter, proposal uint64, choice types.VoteChoice) (v *types.Vote, err error) {
	err = db.apply(func(s *State) error {
		v, err = s.CastVote(voter, proposal, choice)
		return err
	})
	return
}

func (db *StateDB) Delegate(delegator, proposal, delegatee uint64) (d *types.Delegation, err error) {
	err = db.apply(func(s *State) error {
		d, err = s.Delegate(delegator, proposal, delegatee)
		return err
	})
	return
}

func (db *StateDB) RevokeDelegation(user, delegation uint64) (d *types.Delegation, err error) {
	err = db.apply(func(s *State) error {
		d, err = s.RevokeDelegation(user, delegation)
		return err
	})
	return
}

func (db *StateDB) PostComment(author, proposal uint64, content string) (c *types.Comment, err error) {
	err = db.apply(func(s *State) error {
		c, err = s.PostComment(author, proposal, content)
		return err
	})
	return
}

func (db *StateDB) VoteOnComment(voter, comment uint64, choice types.CommentVoteChoice) (c *types.Comment, err error) {
	err = db.apply(func(s *State) error {
		c, err = s.VoteOnComment(voter, comment, choice)
		return err
	})
	return
}

func (db *StateDB) IntegrateComment(actor, comment uint64) (c *types.Comment, err error) {
	err = db.apply(func(s *State) error {
		c, err = s.IntegrateComment(actor, comment)
		return err
	})
	return
}

func (db *StateDB) GetUser(idx uint64) (*types.User, error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.state.getUser(idx)
}

func (db *StateDB) FindUserByUsername(username string) (*types.User, error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	idx, ok, err := db.state.findUserIdx(username)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	return db.state.getUser(idx)
}

func (db *StateDB) GetProposal(idx uint64) (*types.Proposal, error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.state.getProposal(idx)
}

func (db *StateDB) GetQuizByProposal(proposal uint64) (*types.Quiz, error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	quiz, err := db.state.getQuizByProposal(proposal)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrQuizNotFound
	}
	return quiz, nil
}

func (db *StateDB) GetComment(idx uint64) (*types.Comment, error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.state.getComment(idx)
}

func (db *StateDB) GetDelegation(idx uint64) (*types.Delegation, error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.state.getDelegation(idx)
}

func (db *StateDB) GetVote(idx uint64) (*types.Vote, error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.state.getVote(idx)
}

func (db *StateDB) GetLedgerEntry(idx uint64) (*types.LedgerEntry, error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.state.getLedgerEntry(idx)
}

// Balances returns the materialized wallet for a user.
func (db *StateDB) Balances(user uint64) (acent, dcent uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	u, err := db.state.getUser(user)
	if err != nil {
		return 0, 0, err
	}
	return u.AcentBalance, u.DcentBalance, nil
}

// AuditHash digests the last saved tree root. Any divergence between
// two replicas of the ledger shows up here.
func (db *StateDB) AuditHash() common.Hash {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	h := db.db.Hash()
	if h == nil {
		return common.Hash{}
	}
	return crypto.Keccak256Hash(h)
}
