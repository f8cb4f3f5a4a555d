package state

import (
	"fmt"
	"strings"

	"github.com/civicore/civ-app/types"
	"github.com/ethereum/go-ethereum/rlp"
)

// RegisterUser creates the wallet entity for an identity established
// upstream. New users start with 1 Acent and 0 Dcent.
func (s *State) RegisterUser(username, name string, location types.Location) (*types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if location.City == "" || location.Country == "" {
		return nil, fmt.Errorf("%w: location city and country are required", ErrValidation)
	}
	_, taken, err := s.findUserIdx(username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	s.header.UserIdx++
	u := &types.User{
		Index:         s.header.UserIdx,
		Username:      username,
		Name:          name,
		Location:      location,
		AcentBalance:  StartAcentBalance,
		DcentBalance:  0,
		PassedQuizzes: make(map[uint64]bool),
		CreatedAt:     s.now().Unix(),
	}
	if err := s.putUser(u); err != nil {
		return nil, err
	}
	idxVal, err := rlp.EncodeToBytes(u.Index)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Set([]byte(fmt.Sprintf(KeyUserIndex, username)), idxVal); err != nil {
		return nil, err
	}
	s.emit(types.EventUserRegistered{User: *u})
	return u, nil
}
