package state

import (
	"fmt"

	"github.com/civicore/civ-app/types"
)

// appendLedger writes one append-only ledger entry. The entry lands in
// the same tree version as the balance mutation it records, so the
// audit trail can never drift from the wallet.
func (s *State) appendLedger(user uint64, amount int64, currency types.Currency, txnType types.TxnType, related uint64, kind types.EntityKind, desc string) (*types.LedgerEntry, error) {
	s.header.LedgerIdx++
	entry := &types.LedgerEntry{
		Index:         s.header.LedgerIdx,
		User:          user,
		Amount:        amount,
		Currency:      currency,
		Type:          txnType,
		RelatedEntity: related,
		EntityKind:    kind,
		Description:   desc,
		CreatedAt:     s.now().Unix(),
	}
	if err := s.putJSON(fmt.Sprintf(KeyLedgerBody, entry.Index), entry); err != nil {
		return nil, err
	}
	s.emit(types.EventLedgerEntry{Entry: *entry})
	return entry, nil
}

// getLedgerEntry is used by audits and tests; history queries go
// through the indexer.
func (s *State) getLedgerEntry(idx uint64) (*types.LedgerEntry, error) {
	e := new(types.LedgerEntry)
	ok, err := s.getJSON(fmt.Sprintf(KeyLedgerBody, idx), e)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("ledger entry %v not found", idx)
	}
	return e, nil
}
