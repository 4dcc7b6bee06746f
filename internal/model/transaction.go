package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Transaction represents a single purchase awaiting a round-up decision.
type Transaction struct {
	Date         time.Time
	ID           string
	MerchantName string // Raw merchant descriptor from the card network
	UserHint     string // Optional user-supplied ticker hint
	AccountID    string
	AccountType  AccountType
	TierLevel    int
	Amount       float64 // Purchase amount
	RoundUp      float64 // Spare-change amount destined for investment
	Retailer     *Retailer
	Items        []Item
	Signals      BehaviorSignals
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.MerchantName,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
