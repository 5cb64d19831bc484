// Package register executes cash transactions against till holdings.
//
// Change is computed by a single greedy pass over the catalog, highest value
// first, using register holdings plus the tendered payment. For the Euro
// catalog with unlimited counts the pass is optimal, but with limited counts
// it may report ErrNotEnoughChange although another combination exists.
// No backtracking is attempted.
//
// Register is not safe for concurrent use, callers serialize transactions.
package register

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/temoto/cashreg/currency"
	"github.com/temoto/cashreg/log2"
)

var (
	ErrInvalidPrice        = errors.New("Transaction failed: invalid price")
	ErrInsufficientPayment = errors.New("Transaction failed: insufficient payment")
	ErrNotEnoughChange     = errors.New("Transaction failed: cannot provide exact change")
)

// IsBusinessError reports whether err is one of the expected transaction failures.
func IsBusinessError(err error) bool {
	switch errors.Cause(err) {
	case ErrInvalidPrice, ErrInsufficientPayment, ErrNotEnoughChange:
		return true
	}
	return false
}

type Register struct {
	Log      *log2.Log
	holdings *currency.Inventory
}

// New copies initial, later changes to it do not affect the register.
func New(initial *currency.Inventory, log *log2.Log) *Register {
	holdings := currency.NewInventory()
	if initial != nil {
		holdings.AddFrom(initial)
	}
	return &Register{Log: log, holdings: holdings}
}

// Holdings returns a copy of current till contents.
func (self *Register) Holdings() *currency.Inventory { return self.holdings.Copy() }

func (self *Register) Total() currency.Amount { return self.holdings.Total() }

// PerformTransaction accepts paid for price and returns change.
// On error register holdings are not modified.
func (self *Register) PerformTransaction(price currency.Amount, paid *currency.Inventory) (*currency.Inventory, error) {
	if paid == nil {
		paid = currency.None()
	}
	paidTotal := paid.Total()
	if price <= 0 {
		return nil, self.fail(errors.Annotatef(ErrInvalidPrice, "price=%s", price.Format100I()))
	}
	if paidTotal < price {
		return nil, self.fail(errors.Annotatef(ErrInsufficientPayment, "price=%s paid=%s", price.Format100I(), paidTotal.Format100I()))
	}

	due := paidTotal - price
	if due == 0 {
		self.holdings.AddFrom(paid)
		self.Log.Infof("register transaction price=%s paid=%s change=none till=%s", price.Format100I(), paid, self.holdings.Total().Format100I())
		return currency.None(), nil
	}

	change, err := self.calculateChange(due, paid)
	if err != nil {
		return nil, self.fail(errors.Annotatef(err, "price=%s paid=%s", price.Format100I(), paid))
	}

	self.holdings.AddFrom(paid)
	for _, e := range change.Elements() {
		if err := self.holdings.Remove(e, change.Get(e)); err != nil {
			// change was computed from holdings+paid, so this is engine defect
			panic(fmt.Sprintf("code error register apply change=%s: %s", change, errors.ErrorStack(err)))
		}
	}
	self.Log.Infof("register transaction price=%s paid=%s change=%s till=%s", price.Format100I(), paid, change, self.holdings.Total().Format100I())
	return change, nil
}

// calculateChange works on temporary pool of holdings and paid,
// register holdings are only read.
func (self *Register) calculateChange(due currency.Amount, paid *currency.Inventory) (*currency.Inventory, error) {
	pool := self.holdings.Copy()
	pool.AddFrom(paid)
	change := currency.NewInventory()
	if err := pool.Expend(change, due, currency.AllElements()); err != nil {
		if errors.Cause(err) == currency.ErrElementCount {
			return nil, errors.Annotatef(ErrNotEnoughChange, "due=%s", due.Format100I())
		}
		return nil, errors.Trace(err)
	}
	return change, nil
}

func (self *Register) fail(err error) error {
	self.Log.Debugf("register %v", err)
	return err
}
