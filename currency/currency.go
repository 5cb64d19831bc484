package currency

import (
	"fmt"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/shopspring/decimal"
	textcurrency "golang.org/x/text/currency"
)

// Amount is integer counting lowest currency unit, e.g. 1.20 EUR = 120
type Amount int64

func (self Amount) Format100I() string {
	scale, _ := textcurrency.Standard.Rounding(Unit)
	return decimal.New(int64(self), -int32(scale)).StringFixed(int32(scale))
}

// ParseAmount reads major units ("17.60") into minor units.
// Values not representable in whole minor units are rejected.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Annotatef(err, "amount=%s", s)
	}
	scale, _ := textcurrency.Standard.Rounding(Unit)
	minor := d.Shift(int32(scale))
	if !minor.IsInteger() {
		return 0, errors.NotValidf("amount=%s finer than minor unit", s)
	}
	if !minor.BigInt().IsInt64() {
		return 0, errors.NotValidf("amount=%s out of range", s)
	}
	return Amount(minor.IntPart()), nil
}

var (
	ErrElementInvalid = errors.New("Element is not in catalog")
	ErrElementCount   = errors.New("Not enough elements for this amount")
)

// Inventory operates money comprised of multiple elements, like coins or bills.
// 1EUR : 3
// 50c  : 1
// 10c  : 4
// total: 3.90
type Inventory struct {
	values map[Element]uint
}

func NewInventory() *Inventory {
	return &Inventory{values: make(map[Element]uint)}
}

// None is empty change.
func None() *Inventory { return NewInventory() }

func InventoryOf(counts map[Element]uint) *Inventory {
	self := NewInventory()
	for e, c := range counts {
		self.Add(e, c)
	}
	return self
}

func (self *Inventory) Copy() *Inventory {
	inv2 := &Inventory{
		values: make(map[Element]uint, len(self.values)),
	}
	for k, v := range self.values {
		inv2.values[k] = v
	}
	return inv2
}

func (self *Inventory) Add(e Element, count uint) {
	if !e.Valid() {
		panic(fmt.Sprintf("code error Inventory.Add(e=%d) %v", e, ErrElementInvalid))
	}
	if count == 0 {
		return
	}
	if self.values == nil {
		self.values = make(map[Element]uint)
	}
	self.values[e] += count
}

func (self *Inventory) AddFrom(source *Inventory) {
	for e, c := range source.values {
		self.Add(e, c)
	}
}

// Remove fails without change when stored count is less than count.
func (self *Inventory) Remove(e Element, count uint) error {
	stored := self.values[e]
	if stored < count {
		return errors.Annotatef(ErrElementCount, "Remove(e=%s, c=%d) stored=%d", e, count, stored)
	}
	if stored == count {
		delete(self.values, e)
	} else {
		self.values[e] = stored - count
	}
	return nil
}

func (self *Inventory) Get(e Element) uint { return self.values[e] }

// Elements with non-zero count, highest value first.
func (self *Inventory) Elements() []Element {
	es := make([]Element, 0, len(self.values))
	for e, c := range self.values {
		if c > 0 {
			es = append(es, e)
		}
	}
	sort.Slice(es, func(i, j int) bool { return es[i].Value() > es[j].Value() })
	return es
}

func (self *Inventory) Len() int { return len(self.Elements()) }

func (self *Inventory) Total() Amount {
	sum := Amount(0)
	for e, count := range self.values {
		sum += e.Value() * Amount(count)
	}
	return sum
}

// Equal treats nil as empty.
func (self *Inventory) Equal(other *Inventory) bool {
	if other == nil {
		return self.Len() == 0
	}
	es := self.Elements()
	if len(es) != other.Len() {
		return false
	}
	for _, e := range es {
		if self.values[e] != other.Get(e) {
			return false
		}
	}
	return true
}

func (self *Inventory) String() string {
	es := self.Elements()
	parts := make([]string, 0, len(es)+1)
	for _, e := range es {
		parts = append(parts, fmt.Sprintf("%s:%d", e, self.values[e]))
	}
	parts = append(parts, "total:"+self.Total().Format100I())
	return strings.Join(parts, ",")
}

// Expend moves amount from self into `to` in a single pass over order,
// taking as many of each element as fits the remainder.
// This is greedy: with limited counts or a non-canonical order it may fail
// even though another combination exists. On error self is partially drained,
// so callers expend from a copy.
func (self *Inventory) Expend(to *Inventory, amount Amount, order []Element) error {
	remaining := amount
	for _, e := range order {
		if remaining <= 0 {
			break
		}
		value := e.Value()
		if value <= 0 {
			panic(fmt.Sprintf("code error Expend order contains invalid element=%d", e))
		}
		take := uint(remaining / value)
		if stored := self.values[e]; stored < take {
			take = stored
		}
		if take == 0 {
			continue
		}
		if err := self.Remove(e, take); err != nil {
			return errors.Trace(err)
		}
		if to != nil {
			to.Add(e, take)
		}
		remaining -= value * Amount(take)
	}
	if remaining != 0 {
		return errors.Annotatef(ErrElementCount, "expend amount=%s remaining=%s", amount.Format100I(), remaining.Format100I())
	}
	return nil
}
