package currency

import (
	"strings"

	"github.com/juju/errors"
	textcurrency "golang.org/x/text/currency"
)

// Unit is the only currency known to the catalog.
var Unit = textcurrency.EUR

type Kind uint8

const (
	KindInvalid Kind = iota
	KindBill
	KindCoin
)

func (k Kind) String() string {
	switch k {
	case KindBill:
		return "bill"
	case KindCoin:
		return "coin"
	default:
		return "invalid"
	}
}

// Element is one bill or coin of the catalog.
// Constants are declared in descending value order.
type Element uint8

const (
	ElementInvalid Element = iota
	FiveHundredEuro
	TwoHundredEuro
	HundredEuro
	FiftyEuro
	TwentyEuro
	TenEuro
	FiveEuro
	TwoEuro
	OneEuro
	FiftyCent
	TwentyCent
	TenCent
	FiveCent
	TwoCent
	OneCent
	elementEnd
)

type elementInfo struct {
	kind  Kind
	value Amount
	name  string
}

var elementTable = [elementEnd]elementInfo{
	ElementInvalid:  {KindInvalid, 0, "invalid"},
	FiveHundredEuro: {KindBill, 50000, "500EUR"},
	TwoHundredEuro:  {KindBill, 20000, "200EUR"},
	HundredEuro:     {KindBill, 10000, "100EUR"},
	FiftyEuro:       {KindBill, 5000, "50EUR"},
	TwentyEuro:      {KindBill, 2000, "20EUR"},
	TenEuro:         {KindBill, 1000, "10EUR"},
	FiveEuro:        {KindBill, 500, "5EUR"},
	TwoEuro:         {KindCoin, 200, "2EUR"},
	OneEuro:         {KindCoin, 100, "1EUR"},
	FiftyCent:       {KindCoin, 50, "50c"},
	TwentyCent:      {KindCoin, 20, "20c"},
	TenCent:         {KindCoin, 10, "10c"},
	FiveCent:        {KindCoin, 5, "5c"},
	TwoCent:         {KindCoin, 2, "2c"},
	OneCent:         {KindCoin, 1, "1c"},
}

func (e Element) Valid() bool { return e > ElementInvalid && e < elementEnd }

func (e Element) info() elementInfo {
	if !e.Valid() {
		return elementTable[ElementInvalid]
	}
	return elementTable[e]
}

// Value in minor units, 0 for invalid element.
func (e Element) Value() Amount  { return e.info().value }
func (e Element) Kind() Kind     { return e.info().kind }
func (e Element) String() string { return e.info().name }

// AllElements returns every catalog element, highest value first.
func AllElements() []Element {
	all := make([]Element, 0, elementEnd-1)
	for e := ElementInvalid + 1; e < elementEnd; e++ {
		all = append(all, e)
	}
	return all
}

func ParseElement(name string) (Element, error) {
	for e := ElementInvalid + 1; e < elementEnd; e++ {
		if strings.EqualFold(elementTable[e].name, name) {
			return e, nil
		}
	}
	return ElementInvalid, errors.NotValidf("element name=%s", name)
}
