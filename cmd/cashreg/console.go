package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/cashreg/currency"
	"github.com/temoto/cashreg/log2"
	"github.com/temoto/cashreg/register"
)

const usage = `commands:
- pay PRICE ELEM[:N]...  sell for PRICE (e.g. 17.60) paid with elements, N defaults to 1
- till                   show register holdings
- help                   this text
- quit
elements: 500EUR 200EUR 100EUR 50EUR 20EUR 10EUR 5EUR 2EUR 1EUR 50c 20c 10c 5c 2c 1c
`

type console struct {
	alive *alive.Alive
	log   *log2.Log
	reg   *register.Register
	out   io.Writer
	// failed counts errors reported to operator
	failed int
}

func newConsole(a *alive.Alive, log *log2.Log, reg *register.Register, out io.Writer) *console {
	self := &console{alive: a, log: log, reg: reg, out: out}
	log.SetErrorFunc(func(error) { self.failed++ })
	return self
}

func (self *console) exec(line string) {
	if err := self.run(line); err != nil {
		if register.IsBusinessError(err) {
			fmt.Fprintf(self.out, "%s\n", errors.Cause(err))
			self.log.Debugf("%v", err)
			return
		}
		self.log.Error(errors.ErrorStack(err))
	}
}

func (self *console) run(line string) error {
	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}
	switch words[0] {
	case "help":
		fmt.Fprint(self.out, usage)
	case "quit", "exit":
		self.alive.Stop()
	case "till":
		h := self.reg.Holdings()
		fmt.Fprintf(self.out, "till %s %s\n", currency.Unit, h)
	case "pay":
		if len(words) < 2 {
			return errors.NotValidf("pay without price")
		}
		price, err := currency.ParseAmount(words[1])
		if err != nil {
			return errors.Annotate(err, "pay price")
		}
		paid, err := parsePayment(words[2:])
		if err != nil {
			return errors.Annotate(err, "pay")
		}
		change, err := self.reg.PerformTransaction(price, paid)
		if err != nil {
			return err
		}
		fmt.Fprintf(self.out, "change %s %s\n", currency.Unit, change)
	default:
		return errors.NotValidf("command=%s", words[0])
	}
	return nil
}

// parsePayment reads words like "20EUR", "50c:3".
func parsePayment(words []string) (*currency.Inventory, error) {
	paid := currency.NewInventory()
	for _, word := range words {
		name, countStr := word, ""
		if i := strings.IndexByte(word, ':'); i >= 0 {
			name, countStr = word[:i], word[i+1:]
		}
		e, err := currency.ParseElement(name)
		if err != nil {
			return nil, err
		}
		count := uint64(1)
		if countStr != "" {
			count, err = strconv.ParseUint(countStr, 10, 32)
			if err != nil {
				return nil, errors.Annotatef(err, "word=%s", word)
			}
		}
		paid.Add(e, uint(count))
	}
	return paid, nil
}

func (self *console) complete(d prompt.Document) []prompt.Suggest {
	var suggests []prompt.Suggest
	if strings.Contains(d.TextBeforeCursor(), " ") {
		all := currency.AllElements()
		suggests = make([]prompt.Suggest, 0, len(all))
		for _, e := range all {
			suggests = append(suggests, prompt.Suggest{Text: e.String(), Description: e.Kind().String()})
		}
	} else {
		suggests = []prompt.Suggest{
			{Text: "pay", Description: "sell"},
			{Text: "till", Description: "show holdings"},
			{Text: "help"},
			{Text: "quit"},
		}
	}
	return prompt.FilterHasPrefix(suggests, d.GetWordBeforeCursor(), true)
}
