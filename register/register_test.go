package register

import (
	"math/rand"
	"testing"
	"testing/quick"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/cashreg/currency"
	"github.com/temoto/cashreg/log2"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type inv = map[currency.Element]uint

func fullTill() *currency.Inventory {
	return currency.InventoryOf(inv{
		currency.TenEuro:    1,
		currency.FiveEuro:   1,
		currency.TwoEuro:    2,
		currency.OneEuro:    2,
		currency.FiftyCent:  3,
		currency.TwentyCent: 10,
		currency.TenCent:    20,
	})
}

func TestPerformTransaction(t *testing.T) {
	t.Parallel()

	type Case struct {
		name         string
		till         *currency.Inventory
		price        currency.Amount
		paid         *currency.Inventory
		expectChange inv
		expectTill   inv
		expectErr    error
	}
	cases := []Case{
		{name: "exact-payment",
			till:         currency.InventoryOf(inv{currency.TenEuro: 1, currency.OneEuro: 1}),
			price:        1000,
			paid:         currency.InventoryOf(inv{currency.TenEuro: 1}),
			expectChange: inv{},
			expectTill:   inv{currency.TenEuro: 2, currency.OneEuro: 1},
		},
		{name: "change-240",
			till:         fullTill(),
			price:        1760,
			paid:         currency.InventoryOf(inv{currency.TwentyEuro: 1}),
			expectChange: inv{currency.TwoEuro: 1, currency.TwentyCent: 2},
			expectTill: inv{
				currency.TwentyEuro: 1, currency.TenEuro: 1, currency.FiveEuro: 1, currency.TwoEuro: 1,
				currency.OneEuro: 2, currency.FiftyCent: 3, currency.TwentyCent: 8, currency.TenCent: 20,
			},
		},
		{name: "change-840",
			till:         fullTill(),
			price:        1160,
			paid:         currency.InventoryOf(inv{currency.TwentyEuro: 1}),
			expectChange: inv{currency.FiveEuro: 1, currency.TwoEuro: 1, currency.OneEuro: 1, currency.TwentyCent: 2},
		},
		{name: "change-from-payment",
			till:         currency.NewInventory(),
			price:        150,
			paid:         currency.InventoryOf(inv{currency.OneEuro: 1, currency.FiftyCent: 3}),
			expectChange: inv{currency.OneEuro: 1},
			expectTill:   inv{currency.FiftyCent: 3},
		},
		{name: "not-enough-change",
			till:      currency.InventoryOf(inv{currency.TenEuro: 1, currency.FiftyCent: 1, currency.TenCent: 1}),
			price:     1760,
			paid:      currency.InventoryOf(inv{currency.TwentyEuro: 1}),
			expectErr: ErrNotEnoughChange,
		},
		{name: "insufficient-payment",
			till:      fullTill(),
			price:     1160,
			paid:      currency.InventoryOf(inv{currency.TenEuro: 1}),
			expectErr: ErrInsufficientPayment,
		},
		{name: "zero-payment",
			till:      currency.InventoryOf(inv{currency.TenEuro: 1}),
			price:     1000,
			paid:      currency.NewInventory(),
			expectErr: ErrInsufficientPayment,
		},
		{name: "nil-payment",
			till:      currency.InventoryOf(inv{currency.TenEuro: 1}),
			price:     1000,
			paid:      nil,
			expectErr: ErrInsufficientPayment,
		},
		{name: "zero-price",
			till:      currency.InventoryOf(inv{currency.TenEuro: 1, currency.FiftyCent: 1, currency.TenCent: 1}),
			price:     0,
			paid:      currency.InventoryOf(inv{currency.TwentyEuro: 1}),
			expectErr: ErrInvalidPrice,
		},
		{name: "negative-price",
			till:      fullTill(),
			price:     -100,
			paid:      currency.InventoryOf(inv{currency.TwentyEuro: 1}),
			expectErr: ErrInvalidPrice,
		},
		{name: "invalid-price-before-payment-check",
			till:      fullTill(),
			price:     0,
			paid:      currency.NewInventory(),
			expectErr: ErrInvalidPrice,
		},
		// 60 is 3x20c, but greedy takes 50c first and is left with 10
		{name: "greedy-limitation",
			till:      currency.InventoryOf(inv{currency.FiftyCent: 1, currency.TwentyCent: 3}),
			price:     40,
			paid:      currency.InventoryOf(inv{currency.OneEuro: 1}),
			expectErr: ErrNotEnoughChange,
		},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			log := log2.NewTest(t, log2.LDebug)
			r := New(c.till, log)
			before := r.Holdings()
			var paidTotal currency.Amount
			if c.paid != nil {
				paidTotal = c.paid.Total()
			}

			change, err := r.PerformTransaction(c.price, c.paid)
			if c.expectErr != nil {
				require.Error(t, err)
				assert.Equal(t, c.expectErr, errors.Cause(err))
				assert.True(t, IsBusinessError(err))
				assert.Nil(t, change)
				assert.True(t, before.Equal(r.Holdings()), "holdings changed: before=%s after=%s", before, r.Holdings())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, paidTotal, change.Total()+c.price)
			assert.Equal(t, before.Total()+c.price, r.Total())
			assert.True(t, currency.InventoryOf(c.expectChange).Equal(change), "change=%s", change)
			if c.expectTill != nil {
				assert.True(t, currency.InventoryOf(c.expectTill).Equal(r.Holdings()), "till=%s", r.Holdings())
			}
		})
	}
}

func TestOwnership(t *testing.T) {
	t.Parallel()

	initial := currency.InventoryOf(inv{currency.TenEuro: 1})
	r := New(initial, nil)
	initial.Add(currency.TenEuro, 5)
	assert.Equal(t, currency.Amount(1000), r.Total())

	h := r.Holdings()
	h.Add(currency.FiveHundredEuro, 1)
	assert.Equal(t, currency.Amount(1000), r.Total())

	paid := currency.InventoryOf(inv{currency.TwentyEuro: 1})
	change, err := r.PerformTransaction(1000, paid)
	require.NoError(t, err)
	assert.Equal(t, currency.Amount(2000), paid.Total(), "payment must not be consumed")
	change.Add(currency.FiveHundredEuro, 1)
	assert.Equal(t, currency.Amount(2000), r.Total())

	assert.Equal(t, currency.Amount(0), New(nil, nil).Total())
}

func TestSequentialTransactions(t *testing.T) {
	t.Parallel()

	r := New(currency.InventoryOf(inv{currency.OneEuro: 2}), log2.NewTest(t, log2.LDebug))
	// first sale leaves no coins for the second
	change, err := r.PerformTransaction(300, currency.InventoryOf(inv{currency.FiveEuro: 1}))
	require.NoError(t, err)
	assert.True(t, currency.InventoryOf(inv{currency.OneEuro: 2}).Equal(change))

	_, err = r.PerformTransaction(300, currency.InventoryOf(inv{currency.FiveEuro: 1}))
	assert.Equal(t, ErrNotEnoughChange, errors.Cause(err))
	assert.True(t, currency.InventoryOf(inv{currency.FiveEuro: 1}).Equal(r.Holdings()))

	change, err = r.PerformTransaction(300, currency.InventoryOf(inv{currency.TwoEuro: 4}))
	require.NoError(t, err)
	assert.True(t, currency.InventoryOf(inv{currency.FiveEuro: 1}).Equal(change), "change=%s", change)
	assert.True(t, currency.InventoryOf(inv{currency.TwoEuro: 4}).Equal(r.Holdings()))
}

func TestLargeValues(t *testing.T) {
	t.Parallel()

	r := New(currency.InventoryOf(inv{currency.FiveHundredEuro: 1_000_000}), nil)
	price := currency.Amount(400_000_000 * 100)
	paid := currency.InventoryOf(inv{currency.FiveHundredEuro: 2_000_000})

	change, err := r.PerformTransaction(price, paid)
	require.NoError(t, err)
	assert.Greater(t, int64(change.Total()), int64(0))
	assert.Equal(t, currency.Amount(60_000_000_000), change.Total())
	assert.Equal(t, uint(1_200_000), change.Get(currency.FiveHundredEuro))
	assert.Equal(t, currency.Amount(90_000_000_000), r.Total())
}

func TestBusinessErrorSet(t *testing.T) {
	t.Parallel()

	assert.True(t, IsBusinessError(ErrInvalidPrice))
	assert.True(t, IsBusinessError(errors.Annotate(ErrNotEnoughChange, "wrapped")))
	assert.False(t, IsBusinessError(nil))
	assert.False(t, IsBusinessError(currency.ErrElementCount))
	assert.False(t, IsBusinessError(errors.New("other")))
}

func randomInventory(rnd *rand.Rand, maxCount int) *currency.Inventory {
	result := currency.NewInventory()
	for _, e := range currency.AllElements() {
		if rnd.Intn(3) == 0 {
			result.Add(e, uint(rnd.Intn(maxCount+1)))
		}
	}
	return result
}

func TestTransactionProperties(t *testing.T) {
	t.Parallel()

	f := func(seed int64, priceRaw uint32) bool {
		rnd := rand.New(rand.NewSource(seed))
		till := randomInventory(rnd, 5)
		paid := randomInventory(rnd, 3)
		price := currency.Amount(int64(priceRaw%uint32(paid.Total()+200)) - 100)

		r1 := New(till, nil)
		r2 := New(till, nil)
		before := r1.Holdings()
		change1, err1 := r1.PerformTransaction(price, paid)
		change2, err2 := r2.PerformTransaction(price, paid)

		switch {
		case price <= 0:
			if !assert.Equal(t, ErrInvalidPrice, errors.Cause(err1)) {
				return false
			}
		case paid.Total() < price:
			if !assert.Equal(t, ErrInsufficientPayment, errors.Cause(err1)) {
				return false
			}
		case err1 != nil:
			if !assert.Equal(t, ErrNotEnoughChange, errors.Cause(err1)) {
				return false
			}
		}
		if err1 != nil {
			return assert.Equal(t, errors.Cause(err1), errors.Cause(err2)) &&
				assert.True(t, before.Equal(r1.Holdings()))
		}
		return assert.NoError(t, err2) &&
			assert.Equal(t, paid.Total(), change1.Total()+price) &&
			assert.Equal(t, before.Total()+price, r1.Total()) &&
			assert.True(t, change1.Equal(change2), "determinism change1=%s change2=%s", change1, change2) &&
			assert.True(t, r1.Holdings().Equal(r2.Holdings()))
	}
	assert.NoError(t, quick.Check(f, &quick.Config{MaxCount: 5000}))
}
