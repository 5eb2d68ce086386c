package cart

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func price(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func menuItem(id, p string) *domain.MenuItem {
	return &domain.MenuItem{ID: id, Name: "item " + id, Price: dec(p), IsActive: true}
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestAddItem_SamePriceMerges(t *testing.T) {
	m := menuItem("m1", "100")
	c := New().AddItem(m, nil, 1).AddItem(m, nil, 1)

	require.Equal(t, 1, c.Len())
	line := c.Items()[0]
	assert.Equal(t, 2, line.Quantity)
	assertDec(t, "200", line.LineTotal())
}

func TestAddItem_DifferentPriceSplits(t *testing.T) {
	m := menuItem("m1", "100")
	c := New().AddItem(m, nil, 1).AddItem(m, price("80"), 1)

	require.Equal(t, 2, c.Len())
	for _, line := range c.Items() {
		assert.Equal(t, 1, line.Quantity)
	}
	assertDec(t, "180", c.Totals().Subtotal)
}

func TestAddItem_OverrideEqualToCatalogMerges(t *testing.T) {
	m := menuItem("m1", "100")
	c := New().AddItem(m, nil, 1).AddItem(m, price("100.00"), 3)

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 4, c.Items()[0].Quantity)
}

func TestAddItem_QuantityCoercion(t *testing.T) {
	m := menuItem("m1", "10")
	for _, qty := range []int{0, -3} {
		c := New().AddItem(m, nil, qty)
		assert.Equal(t, 1, c.Items()[0].Quantity, "qty %d", qty)
	}
	c := New().AddItem(m, nil, 5)
	assert.Equal(t, 5, c.Items()[0].Quantity)
}

func TestAddItem_NilItemIsNoop(t *testing.T) {
	c := New().AddItem(nil, nil, 1)
	assert.True(t, c.IsEmpty())
}

func TestAddItem_SnapshotsNameAndCost(t *testing.T) {
	cost := dec("40")
	m := &domain.MenuItem{ID: "m1", Name: "ผัดไทย", Price: dec("100"), CostDefault: &cost}
	c := New().AddItem(m, nil, 1)

	m.Name = "renamed"
	line := c.Items()[0]
	assert.Equal(t, "ผัดไทย", line.Name)
	assertDec(t, "40", line.Cost)
}

func TestAddItem_DoesNotMutateReceiver(t *testing.T) {
	m := menuItem("m1", "100")
	before := New().AddItem(m, nil, 1)
	after := before.AddItem(m, nil, 1)

	assert.Equal(t, 1, before.Items()[0].Quantity)
	assert.Equal(t, 2, after.Items()[0].Quantity)
}

func TestQuantity_StopsAtMax(t *testing.T) {
	m := menuItem("m1", "100")

	c := New().AddItem(m, nil, math.MaxInt).AddItem(m, nil, 1)
	line := c.Items()[0]
	assert.Equal(t, MaxQuantity, line.Quantity)
	assertDec(t, "999900", c.Totals().Subtotal)

	c = c.ChangeQuantity(line.LineID, Increase)
	assert.Equal(t, MaxQuantity, c.Items()[0].Quantity)

	c = New().AddItem(m, nil, MaxQuantity-1).AddItem(m, nil, 5)
	assert.Equal(t, MaxQuantity, c.Items()[0].Quantity)
}

func TestChangeQuantity(t *testing.T) {
	m := menuItem("m1", "50")
	c := New().AddItem(m, nil, 1)
	id := c.Items()[0].LineID

	c = c.ChangeQuantity(id, Increase)
	assert.Equal(t, 2, c.Items()[0].Quantity)
	assertDec(t, "100", c.Totals().Subtotal)

	c = c.ChangeQuantity(id, Decrease)
	assert.Equal(t, 1, c.Items()[0].Quantity)

	c = c.ChangeQuantity(id, Decrease)
	assert.True(t, c.IsEmpty())
}

func TestChangeQuantity_UnknownLineIsNoop(t *testing.T) {
	c := New().AddItem(menuItem("m1", "50"), nil, 1)
	assert.Equal(t, c.Items(), c.ChangeQuantity("nope", Increase).Items())
}

func TestAdjustLinePrice(t *testing.T) {
	c := New().AddItem(menuItem("m1", "30"), nil, 2)
	id := c.Items()[0].LineID

	c = c.AdjustLinePrice(id, dec("5"))
	assertDec(t, "35", c.Items()[0].UnitPrice)
	assertDec(t, "70", c.Items()[0].LineTotal())

	c = c.AdjustLinePrice(id, dec("-100"))
	assertDec(t, "0", c.Items()[0].UnitPrice)
	assertDec(t, "0", c.Totals().Subtotal)
	assert.Equal(t, id, c.Items()[0].LineID)
}

func TestDiscount_Percent(t *testing.T) {
	c := New().AddItem(menuItem("m1", "200"), nil, 1).SetDiscount(DiscountPercent, "10")
	totals := c.Totals()
	assertDec(t, "20", totals.DiscountValue)
	assertDec(t, "180", totals.GrandTotal)
}

func TestDiscount_ClampedToSubtotal(t *testing.T) {
	base := New().AddItem(menuItem("m1", "100"), nil, 1)

	totals := base.SetDiscount(DiscountAmount, "500").Totals()
	assertDec(t, "100", totals.DiscountValue)
	assertDec(t, "0", totals.GrandTotal)

	totals = base.SetDiscount(DiscountPercent, "150").Totals()
	assertDec(t, "100", totals.DiscountValue)

	totals = base.SetDiscount(DiscountAmount, "-30").Totals()
	assertDec(t, "0", totals.DiscountValue)
	assertDec(t, "100", totals.GrandTotal)
}

func TestAdjustments_OverflowingInput(t *testing.T) {
	base := New().AddItem(menuItem("m1", "100"), nil, 1)

	done := make(chan Totals, 3)
	go func() {
		done <- base.SetDiscount(DiscountAmount, "1e300000000").Totals()
		done <- base.SetDiscount(DiscountPercent, "1e300000000").Totals()
		done <- base.SetExtraFee("1e300000000").Totals()
	}()

	want := []struct{ discount, fee, grand string }{
		{"100", "0", "0"},
		{"100", "0", "0"},
		{"0", "0", "100"},
	}
	for _, w := range want {
		select {
		case totals := <-done:
			assertDec(t, w.discount, totals.DiscountValue)
			assertDec(t, w.fee, totals.ExtraFee)
			assertDec(t, w.grand, totals.GrandTotal)
		case <-time.After(5 * time.Second):
			t.Fatal("totals did not return for an overflowing input")
		}
	}

	totals := base.SetDiscount(DiscountAmount, "-1e999").Totals()
	assertDec(t, "0", totals.DiscountValue)
	assertDec(t, "100", totals.GrandTotal)
}

func TestAdjustments_KeepRawInput(t *testing.T) {
	c := New().AddItem(menuItem("m1", "100"), nil, 1).SetDiscountInput("1.").SetExtraFee("abc")

	assert.Equal(t, "1.", c.DiscountInput())
	assert.Equal(t, "abc", c.ExtraFeeInput())
	totals := c.Totals()
	assertDec(t, "1", totals.DiscountValue)
	assertDec(t, "0", totals.ExtraFee)
	assertDec(t, "99", totals.GrandTotal)
}

func TestExtraFee_NegativeIgnored(t *testing.T) {
	totals := New().AddItem(menuItem("m1", "100"), nil, 1).SetExtraFee("-20").Totals()
	assertDec(t, "0", totals.ExtraFee)
	assertDec(t, "100", totals.GrandTotal)
}

func TestClear_AlwaysEmpty(t *testing.T) {
	dirty := New().
		AddItem(menuItem("m1", "100"), nil, 3).
		SetDiscount(DiscountPercent, "15").
		SetExtraFee("40")

	for _, c := range []Cart{dirty.Clear(), New().Clear(), {}} {
		c = c.Clear()
		totals := c.Totals()
		assert.True(t, c.IsEmpty())
		assert.Equal(t, DiscountAmount, c.DiscountMode())
		assert.Equal(t, "0", c.DiscountInput())
		assert.Equal(t, "0", c.ExtraFeeInput())
		assertDec(t, "0", totals.Subtotal)
		assertDec(t, "0", totals.DiscountValue)
		assertDec(t, "0", totals.ExtraFee)
		assertDec(t, "0", totals.GrandTotal)
	}
}

func TestScenario_PercentDiscountAndFee(t *testing.T) {
	m := &domain.MenuItem{ID: "m1", Name: "m1", Price: dec("100")}
	c := New().AddItem(m, nil, 1).AddItem(m, nil, 1)

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Items()[0].Quantity)
	assertDec(t, "200", c.Items()[0].LineTotal())
	assertDec(t, "200", c.Totals().Subtotal)

	c = c.SetDiscount(DiscountPercent, "10")
	assertDec(t, "20", c.Totals().DiscountValue)
	assertDec(t, "180", c.Totals().GrandTotal)

	c = c.SetExtraFee("20")
	assertDec(t, "200", c.Totals().GrandTotal)
}

// Random operation sequences must keep the totals consistent with the lines.
func TestTotals_ConsistentUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	items := []*domain.MenuItem{menuItem("a", "35"), menuItem("b", "120.5"), menuItem("c", "0.25")}
	discounts := []string{"0", "10", "99999", "-5", "", "12.5", "abc"}

	for run := 0; run < 200; run++ {
		c := New()
		for step := 0; step < 40; step++ {
			switch rng.Intn(6) {
			case 0, 1:
				var p *decimal.Decimal
				if rng.Intn(2) == 0 {
					p = price(fmt.Sprintf("%d.%02d", rng.Intn(200), rng.Intn(100)))
				}
				c = c.AddItem(items[rng.Intn(len(items))], p, rng.Intn(4)-1)
			case 2:
				if c.Len() > 0 {
					dir := Increase
					if rng.Intn(2) == 0 {
						dir = Decrease
					}
					c = c.ChangeQuantity(c.Items()[rng.Intn(c.Len())].LineID, dir)
				}
			case 3:
				if c.Len() > 0 {
					delta := decimal.NewFromInt(int64(rng.Intn(80) - 40))
					c = c.AdjustLinePrice(c.Items()[rng.Intn(c.Len())].LineID, delta)
				}
			case 4:
				mode := DiscountAmount
				if rng.Intn(2) == 0 {
					mode = DiscountPercent
				}
				c = c.SetDiscount(mode, discounts[rng.Intn(len(discounts))])
			case 5:
				c = c.SetExtraFee(discounts[rng.Intn(len(discounts))])
			}

			totals := c.Totals()
			sum := decimal.Zero
			seen := map[string]bool{}
			for _, it := range c.Items() {
				require.GreaterOrEqual(t, it.Quantity, 1)
				require.False(t, it.UnitPrice.IsNegative())
				require.False(t, seen[it.LineID], "duplicate line %s", it.LineID)
				seen[it.LineID] = true
				sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
			}
			require.True(t, sum.Equal(totals.Subtotal))
			require.False(t, totals.DiscountValue.IsNegative())
			require.True(t, totals.DiscountValue.LessThanOrEqual(totals.Subtotal))
			require.False(t, totals.GrandTotal.IsNegative())
		}
	}
}

func TestSession_CurrentIsFrozen(t *testing.T) {
	s := NewSession()
	s.Apply(func(c Cart) Cart { return c.AddItem(menuItem("m1", "10"), nil, 1) })
	snap := s.Current()

	s.Apply(func(c Cart) Cart { return c.AddItem(menuItem("m1", "10"), nil, 1) })
	s.Reset()

	assert.Equal(t, 1, snap.Len())
	assert.Equal(t, 1, snap.Items()[0].Quantity)
	assert.True(t, s.Current().IsEmpty())
}

type menuMap map[string]*domain.MenuItem

func (m menuMap) Find(id string) (*domain.MenuItem, bool) {
	it, ok := m[id]
	return it, ok
}

func TestAddItemByID(t *testing.T) {
	menu := menuMap{"m1": menuItem("m1", "45")}

	c := New().AddItemByID(menu, "m1", nil, 2)
	require.Equal(t, 1, c.Len())
	assertDec(t, "90", c.Totals().Subtotal)

	assert.Equal(t, c.Items(), c.AddItemByID(menu, "missing", nil, 1).Items())
	assert.True(t, New().AddItemByID(nil, "m1", nil, 1).IsEmpty())
}

func TestSnapshot_IsDetached(t *testing.T) {
	c := New().AddItem(menuItem("m1", "100"), nil, 1).SetDiscount(DiscountPercent, "10")
	snap := c.Snapshot()

	snap.Items[0].Quantity = 99
	assert.Equal(t, 1, c.Items()[0].Quantity)
	assert.Equal(t, DiscountPercent, snap.DiscountMode)
	assertDec(t, "90", snap.GrandTotal)
}
