// Package checkout runs the payment flow of the till: choosing a payment
// method, validating cash, persisting the order and issuing its receipt.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_pos/internal/backend"
	"github.com/fjod/go_pos/internal/cart"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/money"
	"github.com/fjod/go_pos/internal/receipt"
	"github.com/fjod/go_pos/internal/repository"
	"github.com/fjod/go_pos/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Options struct {
	Cart     *cart.Session
	Counter  *OrderCounter
	Orders   backend.OrderAPI
	Receipts *ReceiptIssuer
	// Journal records orders whose receipt failed. nil only logs them.
	Journal   repository.Journal
	Shop      receipt.Shop
	BranchID  string
	CashierID string
	Log       *zap.Logger
}

// Result is the outcome of a confirmed checkout. ReceiptErr is a warning:
// the order is paid and saved even when it is set.
type Result struct {
	Order      *domain.Order
	Receipt    receipt.Snapshot
	ReceiptURL string
	ReceiptPNG []byte
	ReceiptErr error
}

// View is the payment dialog as the cashier sees it.
type View struct {
	Status         domain.CheckoutStatus  `json:"status"`
	OrderNo        string                 `json:"order_no"`
	Methods        []domain.PaymentMethod `json:"payment_methods"`
	SelectedMethod *domain.PaymentMethod  `json:"selected_method,omitempty"`
	IsCash         bool                   `json:"is_cash"`
	CashInput      string                 `json:"cash_received"`
	GrandTotal     decimal.Decimal        `json:"grand_total"`
	ExpectedChange decimal.Decimal        `json:"expected_change"`
	CashSufficient bool                   `json:"cash_sufficient"`
}

type Orchestrator struct {
	opts Options
	log  *zap.Logger

	mu         sync.Mutex
	status     domain.CheckoutStatus
	methods    []domain.PaymentMethod
	selectedID string
	cashInput  string
	last       *Result

	now   func() time.Time
	newID func() string
}

func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Counter == nil {
		opts.Counter = NewOrderCounter(1)
	}
	return &Orchestrator{
		opts:   opts,
		log:    opts.Log,
		status: domain.CheckoutStatusIdle,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

func (o *Orchestrator) Status() domain.CheckoutStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Busy reports whether an order is being submitted. The cart must not
// change meanwhile.
func (o *Orchestrator) Busy() bool {
	return o.Status().IsBusy()
}

// SetPaymentMethods replaces the known methods. A selection that is no
// longer known is caught when confirming.
func (o *Orchestrator) SetPaymentMethods(methods []domain.PaymentMethod) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.methods = append([]domain.PaymentMethod(nil), methods...)
}

func (o *Orchestrator) PaymentMethods() []domain.PaymentMethod {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.PaymentMethod(nil), o.methods...)
}

// View describes the dialog for the current cart.
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.viewLocked()
}

func (o *Orchestrator) viewLocked() View {
	grand := o.opts.Cart.Current().Totals().GrandTotal
	method := domain.FindPaymentMethod(o.methods, o.selectedID)
	v := View{
		Status:         o.status,
		OrderNo:        o.opts.Counter.Next(),
		Methods:        append([]domain.PaymentMethod(nil), o.methods...),
		SelectedMethod: method,
		IsCash:         domain.IsCash(method),
		CashInput:      o.cashInput,
		GrandTotal:     grand,
		ExpectedChange: decimal.Zero,
	}
	if v.IsCash {
		received, ok := parseCash(o.cashInput)
		v.CashSufficient = ok && received.GreaterThanOrEqual(grand)
		if ok {
			v.ExpectedChange = money.NonNegative(received.Sub(grand))
		}
	}
	return v
}

// Open starts the payment dialog with the first known method selected.
func (o *Orchestrator) Open() (View, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case o.status.IsBusy():
		return o.viewLocked(), ErrCheckoutInProgress
	case o.status == domain.CheckoutStatusMethodSelection:
		return o.viewLocked(), nil
	}
	if o.opts.Cart.Current().IsEmpty() {
		return o.viewLocked(), ErrEmptyCart
	}
	if err := o.transitionLocked(domain.CheckoutStatusMethodSelection); err != nil {
		return o.viewLocked(), err
	}
	o.selectedID = o.firstMethodIDLocked()
	o.cashInput = ""
	return o.viewLocked(), nil
}

func (o *Orchestrator) SelectMethod(id string) (View, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireDialogLocked(); err != nil {
		return o.viewLocked(), err
	}
	if domain.FindPaymentMethod(o.methods, id) == nil {
		return o.viewLocked(), ErrNoPaymentMethod
	}
	o.selectedID = id
	return o.viewLocked(), nil
}

// SetCashReceived stores the amount as typed by the cashier.
func (o *Orchestrator) SetCashReceived(raw string) (View, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireDialogLocked(); err != nil {
		return o.viewLocked(), err
	}
	o.cashInput = raw
	return o.viewLocked(), nil
}

// Cancel closes the dialog and leaves the cart as it is.
func (o *Orchestrator) Cancel() (View, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status == domain.CheckoutStatusIdle {
		return o.viewLocked(), nil
	}
	if err := o.requireDialogLocked(); err != nil {
		return o.viewLocked(), err
	}
	if err := o.transitionLocked(domain.CheckoutStatusIdle); err != nil {
		return o.viewLocked(), err
	}
	o.selectedID = o.firstMethodIDLocked()
	o.cashInput = ""
	return o.viewLocked(), nil
}

// Cart is the cart as it is now.
func (o *Orchestrator) Cart() cart.Cart {
	return o.opts.Cart.Current()
}

// EditCart applies op to the cart unless an order is being submitted.
func (o *Orchestrator) EditCart(op func(cart.Cart) cart.Cart) (cart.Cart, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status.IsBusy() {
		return o.opts.Cart.Current(), ErrCheckoutInProgress
	}
	return o.opts.Cart.Apply(op), nil
}

// LastResult is the most recent successful checkout, nil before the first.
func (o *Orchestrator) LastResult() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// Confirm validates the dialog, saves the order with its items and issues
// the receipt. Validation and persistence failures return an error and
// leave the cart and the counter alone. Receipt failures do not.
func (o *Orchestrator) Confirm(ctx context.Context) (*Result, error) {
	log := logger.With(ctx, o.log)

	o.mu.Lock()
	if o.status.IsBusy() {
		o.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	if o.status != domain.CheckoutStatusMethodSelection {
		o.mu.Unlock()
		return nil, ErrIllegalTransition
	}
	snap := o.opts.Cart.Current().Snapshot()
	method := domain.FindPaymentMethod(o.methods, o.selectedID)
	received, err := validate(snap, method, o.cashInput)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	order := o.buildOrder(snap, method, received)
	if err := o.transitionLocked(domain.CheckoutStatusSubmitting); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.mu.Unlock()

	log = log.With(zap.String("order_no", order.OrderNo))
	stored, err := o.persist(ctx, log, order, snap)
	if err != nil {
		o.setStatus(domain.CheckoutStatusMethodSelection)
		return nil, fmt.Errorf("%w: %w", ErrOrderNotPersisted, err)
	}

	o.mu.Lock()
	o.opts.Cart.Reset()
	o.cashInput = ""
	o.opts.Counter.Advance()
	_ = o.transitionLocked(domain.CheckoutStatusReceiptPending)
	o.mu.Unlock()
	log.Info("order saved", zap.String("order_id", stored.ID), zap.String("grand_total", stored.GrandTotal.String()))

	result := &Result{
		Order:   stored,
		Receipt: receipt.NewSnapshot(stored, snap, o.opts.Shop),
	}
	o.issueReceipt(context.WithoutCancel(ctx), log, result)

	o.mu.Lock()
	_ = o.transitionLocked(domain.CheckoutStatusIdle)
	o.selectedID = o.firstMethodIDLocked()
	o.last = result
	o.mu.Unlock()
	return result, nil
}

func validate(snap cart.Snapshot, method *domain.PaymentMethod, cashInput string) (*decimal.Decimal, error) {
	if len(snap.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if method == nil {
		return nil, ErrNoPaymentMethod
	}
	if !domain.IsCash(method) {
		return nil, nil
	}
	received, ok := parseCash(cashInput)
	if !ok || received.LessThan(snap.GrandTotal) {
		return nil, ErrInsufficientCash
	}
	return &received, nil
}

// parseCash reads the amount tendered. A blank field means nothing was
// handed over, which still covers a zero total.
func parseCash(raw string) (decimal.Decimal, bool) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, true
	}
	return money.Parse(raw)
}

func (o *Orchestrator) buildOrder(snap cart.Snapshot, method *domain.PaymentMethod, received *decimal.Decimal) *domain.Order {
	now := o.now()
	order := &domain.Order{
		ID:                o.newID(),
		OrderNo:           o.opts.Counter.Next(),
		Status:            domain.OrderStatusPaid,
		Subtotal:          snap.Subtotal,
		Discount:          snap.DiscountValue,
		ExtraFee:          snap.ExtraFee,
		GrandTotal:        snap.GrandTotal,
		PaymentMethodID:   method.ID,
		PaymentMethodName: method.Name,
		BranchID:          o.opts.BranchID,
		CashierID:         o.opts.CashierID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if received != nil {
		change := money.NonNegative(received.Sub(snap.GrandTotal))
		order.CashReceived = received
		order.CashChange = &change
	}
	return order
}

// persist saves the order and then its items one by one in display order.
// The first failing item stops the loop; items saved before it stay saved.
func (o *Orchestrator) persist(ctx context.Context, log *zap.Logger, order *domain.Order, snap cart.Snapshot) (*domain.Order, error) {
	created, err := o.opts.Orders.CreateOrder(ctx, order)
	if err != nil {
		log.Error("create order failed", zap.Error(err))
		return nil, err
	}
	// Items must reference the id the backend assigned.
	stored := *order
	if created != nil && created.ID != "" {
		stored.ID = created.ID
	}

	stored.Items = make([]domain.OrderItem, 0, len(snap.Items))
	for i, line := range snap.Items {
		item := &domain.OrderItem{
			ID:         o.newID(),
			OrderID:    stored.ID,
			MenuItemID: line.MenuItemID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			LineTotal:  line.LineTotal(),
			CreatedAt:  order.CreatedAt,
		}
		saved, err := o.opts.Orders.CreateOrderItem(ctx, item)
		if err != nil {
			log.Error("create order item failed, order left partial",
				zap.String("order_id", stored.ID),
				zap.Int("items_saved", i),
				zap.Int("items_total", len(snap.Items)),
				zap.Error(err))
			return nil, err
		}
		if saved == nil {
			saved = item
		}
		stored.Items = append(stored.Items, *saved)
	}
	return &stored, nil
}

func (o *Orchestrator) issueReceipt(ctx context.Context, log *zap.Logger, result *Result) {
	if o.opts.Receipts == nil {
		return
	}
	issued, err := o.opts.Receipts.Issue(ctx, result.Order.ID, result.Receipt)
	result.ReceiptPNG = issued.PNG
	result.ReceiptURL = issued.URL
	if err == nil {
		result.Order.ReceiptURL = issued.URL
		return
	}

	result.ReceiptErr = err
	log.Warn("receipt not issued", zap.Error(err))
	o.recordPending(ctx, log, result.Order, result.Receipt, err)
}

func (o *Orchestrator) recordPending(ctx context.Context, log *zap.Logger, order *domain.Order, s receipt.Snapshot, cause error) {
	if o.opts.Journal == nil {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		log.Error("encode receipt snapshot failed", zap.Error(err))
		return
	}
	p := &repository.PendingReceipt{
		OrderID:   order.ID,
		OrderNo:   order.OrderNo,
		Snapshot:  data,
		LastError: cause.Error(),
	}
	if err := o.opts.Journal.RecordPending(ctx, p); err != nil {
		log.Error("record pending receipt failed", zap.Error(err))
	}
}

func (o *Orchestrator) setStatus(s domain.CheckoutStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_ = o.transitionLocked(s)
}

func (o *Orchestrator) transitionLocked(to domain.CheckoutStatus) error {
	if !domain.CanTransitionTo(o.status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, o.status, to)
	}
	o.status = to
	return nil
}

// requireDialogLocked guards the actions a cashier takes inside the open
// payment dialog.
func (o *Orchestrator) requireDialogLocked() error {
	switch {
	case o.status.IsBusy():
		return ErrCheckoutInProgress
	case o.status != domain.CheckoutStatusMethodSelection:
		return fmt.Errorf("%w: payment dialog is not open", ErrIllegalTransition)
	}
	return nil
}

func (o *Orchestrator) firstMethodIDLocked() string {
	if len(o.methods) == 0 {
		return ""
	}
	return o.methods[0].ID
}
