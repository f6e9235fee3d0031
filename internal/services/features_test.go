package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"event-console/internal/logging"
	"event-console/internal/models"
	"event-console/internal/repositories"
)

type staticEvents map[string]*models.Event

func (s staticEvents) GetEventByID(_ context.Context, id string) (*models.Event, error) {
	event, ok := s[id]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	return event, nil
}

type switchableOrderStore struct {
	*repositories.MemoryOrderStore
	down bool
}

func (s *switchableOrderStore) CreateOrder(ctx context.Context, order *models.TicketOrder) (string, error) {
	if s.down {
		return "", errors.New("order store unavailable")
	}
	return s.MemoryOrderStore.CreateOrder(ctx, order)
}

type switchableInvoiceStore struct {
	*repositories.MemoryInvoiceStore
	down bool
}

func (s *switchableInvoiceStore) CreateInvoice(ctx context.Context, inv *models.Invoice) (string, error) {
	if s.down {
		return "", errors.New("invoice store unavailable")
	}
	return s.MemoryInvoiceStore.CreateInvoice(ctx, inv)
}

type consoleTestContext struct {
	events   staticEvents
	orders   *switchableOrderStore
	invoices *switchableInvoiceStore
	checkout *CheckoutService
	billing  *InvoiceService

	current       *models.Checkout
	order         *models.TicketOrder
	invoice       *models.Invoice
	removedColumn string
	err           error
}

func (c *consoleTestContext) reset() {
	c.events = staticEvents{}
	c.orders = &switchableOrderStore{MemoryOrderStore: repositories.NewMemoryOrderStore()}
	c.invoices = &switchableInvoiceStore{MemoryInvoiceStore: repositories.NewMemoryInvoiceStore()}
	c.checkout = NewCheckoutService(c.events, c.orders, NewPDFService(), logging.Discard())
	c.billing = NewInvoiceService(InvoiceServiceDeps{
		Store:    c.invoices,
		Renderer: NewPDFService(),
		QR:       NewQRService(),
	}, testInvoiceDefaults, logging.Discard())
	c.current = nil
	c.order = nil
	c.invoice = nil
	c.removedColumn = ""
	c.err = nil
}

func (c *consoleTestContext) anEventWithCategories(id string, table *godog.Table) error {
	event := &models.Event{ID: id, Title: id}
	for i, row := range table.Rows {
		if i == 0 {
			continue // header
		}
		price, err := decimal.NewFromString(row.Cells[2].Value)
		if err != nil {
			return err
		}
		event.Categories = append(event.Categories, models.TicketCategory{
			ID:    row.Cells[0].Value,
			Name:  row.Cells[1].Value,
			Price: price,
		})
	}
	c.events[id] = event
	return event.Validate()
}

func (c *consoleTestContext) anEventWithAFlatTicketPrice(id, price string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	c.events[id] = &models.Event{ID: id, Title: id, TicketPrice: &p}
	return nil
}

func (c *consoleTestContext) iOpenACheckoutFor(id string) error {
	checkout, err := c.checkout.Open(context.Background(), id)
	if err != nil {
		return err
	}
	c.current = checkout
	return nil
}

func (c *consoleTestContext) aCheckoutAtPaymentWithTickets(id string, count int, category string) error {
	if err := c.iOpenACheckoutFor(id); err != nil {
		return err
	}
	steps := []func() error{
		func() error { return c.current.SetQuantity(category, count) },
		c.current.Next,
		func() error {
			return c.current.SetCustomer(models.CustomerDetails{Name: "Asha", Email: "asha@example.com", Phone: "98765"})
		},
		c.current.Next,
		func() error { return c.current.SetPaymentRef("UTR-42") },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (c *consoleTestContext) iChangeBy(category string, delta int) error {
	return c.current.SetQuantity(category, delta)
}

func (c *consoleTestContext) iContinue() error {
	return c.current.Next()
}

func (c *consoleTestContext) iTryToContinue() error {
	c.err = c.current.Next()
	return nil
}

func (c *consoleTestContext) iGoBack() error {
	return c.current.Back()
}

func (c *consoleTestContext) iEnterDetails(name, email, phone string) error {
	return c.current.SetCustomer(models.CustomerDetails{Name: name, Email: email, Phone: phone})
}

func (c *consoleTestContext) thePaymentReferenceIsCleared() error {
	return c.current.SetPaymentRef("")
}

func (c *consoleTestContext) theOrderStoreIsUnavailable() error {
	c.orders.down = true
	return nil
}

func (c *consoleTestContext) iSubmitTheOrder() error {
	c.order, c.err = c.checkout.Submit(context.Background(), c.current)
	return nil
}

func (c *consoleTestContext) theCartHoldsTickets(n int) error {
	if got := c.current.Selection.TotalCount(); got != n {
		return fmt.Errorf("expected %d tickets, got %d", n, got)
	}
	return nil
}

func (c *consoleTestContext) theCartSubtotalIs(amount string) error {
	return equalAmount("cart subtotal", c.current.Totals().Subtotal, amount)
}

func (c *consoleTestContext) theCheckoutIsOnTheStep(step string) error {
	if c.current.Step != models.CheckoutStep(step) {
		return fmt.Errorf("expected step %q, got %q", step, c.current.Step)
	}
	return nil
}

func (c *consoleTestContext) theCheckoutWasRejectedWith(message string) error {
	var validationErr *models.ValidationError
	if !errors.As(c.err, &validationErr) {
		return fmt.Errorf("expected a validation error, got %v", c.err)
	}
	if validationErr.Message != message {
		return fmt.Errorf("expected %q, got %q", message, validationErr.Message)
	}
	return nil
}

func (c *consoleTestContext) theSubmissionFailedWithAnIOError() error {
	if !models.IsIOError(c.err) {
		return fmt.Errorf("expected an IO error, got %v", c.err)
	}
	return nil
}

func (c *consoleTestContext) theCustomerNameIs(name string) error {
	if c.current.Customer.Name != name {
		return fmt.Errorf("expected customer %q, got %q", name, c.current.Customer.Name)
	}
	return nil
}

func (c *consoleTestContext) thePaymentReferenceIs(ref string) error {
	if c.current.PaymentRef != ref {
		return fmt.Errorf("expected payment reference %q, got %q", ref, c.current.PaymentRef)
	}
	return nil
}

func (c *consoleTestContext) theOrderIsPendingWithTotal(amount string) error {
	if c.err != nil {
		return c.err
	}
	if c.order.Status != models.OrderPending {
		return fmt.Errorf("expected pending order, got %s", c.order.Status)
	}
	if _, ok := c.orders.Get(c.order.ID); !ok {
		return fmt.Errorf("order %s was not stored", c.order.ID)
	}
	return equalAmount("order total", c.order.TotalAmount, amount)
}

func (c *consoleTestContext) aNewInvoice() error {
	c.invoice = c.billing.NewDraft()
	return nil
}

func (c *consoleTestContext) aNewInvoiceNumberedFor(number, client string) error {
	c.invoice = c.billing.NewDraft()
	c.invoice.InvoiceNumber = number
	c.invoice.Client.Name = client
	return nil
}

func (c *consoleTestContext) firstItemID() string {
	return c.invoice.LineItems[0].ID
}

func (c *consoleTestContext) setFirstLineItem(quantity, price string) error {
	if err := c.invoice.SetLineItemField(c.firstItemID(), models.FieldQuantity, quantity); err != nil {
		return err
	}
	return c.invoice.SetLineItemField(c.firstItemID(), models.FieldPrice, price)
}

func (c *consoleTestContext) iSetTheFirstLineItemTo(quantity int, price string) error {
	return c.setFirstLineItem(fmt.Sprint(quantity), price)
}

func (c *consoleTestContext) iSetTheFirstLineItemToRaw(quantity, price string) error {
	return c.setFirstLineItem(quantity, price)
}

func (c *consoleTestContext) iEnableGSTAtPercent(pct string) error {
	p, err := decimal.NewFromString(pct)
	if err != nil {
		return err
	}
	c.invoice.GSTEnabled = true
	c.invoice.GSTPercentage = p
	return nil
}

func (c *consoleTestContext) iRecordAnAdvanceOf(amount string) error {
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return err
	}
	c.invoice.AdvancePaid = a
	return nil
}

func (c *consoleTestContext) theSubtotalIs(amount string) error {
	return equalAmount("subtotal", c.invoice.Totals().Subtotal, amount)
}

func (c *consoleTestContext) theTaxIs(amount string) error {
	return equalAmount("tax", c.invoice.Totals().TaxAmount, amount)
}

func (c *consoleTestContext) theTotalIs(amount string) error {
	return equalAmount("total", c.invoice.Totals().Total, amount)
}

func (c *consoleTestContext) theBalanceDueIs(amount string) error {
	return equalAmount("balance due", c.invoice.Totals().BalanceDue, amount)
}

func (c *consoleTestContext) columnID(label string) (string, error) {
	for _, col := range c.invoice.Columns {
		if col.Label == label {
			return col.ID, nil
		}
	}
	return "", fmt.Errorf("no column %q", label)
}

func (c *consoleTestContext) iAddAColumn(label string) error {
	if c.invoice.AddColumn(label) == nil {
		return fmt.Errorf("column %q was not added", label)
	}
	return nil
}

func (c *consoleTestContext) iSetOnTheFirstLineItemTo(label, value string) error {
	id, err := c.columnID(label)
	if err != nil {
		return err
	}
	return c.invoice.SetCustomValue(c.firstItemID(), id, value)
}

func (c *consoleTestContext) iRemoveTheColumn(label string) error {
	id, err := c.columnID(label)
	if err != nil {
		return err
	}
	c.removedColumn = id
	return c.invoice.RemoveColumn(id)
}

func (c *consoleTestContext) theInvoiceHasColumns(n int) error {
	if len(c.invoice.Columns) != n {
		return fmt.Errorf("expected %d columns, got %d", n, len(c.invoice.Columns))
	}
	return nil
}

func (c *consoleTestContext) noLineItemHasAValueFor(string) error {
	removed := c.removedColumn
	for _, li := range c.invoice.LineItems {
		if _, ok := li.CustomValues[removed]; ok {
			return fmt.Errorf("line item %s still has a value for the removed column", li.ID)
		}
	}
	return c.invoice.Validate()
}

func (c *consoleTestContext) theFirstLineItemHasFor(value, label string) error {
	id, err := c.columnID(label)
	if err != nil {
		return err
	}
	if got := c.invoice.LineItems[0].CustomValue(id); got != value {
		return fmt.Errorf("expected %q for %s, got %q", value, label, got)
	}
	return nil
}

func (c *consoleTestContext) theInvoiceStoreIsUnavailable() error {
	c.invoices.down = true
	return nil
}

func (c *consoleTestContext) iSaveTheInvoice() error {
	c.err = c.billing.Save(context.Background(), c.invoice)
	return nil
}

func (c *consoleTestContext) theInvoiceHasAnID() error {
	if c.err != nil {
		return c.err
	}
	if c.invoice.ID == "" {
		return errors.New("invoice has no id")
	}
	return nil
}

func (c *consoleTestContext) theInvoiceHasNoID() error {
	if c.invoice.ID != "" {
		return fmt.Errorf("expected no id, got %s", c.invoice.ID)
	}
	return nil
}

func (c *consoleTestContext) invoicesAreStored(n int) error {
	if got := c.invoices.Len(); got != n {
		return fmt.Errorf("expected %d stored invoices, got %d", n, got)
	}
	return nil
}

func equalAmount(what string, got decimal.Decimal, want string) error {
	w, err := decimal.NewFromString(want)
	if err != nil {
		return err
	}
	if !got.Equal(w) {
		return fmt.Errorf("expected %s %s, got %s", what, want, got.String())
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &consoleTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Checkout
	ctx.Step(`^an event "([^"]*)" with categories:$`, tc.anEventWithCategories)
	ctx.Step(`^an event "([^"]*)" with a flat ticket price of "([^"]*)"$`, tc.anEventWithAFlatTicketPrice)
	ctx.Step(`^I open a checkout for "([^"]*)"$`, tc.iOpenACheckoutFor)
	ctx.Step(`^a checkout at payment for "([^"]*)" with (\d+) "([^"]*)" tickets$`, tc.aCheckoutAtPaymentWithTickets)
	ctx.Step(`^I change "([^"]*)" by (-?\d+)$`, tc.iChangeBy)
	ctx.Step(`^I continue$`, tc.iContinue)
	ctx.Step(`^I try to continue$`, tc.iTryToContinue)
	ctx.Step(`^I go back$`, tc.iGoBack)
	ctx.Step(`^I enter details "([^"]*)", "([^"]*)", "([^"]*)"$`, tc.iEnterDetails)
	ctx.Step(`^the payment reference is cleared$`, tc.thePaymentReferenceIsCleared)
	ctx.Step(`^the order store is unavailable$`, tc.theOrderStoreIsUnavailable)
	ctx.Step(`^I submit the order$`, tc.iSubmitTheOrder)
	ctx.Step(`^the cart holds (\d+) tickets$`, tc.theCartHoldsTickets)
	ctx.Step(`^the cart subtotal is "([^"]*)"$`, tc.theCartSubtotalIs)
	ctx.Step(`^the checkout is on the "([^"]*)" step$`, tc.theCheckoutIsOnTheStep)
	ctx.Step(`^the checkout was rejected with "([^"]*)"$`, tc.theCheckoutWasRejectedWith)
	ctx.Step(`^the submission failed with an IO error$`, tc.theSubmissionFailedWithAnIOError)
	ctx.Step(`^the customer name is "([^"]*)"$`, tc.theCustomerNameIs)
	ctx.Step(`^the payment reference is "([^"]*)"$`, tc.thePaymentReferenceIs)
	ctx.Step(`^the order is pending with total "([^"]*)"$`, tc.theOrderIsPendingWithTotal)

	// Invoice
	ctx.Step(`^a new invoice$`, tc.aNewInvoice)
	ctx.Step(`^a new invoice numbered "([^"]*)" for "([^"]*)"$`, tc.aNewInvoiceNumberedFor)
	ctx.Step(`^I set the first line item to (\d+) at "([^"]*)"$`, tc.iSetTheFirstLineItemTo)
	ctx.Step(`^I set the first line item to "([^"]*)" at "([^"]*)"$`, tc.iSetTheFirstLineItemToRaw)
	ctx.Step(`^I enable GST at "([^"]*)" percent$`, tc.iEnableGSTAtPercent)
	ctx.Step(`^I record an advance of "([^"]*)"$`, tc.iRecordAnAdvanceOf)
	ctx.Step(`^the subtotal is "([^"]*)"$`, tc.theSubtotalIs)
	ctx.Step(`^the tax is "([^"]*)"$`, tc.theTaxIs)
	ctx.Step(`^the total is "([^"]*)"$`, tc.theTotalIs)
	ctx.Step(`^the balance due is "([^"]*)"$`, tc.theBalanceDueIs)
	ctx.Step(`^I add a column "([^"]*)"$`, tc.iAddAColumn)
	ctx.Step(`^I set "([^"]*)" on the first line item to "([^"]*)"$`, tc.iSetOnTheFirstLineItemTo)
	ctx.Step(`^I remove the column "([^"]*)"$`, tc.iRemoveTheColumn)
	ctx.Step(`^the invoice has (\d+) columns$`, tc.theInvoiceHasColumns)
	ctx.Step(`^no line item has a value for "([^"]*)"$`, tc.noLineItemHasAValueFor)
	ctx.Step(`^the first line item has "([^"]*)" for "([^"]*)"$`, tc.theFirstLineItemHasFor)
	ctx.Step(`^the invoice store is unavailable$`, tc.theInvoiceStoreIsUnavailable)
	ctx.Step(`^I save the invoice$`, tc.iSaveTheInvoice)
	ctx.Step(`^the invoice has an id$`, tc.theInvoiceHasAnID)
	ctx.Step(`^the invoice has no id$`, tc.theInvoiceHasNoID)
	ctx.Step(`^(\d+) invoice is stored$`, tc.invoicesAreStored)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features/checkout.feature", "../../features/invoice.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
