package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"aurabags-storefront/internal/domain"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func sampleOrder() domain.Order {
	return domain.Order{
		ID: "ORD-1700000000000",
		Lines: []domain.CartLine{
			{ProductID: "1", Name: "Classic Tote", UnitPriceCents: 8999, Quantity: 2, Variant: domain.Variant{Color: "Black"}},
			{ProductID: "2", Name: "Mini Clutch", UnitPriceCents: 4500, Quantity: 1},
		},
		TotalCents:      22498,
		ShippingAddress: domain.Address{Street: "1 Marina", City: "Lagos", State: "LA", PostalCode: "100001", Country: "Nigeria"},
		Notes:           "Gift wrap please",
	}
}

func TestOrderSummary(t *testing.T) {
	customer := &domain.Customer{FirstName: "Ada", LastName: "Obi", Email: "ada@example.com", Phone: "+234"}
	msg := OrderSummary(sampleOrder(), customer)

	for _, want := range []string{
		"*Order ID:* ORD-1700000000000",
		"*Customer:* Ada Obi",
		"*Email:* ada@example.com",
		"*Phone:* +234",
		"2x Classic Tote (Black) - $89.99",
		"1x Mini Clutch - $45.00",
		"*Total Amount:* $224.98",
		"1 Marina\nLagos, LA 100001\nNigeria",
		"*Notes:* Gift wrap please",
		"provide payment instructions",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("summary missing %q:\n%s", want, msg)
		}
	}
}

func TestOrderSummaryWithoutOptionalFields(t *testing.T) {
	o := sampleOrder()
	o.Notes = ""
	o.ShippingAddress = domain.Address{Street: "1 Marina", City: "Lagos"}
	msg := OrderSummary(o, nil)
	if strings.Contains(msg, "*Notes:*") || strings.Contains(msg, "*Customer:*") {
		t.Fatalf("unexpected optional sections:\n%s", msg)
	}
	if !strings.Contains(msg, "1 Marina\nLagos\n") {
		t.Fatalf("unexpected address block:\n%s", msg)
	}
}

func TestLinkerURLRoundTrips(t *testing.T) {
	l := NewLinker("+1 (234) 567-890")
	msg := "Hi! I'm interested in the Tote & Co ($89.99). 100% leather?"
	link := l.URL(msg)

	if !strings.HasPrefix(link, "https://wa.me/1234567890?text=") {
		t.Fatalf("unexpected link %s", link)
	}
	if strings.Contains(link, "+") || strings.Contains(link, " ") {
		t.Fatalf("expected spaces encoded as %%20, got %s", link)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := u.Query().Get("text"); got != msg {
		t.Fatalf("decoded text = %q", got)
	}
	if NewLinker("123").URL("") != "https://wa.me/123" {
		t.Fatalf("expected bare link without message")
	}
}

func TestQuickBuyAndSupport(t *testing.T) {
	if got := QuickBuy("Classic Tote", "$89.99"); got != "Hi! I'm interested in the Classic Tote ($89.99). Can you provide more details?" {
		t.Fatalf("quick buy = %q", got)
	}
	if got := Support("ORD-1"); !strings.HasPrefix(got, "Hi! I have a question about my order ORD-1.") {
		t.Fatalf("support = %q", got)
	}
}

func TestFormatCents(t *testing.T) {
	cases := map[int64]string{0: "$0.00", 5: "$0.05", 10000: "$100.00", -250: "-$2.50"}
	for in, want := range cases {
		if got := FormatCents(in); got != want {
			t.Fatalf("FormatCents(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestKafkaPublisherSendsOrderPlaced(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev OrderPlacedEvent
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.Type != "order.placed" || ev.OrderID != "ORD-1700000000000" || len(ev.Order.Lines) != 2 {
			return errors.New("unexpected event payload")
		}
		if !strings.HasPrefix(ev.HandoffURL, "https://wa.me/123?text=") {
			return errors.New("missing support link")
		}
		return nil
	})

	p := NewKafkaPublisher(producer, "order.placed", NewLinker("123"), nil)
	p.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	if err := p.OrderPlaced(context.Background(), sampleOrder()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestKafkaPublisherReportsFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaPublisher(producer, "order.placed", nil, nil)
	err := p.OrderPlaced(context.Background(), sampleOrder())
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected ErrOutOfBrokers, got %v", err)
	}
	_ = p.Close()
}

func TestNewKafkaProducerRequiresBrokers(t *testing.T) {
	if _, err := NewKafkaProducer(nil); err == nil {
		t.Fatalf("expected error without brokers")
	}
}
