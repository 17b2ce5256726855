package printing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/greenbasket/pos/internal/domain"
)

// receiptWidth is the column count of a 58mm thermal roll.
const receiptWidth = 32

// defaultVATRate matches the store's tax regime; catalog prices are
// VAT-inclusive, receipts itemize the tax back out.
const defaultVATRate = 0.08

// ReceiptRenderer lays out completed sales for a 58mm thermal printer.
type ReceiptRenderer struct {
	vatRate float64
}

// NewReceiptRenderer creates a renderer. A non-positive rate falls back to
// the default.
func NewReceiptRenderer(vatRate float64) *ReceiptRenderer {
	if vatRate <= 0 {
		vatRate = defaultVATRate
	}
	return &ReceiptRenderer{vatRate: vatRate}
}

// exVAT strips the tax component from a VAT-inclusive amount.
func (r *ReceiptRenderer) exVAT(m domain.Money) domain.Money {
	return domain.Money(math.Round(float64(m) / (1 + r.vatRate)))
}

// Render produces the receipt as plain monospace text. Stored prices are
// VAT-inclusive; the itemized section and subtotal show them excluded, with
// the tax added back as its own line so the printed total matches the
// charged amount.
func (r *ReceiptRenderer) Render(sale *domain.CompletedSale, printedAt time.Time) string {
	order := &sale.Order
	var b strings.Builder

	// Header.
	for _, line := range wrap(order.Shop.Name, receiptWidth) {
		b.WriteString(center(line) + "\n")
	}
	for _, line := range wrap(order.Shop.Address, receiptWidth) {
		b.WriteString(center(line) + "\n")
	}
	if order.Shop.Phone != "" {
		b.WriteString(center("Tel: "+order.Shop.Phone) + "\n")
	}
	if order.Shop.Email != "" {
		b.WriteString(center(order.Shop.Email) + "\n")
	}
	b.WriteString(divider() + "\n")

	// Order info.
	b.WriteString(row("Order #:", strconv.FormatInt(order.ID, 10)) + "\n")
	b.WriteString(row("Date:", order.CreatedAt.Format("01/02/2006 03:04 PM")) + "\n")
	b.WriteString(row("Payment:", strings.ToUpper(order.PaymentMethod)) + "\n")
	b.WriteString(divider() + "\n")

	// Items, unit prices shown tax-excluded.
	var subtotal domain.Money
	for _, item := range order.Items {
		unit := r.exVAT(item.PriceAtOrderTime)
		lineTotal := unit.Mul(item.Quantity)
		subtotal += lineTotal

		for _, line := range wrap(item.Product.Name, receiptWidth) {
			b.WriteString(line + "\n")
		}
		qty := strconv.Itoa(item.Quantity) + " x " + unit.String()
		b.WriteString(row(qty, lineTotal.String()) + "\n")
	}
	b.WriteString(divider() + "\n")

	// Totals.
	vat := domain.Money(math.Round(float64(subtotal) * r.vatRate))
	b.WriteString(row("Subtotal:", subtotal.String()) + "\n")
	b.WriteString(row("VAT ("+percent(r.vatRate)+"):", vat.String()) + "\n")
	b.WriteString(divider() + "\n")
	b.WriteString(row("TOTAL:", (subtotal + vat).String()) + "\n")

	// Cash tender block.
	if order.PaymentMethod == domain.PaymentCash && sale.CashDetails != nil {
		b.WriteString(divider() + "\n")
		b.WriteString(row("Received:", sale.CashDetails.ReceivedAmount.String()) + "\n")
		b.WriteString(row("Change:", sale.CashDetails.Change.String()) + "\n")
	}

	b.WriteString(divider() + "\n")
	b.WriteString(center("Thank you for your purchase!") + "\n")
	b.WriteString(divider() + "\n")
	b.WriteString(center(printedAt.Format("01/02/2006 03:04 PM")) + "\n")

	return b.String()
}

// Job assembles the full ESC/POS print job for a sale: the rendered receipt,
// a drawer kick for cash payments, and a partial cut.
func (r *ReceiptRenderer) Job(sale *domain.CompletedSale, printedAt time.Time) []byte {
	buf := NewCommandBuffer()
	buf.AlignLeft()
	buf.Text(r.Render(sale, printedAt))
	buf.Feed(3)
	if sale.Order.PaymentMethod == domain.PaymentCash {
		buf.OpenDrawer()
	}
	buf.PartialCut()
	return buf.Bytes()
}

func divider() string {
	return strings.Repeat("-", receiptWidth)
}

// row lays left and right out on one line with the gap padded. Oversized
// pairs spill onto two lines rather than truncating.
func row(left, right string) string {
	pad := receiptWidth - len(left) - len(right)
	if pad < 1 {
		return left + "\n" + strings.Repeat(" ", receiptWidth-len(right)) + right
	}
	return left + strings.Repeat(" ", pad) + right
}

func center(s string) string {
	if len(s) >= receiptWidth {
		return s
	}
	return strings.Repeat(" ", (receiptWidth-len(s))/2) + s
}

// wrap splits s into lines no wider than width, breaking on spaces where
// possible.
func wrap(s string, width int) []string {
	if s == "" {
		return nil
	}
	var lines []string
	words := strings.Fields(s)
	current := ""
	for _, w := range words {
		for len(w) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			lines = append(lines, w[:width])
			w = w[width:]
		}
		switch {
		case current == "":
			current = w
		case len(current)+1+len(w) <= width:
			current += " " + w
		default:
			lines = append(lines, current)
			current = w
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func percent(rate float64) string {
	return strconv.Itoa(int(math.Round(rate*100))) + "%"
}
