package customers

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
)

const (
	summaryRecentCount = 3
	notInformed        = "Não informado"
)

// Messages renders the canned WhatsApp texts sent to customers.
type Messages struct {
	BusinessName string
	Location     *time.Location
}

// Summary renders the customer recap: contact data, addresses and the latest
// purchases.
func (m Messages) Summary(customer models.Customer, phoneDisplay string, addresses []string, history []models.Purchase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Resumo do Cliente - %s*\n\n", m.BusinessName)
	fmt.Fprintf(&b, "👤 *Nome:* %s\n", orNotInformed(customer.Name))
	fmt.Fprintf(&b, "📱 *Telefone:* %s\n", orNotInformed(phoneDisplay))

	writeAddresses(&b, addresses)

	if len(history) == 0 {
		b.WriteString("\n🛒 *Pedidos:* Nenhum pedido registrado\n")
	} else {
		b.WriteString("\n🛒 *Últimos Pedidos:*\n")
		for i, p := range history {
			if i == summaryRecentCount {
				break
			}
			fmt.Fprintf(&b, "   %d. %s (%dx) - %s - %s\n", i+1, p.ProductName, p.Quantity, FormatBRL(p.Value), formatDate(p.PurchasedAt, m.Location))
		}
	}

	b.WriteString("\n_Obrigado pela preferência!_ 🔥")
	return b.String()
}

// Registration renders the confirmation sent after a customer is registered.
func (m Messages) Registration(customer models.Customer, phoneDisplay string, addresses []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ *Cadastro Realizado - %s*\n\n", m.BusinessName)
	fmt.Fprintf(&b, "👤 *Cliente:* %s\n", orNotInformed(customer.Name))
	fmt.Fprintf(&b, "📱 *Telefone:* %s\n", orNotInformed(phoneDisplay))
	fmt.Fprintf(&b, "📅 *Data de Cadastro:* %s\n", formatDate(customer.CreatedAt, m.Location))

	writeAddresses(&b, addresses)

	if notes := strings.TrimSpace(customer.Notes); notes != "" {
		fmt.Fprintf(&b, "\n📝 *Observações:* %s\n", notes)
	}
	b.WriteString("\nInformações estão corretas? ✅")
	return b.String()
}

// FormatBRL renders an amount as "R$ 1234,50".
func FormatBRL(v decimal.Decimal) string {
	return "R$ " + strings.Replace(v.StringFixed(2), ".", ",", 1)
}

func writeAddresses(b *strings.Builder, addresses []string) {
	if len(addresses) == 0 {
		return
	}
	b.WriteString("\n📍 *Endereço(s):*\n")
	for i, a := range addresses {
		fmt.Fprintf(b, "   %d. %s\n", i+1, a)
	}
}

func formatDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("02/01/2006")
}

func orNotInformed(v string) string {
	if strings.TrimSpace(v) == "" {
		return notInformed
	}
	return v
}
