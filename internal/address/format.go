package address

import (
	"strings"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
)

// Unspecified is rendered when an address has no populated part.
const Unspecified = "Endereço não informado"

// Format renders an address the way it is printed on delivery slips:
// "Qd. 104 Norte, Al. 01, QI 05, Lt. 15, Casa A, (fundos)". Blank parts are skipped.
func Format(a models.Address) string {
	parts := make([]string, 0, 6)
	if v := strings.TrimSpace(a.Quadra); v != "" {
		parts = append(parts, "Qd. "+v)
	}
	if v := strings.TrimSpace(a.Alameda); v != "" {
		parts = append(parts, "Al. "+v)
	}
	if v := strings.TrimSpace(a.QI); v != "" {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(a.Lote); v != "" {
		parts = append(parts, "Lt. "+v)
	}
	if v := strings.TrimSpace(a.Casa); v != "" {
		parts = append(parts, "Casa "+v)
	}
	if v := strings.TrimSpace(a.Complemento); v != "" {
		parts = append(parts, "("+v+")")
	}
	if len(parts) == 0 {
		return Unspecified
	}
	return strings.Join(parts, ", ")
}
