package orders

import (
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
)

// DefaultNumberPrefix is used when no prefix is configured.
const DefaultNumberPrefix = "ORD"

// AssignOrderNumber gives the order a number when it has none yet. An order
// that already carries a number keeps it.
func AssignOrderNumber(order *models.Order) {
	assignOrderNumber(order, DefaultNumberPrefix)
}

func assignOrderNumber(order *models.Order, prefix string) {
	if order == nil || order.OrderNumber != "" {
		return
	}
	order.OrderNumber = newOrderNumber(prefix)
}

// newOrderNumber returns prefix-XXXXXXXX where X is upper-case hex taken from
// a random uuid.
func newOrderNumber(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	id := uuid.New()
	hex := strings.ReplaceAll(id.String(), "-", "")
	return prefix + "-" + strings.ToUpper(hex[:8])
}
