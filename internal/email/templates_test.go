package email

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/frozenfresh/internal/catalog"
)

func TestBuildOrderConfirmationBody(t *testing.T) {
	items := []catalog.OrderItem{
		{ProductID: "p1", Name: "Chicken Nuggets", Price: 249, Quantity: 2},
		{ProductID: "p2", Name: "", Price: 99, Quantity: 1},
	}

	body := BuildOrderConfirmationBody("order-abc-123", 597, items)

	assert.Contains(t, body, "order-abc-123")
	assert.Contains(t, body, "Chicken Nuggets")
	// Items without a name fall back to the product ID
	assert.Contains(t, body, "p2")
	assert.Contains(t, body, "₹597")
}

func TestBuildStatusUpdateBody(t *testing.T) {
	body := BuildStatusUpdateBody("order-abc-123", catalog.StatusShipped)

	assert.Contains(t, body, "on its way")
	assert.Contains(t, body, "order-abc-123")
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{548, "548"},
		{1234567, "1,234,567"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.in))
	}
}
