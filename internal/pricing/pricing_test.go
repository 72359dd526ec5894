package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliveryFee_ThresholdBoundary(t *testing.T) {
	cfg := Config{FreeDeliveryThreshold: 500, FlatFee: 50}

	tests := []struct {
		name     string
		subtotal int
		expected int
	}{
		{"zero subtotal", 0, 50},
		{"below threshold", 450, 50},
		{"exactly at threshold pays fee", 500, 50},
		{"one rupee above threshold is free", 501, 0},
		{"well above threshold", 2000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cfg.DeliveryFee(tt.subtotal))
		})
	}
}

func TestTotal(t *testing.T) {
	cfg := Default

	assert.Equal(t, 500, cfg.Total(450))
	assert.Equal(t, 550, cfg.Total(500))
	assert.Equal(t, 501, cfg.Total(501))
}
