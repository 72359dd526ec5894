// Package pricing holds the delivery-fee rules shared by the storefront
// client and the order API.
package pricing

// Config holds the delivery pricing constants in whole rupees.
type Config struct {
	FreeDeliveryThreshold int `yaml:"free_delivery_threshold"`
	FlatFee               int `yaml:"delivery_fee"`
}

// Default matches the storefront's advertised terms: free delivery on
// orders above Rs.500, flat Rs.50 otherwise.
var Default = Config{
	FreeDeliveryThreshold: 500,
	FlatFee:               50,
}

// DeliveryFee returns the fee for a given subtotal. The waiver applies
// strictly above the threshold: a subtotal equal to the threshold still
// pays the flat fee.
func (c Config) DeliveryFee(subtotal int) int {
	if subtotal > c.FreeDeliveryThreshold {
		return 0
	}
	return c.FlatFee
}

// Total returns subtotal plus delivery fee.
func (c Config) Total(subtotal int) int {
	return subtotal + c.DeliveryFee(subtotal)
}
