package domain_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/marina/internal/domain"
)

func validCustomer() domain.Customer {
	return domain.Customer{
		Name:     "Ana",
		Email:    "ana@example.com",
		Phone:    "+54 9 221 555-1234",
		Address:  "Calle 7 123",
		City:     "La Plata",
		Province: "Buenos Aires",
	}
}

func TestFormatOrderNumber(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "BK000001", domain.FormatOrderNumber("BK", 1))
	assert.Equal(t, "BK000042", domain.FormatOrderNumber("BK", 42))
	assert.Equal(t, "MR1234567", domain.FormatOrderNumber("MR", 1234567))
}

func TestParseOrderStatus(t *testing.T) {
	t.Parallel()

	s, err := domain.ParseOrderStatus("all")
	require.NoError(t, err)
	assert.Empty(t, s)

	s, err = domain.ParseOrderStatus(" Shipped ")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, s)

	_, err = domain.ParseOrderStatus("pendiente")
	assert.True(t, domain.IsValidation(err))
}

func TestCustomerValidate(t *testing.T) {
	t.Parallel()

	t.Run("postal code optional", func(t *testing.T) {
		t.Parallel()

		c := validCustomer()
		c.Normalize()
		assert.NoError(t, c.Validate())
	})

	t.Run("missing city", func(t *testing.T) {
		t.Parallel()

		c := validCustomer()
		c.City = "  "
		c.Normalize()
		err := c.Validate()
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "customer.city", ve.Field)
	})

	t.Run("bad email", func(t *testing.T) {
		t.Parallel()

		c := validCustomer()
		c.Email = "ana-at-example"
		assert.True(t, domain.IsValidation(c.Validate()))
	})
}

func TestOrderTotalsAndLinks(t *testing.T) {
	t.Parallel()

	o := &domain.Order{
		Number:   "BK000007",
		Customer: validCustomer(),
		Items: []domain.OrderItem{
			{ProductID: uuid.New(), ProductName: "Bikini Luna", Price: decimal.RequireFromString("1500.50"), Quantity: 2, Size: "M"},
			{ProductID: uuid.New(), ProductName: "Pareo Sol", Price: decimal.NewFromInt(800), Quantity: 1, Size: "S"},
		},
	}
	o.TotalAmount = o.ComputeTotal()
	assert.Equal(t, "3801", o.TotalAmount.String())

	link := domain.OrderWhatsAppLink("+54 9 11 2345-6789", o)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/5491123456789?text="))
	assert.Contains(t, link, "BK000007")

	assert.Empty(t, domain.OrderWhatsAppLink("", o))
	assert.True(t, strings.HasPrefix(domain.CustomerWhatsAppLink(o), "https://wa.me/5492215551234?text="))
}
