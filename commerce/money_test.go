package commerce_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-storefront/commerce"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSumLines(t *testing.T) {
	items := []commerce.CartItem{
		{Product: commerce.Product{ID: 1, Price: decimal.RequireFromString("10.00")}, Quantity: 2},
		{Product: commerce.Product{ID: 2, Price: decimal.RequireFromString("5.00")}, Quantity: 1},
		{Product: commerce.Product{ID: 3, Price: decimal.RequireFromString("0.10")}, Quantity: 3},
	}
	require.Equal(t, "25.30", commerce.FormatAmount(commerce.SumLines(items)))
	require.Equal(t, "0.00", commerce.FormatAmount(commerce.SumLines(nil)))
	require.Equal(t, "0.30", commerce.FormatAmount(items[2].LineTotal()))
}

func TestImageURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		ref     string
		want    string
	}{
		{"uploads prefix stripped", "http://localhost:8080/api/v1", "uploads/go.png", "http://localhost:8080/go.png"},
		{"plain reference", "http://localhost:8080/api/v1", "img/chess.png", "http://localhost:8080/img/chess.png"},
		{"trailing slash on base", "https://shop.example.com/api/v1/", "uploads/a.jpg", "https://shop.example.com/a.jpg"},
		{"empty reference", "http://localhost:8080/api/v1", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, commerce.ImageURL(tc.baseURL, tc.ref))
		})
	}
}

func TestProfileFullName(t *testing.T) {
	require.Equal(t, "Ada Lovelace", commerce.Profile{FirstName: "Ada", LastName: "Lovelace"}.FullName())
	require.Equal(t, "Ada", commerce.Profile{FirstName: "Ada"}.FullName())
	require.Equal(t, "Lovelace", commerce.Profile{LastName: "Lovelace"}.FullName())
}

func TestAmountsEncodeAsNumbers(t *testing.T) {
	price := decimal.RequireFromString("7.5")

	t.Run("order", func(t *testing.T) {
		order := commerce.Order{
			ID:          4,
			Status:      commerce.StatusPlaced,
			TotalAmount: decimal.RequireFromString("15"),
			OrderItems:  []commerce.OrderItem{{Product: commerce.Product{ID: 3, Name: "Puzzle", Price: price}, Quantity: 2, Price: price}},
		}
		data, err := json.Marshal(order)
		require.NoError(t, err)
		require.JSONEq(t, `{
			"id": 4, "status": "PLACED", "paymentStatus": "", "totalAmount": 15,
			"orderItems": [{"product": {"id": 3, "name": "Puzzle", "price": 7.5, "quantity": 0}, "quantity": 2, "price": 7.5}]
		}`, string(data))

		var decoded commerce.Order
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.True(t, decoded.TotalAmount.Equal(order.TotalAmount))
		require.True(t, decoded.OrderItems[0].Product.Price.Equal(price))
	})

	t.Run("requests and results", func(t *testing.T) {
		data, err := json.Marshal(commerce.GatewaySessionRequest{Amount: price, Currency: "usd", OrderID: "4"})
		require.NoError(t, err)
		require.JSONEq(t, `{"amount": 7.5, "currency": "usd", "orderId": "4"}`, string(data))

		data, err = json.Marshal(&commerce.PlaceOrderResult{OrderID: 4, TotalAmount: price})
		require.NoError(t, err)
		require.JSONEq(t, `{"orderId": 4, "totalAmount": 7.5}`, string(data))
	})

	t.Run("package default untouched", func(t *testing.T) {
		require.False(t, decimal.MarshalJSONWithoutQuotes)
		data, err := json.Marshal(price)
		require.NoError(t, err)
		require.Equal(t, `"7.5"`, string(data))
	})
}
