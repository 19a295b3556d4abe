package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_MajorString(t *testing.T) {
	tests := []struct {
		name   string
		amount Amount
		want   string
	}{
		{"whole units", NewAmount(1000), "10.00"},
		{"cents", NewAmount(1999), "19.99"},
		{"sub unit", NewAmount(5), "0.05"},
		{"zero", NewAmount(0), "0.00"},
		{"negative", NewAmount(-250), "-2.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.amount.MajorString())
		})
	}
}

func TestAmountFromMajor(t *testing.T) {
	t.Run("converts exact values", func(t *testing.T) {
		assert.Equal(t, NewAmount(1999), AmountFromMajor(decimal.RequireFromString("19.99")))
	})

	t.Run("rounds half away from zero", func(t *testing.T) {
		assert.Equal(t, NewAmount(1000), AmountFromMajor(decimal.RequireFromString("9.995")))
		assert.Equal(t, NewAmount(-1000), AmountFromMajor(decimal.RequireFromString("-9.995")))
	})

	t.Run("parses strings", func(t *testing.T) {
		a, err := AmountFromMajorString("12.30")
		require.NoError(t, err)
		assert.Equal(t, NewAmount(1230), a)
	})

	t.Run("rejects invalid strings", func(t *testing.T) {
		_, err := AmountFromMajorString("twelve")
		assert.ErrorIs(t, err, ErrInvalidAmountString)
	})
}

func TestAmount_Percent(t *testing.T) {
	tests := []struct {
		name    string
		amount  Amount
		percent int
		want    Amount
	}{
		{"ten percent of 1000", 1000, 10, 100},
		{"zero percent", 1000, 0, 0},
		{"full percent", 1000, 100, 1000},
		{"half rounds up", 1005, 10, 101},
		{"below half rounds down", 1004, 10, 100},
		{"negative half rounds away from zero", -1005, 10, -101},
		{"odd cents", 333, 50, 167},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.amount.Percent(tt.percent))
		})
	}
}

func TestAmount_Arithmetic(t *testing.T) {
	a := NewAmount(500)
	b := NewAmount(200)

	assert.Equal(t, NewAmount(700), a.Add(b))
	assert.Equal(t, NewAmount(300), a.Sub(b))
	assert.Equal(t, NewAmount(-500), a.Neg())
	assert.Equal(t, NewAmount(500), a.Neg().Abs())
	assert.Equal(t, b, a.Min(b))
	assert.Equal(t, NewAmount(1500), a.MulQuantity(Quantity(3)))
	assert.True(t, a.IsPositive())
	assert.True(t, a.Neg().IsNegative())
	assert.True(t, NewAmount(0).IsZero())
}

func TestAmount_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Total Amount `json:"total"`
	}{Total: 4200})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":4200}`, string(data))

	var decoded struct {
		Total Amount `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"total":1999}`), &decoded))
	assert.Equal(t, NewAmount(1999), decoded.Total)

	err = json.Unmarshal([]byte(`{"total":19.99}`), &decoded)
	assert.Error(t, err)
}

func TestAmount_Scan(t *testing.T) {
	var a Amount
	require.NoError(t, a.Scan(int64(250)))
	assert.Equal(t, NewAmount(250), a)

	require.NoError(t, a.Scan([]byte("990")))
	assert.Equal(t, NewAmount(990), a)

	require.NoError(t, a.Scan(nil))
	assert.True(t, a.IsZero())

	assert.Error(t, a.Scan("oops"))

	v, err := NewAmount(12).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(12), v)
}

func TestCurrencyCode_OrDefault(t *testing.T) {
	assert.Equal(t, USD, CurrencyCode("").OrDefault())
	assert.Equal(t, EUR, EUR.OrDefault())
}

func TestQuantity(t *testing.T) {
	q, err := NewQuantity(3)
	require.NoError(t, err)
	assert.Equal(t, 3, q.Int())
	assert.Equal(t, Quantity(5), q.Add(2))

	_, err = NewQuantity(0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewQuantity(-1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
