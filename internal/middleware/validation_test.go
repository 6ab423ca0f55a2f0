package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type priceRequest struct {
	Name     string           `json:"name" validate:"required"`
	Price    decimal.Decimal  `json:"price" validate:"gte=0"`
	Discount *decimal.Decimal `json:"discount" validate:"omitempty,gte=0"`
	Quantity int              `json:"quantity" validate:"required,min=1"`
	Method   string           `json:"method" validate:"omitempty,oneof=PIX CARD CASH"`
	Note     string           `json:"note" validate:"max=10"`
}

func decodeBody(t *testing.T, body string) (priceRequest, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	var out priceRequest
	err := DecodeAndValidate(req, &out)
	return out, err
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"valid", `{"name":"Água","price":2.5,"quantity":1,"method":"PIX"}`, ""},
		{"zero price", `{"name":"Água","price":0,"quantity":1}`, ""},
		{"missing name", `{"price":2.5,"quantity":1}`, "name"},
		{"negative price", `{"name":"Água","price":-0.01,"quantity":1}`, "price"},
		{"negative discount", `{"name":"Água","price":1,"discount":-1,"quantity":1}`, "discount"},
		{"zero quantity", `{"name":"Água","price":1,"quantity":0}`, "quantity"},
		{"unknown method", `{"name":"Água","price":1,"quantity":1,"method":"BOLETO"}`, "method"},
		{"long note", `{"name":"Água","price":1,"quantity":1,"note":"much too long"}`, "note"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeBody(t, tt.body)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			errs := FormatValidationErrors(err)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantField, errs[0].Field)
			assert.NotEmpty(t, errs[0].Message)
		})
	}
}

func TestDecodeAndValidateKeepsDecimalPrecision(t *testing.T) {
	out, err := decodeBody(t, `{"name":"x","price":"0.10","quantity":3}`)
	require.NoError(t, err)

	assert.Equal(t, "0.30", out.Price.Mul(decimal.NewFromInt(int64(out.Quantity))).StringFixed(2))
}

func TestErrorMessages(t *testing.T) {
	_, err := decodeBody(t, `{"name":"x","price":1,"quantity":1,"method":"BOLETO"}`)
	require.Error(t, err)
	assert.Equal(t, "Value must be one of: PIX, CARD, CASH", FormatValidationErrors(err)[0].Message)

	_, err = decodeBody(t, `{"name":"x","price":-1,"quantity":1}`)
	require.Error(t, err)
	assert.Equal(t, "Value must be greater than or equal to 0", FormatValidationErrors(err)[0].Message)
}

func TestRespondWithDecodeError(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		_, err := decodeBody(t, `{"name":`)
		w := httptest.NewRecorder()
		RespondWithDecodeError(w, err)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "invalid request body", response.Error.Message)
		assert.Nil(t, response.Error.Details)
	})

	t.Run("field errors", func(t *testing.T) {
		_, err := decodeBody(t, `{"price":1,"quantity":1}`)
		w := httptest.NewRecorder()
		RespondWithDecodeError(w, err)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "validation failed", response.Error.Message)
		assert.Contains(t, response.Error.Details, "validation_errors")
	})
}

// Property: any non-negative price with a positive quantity passes
func TestProperty_NonNegativePricesPassValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("price >= 0 and quantity >= 1 are accepted", prop.ForAll(
		func(cents int64, quantity int) bool {
			body, _ := json.Marshal(map[string]any{
				"name":     "item",
				"price":    decimal.New(cents, -2),
				"quantity": quantity,
			})
			req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(body))

			var out priceRequest
			if err := DecodeAndValidate(req, &out); err != nil {
				t.Logf("FAIL: %d cents x %d rejected: %v", cents, quantity, err)
				return false
			}
			return out.Price.Equal(decimal.New(cents, -2))
		},
		gen.Int64Range(0, 1_000_000),
		gen.IntRange(1, 1000),
	))

	properties.Property("negative prices are rejected", prop.ForAll(
		func(cents int64) bool {
			body := fmt.Sprintf(`{"name":"item","price":%s,"quantity":1}`, decimal.New(-cents, -2).String())
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))

			var out priceRequest
			return DecodeAndValidate(req, &out) != nil
		},
		gen.Int64Range(1, 1_000_000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
