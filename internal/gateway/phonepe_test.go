package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPhonePe(baseURL string) *PhonePeGateway {
	return NewPhonePeGateway(PhonePeConfig{
		MerchantID: "MERCHANT",
		SaltKey:    "salt",
		SaltIndex:  "1",
		BaseURL:    baseURL,
	}, time.Second)
}

func TestMerchantTransactionID(t *testing.T) {
	id := MerchantTransactionID("0b6f9c1e-3c0a-4bb4-9a57-7c2f4cc3a0f1")
	assert.Equal(t, "P0b6f9c1e3c0a4bb49a577c2f4cc3a0f1", id)
	assert.LessOrEqual(t, len(MerchantTransactionID("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")), 38)
}

func TestPhonePeCreateOrderSignsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, phonePePayPath, r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, phonePeChecksum(body["request"], phonePePayPath, "salt", "1"), r.Header.Get("X-VERIFY"))

		raw, err := base64.StdEncoding.DecodeString(body["request"])
		require.NoError(t, err)
		var payload phonePePayPayload
		require.NoError(t, json.Unmarshal(raw, &payload))
		assert.Equal(t, int64(25000), payload.Amount)
		assert.Equal(t, "MERCHANT", payload.MerchantID)

		resp := phonePeResponse{Success: true, Code: "PAYMENT_INITIATED"}
		resp.Data.InstrumentResponse.RedirectInfo.URL = "https://pay.example/checkout"
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	order, err := testPhonePe(srv.URL).CreateOrder(context.Background(), OrderRequest{Amount: 250, Receipt: "abc-def", Customer: Customer{ID: 7}})
	require.NoError(t, err)
	assert.Equal(t, "Pabcdef", order.ID)
	assert.Equal(t, "https://pay.example/checkout", order.CheckoutURL)
}

func TestPhonePeFetchStatus(t *testing.T) {
	cases := []struct {
		code    string
		amount  int64
		outcome Outcome
	}{
		{PhonePeSuccess, 25000, OutcomeSuccess},
		{PhonePeSuccess, 100, OutcomeFailure},
		{PhonePeDeclined, 25000, OutcomeFailure},
		{PhonePePending, 25000, OutcomePending},
		{PhonePeNotFound, 0, OutcomeNotPaid},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				path := phonePeStatusPath + "/MERCHANT/Pabc"
				assert.Equal(t, path, r.URL.Path)
				assert.Equal(t, phonePeChecksum("", path, "salt", "1"), r.Header.Get("X-VERIFY"))
				assert.Equal(t, "MERCHANT", r.Header.Get("X-MERCHANT-ID"))

				resp := phonePeResponse{Success: tc.code == PhonePeSuccess, Code: tc.code}
				resp.Data.Amount = tc.amount
				resp.Data.TransactionID = "T1"
				_ = json.NewEncoder(w).Encode(resp)
			}))
			defer srv.Close()

			res, err := testPhonePe(srv.URL).FetchStatus(context.Background(), Order{ID: "Pabc", Amount: 250})
			require.NoError(t, err)
			assert.Equal(t, tc.outcome, res.Outcome)
		})
	}
}

func TestPhonePeVerifyCallback(t *testing.T) {
	g := testPhonePe("http://unused")

	resp := phonePeResponse{Success: true, Code: PhonePeSuccess}
	resp.Data.MerchantTransactionID = "Pabc"
	resp.Data.TransactionID = "T1"
	resp.Data.Amount = 25000
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	encoded := base64.StdEncoding.EncodeToString(raw)

	cb, err := g.VerifyCallback(g.CallbackChecksum(encoded), encoded)
	require.NoError(t, err)
	assert.Equal(t, "Pabc", cb.MerchantTransactionID)
	assert.True(t, cb.Result.Succeeded())
	assert.Equal(t, int64(25000), cb.AmountPaise)

	_, err = g.VerifyCallback("deadbeef###1", encoded)
	assert.ErrorIs(t, err, ErrBadChecksum)
}
