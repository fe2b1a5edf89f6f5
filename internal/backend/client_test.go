package backend

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, discardLogger())
}

func TestAuthorizationHeader(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	})

	t.Run("no token -> header omitted", func(t *testing.T) {
		_, err := c.GetMenu(context.Background())
		require.NoError(t, err)
		assert.Empty(t, gotAuth)
	})

	t.Run("token attached as bearer", func(t *testing.T) {
		c.SetToken("at-1")
		_, err := c.GetMenu(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer at-1", gotAuth)
	})

	t.Run("new token replaces old", func(t *testing.T) {
		c.SetToken("at-2")
		_, err := c.GetMenu(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer at-2", gotAuth)
	})

	t.Run("cleared token -> header omitted again", func(t *testing.T) {
		c.ClearToken()
		_, err := c.GetMenu(context.Background())
		require.NoError(t, err)
		assert.Empty(t, gotAuth)
	})
}

func TestEnvelopeUnwrap(t *testing.T) {
	t.Run("wrapped payload", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":[{"id":1,"name":"porridge","price":12000,"available":true}]}`))
		})

		items, err := c.GetMenu(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "porridge", items[0].Name)
		assert.Equal(t, int64(12000), items[0].Price)
	})

	t.Run("bare payload", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"id":2,"name":"soup","price":8000,"available":true}]`))
		})

		items, err := c.GetMenu(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "soup", items[0].Name)
	})
}

func TestHTTPErrorCarriesStatusAndMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"profile not found"}`))
	})

	_, err := c.GetProfile(context.Background(), "p-1")
	require.Error(t, err)

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnprocessableEntity, he.Status)
	assert.Equal(t, "profile not found", he.Message)
}

func TestIsUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.GetProfiles(context.Background())
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsUnauthorized(nil))
}

func TestIDNormalization(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"plain string", `"abc-123"`, "abc-123"},
		{"hex object", `{"hex":"deadbeef"}`, "deadbeef"},
		{"number", `42`, "42"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &id))
			assert.Equal(t, tc.want, id.String())
		})
	}
}

func TestGetOrderNormalizesIDs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":{"hex":"0a1b"},"profile_id":"p-1","total_amount":28000,"status":"pending"}`))
	})

	o, err := c.GetOrder(context.Background(), "0a1b")
	require.NoError(t, err)
	assert.Equal(t, "0a1b", o.ID.String())
	assert.Equal(t, "p-1", o.ProfileID.String())
}

func TestCreateOrderPayload(t *testing.T) {
	var got OrderCreateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"checkout_url":"https://pay.example/s1"}`))
	})

	res, err := c.CreateOrder(context.Background(), OrderCreateRequest{
		ProfileID:     "p-1",
		Items:         []OrderItem{{MenuItemID: 1, Quantity: 3}},
		TotalAmount:   36000,
		CustomerEmail: "mei@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://pay.example/s1", res.CheckoutURL)
	assert.Equal(t, int64(36000), got.TotalAmount)
	assert.Equal(t, "mei@example.com", got.CustomerEmail)
}

func TestGetOrdersQuery(t *testing.T) {
	var gotProfileID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotProfileID = r.URL.Query().Get("profile_id")
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.GetOrders(context.Background(), "p-9")
	require.NoError(t, err)
	assert.Equal(t, "p-9", gotProfileID)
}

func TestCreateDonationConvertsDisplayAmount(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"checkout_url":""}`))
	})

	_, err := c.CreateDonation(context.Background(), "$1,200.50", "Mei", "stay warm")
	require.NoError(t, err)

	assert.Equal(t, float64(120050), got["amount"])
	assert.Equal(t, "Mei", got["donor_name"])
	assert.Equal(t, "stay warm", got["message"])
}

func TestCreateDonationRejectsGarbageAmount(t *testing.T) {
	c := NewClient("http://unused", discardLogger())

	_, err := c.CreateDonation(context.Background(), "lots", "", "")
	require.Error(t, err)
}

func TestDeleteProfile(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteProfile(context.Background(), "p-1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/profiles/p-1", gotPath)
}

func TestProfileParamsOmitReadOnlyFields(t *testing.T) {
	var raw map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"id":"p-1","name":"Grandpa Chen"}`))
	})

	_, err := c.CreateProfile(context.Background(), ProfileParams{Name: "Grandpa Chen", Age: 82})
	require.NoError(t, err)

	assert.NotContains(t, raw, "id")
	assert.NotContains(t, raw, "user_id")
	assert.NotContains(t, raw, "created_at")
	assert.NotContains(t, raw, "updated_at")
}
