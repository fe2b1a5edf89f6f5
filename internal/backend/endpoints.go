package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pcreem/silver-ESG/internal/money"
)

func (c *Client) GetMenu(ctx context.Context) ([]MenuItem, error) {
	var items []MenuItem
	if err := c.request(ctx, http.MethodGet, "/menu", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) GetMenuItem(ctx context.Context, id int64) (MenuItem, error) {
	var item MenuItem
	err := c.request(ctx, http.MethodGet, fmt.Sprintf("/menu/%d", id), nil, &item)
	return item, err
}

func (c *Client) GetProfiles(ctx context.Context) ([]Profile, error) {
	var profiles []Profile
	if err := c.request(ctx, http.MethodGet, "/profiles", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (c *Client) GetProfile(ctx context.Context, id string) (Profile, error) {
	var p Profile
	err := c.request(ctx, http.MethodGet, "/profiles/"+url.PathEscape(id), nil, &p)
	return p, err
}

func (c *Client) CreateProfile(ctx context.Context, params ProfileParams) (Profile, error) {
	var p Profile
	err := c.request(ctx, http.MethodPost, "/profiles", params, &p)
	return p, err
}

func (c *Client) UpdateProfile(ctx context.Context, id string, params ProfileParams) (Profile, error) {
	var p Profile
	err := c.request(ctx, http.MethodPut, "/profiles/"+url.PathEscape(id), params, &p)
	return p, err
}

func (c *Client) DeleteProfile(ctx context.Context, id string) error {
	return c.request(ctx, http.MethodDelete, "/profiles/"+url.PathEscape(id), nil, nil)
}

// CreateOrder sends the order; TotalAmount is already in minor units and must
// equal the cart total the caller computed.
func (c *Client) CreateOrder(ctx context.Context, req OrderCreateRequest) (CheckoutResult, error) {
	var res CheckoutResult
	err := c.request(ctx, http.MethodPost, "/orders", req, &res)
	return res, err
}

func (c *Client) GetOrders(ctx context.Context, profileID string) ([]Order, error) {
	var orders []Order
	path := "/orders?profile_id=" + url.QueryEscape(profileID)
	if err := c.request(ctx, http.MethodGet, path, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (Order, error) {
	var o Order
	err := c.request(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, &o)
	return o, err
}

func (c *Client) GetDashboard(ctx context.Context, profileID string) (DashboardData, error) {
	var d DashboardData
	err := c.request(ctx, http.MethodGet, "/dashboard/"+url.PathEscape(profileID), nil, &d)
	return d, err
}

// CreateDonation takes the display-formatted amount the donor typed and
// converts it to minor units before transmission; the backend never sees
// display-formatted numbers.
func (c *Client) CreateDonation(ctx context.Context, displayAmount, donorName, message string) (CheckoutResult, error) {
	minor, err := money.MinorUnits(displayAmount)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("backend: donation amount %q: %w", displayAmount, err)
	}

	body := map[string]any{"amount": minor}
	if donorName != "" {
		body["donor_name"] = donorName
	}
	if message != "" {
		body["message"] = message
	}

	var res CheckoutResult
	err = c.request(ctx, http.MethodPost, "/donations", body, &res)
	return res, err
}
