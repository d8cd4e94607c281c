package listinghub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"nestiq.ai/listing-gateway/app/utils/httpclients"
	"nestiq.ai/listing-gateway/config/environment_variables"
	"resty.dev/v3"
)

var RestyClient *resty.Client

// ErrNotFound is returned when the provider has no listing for the id.
var ErrNotFound = errors.New("listinghub: listing not found")

func Init() {
	RestyClient = httpclients.NewClient("ListingHubClient")
	RestyClient.SetBaseURL(environment_variables.EnvironmentVariables.LISTINGHUB_BASE_URL)
	if apiKey := environment_variables.EnvironmentVariables.LISTINGHUB_API_KEY; apiKey != "" {
		RestyClient.SetHeader("X-Api-Key", apiKey)
	}
}

type Client struct{}

func NewClient() *Client {
	return &Client{}
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SearchQuery carries the provider-side search parameters. Zero values are
// omitted from the request.
type SearchQuery struct {
	City     string
	MinPrice int64
	MaxPrice int64
	Bedrooms int
	Status   string
	Sort     string
	Page     int
	PageSize int
}

// Params renders the query as provider query parameters. The map is also the
// canonical form cache fingerprints are derived from, so identical logical
// queries always serialize identically.
func (q SearchQuery) Params() map[string]string {
	params := map[string]string{}
	if q.City != "" {
		params["city"] = q.City
	}
	if q.MinPrice > 0 {
		params["min_price"] = strconv.FormatInt(q.MinPrice, 10)
	}
	if q.MaxPrice > 0 {
		params["max_price"] = strconv.FormatInt(q.MaxPrice, 10)
	}
	if q.Bedrooms > 0 {
		params["bedrooms"] = strconv.Itoa(q.Bedrooms)
	}
	if q.Status != "" {
		params["status"] = q.Status
	}
	if q.Sort != "" {
		params["sort"] = q.Sort
	}
	if q.Page > 0 {
		params["page"] = strconv.Itoa(q.Page)
	}
	if q.PageSize > 0 {
		params["page_size"] = strconv.Itoa(q.PageSize)
	}
	return params
}

func (c *Client) SearchListings(ctx context.Context, query SearchQuery) (*ListingPage, error) {
	var response ListingPage
	resp, err := RestyClient.R().
		SetContext(ctx).
		SetQueryParams(query.Params()).
		SetHeader("Content-Type", "application/json").
		SetResult(&response).
		Get("/v1/listings")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("listinghub: search returned status %d", resp.StatusCode())
	}
	return &response, nil
}

func (c *Client) GetListing(ctx context.Context, id string) (*Listing, error) {
	var response Listing
	resp, err := RestyClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetResult(&response).
		Get(fmt.Sprintf("/v1/listings/%s", id))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("listinghub: get listing returned status %d", resp.StatusCode())
	}
	return &response, nil
}

func (c *Client) GetImageVariants(ctx context.Context, id string) (*ImageVariantsResponse, error) {
	var response ImageVariantsResponse
	resp, err := RestyClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetResult(&response).
		Get(fmt.Sprintf("/v1/listings/%s/images", id))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("listinghub: get image variants returned status %d", resp.StatusCode())
	}
	return &response, nil
}

type Listing struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Price       int64    `json:"price"`
	Currency    string   `json:"currency"`
	City        string   `json:"city"`
	Address     string   `json:"address,omitempty"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	AreaSqm     float64  `json:"area_sqm"`
	Status      string   `json:"status"`
	ImageIDs    []string `json:"image_ids,omitempty"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
}

type ListingPage struct {
	Data     []Listing `json:"data"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

type ImageVariant struct {
	Label  string `json:"label"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ImageVariantsResponse struct {
	ListingID string         `json:"listing_id"`
	Variants  []ImageVariant `json:"variants"`
}
