package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/prianik/storefront/pkg/types"
)

// Listing defaults, mirrored from the web storefront.
const (
	DefaultPage         = 1
	DefaultPageSize     = 10
	DefaultRelatedLimit = 5
)

// Product sort directions.
const (
	SortPriceAsc  = "asc"
	SortPriceDesc = "desc"
)

// ProductQuery narrows a product listing. Zero values mean "not set".
type ProductQuery struct {
	Page          int
	PageSize      int
	CategoryID    int64
	SubcategoryID int64
	Search        string
	SortPrice     string
}

// Categories lists the catalog categories with their subcategories.
func (c *Client) Categories(ctx context.Context, language string) types.Envelope[[]types.Category] {
	return get[[]types.Category](ctx, c, "categories", "/categories", nil, language)
}

// Products lists a page of products matching the query.
func (c *Client) Products(ctx context.Context, q ProductQuery, language string) types.Envelope[types.ProductPage] {
	page := q.Page
	if page < 1 {
		page = DefaultPage
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))
	if q.CategoryID > 0 {
		query.Set("category", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.SubcategoryID > 0 {
		query.Set("subcategory", strconv.FormatInt(q.SubcategoryID, 10))
	}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.SortPrice == SortPriceAsc || q.SortPrice == SortPriceDesc {
		query.Set("sort_price", q.SortPrice)
	}

	return get[types.ProductPage](ctx, c, "products", "/products", query, language)
}

// ProductByID fetches one product.
func (c *Client) ProductByID(ctx context.Context, id int64, language string) types.Envelope[types.Product] {
	return get[types.Product](ctx, c, "product", fmt.Sprintf("/products/%d", id), nil, language)
}

// RelatedProducts fetches products related to the given one.
func (c *Client) RelatedProducts(ctx context.Context, id int64, limit int, language string) types.Envelope[[]types.Product] {
	if limit < 1 {
		limit = DefaultRelatedLimit
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	return get[[]types.Product](ctx, c, "related_products", fmt.Sprintf("/products/%d/related", id), query, language)
}

// GalleryItems lists gallery entries, optionally for one category.
func (c *Client) GalleryItems(ctx context.Context, categoryID int64, language string) types.Envelope[[]types.GalleryItem] {
	query := url.Values{}
	if categoryID > 0 {
		query.Set("category", strconv.FormatInt(categoryID, 10))
	}
	return get[[]types.GalleryItem](ctx, c, "gallery", "/gallery", query, language)
}

// SubmitContact sends a contact message. Language travels in the body.
func (c *Client) SubmitContact(ctx context.Context, req types.ContactRequest) types.Envelope[types.ContactReceipt] {
	return post[types.ContactReceipt](ctx, c, "submit_contact", "/contact", req)
}

// CreateOrder submits an order. Language travels in the body.
func (c *Client) CreateOrder(ctx context.Context, req types.OrderRequest) types.Envelope[types.OrderReceipt] {
	return post[types.OrderReceipt](ctx, c, "create_order", "/orders", req)
}
