package models

import "time"

type Product struct {
	ID            int       `json:"id"`
	StoreID       int       `json:"store_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	Cost          float64   `json:"cost"`
	StockQuantity int       `json:"stock_quantity"`
	Category      string    `json:"category,omitempty"`
	Barcode       string    `json:"barcode,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateProductRequest represents the request body for creating a product
type CreateProductRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Cost          float64 `json:"cost"`
	StockQuantity int     `json:"stock_quantity"`
	Category      string  `json:"category"`
	Barcode       string  `json:"barcode"`
}

// UpdateProductRequest represents the request body for updating a product
type UpdateProductRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Cost          float64 `json:"cost"`
	StockQuantity int     `json:"stock_quantity"`
	Category      string  `json:"category"`
	Barcode       string  `json:"barcode"`
}
