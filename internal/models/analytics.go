package models

// DashboardStats is the aggregate snapshot shown on the store dashboard.
type DashboardStats struct {
	TotalCustomers  int     `json:"total_customers"`
	TotalProducts   int     `json:"total_products"`
	TotalOrders     int     `json:"total_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
	OutstandingDebt float64 `json:"outstanding_debt"`
	CustomerCredit  float64 `json:"customer_credit"`
	UnpaidInvoices  int     `json:"unpaid_invoices"`
	LowStockCount   int     `json:"low_stock_count"`
}

// SalesPoint is one day of the sales series.
type SalesPoint struct {
	Date    string  `json:"date"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}
