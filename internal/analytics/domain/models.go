package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type DailySummary struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type DashboardSummary struct {
	TodaySales     decimal.Decimal `json:"today_sales"`
	TodayPurchases decimal.Decimal `json:"today_purchases"`
	SalesCount     int             `json:"sales_count"`
	PurchasesCount int             `json:"purchases_count"`
	// TotalCash and TotalBank are net of receipts (+) and payments (-).
	TotalCash decimal.Decimal `json:"total_cash"`
	TotalBank decimal.Decimal `json:"total_bank"`
}

type MonthlyTrend struct {
	Month     string          `json:"month"`
	Sales     decimal.Decimal `json:"sales"`
	Purchases decimal.Decimal `json:"purchases"`
	Profit    decimal.Decimal `json:"profit"`
}

// EntryKind labels a day book line.
type EntryKind string

const (
	EntrySale     EntryKind = "sale"
	EntryPurchase EntryKind = "purchase"
	EntryPayment  EntryKind = "payment"
	EntryReceipt  EntryKind = "receipt"
)

type DayBookEntry struct {
	Kind       EntryKind       `json:"kind"`
	ID         snowflake.ID    `json:"id"`
	InvoiceNo  string          `json:"invoice_no"`
	CustomerID snowflake.ID    `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Fine       decimal.Decimal `json:"fine"`
	CreatedAt  time.Time       `json:"created_at"`
}

type DayBook struct {
	Date      string          `json:"date"`
	Entries   []DayBookEntry  `json:"entries"`
	Sales     decimal.Decimal `json:"total_sales"`
	Purchases decimal.Decimal `json:"total_purchases"`
	Payments  decimal.Decimal `json:"total_payments"`
	Receipts  decimal.Decimal `json:"total_receipts"`
}
