package domain

import "time"

// ============================================================
// View models (derived, never cached across fetches)
// ============================================================

// Demographics is the member breakdown shown on the dashboard.
// Men + Women may be lower than Total when gender is unspecified.
type Demographics struct {
	Total        int `json:"total"`
	Men          int `json:"men"`
	Women        int `json:"women"`
	Children     int `json:"children"`
	Youth        int `json:"youth"`
	Adults       int `json:"adults"`
	NewThisMonth int `json:"newThisMonth"`
}

// DashboardView joins members, events and treasury figures.
type DashboardView struct {
	Members      Demographics  `json:"members"`
	TotalEvents  int           `json:"totalEvents"`
	TotalIncome  float64       `json:"totalIncome"`
	TotalExpense float64       `json:"totalExpense"`
	TotalBalance float64       `json:"totalBalance"`
	Monthly      []MonthlyStat `json:"monthly"`
	GeneratedAt  time.Time     `json:"generatedAt"`
}

// LedgerPage is one filtered, paginated side of the finance view.
type LedgerPage struct {
	Items   []Transaction `json:"items"`
	Search  string        `json:"search"`
	Matched int           `json:"matched"`
	Visible int           `json:"visible"`
	HasMore bool          `json:"hasMore"`
}

// FinanceView is the treasury page.
type FinanceView struct {
	Stats          TreasuryStats `json:"stats"`
	TotalAvailable float64       `json:"totalAvailable"`
	Incomes        LedgerPage    `json:"incomes"`
	Expenses       LedgerPage    `json:"expenses"`
}

// NotificationSnapshot is the poller's latest state.
type NotificationSnapshot struct {
	Items       []Notification `json:"items"`
	Unread      int            `json:"unread"`
	LastRefresh time.Time      `json:"lastRefresh"`
	LastError   string         `json:"lastError,omitempty"`
}

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}
