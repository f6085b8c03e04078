package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// DailyWindow is how many days dailyStats covers, ending at asOf.
	DailyWindow = 30
	// ExpiringHorizon is how far ahead an active batch counts as expiring.
	ExpiringHorizon = 30 * 24 * time.Hour
	// TopShopsLimit caps the revenue ranking.
	TopShopsLimit = 5
	// KgPerTransaction is the fixed weight assumed per sale for foodSavedKg.
	KgPerTransaction = 0.5
)

// Summary is the admin dashboard document.
type Summary struct {
	AsOf                  time.Time       `json:"as_of"`
	TotalShops            int64           `json:"total_shops"`
	PendingShops          int64           `json:"pending_shops"`
	VerifiedShops         int64           `json:"verified_shops"`
	RejectedShops         int64           `json:"rejected_shops"`
	TotalUsers            int64           `json:"total_users"`
	Customers             int64           `json:"customers"`
	Shopkeepers           int64           `json:"shopkeepers"`
	Admins                int64           `json:"admins"`
	TotalProducts         int64           `json:"total_products"`
	ExpiringProductsCount int64           `json:"expiring_products_count"`
	TotalTransactions     int64           `json:"total_transactions"`
	RevenueThisMonth      decimal.Decimal `json:"revenue_this_month"`
	FoodSavedKg           float64         `json:"food_saved_kg"`
	PendingComplaints     int64           `json:"pending_complaints"`
	ResolvedComplaints    int64           `json:"resolved_complaints"`
	DailyStats            []DailyStat     `json:"daily_stats"`
	TopShops              []TopShop       `json:"top_shops"`
}

// DailyStat counts what was created on one UTC day.
type DailyStat struct {
	Date         string `json:"date"`
	ShopsCreated int    `json:"shops_created"`
	UsersCreated int    `json:"users_created"`
}

// TopShop is one entry of the revenue ranking.
type TopShop struct {
	ShopID    uuid.UUID       `json:"shop_id"`
	Name      string          `json:"name"`
	Revenue   decimal.Decimal `json:"revenue"`
	UnitsSold int64           `json:"units_sold"`
}
