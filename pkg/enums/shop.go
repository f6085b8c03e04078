package enums

// ShopStatus is the admin verification state of a shop (shop_status in Postgres).
type ShopStatus string

const (
	ShopStatusPending  ShopStatus = "pending"
	ShopStatusVerified ShopStatus = "verified"
	ShopStatusRejected ShopStatus = "rejected"
)

var validShopStatuses = []ShopStatus{
	ShopStatusPending,
	ShopStatusVerified,
	ShopStatusRejected,
}

func (s ShopStatus) String() string { return string(s) }

func (s ShopStatus) IsValid() bool { return contains(validShopStatuses, s) }

func ParseShopStatus(value string) (ShopStatus, error) {
	return parse("shop status", value, validShopStatuses)
}

// ShopStatuses lists every status in display order.
func ShopStatuses() []ShopStatus {
	return append([]ShopStatus(nil), validShopStatuses...)
}

// VerificationDecision is the admin's answer to a pending shop.
type VerificationDecision string

const (
	VerificationApprove VerificationDecision = "approve"
	VerificationReject  VerificationDecision = "reject"
)

var validVerificationDecisions = []VerificationDecision{VerificationApprove, VerificationReject}

func (d VerificationDecision) IsValid() bool { return contains(validVerificationDecisions, d) }

func ParseVerificationDecision(value string) (VerificationDecision, error) {
	return parse("verification decision", value, validVerificationDecisions)
}
