package enums

// ActivityAction names an audited admin action.
type ActivityAction string

const (
	ActivityShopApproved      ActivityAction = "shop_approved"
	ActivityShopRejected      ActivityAction = "shop_rejected"
	ActivityShopSuspended     ActivityAction = "shop_suspended"
	ActivityShopUnsuspended   ActivityAction = "shop_unsuspended"
	ActivityComplaintReview   ActivityAction = "complaint_review"
	ActivityComplaintResolved ActivityAction = "complaint_resolved"
	ActivityComplaintRejected ActivityAction = "complaint_rejected"
)

// ActivityTarget names the kind of entity an admin acted on.
type ActivityTarget string

const (
	ActivityTargetShop      ActivityTarget = "shop"
	ActivityTargetComplaint ActivityTarget = "complaint"
)
