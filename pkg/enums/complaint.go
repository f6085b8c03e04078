package enums

// ComplaintStatus is the moderation state of a complaint.
type ComplaintStatus string

const (
	ComplaintStatusPending     ComplaintStatus = "pending"
	ComplaintStatusUnderReview ComplaintStatus = "under_review"
	ComplaintStatusResolved    ComplaintStatus = "resolved"
	ComplaintStatusRejected    ComplaintStatus = "rejected"
)

// complaintStatusAliases maps legacy spellings still sent by older clients.
var complaintStatusAliases = map[string]ComplaintStatus{
	"in_progress": ComplaintStatusUnderReview,
}

var validComplaintStatuses = []ComplaintStatus{
	ComplaintStatusPending,
	ComplaintStatusUnderReview,
	ComplaintStatusResolved,
	ComplaintStatusRejected,
}

var complaintStatusRank = map[ComplaintStatus]int{
	ComplaintStatusPending:     0,
	ComplaintStatusUnderReview: 1,
	ComplaintStatusResolved:    2,
	ComplaintStatusRejected:    2,
}

func (s ComplaintStatus) String() string { return string(s) }

func (s ComplaintStatus) IsValid() bool { return contains(validComplaintStatuses, s) }

// IsTerminal reports whether no further transition is allowed.
func (s ComplaintStatus) IsTerminal() bool {
	return s == ComplaintStatusResolved || s == ComplaintStatusRejected
}

// CanTransitionTo enforces forward-only moderation: states may be skipped but
// never revisited, and terminal states are final.
func (s ComplaintStatus) CanTransitionTo(next ComplaintStatus) bool {
	if !s.IsValid() || !next.IsValid() || s.IsTerminal() {
		return false
	}
	return complaintStatusRank[next] > complaintStatusRank[s]
}

func ParseComplaintStatus(value string) (ComplaintStatus, error) {
	if alias, ok := complaintStatusAliases[value]; ok {
		return alias, nil
	}
	return parse("complaint status", value, validComplaintStatuses)
}

// ComplaintCategory classifies what the customer is complaining about.
type ComplaintCategory string

const (
	ComplaintCategoryFakeDiscount   ComplaintCategory = "fake_discount"
	ComplaintCategoryExpiredProduct ComplaintCategory = "expired_product"
	ComplaintCategoryWrongListing   ComplaintCategory = "wrong_listing"
	ComplaintCategoryPoorService    ComplaintCategory = "poor_service"
	ComplaintCategoryOther          ComplaintCategory = "other"
)

var validComplaintCategories = []ComplaintCategory{
	ComplaintCategoryFakeDiscount,
	ComplaintCategoryExpiredProduct,
	ComplaintCategoryWrongListing,
	ComplaintCategoryPoorService,
	ComplaintCategoryOther,
}

func (c ComplaintCategory) IsValid() bool { return contains(validComplaintCategories, c) }

func ParseComplaintCategory(value string) (ComplaintCategory, error) {
	return parse("complaint category", value, validComplaintCategories)
}
