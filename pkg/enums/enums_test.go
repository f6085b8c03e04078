package enums

import "testing"

func TestParseShopStatus(t *testing.T) {
	got, err := ParseShopStatus("verified")
	if err != nil || got != ShopStatusVerified {
		t.Fatalf("unexpected parse result %q %v", got, err)
	}
	if _, err := ParseShopStatus("approved"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestComplaintStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to ComplaintStatus
		ok       bool
	}{
		{ComplaintStatusPending, ComplaintStatusUnderReview, true},
		{ComplaintStatusPending, ComplaintStatusResolved, true},
		{ComplaintStatusPending, ComplaintStatusRejected, true},
		{ComplaintStatusUnderReview, ComplaintStatusResolved, true},
		{ComplaintStatusUnderReview, ComplaintStatusRejected, true},
		{ComplaintStatusUnderReview, ComplaintStatusPending, false},
		{ComplaintStatusUnderReview, ComplaintStatusUnderReview, false},
		{ComplaintStatusResolved, ComplaintStatusRejected, false},
		{ComplaintStatusRejected, ComplaintStatusResolved, false},
		{ComplaintStatusResolved, ComplaintStatusUnderReview, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.ok, got)
		}
	}
}

func TestParseComplaintStatusAlias(t *testing.T) {
	got, err := ParseComplaintStatus("in_progress")
	if err != nil || got != ComplaintStatusUnderReview {
		t.Fatalf("expected alias to map to under_review, got %q %v", got, err)
	}
}

func TestBatchStatusPurchasable(t *testing.T) {
	if !BatchStatusActive.Purchasable() {
		t.Fatal("active should be purchasable")
	}
	for _, s := range []BatchStatus{BatchStatusExpired, BatchStatusSoldOut} {
		if s.Purchasable() {
			t.Fatalf("%s should not be purchasable", s)
		}
	}
}

func TestParseUserRole(t *testing.T) {
	for _, role := range UserRoles() {
		if got, err := ParseUserRole(string(role)); err != nil || got != role {
			t.Fatalf("round trip failed for %s", role)
		}
	}
	if _, err := ParseUserRole("root"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
