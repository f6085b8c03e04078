package enums

// BatchStatus is the lifecycle state of an inventory batch.
type BatchStatus string

const (
	BatchStatusActive  BatchStatus = "active"
	BatchStatusExpired BatchStatus = "expired"
	BatchStatusSoldOut BatchStatus = "sold_out"
)

var validBatchStatuses = []BatchStatus{
	BatchStatusActive,
	BatchStatusExpired,
	BatchStatusSoldOut,
}

func (s BatchStatus) String() string { return string(s) }

func (s BatchStatus) IsValid() bool { return contains(validBatchStatuses, s) }

// Purchasable reports whether stock can still be sold from a batch in this state.
func (s BatchStatus) Purchasable() bool { return s == BatchStatusActive }

func ParseBatchStatus(value string) (BatchStatus, error) {
	return parse("batch status", value, validBatchStatuses)
}
