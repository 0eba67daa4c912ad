package dto

// FieldDiscrepancy is one denormalized counter that disagrees with the value
// recomputed from the customer's loans.
type FieldDiscrepancy struct {
	Field    string `json:"field"`
	Stored   string `json:"stored"`
	Computed string `json:"computed"`
}

// ConsistencyReport is the result of reconciling one customer's counters.
type ConsistencyReport struct {
	CustomerID    string             `json:"customerID"`
	Consistent    bool               `json:"consistent"`
	Discrepancies []FieldDiscrepancy `json:"discrepancies,omitempty"`
	Fixed         bool               `json:"fixed"`
}
