package operation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("operation not found")
	ErrCodeExists = errors.New("operation code already exists")
)

// Status classifies an operation's lifecycle. It is always derived from the
// current items, deductions and payments; callers must not set it directly.
type Status string

const (
	StatusInProgress     Status = "in_progress"
	StatusCompleted      Status = "completed"
	StatusPartialPayment Status = "completed_partial_payment"
	StatusFullPayment    Status = "completed_full_payment"
	StatusOverpaid       Status = "completed_overpaid"
)

// DeductionType distinguishes percentage-based deductions from fixed charges.
type DeductionType string

const (
	DeductionPercentage DeductionType = "percentage"
	DeductionFixed      DeductionType = "fixed"
)

// PaymentType is how a received payment was made.
type PaymentType string

const (
	PaymentCash  PaymentType = "cash"
	PaymentCheck PaymentType = "check"
)

// RelatedTo marks whether a guarantee or warranty covers the whole operation
// or one specific line item.
type RelatedTo string

const (
	RelatedToOperation RelatedTo = "operation"
	RelatedToItem      RelatedTo = "item"
)

// Operation is a construction contract. Child collections are owned by value
// and persisted as JSON documents alongside the row.
//
// TotalAmount, TotalReceived, OverallExecutionPercentage and Status are cached
// copies of derived figures; Summarize is the single authority that computes
// them and the service refreshes them on every mutation.
type Operation struct {
	ID                         uuid.UUID
	Code                       string
	Name                       string
	ClientID                   uuid.UUID
	Items                      []LineItem
	Deductions                 []Deduction
	GuaranteeChecks            []GuaranteeCheck
	GuaranteeLetters           []GuaranteeLetter
	WarrantyCertificates       []WarrantyCertificate
	ReceivedPayments           []ReceivedPayment
	TotalAmount                int64 // minor currency units
	TotalReceived              int64
	OverallExecutionPercentage float64
	Status                     Status
	CreatedBy                  *uuid.UUID
	CreatedAt                  time.Time
	UpdatedAt                  *time.Time
}

// LineItem is one billable component of an operation. Amount is the contract
// face value in minor units; ExecutionPercentage is how much of the work is
// done, in [0, 100].
type LineItem struct {
	ID                  uuid.UUID  `json:"id"`
	Code                string     `json:"code"`
	Description         string     `json:"description"`
	Amount              int64      `json:"amount"`
	ContractNumber      string     `json:"contractNumber,omitempty"`
	ContractDate        *time.Time `json:"contractDate,omitempty"`
	ExecutionPercentage float64    `json:"executionPercentage"`
	AddedAt             time.Time  `json:"addedAt"`
}

// Deduction is a charge subtracted from the executed total. Value is
// percentage points for percentage deductions and minor currency units for
// fixed ones. Inactive deductions are ignored by every calculation.
type Deduction struct {
	ID       uuid.UUID     `json:"id"`
	Name     string        `json:"name"`
	Type     DeductionType `json:"type"`
	Value    float64       `json:"value"`
	IsActive bool          `json:"isActive"`
}

// GuaranteeCheck is a bank check held as security.
type GuaranteeCheck struct {
	ID            uuid.UUID  `json:"id"`
	CheckNumber   string     `json:"checkNumber"`
	Amount        int64      `json:"amount"`
	CheckDate     time.Time  `json:"checkDate"`
	DeliveryDate  time.Time  `json:"deliveryDate"`
	ExpiryDate    time.Time  `json:"expiryDate"`
	Bank          string     `json:"bank"`
	IsReturned    bool       `json:"isReturned"`
	ReturnDate    *time.Time `json:"returnDate,omitempty"`
	RelatedTo     RelatedTo  `json:"relatedTo"`
	RelatedItemID *uuid.UUID `json:"relatedItemId,omitempty"`
}

// GuaranteeLetter is a bank letter of guarantee, renewable until returned.
type GuaranteeLetter struct {
	ID            uuid.UUID       `json:"id"`
	Bank          string          `json:"bank"`
	LetterDate    time.Time       `json:"letterDate"`
	LetterNumber  string          `json:"letterNumber"`
	Amount        int64           `json:"amount"`
	DueDate       time.Time       `json:"dueDate"`
	Renewals      []LetterRenewal `json:"renewals"`
	RelatedTo     RelatedTo       `json:"relatedTo"`
	RelatedItemID *uuid.UUID      `json:"relatedItemId,omitempty"`
	IsReturned    bool            `json:"isReturned"`
	ReturnDate    *time.Time      `json:"returnDate,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

type LetterRenewal struct {
	ID          uuid.UUID `json:"id"`
	RenewalDate time.Time `json:"renewalDate"`
	NewDueDate  time.Time `json:"newDueDate"`
	Notes       string    `json:"notes,omitempty"`
}

// WarrantyCertificate is a post-completion warranty record. It does not
// participate in the payment math.
type WarrantyCertificate struct {
	ID                   uuid.UUID  `json:"id"`
	CertificateNumber    string     `json:"certificateNumber"`
	IssueDate            time.Time  `json:"issueDate"`
	StartDate            time.Time  `json:"startDate"`
	EndDate              time.Time  `json:"endDate"`
	WarrantyPeriodMonths int        `json:"warrantyPeriodMonths"`
	Description          string     `json:"description"`
	RelatedTo            RelatedTo  `json:"relatedTo"`
	RelatedItemID        *uuid.UUID `json:"relatedItemId,omitempty"`
	IsActive             bool       `json:"isActive"`
	Notes                string     `json:"notes,omitempty"`
}

// ReceivedPayment is a cash or check payment applied against the operation.
// A payment counts toward TotalReceived as soon as it is recorded, even for
// checks whose ReceiptDate is not yet set.
type ReceivedPayment struct {
	ID          uuid.UUID   `json:"id"`
	Type        PaymentType `json:"type"`
	Amount      int64       `json:"amount"`
	Date        time.Time   `json:"date"`
	CheckNumber string      `json:"checkNumber,omitempty"`
	Bank        string      `json:"bank,omitempty"`
	ReceiptDate *time.Time  `json:"receiptDate,omitempty"`
	Notes       string      `json:"notes,omitempty"`
}
