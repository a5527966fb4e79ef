package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PropertyStatus represents the lifecycle state of a property
type PropertyStatus string

const (
	// PropertyStatusActive marks a property that is currently managed
	PropertyStatusActive PropertyStatus = "ACTIVE"
	// PropertyStatusInactive marks a property that is no longer managed
	PropertyStatusInactive PropertyStatus = "INACTIVE"
	// PropertyStatusSold marks a property that has been sold
	PropertyStatusSold PropertyStatus = "SOLD"
)

// String returns the string representation of PropertyStatus
func (s PropertyStatus) String() string {
	return string(s)
}

// IsValid checks if the property status is valid
func (s PropertyStatus) IsValid() bool {
	return s == PropertyStatusActive || s == PropertyStatusInactive || s == PropertyStatusSold
}

// Property represents a managed rental property
type Property struct {
	ID      string         `json:"id"`
	Label   string         `json:"label"`
	Address string         `json:"address,omitempty"`
	Status  PropertyStatus `json:"status"`
}

// NewProperty creates a new Property instance
func NewProperty(id, label string, status PropertyStatus) *Property {
	return &Property{
		ID:     id,
		Label:  label,
		Status: status,
	}
}

// Validate performs basic validation on the Property
func (p *Property) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("property ID cannot be empty")
	}

	if strings.TrimSpace(p.Label) == "" {
		return fmt.Errorf("property label cannot be empty")
	}

	if !p.Status.IsValid() {
		return fmt.Errorf("invalid property status: %s", p.Status)
	}

	return nil
}

// IsActive returns true if the property is eligible for reconstruction
func (p *Property) IsActive() bool {
	return p.Status == PropertyStatusActive
}

// String returns a string representation of the Property
func (p *Property) String() string {
	return fmt.Sprintf("Property{ID: %s, Label: %s, Status: %s}", p.ID, p.Label, p.Status)
}

// Contract represents a rental contract attached to a property.
// Contracts are created and edited elsewhere; the reconstruction engine
// only reads them and re-derives fiscal consequences.
type Contract struct {
	ID          string          `json:"id"`
	PropertyID  string          `json:"propertyId"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     *time.Time      `json:"endDate,omitempty"`
	MonthlyRent decimal.Decimal `json:"monthlyRent"`
	PaymentDay  int             `json:"paymentDay"`
}

// NewContract creates a new Contract instance
func NewContract(id, propertyID string, start time.Time, rent decimal.Decimal, paymentDay int) *Contract {
	return &Contract{
		ID:          id,
		PropertyID:  propertyID,
		StartDate:   start,
		MonthlyRent: rent,
		PaymentDay:  paymentDay,
	}
}

// Validate performs basic structural validation on the Contract.
// Window eligibility is a validator concern, not checked here.
func (c *Contract) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("contract ID cannot be empty")
	}

	if strings.TrimSpace(c.PropertyID) == "" {
		return fmt.Errorf("contract property ID cannot be empty")
	}

	if c.StartDate.IsZero() {
		return fmt.Errorf("contract start date cannot be zero")
	}

	if c.EndDate != nil && c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("contract end date cannot be before start date")
	}

	if !c.MonthlyRent.IsPositive() {
		return fmt.Errorf("contract monthly rent must be positive, got %s", c.MonthlyRent.String())
	}

	if c.PaymentDay < 1 || c.PaymentDay > 31 {
		return fmt.Errorf("contract payment day must be between 1 and 31, got %d", c.PaymentDay)
	}

	return nil
}

// IsOpenEnded returns true if the contract has no end date
func (c *Contract) IsOpenEnded() bool {
	return c.EndDate == nil
}

// ActiveMonthsInYear returns the number of months the contract covers
// within the given calendar year. A contract covers a month when it is
// active on any day of that month.
func (c *Contract) ActiveMonthsInYear(year int) int {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	from := c.StartDate
	if from.Before(yearStart) {
		from = yearStart
	}

	to := yearEnd
	if c.EndDate != nil && c.EndDate.Before(yearEnd) {
		to = *c.EndDate
	}

	if from.After(yearEnd) || to.Before(yearStart) || to.Before(from) {
		return 0
	}

	return int(to.Month()) - int(from.Month()) + 1
}

// String returns a string representation of the Contract
func (c *Contract) String() string {
	end := "open"
	if c.EndDate != nil {
		end = c.EndDate.Format("2006-01-02")
	}
	return fmt.Sprintf("Contract{ID: %s, Property: %s, Start: %s, End: %s, Rent: %s}",
		c.ID, c.PropertyID, c.StartDate.Format("2006-01-02"), end, c.MonthlyRent.String())
}

// MarshalJSON implements custom JSON marshaling for Contract
func (c *Contract) MarshalJSON() ([]byte, error) {
	type Alias Contract
	return json.Marshal(&struct {
		MonthlyRent string `json:"monthlyRent"`
		*Alias
	}{
		MonthlyRent: c.MonthlyRent.String(),
		Alias:       (*Alias)(c),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Contract
func (c *Contract) UnmarshalJSON(data []byte) error {
	type Alias Contract
	aux := &struct {
		MonthlyRent string `json:"monthlyRent"`
		*Alias
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	c.MonthlyRent, err = decimal.NewFromString(aux.MonthlyRent)
	if err != nil {
		return fmt.Errorf("invalid monthly rent format: %w", err)
	}

	return nil
}

// FinancialData holds the financial attributes extracted from a document.
// All fields are optional because document ingestion cannot guarantee
// extraction succeeded; validators treat absence as a reportable condition.
type FinancialData struct {
	IssueDate *time.Time       `json:"issueDate,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
}

// AEATClassification holds the Spanish tax-office classification assigned
// to a document during ingestion.
type AEATClassification struct {
	ExerciseYear *int   `json:"exerciseYear,omitempty"`
	Box          string `json:"box,omitempty"`
}

// DocumentMetadata links a document to the entity it belongs to
type DocumentMetadata struct {
	EntityType string `json:"entityType,omitempty"`
	EntityID   string `json:"entityId,omitempty"`
}

// EntityTypeProperty is the metadata entity type for property documents
const EntityTypeProperty = "property"

// Document represents an ingested financial document (invoice, receipt).
// Documents are produced by ingestion/OCR and are read-only here.
type Document struct {
	ID                 string              `json:"id"`
	Filename           string              `json:"filename"`
	Metadata           DocumentMetadata    `json:"metadata"`
	FinancialData      *FinancialData      `json:"financialData,omitempty"`
	AEATClassification *AEATClassification `json:"aeatClassification,omitempty"`
}

// BelongsToProperty returns true if the document is attributed to the given property
func (d *Document) BelongsToProperty(propertyID string) bool {
	return d.Metadata.EntityType == EntityTypeProperty && d.Metadata.EntityID == propertyID
}

// HasIssueDate returns true if the document carries an extracted issue date
func (d *Document) HasIssueDate() bool {
	return d.FinancialData != nil && d.FinancialData.IssueDate != nil
}

// AttributedYear returns the fiscal year the document belongs to: the AEAT
// exercise year when classified, otherwise the issue-date year. The second
// return value is false when neither is available.
func (d *Document) AttributedYear() (int, bool) {
	if d.AEATClassification != nil && d.AEATClassification.ExerciseYear != nil {
		return *d.AEATClassification.ExerciseYear, true
	}
	if d.HasIssueDate() {
		return d.FinancialData.IssueDate.Year(), true
	}
	return 0, false
}

// String returns a string representation of the Document
func (d *Document) String() string {
	return fmt.Sprintf("Document{ID: %s, Filename: %s, Entity: %s/%s}",
		d.ID, d.Filename, d.Metadata.EntityType, d.Metadata.EntityID)
}

// FiscalSummary aggregates income, expenses and result for one property
// and one exercise year. Exactly one summary exists per (property, year);
// recomputation is a full overwrite.
type FiscalSummary struct {
	PropertyID   string          `json:"propertyId"`
	ExerciseYear int             `json:"exerciseYear"`
	Income       decimal.Decimal `json:"income"`
	Expenses     decimal.Decimal `json:"expenses"`
	Result       decimal.Decimal `json:"result"`
	ComputedAt   time.Time       `json:"computedAt"`
}

// NewFiscalSummary creates a FiscalSummary with the result derived from
// income and expenses.
func NewFiscalSummary(propertyID string, year int, income, expenses decimal.Decimal) *FiscalSummary {
	return &FiscalSummary{
		PropertyID:   propertyID,
		ExerciseYear: year,
		Income:       income,
		Expenses:     expenses,
		Result:       income.Sub(expenses),
		ComputedAt:   time.Now(),
	}
}

// IsLoss returns true if the year closed with a negative result
func (fs *FiscalSummary) IsLoss() bool {
	return fs.Result.IsNegative()
}

// String returns a string representation of the FiscalSummary
func (fs *FiscalSummary) String() string {
	return fmt.Sprintf("FiscalSummary{Property: %s, Year: %d, Income: %s, Expenses: %s, Result: %s}",
		fs.PropertyID, fs.ExerciseYear, fs.Income.String(), fs.Expenses.String(), fs.Result.String())
}

// MarshalJSON implements custom JSON marshaling for FiscalSummary
func (fs *FiscalSummary) MarshalJSON() ([]byte, error) {
	type Alias FiscalSummary
	return json.Marshal(&struct {
		Income   string `json:"income"`
		Expenses string `json:"expenses"`
		Result   string `json:"result"`
		*Alias
	}{
		Income:   fs.Income.String(),
		Expenses: fs.Expenses.String(),
		Result:   fs.Result.String(),
		Alias:    (*Alias)(fs),
	})
}

// CarryForward represents one link of a property's loss carryforward chain:
// a negative yearly result rolled forward against later positive results.
// The chain is derived strictly from the ordered fiscal summaries and is
// fully replaced on every recomputation.
type CarryForward struct {
	PropertyID string          `json:"propertyId"`
	OriginYear int             `json:"originYear"`
	Amount     decimal.Decimal `json:"amount"`
	Remaining  decimal.Decimal `json:"remaining"`
	ExpiryYear int             `json:"expiryYear"`
}

// IsExhausted returns true if the loss has been fully compensated
func (cf *CarryForward) IsExhausted() bool {
	return !cf.Remaining.IsPositive()
}

// String returns a string representation of the CarryForward
func (cf *CarryForward) String() string {
	return fmt.Sprintf("CarryForward{Property: %s, Origin: %d, Amount: %s, Remaining: %s, Expires: %d}",
		cf.PropertyID, cf.OriginYear, cf.Amount.String(), cf.Remaining.String(), cf.ExpiryYear)
}

// Utility functions for type conversion and validation

// ParseDecimalFromString parses a decimal value from string with validation
func ParseDecimalFromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	// Strip currency symbols and thousand separators
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}

// ParseDateWithFormats attempts to parse a date from string using the
// formats that show up in contract and document data.
func ParseDateWithFormats(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
		"02/01/2006",
		"02-01-2006",
	}

	var lastErr error
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date '%s': %w", s, lastErr)
}
