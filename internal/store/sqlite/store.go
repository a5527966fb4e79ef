package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fiscal-reconstruction-service/internal/models"
	"fiscal-reconstruction-service/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Store implements store.Store backed by SQLite
type Store struct {
	db *DB
}

// NewStore creates a Store over an open database connection
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// AddProperty inserts a property, assigning an ID when it has none
func (s *Store) AddProperty(ctx context.Context, p *models.Property) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query := `
		INSERT INTO properties (id, label, address, status)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query, p.ID, p.Label, p.Address, string(p.Status))
	if err != nil {
		return fmt.Errorf("failed to insert property: %w", err)
	}
	return nil
}

// AddContract inserts a contract, assigning an ID when it has none
func (s *Store) AddContract(ctx context.Context, c *models.Contract) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	var endDate sql.NullString
	if c.EndDate != nil {
		endDate = sql.NullString{String: c.EndDate.Format(dateLayout), Valid: true}
	}

	query := `
		INSERT INTO contracts (id, property_id, start_date, end_date, monthly_rent, payment_day)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.PropertyID, c.StartDate.Format(dateLayout), endDate,
		c.MonthlyRent.String(), c.PaymentDay)
	if err != nil {
		return fmt.Errorf("failed to insert contract: %w", err)
	}
	return nil
}

// AddDocument inserts a document, assigning an ID when it has none
func (s *Store) AddDocument(ctx context.Context, d *models.Document) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	var issueDate, amount sql.NullString
	if d.FinancialData != nil {
		if d.FinancialData.IssueDate != nil {
			issueDate = sql.NullString{String: d.FinancialData.IssueDate.Format(dateLayout), Valid: true}
		}
		if d.FinancialData.Amount != nil {
			amount = sql.NullString{String: d.FinancialData.Amount.String(), Valid: true}
		}
	}

	var exerciseYear sql.NullInt64
	var box sql.NullString
	if d.AEATClassification != nil {
		if d.AEATClassification.ExerciseYear != nil {
			exerciseYear = sql.NullInt64{Int64: int64(*d.AEATClassification.ExerciseYear), Valid: true}
		}
		if d.AEATClassification.Box != "" {
			box = sql.NullString{String: d.AEATClassification.Box, Valid: true}
		}
	}

	query := `
		INSERT INTO documents (id, filename, entity_type, entity_id, issue_date, amount, exercise_year, aeat_box)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		d.ID, d.Filename, d.Metadata.EntityType, d.Metadata.EntityID,
		issueDate, amount, exerciseYear, box)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// GetProperty returns the property with the given ID, or store.ErrNotFound
func (s *Store) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	query := `
		SELECT id, label, COALESCE(address, ''), status
		FROM properties
		WHERE id = ?
	`

	var p models.Property
	var status string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Label, &p.Address, &status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("property %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query property: %w", err)
	}
	p.Status = models.PropertyStatus(status)
	return &p, nil
}

// GetAllProperties returns all properties ordered by ID
func (s *Store) GetAllProperties(ctx context.Context) ([]*models.Property, error) {
	query := `
		SELECT id, label, COALESCE(address, ''), status
		FROM properties
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	var out []*models.Property
	for rows.Next() {
		var p models.Property
		var status string
		if err := rows.Scan(&p.ID, &p.Label, &p.Address, &status); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		p.Status = models.PropertyStatus(status)
		out = append(out, &p)
	}
	return out, rows.Err()
}

// GetAllContracts returns all contracts ordered by ID
func (s *Store) GetAllContracts(ctx context.Context) ([]*models.Contract, error) {
	query := `
		SELECT id, property_id, start_date, end_date, monthly_rent, payment_day
		FROM contracts
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var out []*models.Contract
	for rows.Next() {
		var c models.Contract
		var startDate, rent string
		var endDate sql.NullString
		if err := rows.Scan(&c.ID, &c.PropertyID, &startDate, &endDate, &rent, &c.PaymentDay); err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}

		c.StartDate, err = time.Parse(dateLayout, startDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date for contract %s: %w", c.ID, err)
		}
		if endDate.Valid {
			end, err := time.Parse(dateLayout, endDate.String)
			if err != nil {
				return nil, fmt.Errorf("invalid end date for contract %s: %w", c.ID, err)
			}
			c.EndDate = &end
		}
		c.MonthlyRent, err = decimal.NewFromString(rent)
		if err != nil {
			return nil, fmt.Errorf("invalid monthly rent for contract %s: %w", c.ID, err)
		}

		out = append(out, &c)
	}
	return out, rows.Err()
}

// GetAllDocuments returns all documents ordered by ID
func (s *Store) GetAllDocuments(ctx context.Context) ([]*models.Document, error) {
	query := `
		SELECT id, filename, COALESCE(entity_type, ''), COALESCE(entity_id, ''),
		       issue_date, amount, exercise_year, aeat_box
		FROM documents
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var out []*models.Document
	for rows.Next() {
		var d models.Document
		var issueDate, amount, box sql.NullString
		var exerciseYear sql.NullInt64
		if err := rows.Scan(&d.ID, &d.Filename, &d.Metadata.EntityType, &d.Metadata.EntityID,
			&issueDate, &amount, &exerciseYear, &box); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		if issueDate.Valid || amount.Valid {
			d.FinancialData = &models.FinancialData{}
			if issueDate.Valid {
				t, err := time.Parse(dateLayout, issueDate.String)
				if err != nil {
					return nil, fmt.Errorf("invalid issue date for document %s: %w", d.ID, err)
				}
				d.FinancialData.IssueDate = &t
			}
			if amount.Valid {
				a, err := decimal.NewFromString(amount.String)
				if err != nil {
					return nil, fmt.Errorf("invalid amount for document %s: %w", d.ID, err)
				}
				d.FinancialData.Amount = &a
			}
		}

		if exerciseYear.Valid || box.Valid {
			d.AEATClassification = &models.AEATClassification{Box: box.String}
			if exerciseYear.Valid {
				y := int(exerciseYear.Int64)
				d.AEATClassification.ExerciseYear = &y
			}
		}

		out = append(out, &d)
	}
	return out, rows.Err()
}

// GetFiscalSummaries returns a property's summaries ordered by exercise year
func (s *Store) GetFiscalSummaries(ctx context.Context, propertyID string) ([]*models.FiscalSummary, error) {
	query := `
		SELECT property_id, exercise_year, income, expenses, result, computed_at
		FROM fiscal_summaries
		WHERE property_id = ?
		ORDER BY exercise_year
	`

	rows, err := s.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fiscal summaries: %w", err)
	}
	defer rows.Close()

	var out []*models.FiscalSummary
	for rows.Next() {
		var fs models.FiscalSummary
		var income, expenses, result, computedAt string
		if err := rows.Scan(&fs.PropertyID, &fs.ExerciseYear, &income, &expenses, &result, &computedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fiscal summary: %w", err)
		}

		if fs.Income, err = decimal.NewFromString(income); err != nil {
			return nil, fmt.Errorf("invalid income for summary %s/%d: %w", fs.PropertyID, fs.ExerciseYear, err)
		}
		if fs.Expenses, err = decimal.NewFromString(expenses); err != nil {
			return nil, fmt.Errorf("invalid expenses for summary %s/%d: %w", fs.PropertyID, fs.ExerciseYear, err)
		}
		if fs.Result, err = decimal.NewFromString(result); err != nil {
			return nil, fmt.Errorf("invalid result for summary %s/%d: %w", fs.PropertyID, fs.ExerciseYear, err)
		}
		if fs.ComputedAt, err = time.Parse(time.RFC3339, computedAt); err != nil {
			return nil, fmt.Errorf("invalid computed_at for summary %s/%d: %w", fs.PropertyID, fs.ExerciseYear, err)
		}

		out = append(out, &fs)
	}
	return out, rows.Err()
}

// SaveFiscalSummary upserts the summary for (property, exercise year)
func (s *Store) SaveFiscalSummary(ctx context.Context, summary *models.FiscalSummary) error {
	if summary == nil {
		return fmt.Errorf("fiscal summary cannot be nil")
	}

	query := `
		INSERT INTO fiscal_summaries (property_id, exercise_year, income, expenses, result, computed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(property_id, exercise_year) DO UPDATE SET
			income = excluded.income,
			expenses = excluded.expenses,
			result = excluded.result,
			computed_at = excluded.computed_at
	`

	_, err := s.db.ExecContext(ctx, query,
		summary.PropertyID, summary.ExerciseYear,
		summary.Income.String(), summary.Expenses.String(), summary.Result.String(),
		summary.ComputedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert fiscal summary: %w", err)
	}
	return nil
}

// GetCarryForwards returns a property's carryforward chain ordered by origin year
func (s *Store) GetCarryForwards(ctx context.Context, propertyID string) ([]*models.CarryForward, error) {
	query := `
		SELECT property_id, origin_year, amount, remaining, expiry_year
		FROM carry_forwards
		WHERE property_id = ?
		ORDER BY origin_year
	`

	rows, err := s.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query carry forwards: %w", err)
	}
	defer rows.Close()

	var out []*models.CarryForward
	for rows.Next() {
		var cf models.CarryForward
		var amount, remaining string
		if err := rows.Scan(&cf.PropertyID, &cf.OriginYear, &amount, &remaining, &cf.ExpiryYear); err != nil {
			return nil, fmt.Errorf("failed to scan carry forward: %w", err)
		}

		if cf.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid amount for carry forward %s/%d: %w", cf.PropertyID, cf.OriginYear, err)
		}
		if cf.Remaining, err = decimal.NewFromString(remaining); err != nil {
			return nil, fmt.Errorf("invalid remaining for carry forward %s/%d: %w", cf.PropertyID, cf.OriginYear, err)
		}

		out = append(out, &cf)
	}
	return out, rows.Err()
}

// ReplaceCarryForwards replaces a property's carryforward chain wholesale
func (s *Store) ReplaceCarryForwards(ctx context.Context, propertyID string, chain []*models.CarryForward) error {
	if propertyID == "" {
		return fmt.Errorf("property ID cannot be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM carry_forwards WHERE property_id = ?`, propertyID); err != nil {
		return fmt.Errorf("failed to clear carry forwards: %w", err)
	}

	insert := `
		INSERT INTO carry_forwards (property_id, origin_year, amount, remaining, expiry_year)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, cf := range chain {
		if _, err := tx.ExecContext(ctx, insert,
			propertyID, cf.OriginYear, cf.Amount.String(), cf.Remaining.String(), cf.ExpiryYear); err != nil {
			return fmt.Errorf("failed to insert carry forward: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit carry forwards: %w", err)
	}
	return nil
}
