package tracker

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FormMode is the state of the transaction form
type FormMode int

const (
	FormClosed FormMode = iota
	FormCreate
	FormEdit
)

const dateLayout = "2006-01-02"

// FormFields holds the raw form inputs. Amount and Date stay strings so an
// empty input is distinguishable from a zero value.
type FormFields struct {
	Description string
	Amount      string
	Category    string
	Kind        string
	Date        string
}

func defaultFields() FormFields {
	return FormFields{Kind: models.KindIncome}
}

// Form is the create/edit modal state machine. A successful submit closes
// the form and resets the fields; a failed submit keeps everything so the
// user can correct and retry.
type Form struct {
	store  MutationStore
	logger *slog.Logger

	mu      sync.Mutex
	mode    FormMode
	ownerID uuid.UUID
	editing uuid.UUID
	fields  FormFields
}

// NewForm creates a closed form over the given store
func NewForm(mutations MutationStore, logger *slog.Logger) *Form {
	if logger == nil {
		logger = slog.Default()
	}
	return &Form{
		store:  mutations,
		logger: logger,
		fields: defaultFields(),
	}
}

// OpenCreate opens the form empty, in create mode, for the given owner
func (f *Form) OpenCreate(ownerID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = FormCreate
	f.ownerID = ownerID
	f.editing = uuid.Nil
	f.fields = defaultFields()
}

// OpenEdit opens the form pre-populated from an existing transaction
func (f *Form) OpenEdit(ownerID uuid.UUID, t models.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = FormEdit
	f.ownerID = ownerID
	f.editing = t.ID
	f.fields = FormFields{
		Description: t.Description,
		Amount:      t.Amount.String(),
		Category:    t.Category,
		Kind:        t.Kind,
		Date:        t.Date.Format(dateLayout),
	}
}

// Cancel closes the form without saving and discards the fields
func (f *Form) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

// Mode returns the current form mode
func (f *Form) Mode() FormMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// EditingID returns the transaction being edited, or uuid.Nil in create mode
func (f *Form) EditingID() uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editing
}

// Fields returns a copy of the current field values
func (f *Form) Fields() FormFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// SetFields replaces the field values while the form is open
func (f *Form) SetFields(fields FormFields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode == FormClosed {
		return
	}
	f.fields = fields
}

// Submit validates the fields and persists the transaction. On success the
// form closes and resets. On validation or persistence failure the form stays
// open with the fields intact, except an edit of a vanished transaction,
// which closes the form since there is nothing left to edit.
func (f *Form) Submit() error {
	f.mu.Lock()
	mode := f.mode
	ownerID := f.ownerID
	editing := f.editing
	fields := f.fields
	f.mu.Unlock()

	if mode == FormClosed {
		return nil
	}

	parsed, err := parseFields(fields)
	if err != nil {
		return err
	}

	switch mode {
	case FormCreate:
		transaction := &models.Transaction{
			OwnerID:     ownerID,
			Description: parsed.description,
			Amount:      parsed.amount,
			Category:    parsed.category,
			Kind:        parsed.kind,
			Date:        parsed.date,
		}
		if _, err := f.store.Create(transaction); err != nil {
			return err
		}
	case FormEdit:
		updates := map[string]interface{}{
			"description": parsed.description,
			"amount":      parsed.amount,
			"category":    parsed.category,
			"kind":        parsed.kind,
			"date":        parsed.date,
		}
		if err := f.store.Update(ownerID, editing, updates); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				f.logger.Warn("edited transaction no longer exists", "transaction_id", editing)
				f.mu.Lock()
				f.reset()
				f.mu.Unlock()
			}
			return err
		}
	}

	f.mu.Lock()
	f.reset()
	f.mu.Unlock()
	return nil
}

// reset closes the form and restores the defaults; callers hold f.mu
func (f *Form) reset() {
	f.mode = FormClosed
	f.ownerID = uuid.Nil
	f.editing = uuid.Nil
	f.fields = defaultFields()
}

type parsedFields struct {
	description string
	amount      decimal.Decimal
	category    string
	kind        string
	date        time.Time
}

// parseFields validates the raw inputs. Missing required fields are reported
// together, in display order, so the alert can name all of them at once.
func parseFields(fields FormFields) (*parsedFields, error) {
	var missing []string
	if fields.Description == "" {
		missing = append(missing, "description")
	}
	if fields.Amount == "" {
		missing = append(missing, "amount")
	}
	if fields.Category == "" {
		missing = append(missing, "category")
	}
	if fields.Date == "" {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return nil, &store.ValidationError{Fields: missing}
	}

	amount, err := decimal.NewFromString(fields.Amount)
	if err != nil || amount.IsNegative() {
		return nil, &store.ValidationError{Fields: []string{"amount"}}
	}

	if !models.IsValidKind(fields.Kind) {
		return nil, &store.ValidationError{Fields: []string{"kind"}}
	}

	date, err := time.Parse(dateLayout, fields.Date)
	if err != nil {
		return nil, &store.ValidationError{Fields: []string{"date"}}
	}

	return &parsedFields{
		description: fields.Description,
		amount:      amount,
		category:    fields.Category,
		kind:        fields.Kind,
		date:        date,
	}, nil
}
