package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Step is a single mutation applied inside a Transaction.
type Step struct {
	Name  string
	Apply func(tx *gorm.DB) error
}

// StepError reports which step aborted a Transaction.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Transaction runs steps atomically against a database.
type Transaction struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTransaction creates a Transaction. A nil logger discards output.
func NewTransaction(db *gorm.DB, logger *zap.Logger) *Transaction {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transaction{db: db, logger: logger}
}

// Run applies steps in order inside one database transaction. The first
// failing step rolls back every step applied before it.
func (t *Transaction) Run(ctx context.Context, steps ...Step) error {
	if len(steps) == 0 {
		return nil
	}

	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, step := range steps {
			if err := step.Apply(tx); err != nil {
				t.logger.Debug("ledger step failed",
					zap.String("step", step.Name),
					zap.Int("index", i),
					zap.Int("steps", len(steps)),
					zap.Error(err),
				)
				return &StepError{Step: step.Name, Err: err}
			}
		}
		t.logger.Debug("ledger transaction committed", zap.Int("steps", len(steps)))
		return nil
	})
}
