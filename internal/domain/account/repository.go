package account

import (
	"context"
)

// Repository defines the document store operations on account records
type Repository interface {
	// Create writes a new record. It fails with ErrAlreadyExists if one exists.
	Create(ctx context.Context, account *Account) error
	// Get returns the record or ErrNotFound
	Get(ctx context.Context, id string) (*Account, error)
	// GetByBillingCustomerID resolves a Stripe customer id back to its account
	GetByBillingCustomerID(ctx context.Context, customerID string) (*Account, error)
	// SetBillingCustomerID stores customerID only if the record has none yet and
	// returns the id stored after the call, which is the existing one when
	// another writer got there first.
	SetBillingCustomerID(ctx context.Context, id, customerID string) (string, error)
	// ApplyEntitlement activates the plan on the record
	ApplyEntitlement(ctx context.Context, id string, entitlement Entitlement) (*Account, error)
}
