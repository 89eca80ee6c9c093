package firestore

import (
	"context"
	"time"

	gfs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/geoforest/billing/internal/domain/account"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/logger"
)

// Firestore field paths of the account document
const (
	fieldBillingCustomerID = "stripeCustomerId"
	fieldStatus            = "statusAssinatura"
	fieldPlanID            = "planoId"
	fieldFeatures          = "features"
	fieldLimits            = "limites"
	fieldTrialActive       = "trial.ativo"
	fieldUpdatedAt         = "atualizadoEm"
)

type accountRepository struct {
	client     *gfs.Client
	collection string
	log        *logger.Logger
}

func NewAccountRepository(client *gfs.Client, collection string, log *logger.Logger) account.Repository {
	return &accountRepository{
		client:     client,
		collection: collection,
		log:        log,
	}
}

func (r *accountRepository) doc(id string) *gfs.DocumentRef {
	return r.client.Collection(r.collection).Doc(id)
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	r.log.Debugw("creating account", "account_id", a.ID)

	if _, err := r.doc(a.ID).Create(ctx, a); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ierr.WithError(err).
				WithHint("Account already exists").
				WithReportableDetails(map[string]any{"account_id": a.ID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create account").
			WithReportableDetails(map[string]any{"account_id": a.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id string) (*account.Account, error) {
	r.log.Debugw("getting account", "account_id", id)

	snap, err := r.doc(id).Get(ctx)
	if err != nil {
		return nil, r.readError(err, id)
	}
	return decodeAccount(snap)
}

func (r *accountRepository) GetByBillingCustomerID(ctx context.Context, customerID string) (*account.Account, error) {
	r.log.Debugw("getting account by billing customer", "billing_customer_id", customerID)

	iter := r.client.Collection(r.collection).
		Where(fieldBillingCustomerID, "==", customerID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, ierr.NewError("account not found for billing customer").
			WithHint("Account was not found").
			WithReportableDetails(map[string]any{"billing_customer_id": customerID}).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to look up account").
			WithReportableDetails(map[string]any{"billing_customer_id": customerID}).
			Mark(ierr.ErrDatabase)
	}
	return decodeAccount(snap)
}

// SetBillingCustomerID reads and conditionally updates inside one transaction,
// so two concurrent callers can never both store an id.
func (r *accountRepository) SetBillingCustomerID(ctx context.Context, id, customerID string) (string, error) {
	ref := r.doc(id)

	var stored string
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *gfs.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		current, err := decodeAccount(snap)
		if err != nil {
			return err
		}
		if current.HasBillingCustomer() {
			stored = current.BillingCustomerID
			return nil
		}
		stored = customerID
		return tx.Update(ref, []gfs.Update{
			{Path: fieldBillingCustomerID, Value: customerID},
			{Path: fieldUpdatedAt, Value: time.Now().UTC()},
		})
	})
	if err != nil {
		return "", r.readError(err, id)
	}

	r.log.Debugw("billing customer id resolved",
		"account_id", id,
		"billing_customer_id", stored,
		"won", stored == customerID,
	)
	return stored, nil
}

func (r *accountRepository) ApplyEntitlement(ctx context.Context, id string, e account.Entitlement) (*account.Account, error) {
	ref := r.doc(id)

	var updated *account.Account
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *gfs.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		current, err := decodeAccount(snap)
		if err != nil {
			return err
		}
		current.Apply(e, time.Now().UTC())
		updated = current
		return tx.Update(ref, []gfs.Update{
			{Path: fieldStatus, Value: string(current.Status)},
			{Path: fieldPlanID, Value: current.PlanID},
			{Path: fieldFeatures, Value: current.Features},
			{Path: fieldLimits, Value: current.Limits},
			{Path: fieldTrialActive, Value: false},
			{Path: fieldUpdatedAt, Value: current.UpdatedAt},
		})
	})
	if err != nil {
		return nil, r.readError(err, id)
	}
	return updated, nil
}

func (r *accountRepository) readError(err error, id string) error {
	if ierr.IsDatabase(err) {
		return err
	}
	if status.Code(err) == codes.NotFound {
		return ierr.WithError(err).
			WithHintf("Account %s was not found", id).
			WithReportableDetails(map[string]any{"account_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithHint("Failed to access account").
		WithReportableDetails(map[string]any{"account_id": id}).
		Mark(ierr.ErrDatabase)
}

func decodeAccount(snap *gfs.DocumentSnapshot) (*account.Account, error) {
	var a account.Account
	if err := snap.DataTo(&a); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Stored account is malformed").
			WithReportableDetails(map[string]any{"account_id": snap.Ref.ID}).
			Mark(ierr.ErrDatabase)
	}
	a.ID = snap.Ref.ID
	return &a, nil
}
