package mysql

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"shop/pkg/domain/model"
)

type paymentRow struct {
	ID                uuid.UUID       `db:"id"`
	OrderID           uuid.UUID       `db:"order_id"`
	Amount            decimal.Decimal `db:"amount"`
	Currency          string          `db:"currency"`
	Provider          string          `db:"provider"`
	Status            string          `db:"status"`
	IdempotencyKey    string          `db:"idempotency_key"`
	ProviderPaymentID *string         `db:"provider_payment_id"`
	CheckoutURL       *string         `db:"checkout_url"`
	FailReason        *string         `db:"fail_reason"`
	ProviderPayload   []byte          `db:"provider_payload"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (r paymentRow) toModel() *model.Payment {
	return &model.Payment{
		ID:                r.ID,
		OrderID:           r.OrderID,
		Amount:            r.Amount,
		Currency:          r.Currency,
		Provider:          r.Provider,
		Status:            model.PaymentStatus(r.Status),
		IdempotencyKey:    r.IdempotencyKey,
		ProviderPaymentID: r.ProviderPaymentID,
		CheckoutURL:       r.CheckoutURL,
		FailReason:        r.FailReason,
		ProviderPayload:   json.RawMessage(r.ProviderPayload),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

const paymentColumns = `id, order_id, amount, currency, provider, status, idempotency_key,
	provider_payment_id, checkout_url, fail_reason, provider_payload, created_at, updated_at`

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) model.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *paymentRepository) Create(payment *model.Payment) error {
	_, err := r.db.Exec(
		`INSERT INTO payments (id, order_id, amount, currency, provider, status, idempotency_key, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.OrderID, payment.Amount, payment.Currency, payment.Provider,
		string(payment.Status), payment.IdempotencyKey, payment.CreatedAt, payment.UpdatedAt,
	)
	if isDuplicateEntry(err, "uniq_payments_active_order") {
		return model.ErrActivePaymentExists
	}
	return errors.Wrap(err, "insert payment")
}

func (r *paymentRepository) Find(id uuid.UUID) (*model.Payment, error) {
	var row paymentRow
	err := r.db.Get(&row, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPaymentNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select payment")
	}
	return row.toModel(), nil
}

func (r *paymentRepository) FindByProviderPaymentID(providerPaymentID string) (*model.Payment, error) {
	var row paymentRow
	err := r.db.Get(&row, `SELECT `+paymentColumns+` FROM payments WHERE provider_payment_id = ?`, providerPaymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPaymentNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select payment by provider id")
	}
	return row.toModel(), nil
}

func (r *paymentRepository) FindActiveByOrder(orderID uuid.UUID) (*model.Payment, error) {
	var row paymentRow
	err := r.db.Get(&row,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = ? AND status IN (?, ?)`,
		orderID, string(model.PaymentCreated), string(model.PaymentPending),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select active payment")
	}
	return row.toModel(), nil
}

func (r *paymentRepository) Update(payment *model.Payment) error {
	_, err := r.db.Exec(
		`UPDATE payments SET status = ?, provider_payment_id = ?, checkout_url = ?, fail_reason = ?, provider_payload = ?, updated_at = ?
		 WHERE id = ?`,
		string(payment.Status), payment.ProviderPaymentID, payment.CheckoutURL,
		payment.FailReason, []byte(payment.ProviderPayload), payment.UpdatedAt, payment.ID,
	)
	return errors.Wrap(err, "update payment")
}

// Reconcile applies a webhook outcome: the payment update and, for a
// succeeded payment, the pending->paid order promotion commit together.
// The payment update is conditional on fromStatus so that concurrent
// deliveries cannot overwrite each other's terminal state.
func (r *paymentRepository) Reconcile(payment *model.Payment, fromStatus model.PaymentStatus, markOrderPaid bool) (bool, error) {
	var moved bool
	err := inTx(r.db, func(tx *sqlx.Tx) error {
		result, err := tx.Exec(
			`UPDATE payments SET status = ?, fail_reason = ?, provider_payload = ?, updated_at = ? WHERE id = ? AND status = ?`,
			string(payment.Status), payment.FailReason, []byte(payment.ProviderPayload), payment.UpdatedAt, payment.ID, string(fromStatus),
		)
		if err != nil {
			return errors.Wrap(err, "update payment")
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "update payment")
		}
		if affected == 0 {
			return nil
		}
		moved = true

		if markOrderPaid {
			_, err := tx.Exec(
				`UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
				string(model.OrderPaid), time.Now().UTC(), payment.OrderID, string(model.OrderPending),
			)
			if err != nil {
				return errors.Wrap(err, "promote order to paid")
			}
		}
		return nil
	})
	return moved, err
}

func (r *paymentRepository) CancelStaleCreated(before time.Time) (int64, error) {
	result, err := r.db.Exec(
		`UPDATE payments SET status = ?, fail_reason = ?, updated_at = ?
		 WHERE status = ? AND created_at < ?`,
		string(model.PaymentCanceled), "expired before provider registration", time.Now().UTC(),
		string(model.PaymentCreated), before,
	)
	if err != nil {
		return 0, errors.Wrap(err, "cancel stale payments")
	}
	return result.RowsAffected()
}
