package mysql

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"shop/pkg/domain/model"
)

type orderRow struct {
	ID         uuid.UUID       `db:"id"`
	UserID     uuid.UUID       `db:"user_id"`
	Status     string          `db:"status"`
	TotalPrice decimal.Decimal `db:"total_price"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

type orderItemRow struct {
	ID        uuid.UUID       `db:"id"`
	OrderID   uuid.UUID       `db:"order_id"`
	ProductID uuid.UUID       `db:"product_id"`
	Quantity  int             `db:"quantity"`
	Price     decimal.Decimal `db:"price"`
}

func (r orderRow) toModel(items []model.OrderItem) *model.Order {
	return &model.Order{
		ID:         r.ID,
		UserID:     r.UserID,
		Status:     model.OrderStatus(r.Status),
		TotalPrice: r.TotalPrice,
		Items:      items,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type orderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) model.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

// Create inserts the order and all its items in one transaction; a failure
// partway leaves nothing behind.
func (r *orderRepository) Create(order *model.Order) error {
	return inTx(r.db, func(tx *sqlx.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO orders (id, user_id, status, total_price, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			order.ID, order.UserID, string(order.Status), order.TotalPrice, order.CreatedAt, order.UpdatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "insert order")
		}

		for _, item := range order.Items {
			_, err := tx.Exec(
				`INSERT INTO order_items (id, order_id, product_id, quantity, price)
				 VALUES (?, ?, ?, ?, ?)`,
				item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price,
			)
			if err != nil {
				return errors.Wrap(err, "insert order item")
			}
		}
		return nil
	})
}

func (r *orderRepository) Find(id uuid.UUID) (*model.Order, error) {
	var row orderRow
	err := r.db.Get(&row, `SELECT id, user_id, status, total_price, created_at, updated_at FROM orders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select order")
	}

	items, err := r.itemsFor(id)
	if err != nil {
		return nil, err
	}
	return row.toModel(items), nil
}

func (r *orderRepository) FindByUser(userID uuid.UUID, limit, offset int) ([]*model.Order, error) {
	var rows []orderRow
	err := r.db.Select(&rows,
		`SELECT id, user_id, status, total_price, created_at, updated_at
		 FROM orders WHERE user_id = ?
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select user orders")
	}

	orders := make([]*model.Order, 0, len(rows))
	for _, row := range rows {
		items, err := r.itemsFor(row.ID)
		if err != nil {
			return nil, err
		}
		orders = append(orders, row.toModel(items))
	}
	return orders, nil
}

func (r *orderRepository) TransitionStatus(id uuid.UUID, from, to model.OrderStatus) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), time.Now().UTC(), id, string(from),
	)
	if err != nil {
		return false, errors.Wrap(err, "transition order status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return affected > 0, nil
}

func (r *orderRepository) itemsFor(orderID uuid.UUID) ([]model.OrderItem, error) {
	var rows []orderItemRow
	err := r.db.Select(&rows,
		`SELECT id, order_id, product_id, quantity, price FROM order_items WHERE order_id = ? ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select order items")
	}

	items := make([]model.OrderItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, model.OrderItem{
			ID:        row.ID,
			OrderID:   row.OrderID,
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			Price:     row.Price,
		})
	}
	return items, nil
}
