// Package sales is the Vendas screen: customer orders, persisted under the
// "orders" key.
package sales

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/cafeliz/internal/domain"
	"github.com/vbonduro/cafeliz/internal/form"
	"github.com/vbonduro/cafeliz/internal/kv"
	"github.com/vbonduro/cafeliz/internal/notify"
	"github.com/vbonduro/cafeliz/internal/store"
)

const Namespace = "orders"

const (
	FieldCustomer = "customer"
	FieldItem     = "item"
	FieldQuantity = "quantity"
)

type (
	Store = store.Store[domain.Order]
	Form  = form.Controller[domain.Order]
)

var Kind = store.Kind[domain.Order]{
	Label:     "pedidos",
	Namespace: Namespace,
	ID:        func(o domain.Order) int64 { return o.ID },
	WithID: func(o domain.Order, id int64) domain.Order {
		o.ID = id
		return o
	},
	Missing:  missing,
	SetField: setField,
}

func NewStore(backend kv.Backend, opts store.Options) *Store {
	return store.New(Kind, backend, opts)
}

func NewForm(s *Store, notifier notify.Notifier, logger *slog.Logger) *Form {
	return form.New(s, notifier, logger)
}

func missing(o domain.Order) []string {
	var out []string
	if o.Customer == "" {
		out = append(out, FieldCustomer)
	}
	if o.Item == "" {
		out = append(out, FieldItem)
	}
	if o.Quantity == "" {
		out = append(out, FieldQuantity)
	}
	return out
}

func setField(o *domain.Order, field, value string) error {
	switch field {
	case FieldCustomer:
		o.Customer = value
	case FieldItem:
		o.Item = value
	case FieldQuantity:
		o.Quantity = value
	default:
		return &store.UnknownFieldError{Field: field}
	}
	return nil
}

// AnnounceNewOrders returns a commit hook that tells n about every newly
// created order. Edits are not announced.
func AnnounceNewOrders(n notify.Notifier) form.CommitHook[domain.Order] {
	return func(ctx context.Context, o domain.Order, created bool) {
		if !created {
			return
		}
		n.Notify(ctx, notify.Info("Novo pedido", Summary(o)))
	}
}

func Summary(o domain.Order) string {
	return fmt.Sprintf("#%d %s: %sx %s", o.ID, o.Customer, o.Quantity, o.Item)
}
