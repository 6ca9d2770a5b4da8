// Package catalog is the Cardápio: the shop's menu items, persisted under the
// "products" key.
package catalog

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vbonduro/cafeliz/internal/domain"
	"github.com/vbonduro/cafeliz/internal/form"
	"github.com/vbonduro/cafeliz/internal/kv"
	"github.com/vbonduro/cafeliz/internal/notify"
	"github.com/vbonduro/cafeliz/internal/store"
)

const Namespace = "products"

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldImageURL    = "imageUrl"
)

type (
	Store = store.Store[domain.MenuItem]
	Form  = form.Controller[domain.MenuItem]
)

var Kind = store.Kind[domain.MenuItem]{
	Label:     "produtos",
	Namespace: Namespace,
	ID:        func(m domain.MenuItem) int64 { return m.ID },
	WithID: func(m domain.MenuItem, id int64) domain.MenuItem {
		m.ID = id
		return m
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

// missing reports empty required fields. The image is optional.
func missing(m domain.MenuItem) []string {
	var out []string
	if m.Title == "" {
		out = append(out, FieldTitle)
	}
	if m.Description == "" {
		out = append(out, FieldDescription)
	}
	if m.Price == "" {
		out = append(out, FieldPrice)
	}
	return out
}

func setField(m *domain.MenuItem, field, value string) error {
	switch field {
	case FieldTitle:
		m.Title = value
	case FieldDescription:
		m.Description = value
	case FieldPrice:
		m.Price = value
	case FieldImageURL:
		m.ImageURL = value
	default:
		return &store.UnknownFieldError{Field: field}
	}
	return nil
}

// PriceLabel formats a price for display, e.g. "8.50" -> "R$ 8,50". Prices
// that do not parse as a decimal are shown as entered.
func PriceLabel(price string) string {
	d, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(price), ",", ".", 1))
	if err != nil {
		return "R$ " + price
	}
	return "R$ " + strings.Replace(d.StringFixed(2), ".", ",", 1)
}
