package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/cafeliz/internal/carousel"
	"github.com/vbonduro/cafeliz/internal/catalog"
	"github.com/vbonduro/cafeliz/internal/domain"
	"github.com/vbonduro/cafeliz/internal/form"
	"github.com/vbonduro/cafeliz/internal/imagestore"
	"github.com/vbonduro/cafeliz/internal/location"
	"github.com/vbonduro/cafeliz/internal/notify"
	"github.com/vbonduro/cafeliz/internal/sales"
	"github.com/vbonduro/cafeliz/internal/vision"
)

var ErrNoSuggester = errors.New("no vision backend configured")

// DefaultShop is the footer shown on every screen.
func DefaultShop() domain.ShopInfo {
	return domain.ShopInfo{
		Name:    "Cafeliz.",
		About:   "É uma cafeteria de origem paraibana nascida na cidade de Guarabira.",
		Address: "Brasil, PB Guarabira, BR",
		Email:   "cafelisgba22@gmail.com",
		Phone:   "+ 55 83 9314-3978",
	}
}

type Storefront struct {
	Menu      *catalog.Store
	MenuForm  *catalog.Form
	Orders    *sales.Store
	OrderForm *sales.Form

	shop      domain.ShopInfo
	rotator   *carousel.Rotator
	reporter  *location.Reporter
	images    imagestore.ImageStore
	suggester vision.Suggester
	notifier  notify.Notifier
	logger    *slog.Logger
}

type Deps struct {
	Menu      *catalog.Store
	Orders    *sales.Store
	Shop      domain.ShopInfo
	Rotator   *carousel.Rotator
	Reporter  *location.Reporter
	Images    imagestore.ImageStore
	Suggester vision.Suggester // optional
	Notifier  notify.Notifier
	// Admin receives new-order announcements. Optional.
	Admin  notify.Notifier
	Logger *slog.Logger
}

func NewStorefront(d Deps) *Storefront {
	if d.Notifier == nil {
		d.Notifier = notify.Discard
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Shop == (domain.ShopInfo{}) {
		d.Shop = DefaultShop()
	}
	s := &Storefront{
		Menu:      d.Menu,
		MenuForm:  catalog.NewForm(d.Menu, d.Notifier, d.Logger),
		Orders:    d.Orders,
		OrderForm: sales.NewForm(d.Orders, d.Notifier, d.Logger),
		shop:      d.Shop,
		rotator:   d.Rotator,
		reporter:  d.Reporter,
		images:    d.Images,
		suggester: d.Suggester,
		notifier:  d.Notifier,
		logger:    d.Logger,
	}
	if d.Admin != nil {
		s.OrderForm.OnCommit(sales.AnnounceNewOrders(d.Admin))
	}
	return s
}

// Load reads both collections. A failed load has already been reported to the
// user; the error is returned so callers can log it, but the storefront stays
// usable with an empty collection.
func (s *Storefront) Load(ctx context.Context) error {
	return errors.Join(s.Menu.Load(ctx), s.Orders.Load(ctx))
}

// Flush waits for pending saves on both collections.
func (s *Storefront) Flush(ctx context.Context) error {
	return errors.Join(s.Menu.Flush(ctx), s.Orders.Flush(ctx))
}

type Home struct {
	Shop     domain.ShopInfo       `json:"shop"`
	Slides   []domain.CarouselItem `json:"slides"`
	Current  int                   `json:"current"`
	Location string                `json:"location"`
}

// Home assembles the landing screen. The location is read once per call.
func (s *Storefront) Home(ctx context.Context) Home {
	h := Home{Shop: s.shop, Slides: []domain.CarouselItem{}}
	if s.rotator != nil {
		h.Slides = s.rotator.Slides()
		h.Current = s.rotator.Current()
	}
	h.Location = s.Location(ctx)
	return h
}

func (s *Storefront) Location(ctx context.Context) string {
	if s.reporter == nil {
		return location.UnavailableMessage
	}
	return s.reporter.Report(ctx)
}

type MenuEntry struct {
	domain.MenuItem
	PriceLabel string `json:"priceLabel"`
}

func (s *Storefront) MenuEntries() []MenuEntry {
	items := s.Menu.Items()
	out := make([]MenuEntry, 0, len(items))
	for _, m := range items {
		out = append(out, MenuEntry{MenuItem: m, PriceLabel: catalog.PriceLabel(m.Price)})
	}
	return out
}

// AttachMenuImage stores an image and points the open menu draft at it.
func (s *Storefront) AttachMenuImage(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	if !s.MenuForm.Visible() {
		return "", form.ErrFormClosed
	}

	key, err := s.images.Save(ctx, mimeType, bytes.NewReader(imageData))
	if err != nil {
		s.notifier.Notify(ctx, notify.Error("Não foi possível salvar a imagem."))
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	s.logger.Debug("image saved", "key", key, "bytes", len(imageData))

	url := imagestore.URL(key)
	if err := s.MenuForm.SetField(catalog.FieldImageURL, url); err != nil {
		// The form was closed while the upload was in flight.
		if derr := s.images.Delete(ctx, key); derr != nil {
			s.logger.Error("failed to delete orphaned image", "key", key, "error", derr)
		}
		return "", err
	}
	return url, nil
}

// SuggestMenuItem asks the vision backend for a menu entry matching the photo
// and fills the open menu draft with every non-empty suggested value.
func (s *Storefront) SuggestMenuItem(ctx context.Context, imageData []byte, mimeType string) (*vision.Suggestion, error) {
	if s.suggester == nil {
		return nil, ErrNoSuggester
	}
	if !s.MenuForm.Visible() {
		return nil, form.ErrFormClosed
	}

	s.logger.Info("vision suggestion started", "mime_type", mimeType, "bytes", len(imageData))
	sug, err := s.suggester.Suggest(ctx, bytes.NewReader(imageData), mimeType)
	if err != nil {
		s.notifier.Notify(ctx, notify.Error("Não foi possível sugerir um produto para a imagem."))
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}
	s.logger.Info("vision suggestion complete", "title", sug.Title)

	for field, value := range map[string]string{
		catalog.FieldTitle:       sug.Title,
		catalog.FieldDescription: sug.Description,
		catalog.FieldPrice:       sug.Price,
	} {
		if value == "" {
			continue
		}
		if err := s.MenuForm.SetField(field, value); err != nil {
			return nil, err
		}
	}
	return sug, nil
}
