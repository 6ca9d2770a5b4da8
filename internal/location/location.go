// Package location produces the display-only coordinate string shown on each
// screen. It never touches the stores.
package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
)

const (
	DeniedMessage      = "Permissão para acessar a localização foi negada."
	UnavailableMessage = "Não foi possível obter a localização."
)

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrUnavailable      = errors.New("location unavailable")
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Locator is the device positioning service.
type Locator interface {
	RequestPermission(ctx context.Context) error
	Current(ctx context.Context) (Coordinates, error)
}

// Static always grants permission and reports fixed coordinates.
type Static struct {
	Coords Coordinates
}

func (Static) RequestPermission(context.Context) error { return nil }

func (s Static) Current(context.Context) (Coordinates, error) { return s.Coords, nil }

// Denied refuses permission.
type Denied struct{}

func (Denied) RequestPermission(context.Context) error { return ErrPermissionDenied }

func (Denied) Current(context.Context) (Coordinates, error) {
	return Coordinates{}, ErrPermissionDenied
}

// Unavailable grants permission but never produces a fix.
type Unavailable struct{}

func (Unavailable) RequestPermission(context.Context) error { return nil }

func (Unavailable) Current(context.Context) (Coordinates, error) {
	return Coordinates{}, ErrUnavailable
}

type Reporter struct {
	locator Locator
	shop    *Coordinates
	logger  *slog.Logger
}

// NewReporter builds a Reporter. When shop is non-nil the report includes the
// distance to it.
func NewReporter(locator Locator, shop *Coordinates, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{locator: locator, shop: shop, logger: logger}
}

// Report asks for permission, reads one fix and formats it. Failures yield a
// placeholder message. There is no retry.
func (r *Reporter) Report(ctx context.Context) string {
	if err := r.locator.RequestPermission(ctx); err != nil {
		r.logger.Info("location permission not granted", "error", err)
		return DeniedMessage
	}

	c, err := r.locator.Current(ctx)
	if err != nil {
		r.logger.Warn("failed to read location", "error", err)
		if errors.Is(err, ErrPermissionDenied) {
			return DeniedMessage
		}
		return UnavailableMessage
	}

	out := fmt.Sprintf("Latitude: %.6f, Longitude: %.6f", c.Lat, c.Lon)
	if r.shop != nil {
		out += fmt.Sprintf(" (%.2f km da Cafeliz)", DistanceKm(c, *r.shop))
	}
	return out
}

// DistanceKm is the great-circle distance between a and b, rounded to 10 m.
func DistanceKm(a, b Coordinates) float64 {
	const R = 6371
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return math.Round(R*c*100) / 100
}
