// Package carousel serves the promotional slides on the home screen.
package carousel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vbonduro/cafeliz/internal/domain"
)

// Interval is how long each slide stays on screen.
const Interval = 3 * time.Second

func Defaults() []domain.CarouselItem {
	return []domain.CarouselItem{
		{
			ImageURL:    "https://images.unsplash.com/photo-1495774856032-8b90bbb32b32?w=500&auto=format&fit=crop&q=60&ixlib=rb-4.0.3&ixid=M3wxMjA3fDB8MHxzZWFyY2h8MTZ8fGNhZmV8ZW58MHx8MHx8fDA%3D",
			Description: "Bem-vindos à nossa cafeteria!",
		},
		{
			ImageURL:    "https://plus.unsplash.com/premium_photo-1666174853184-7300db42e0f5?q=80&w=1470&auto=format&fit=crop&ixlib=rb-4.0.3&ixid=M3wxMjA3fDB8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8fA%3D%3D",
			Description: "Venha tomar um café e comer alguma coisa",
		},
		{
			ImageURL:    "https://images.unsplash.com/photo-1690126671026-623dc4f8370a?q=80&w=1374&auto=format&fit=crop&ixlib=rb-4.0.3&ixid=M3wxMjA3fDB8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8fA%3D%3D",
			Description: "Sinta o sabor do nosso café expresso.",
		},
	}
}

type slideFile struct {
	Slides []domain.CarouselItem `yaml:"slides"`
}

// Load reads slides from a YAML file of the form
//
//	slides:
//	  - imageUrl: https://...
//	    description: ...
//
// An empty path, a missing file or a file without slides yields Defaults().
func Load(path string) ([]domain.CarouselItem, error) {
	if path == "" {
		return Defaults(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read carousel file: %w", err)
	}

	var f slideFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse carousel file: %w", err)
	}
	if len(f.Slides) == 0 {
		return Defaults(), nil
	}
	return f.Slides, nil
}

// Rotator tracks the slide currently on screen.
type Rotator struct {
	interval time.Duration

	mu      sync.Mutex
	slides  []domain.CarouselItem
	current int
}

func NewRotator(slides []domain.CarouselItem, interval time.Duration) *Rotator {
	if interval <= 0 {
		interval = Interval
	}
	return &Rotator{interval: interval, slides: slides}
}

func (r *Rotator) Slides() []domain.CarouselItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.CarouselItem, len(r.slides))
	copy(out, r.slides)
	return out
}

func (r *Rotator) Current() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Advance moves to the next slide, wrapping to the first after the last.
func (r *Rotator) Advance() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.slides) == 0 {
		return 0
	}
	r.current = (r.current + 1) % len(r.slides)
	return r.current
}

// Run advances once per interval until ctx is done.
func (r *Rotator) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Advance()
		}
	}
}
