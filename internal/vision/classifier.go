package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	// Register the decoders accepted by LoadImage.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
)

// DefaultThreshold is the confidence, in percent, a label must reach to count as a cat.
const DefaultThreshold float32 = 50

// Classifier decides whether an image contains a cat.
type Classifier interface {
	// ContainsCat reports whether img shows a cat with confidence at or above
	// threshold (a percentage).
	ContainsCat(ctx context.Context, img image.Image, threshold float32) (bool, error)
}

// ErrNoImage is returned when a classifier is asked to look at a nil image.
var ErrNoImage = errors.New("no image provided")

// FakeClassifier returns a random verdict, standing in for the cloud service.
type FakeClassifier struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewFakeClassifier creates a FakeClassifier seeded for reproducible verdicts.
func NewFakeClassifier(seed uint64) *FakeClassifier {
	return &FakeClassifier{
		rnd: rand.New(rand.NewPCG(seed, seed)), //nolint:gosec // Not used for security.
	}
}

// ContainsCat draws a random confidence and compares it to threshold.
func (f *FakeClassifier) ContainsCat(ctx context.Context, img image.Image, threshold float32) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if img == nil {
		return false, ErrNoImage
	}

	f.mu.Lock()
	confidence := f.rnd.Float32() * 100
	f.mu.Unlock()

	return confidence >= threshold, nil
}

// StaticClassifier always returns the same verdict.
type StaticClassifier bool

// ContainsCat returns the fixed verdict.
func (s StaticClassifier) ContainsCat(ctx context.Context, img image.Image, _ float32) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if img == nil {
		return false, ErrNoImage
	}

	return bool(s), nil
}

// LoadImage decodes a PNG, JPEG or GIF file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}

	return img, nil
}
