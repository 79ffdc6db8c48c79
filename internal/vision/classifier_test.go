package vision

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStaticClassifier returns the configured verdict and rejects nil images.
func TestStaticClassifier(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))

	got, err := StaticClassifier(true).ContainsCat(context.Background(), img, DefaultThreshold)
	require.NoError(t, err)
	require.True(t, got)

	got, err = StaticClassifier(false).ContainsCat(context.Background(), img, DefaultThreshold)
	require.NoError(t, err)
	require.False(t, got)

	_, err = StaticClassifier(true).ContainsCat(context.Background(), nil, DefaultThreshold)
	require.ErrorIs(t, err, ErrNoImage)
}

// TestFakeClassifier_Threshold checks the threshold bounds and reproducibility.
func TestFakeClassifier_Threshold(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))

	// Nothing reaches a threshold above 100, everything reaches 0.
	c := NewFakeClassifier(7)
	for range 20 {
		got, err := c.ContainsCat(ctx, img, 101)
		require.NoError(t, err)
		require.False(t, got)

		got, err = c.ContainsCat(ctx, img, 0)
		require.NoError(t, err)
		require.True(t, got)
	}

	// Same seed, same verdicts.
	a, b := NewFakeClassifier(42), NewFakeClassifier(42)
	for range 20 {
		va, err := a.ContainsCat(ctx, img, DefaultThreshold)
		require.NoError(t, err)

		vb, err := b.ContainsCat(ctx, img, DefaultThreshold)
		require.NoError(t, err)
		require.Equal(t, va, vb)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()

	_, err := c.ContainsCat(canceled, img, DefaultThreshold)
	require.ErrorIs(t, err, context.Canceled)
}

// TestLoadImage decodes a PNG written to disk and rejects garbage.
func TestLoadImage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "camera.png")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 3))))
	require.NoError(t, f.Close())

	img, err := LoadImage(path)
	require.NoError(t, err)
	require.Equal(t, 4, img.Bounds().Dx())

	garbage := filepath.Join(dir, "camera.txt")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o600))

	_, err = LoadImage(garbage)
	require.Error(t, err)

	_, err = LoadImage(filepath.Join(dir, "missing.png"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
