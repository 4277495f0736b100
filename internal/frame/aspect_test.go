package frame

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectAspectRatio(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          AspectRatio
	}{
		{"portrait 16:9", 1080, 1920, AspectRatio16x9},
		{"landscape 16:9", 1920, 1080, AspectRatio16x9},
		{"portrait 4:3", 480, 640, AspectRatio4x3},
		{"landscape 4:3", 640, 480, AspectRatio4x3},
		{"exact midpoint ties to 4:3", 900, 1400, AspectRatio4x3},
		{"just below midpoint", 9001, 14000, AspectRatio4x3},
		{"just above midpoint", 8999, 14000, AspectRatio16x9},
		{"square", 500, 500, AspectRatio4x3},
		{"tall phone", 1440, 3200, AspectRatio16x9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectAspectRatio(tt.width, tt.height)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectAspectRatio_InvalidArgument(t *testing.T) {
	for _, dims := range [][2]int{{0, 100}, {100, 0}, {-1, 100}, {100, -5}, {0, 0}} {
		_, err := SelectAspectRatio(dims[0], dims[1])
		assert.True(t, errors.Is(err, ErrInvalidArgument), "dims %v: %v", dims, err)
	}
}

// Exhaustive check against exact rational arithmetic.
func TestSelectAspectRatio_MatchesExactDistance(t *testing.T) {
	four3 := big.NewRat(4, 3)
	sixteen9 := big.NewRat(16, 9)

	for w := 1; w <= 120; w++ {
		for h := 1; h <= 120; h++ {
			long, short := max(w, h), min(w, h)
			ratio := big.NewRat(int64(long), int64(short))
			d43 := new(big.Rat).Abs(new(big.Rat).Sub(ratio, four3))
			d169 := new(big.Rat).Abs(new(big.Rat).Sub(ratio, sixteen9))

			want := AspectRatio16x9
			if d43.Cmp(d169) <= 0 {
				want = AspectRatio4x3
			}

			got, err := SelectAspectRatio(w, h)
			require.NoError(t, err)
			if got != want {
				t.Fatalf("SelectAspectRatio(%d, %d) = %v, want %v", w, h, got, want)
			}
		}
	}
}

func TestAspectRatio_String(t *testing.T) {
	assert.Equal(t, "4:3", AspectRatio4x3.String())
	assert.Equal(t, "16:9", AspectRatio16x9.String())

	text, err := AspectRatio16x9.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "16:9", string(text))
}

func TestAspectRatio_UnmarshalText(t *testing.T) {
	var a AspectRatio
	require.NoError(t, a.UnmarshalText([]byte("16:9")))
	assert.Equal(t, AspectRatio16x9, a)
	require.NoError(t, a.UnmarshalText([]byte("4:3")))
	assert.Equal(t, AspectRatio4x3, a)

	assert.Error(t, a.UnmarshalText([]byte("21:9")))
}
