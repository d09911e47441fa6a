package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixedMeasurer treats every rune as 5pt wide regardless of face or size.
type fixedMeasurer struct{}

func (fixedMeasurer) TextWidth(text string, _ Font, _ float64) float64 {
	return float64(len([]rune(text))) * 5
}

type recordingSurface struct {
	fixedMeasurer
	xs []float64
}

func (r *recordingSurface) DrawText(_ string, x, _ float64, _ Font, _ float64) {
	r.xs = append(r.xs, x)
}

func TestPageGeometry(t *testing.T) {
	require.InDelta(t, 595.35, PageWidth, 1e-9)
	require.InDelta(t, 935.55, PageHeight, 1e-9)
}

func TestWrapTextGreedy(t *testing.T) {
	// 20 runes max per line
	lines := WrapText(fixedMeasurer{}, "laporan realisasi anggaran pendapatan daerah", Regular, 11, 100)
	require.Equal(t, []string{"laporan realisasi", "anggaran pendapatan", "daerah"}, lines)
}

func TestWrapTextLongWordNotSplit(t *testing.T) {
	lines := WrapText(fixedMeasurer{}, "a pertanggungjawabannya b", Regular, 11, 50)
	require.Equal(t, []string{"a", "pertanggungjawabannya", "b"}, lines)
}

func TestWrapTextEmpty(t *testing.T) {
	require.Empty(t, WrapText(fixedMeasurer{}, "   ", Bold, 11, 50))
}

func TestWrapTextIdempotent(t *testing.T) {
	texts := []string{
		"CATATAN ATAS LAPORAN KEUANGAN PEMERINTAH DAERAH TAHUN ANGGARAN 2024",
		"neraca   laporan operasional\tlaporan perubahan ekuitas",
		"x",
	}
	for _, text := range texts {
		for _, width := range []float64{10, 60, 120, 400} {
			first := WrapText(fixedMeasurer{}, text, Regular, 11, width)
			second := WrapText(fixedMeasurer{}, strings.Join(first, " "), Regular, 11, width)
			require.Equal(t, first, second, "text=%q width=%v", text, width)
		}
	}
}

func TestDrawCenteredReturnsNextLine(t *testing.T) {
	s := &recordingSurface{}
	next := DrawCentered(s, "TENTANG", 500, Bold, 12)
	require.InDelta(t, 500-12*LineSpacing, next, 1e-9)
	require.Len(t, s.xs, 1)
	require.InDelta(t, PageWidth/2-35.0/2, s.xs[0], 1e-9)
}

func TestRightAlignX(t *testing.T) {
	require.InDelta(t, 90, RightAlignX(fixedMeasurer{}, "12", Regular, 10, 100), 1e-9)
}
