package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPager_Properties(t *testing.T) {
	for _, size := range PageSizes {
		for total := 0; total <= 47; total++ {
			pages := (total + size - 1) / size
			if pages == 0 {
				p := Pager{Page: 1, Size: size, Total: total}
				require.False(t, p.Valid())
				require.Zero(t, p.StartIndex())
				require.Zero(t, p.EndIndex())
				require.False(t, p.HasNext())
				continue
			}
			covered := 0
			for page := 1; page <= pages; page++ {
				p := Pager{Page: page, Size: size, Total: total}
				require.True(t, p.Valid(), "size=%d total=%d page=%d", size, total, page)
				require.LessOrEqual(t, p.StartIndex(), p.EndIndex())
				require.Equal(t, (page-1)*size+1, p.StartIndex())
				require.LessOrEqual(t, p.EndIndex(), total)
				require.Equal(t, page < pages, p.HasNext())
				require.Equal(t, page > 1, p.HasPrev())
				lo, hi := p.Bounds()
				covered += hi - lo
			}
			require.Equal(t, total, covered, "pages cover every record once")
			require.False(t, Pager{Page: pages + 1, Size: size, Total: total}.Valid())
		}
	}
}

func TestPager_Example(t *testing.T) {
	p := Pager{Page: 3, Size: 10, Total: 23}
	require.Equal(t, 21, p.StartIndex())
	require.Equal(t, 23, p.EndIndex())
	require.False(t, p.HasNext())

	lo, hi := p.Bounds()
	require.Equal(t, 20, lo)
	require.Equal(t, 23, hi)
}

func TestValidPageSize(t *testing.T) {
	require.True(t, ValidPageSize(5))
	require.True(t, ValidPageSize(10))
	require.True(t, ValidPageSize(15))
	require.False(t, ValidPageSize(0))
	require.False(t, ValidPageSize(20))
}
