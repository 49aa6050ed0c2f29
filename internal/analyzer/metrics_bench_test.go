package analyzer

import (
	"fmt"
	"testing"
)

// BenchmarkFilter measures filtering at the universal selection
func BenchmarkFilter(b *testing.B) {
	table := generateTestTable(10000)
	sel := DefaultSelection(table)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = Filter(table, sel)
	}
}

// BenchmarkAggregations measures each derived view on the same events
func BenchmarkAggregations(b *testing.B) {
	events := generateTestTable(10000).Events

	b.Run("CountByCountry", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = CountByCountry(events)
		}
	})

	b.Run("CountBySeverity", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = CountBySeverity(events)
		}
	})

	b.Run("TrendByHour", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = TrendByHour(events)
		}
	})

	b.Run("PivotCountrySeverity", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = PivotCountrySeverity(events)
		}
	})
}

// BenchmarkRender simulates one full render pass per selection change
func BenchmarkRender(b *testing.B) {
	for _, rows := range []int{1000, 10000} {
		table := generateTestTable(rows)
		renderer := NewRenderer(10, NewSampler(1))
		sel := DefaultSelection(table)

		b.Run(fmt.Sprintf("%d-Rows", rows), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = renderer.Render(table, sel)
			}
		})
	}
}
