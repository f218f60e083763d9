package analyzer

import (
	"fmt"
	"testing"
	"time"

	"github.com/steosofficial/azmorph/config"
)

// Результат сохраняется, чтобы компилятор не выкинул вызовы.
var benchmarkResult any

// benchmarkWords повторяет набор слов тестового словаря вперемешку с
// несловарными, пока не наберется limit слов.
func benchmarkWords(limit int) []string {
	extra := []string{"ёлка-планета", "ПКБ", "по-красному", "суперпланета", "комета", "42", "hello", "плааанета"}
	words := make([]string, 0, limit)
	for len(words) < limit {
		for word := range testWords {
			words = append(words, word)
		}
		words = append(words, extra...)
	}
	return words[:limit]
}

func BenchmarkAnalyzeSequential(b *testing.B) {
	for _, typos := range []config.Budget{0, 1, config.Auto} {
		b.Run(fmt.Sprintf("typos_%s", typos), func(b *testing.B) {
			a := newTestAnalyzer(b, func(cfg *config.Config) {
				cfg.Typos = typos
				cfg.CacheSize = 0
			})
			words := benchmarkWords(10_000)

			b.ReportAllocs()
			b.ResetTimer()
			startTime := time.Now()

			for i := 0; i < b.N; i++ {
				for _, word := range words {
					benchmarkResult, _ = a.Analyze(word)
				}
			}

			b.StopTimer()
			total := len(words) * b.N
			avg := time.Since(startTime) / time.Duration(total)
			b.ReportMetric(float64(time.Second)/float64(avg), "words/s")
		})
	}
}

func BenchmarkAnalyzeList(b *testing.B) {
	a := newTestAnalyzer(b, nil)
	words := benchmarkWords(10_000)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		benchmarkResult, _ = a.AnalyzeList(words)
	}
}

func BenchmarkInflectList(b *testing.B) {
	a := newTestAnalyzer(b, nil)
	lists, err := a.AnalyzeList(benchmarkWords(10_000))
	if err != nil {
		b.Fatal(err)
	}
	parses := make([]*Parse, 0, len(lists))
	for _, list := range lists {
		if len(list) > 0 {
			parses = append(parses, list[0])
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		benchmarkResult = InflectList(parses, Grammemes{Gent})
	}
}
