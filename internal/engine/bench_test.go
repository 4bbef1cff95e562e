package engine

import (
	"fmt"
	"strings"
	"testing"
)

func BenchmarkDetector(b *testing.B) {
	rules := builtinRules(b)
	line := "const handler = (req, res) => db.query(\"SELECT * FROM t WHERE id = \" + req.params.id)\n"
	payload := strings.Repeat(line, 64)

	for _, entropy := range []bool{false, true} {
		b.Run(fmt.Sprintf("entropy_%v", entropy), func(b *testing.B) {
			d := NewDetector(rules, DetectOptions{EntropyEnabled: entropy})
			fc := NewFileContent("bench.js", payload)
			b.ReportAllocs()
			b.SetBytes(int64(len(payload)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := d.Detect(fc); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkScanFiles(b *testing.B) {
	rules := builtinRules(b)
	files := syntheticFiles(256)
	for _, workers := range []int{1, 4, 16} {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			cfg := Config{Parallel: true, Workers: workers}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := ScanFiles(files, rules, cfg); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
