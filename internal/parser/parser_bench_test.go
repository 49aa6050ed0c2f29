package parser

import (
	"fmt"
	"strings"
	"testing"
)

const (
	// Sample files for benchmarking
	sampleCSV = "timestamp,source_ip,attack_type,severity\n" +
		"2025-04-01 10:30:45,192.168.1.100,DDoS,high\n" +
		"2025-04-01 10:45:12,10.0.0.7,Phishing,low\n" +
		"2025-04-01 11:02:00,172.16.4.2,Malware,medium\n"

	sampleTSV = "timestamp\tsource_ip\tattack_type\tseverity\tcountry_code\n" +
		"2025-04-01T10:30:45Z\t192.168.1.100\tDDoS\thigh\tUS\n" +
		"2025-04-01T10:45:12Z\t10.0.0.7\tPhishing\tlow\tDE\n"
)

func generateCSV(rows int) string {
	var b strings.Builder
	b.WriteString("timestamp,source_ip,attack_type,severity,country_code\n")
	attacks := []string{"DDoS", "Phishing", "Malware", "Brute Force", "SQL Injection"}
	severities := []string{"low", "medium", "high"}
	countries := []string{"US", "CN", "RU", "DE"}
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "2025-04-01 %02d:%02d:%02d,10.0.%d.%d,%s,%s,%s\n",
			i%24, i%60, (i*7)%60, i%256, (i*3)%256,
			attacks[i%len(attacks)], severities[i%len(severities)], countries[i%len(countries)])
	}
	return b.String()
}

// BenchmarkCSVParser measures CSV parsing speed
func BenchmarkCSVParser(b *testing.B) {
	parser := NewParser("csv")
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := parser.Parse(strings.NewReader(sampleCSV))
		if err != nil {
			b.Fatalf("Parse error: %v", err)
		}
	}
}

// BenchmarkTSVParser measures TSV parsing speed
func BenchmarkTSVParser(b *testing.B) {
	parser := NewParser("tsv")
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := parser.Parse(strings.NewReader(sampleTSV))
		if err != nil {
			b.Fatalf("Parse error: %v", err)
		}
	}
}

// BenchmarkCSVParserLargeFile measures allocations on a realistic file size
func BenchmarkCSVParserLargeFile(b *testing.B) {
	parser := NewParser("csv")
	data := generateCSV(10000)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := parser.Parse(strings.NewReader(data))
		if err != nil {
			b.Fatalf("Parse error: %v", err)
		}
	}
}

// BenchmarkParseTimestamp compares the accepted layouts
func BenchmarkParseTimestamp(b *testing.B) {
	values := map[string]string{
		"RFC3339":  "2025-04-01T10:30:45Z",
		"Space":    "2025-04-01 10:30:45",
		"DateOnly": "2025-04-01",
	}

	for name, value := range values {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := ParseTimestamp(value); err != nil {
					b.Fatalf("Parse error: %v", err)
				}
			}
		})
	}
}
