package charts

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/justin4957/seclab-dashboard/pkg/models"
)

func TestSeverityDonut(t *testing.T) {
	var buf bytes.Buffer
	counts := []models.SeverityCount{
		{Severity: "high", Count: 5, Percent: 50},
		{Severity: "low", Count: 3, Percent: 30},
		{Severity: "medium", Count: 2, Percent: 20},
	}

	if err := SeverityDonut(&buf, counts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("Expected SVG output")
	}
}

func TestSeverityDonut_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := SeverityDonut(&buf, nil); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
}

func TestTrendFrame(t *testing.T) {
	var buf bytes.Buffer
	frame := models.TrendFrame{
		Hour:  time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC),
		Label: "2025-04-01 08:00",
		Bars: []models.AttackCount{
			{AttackType: "DDoS", Count: 4},
			{AttackType: "Phishing", Count: 1},
		},
	}

	palette := Palette([]string{"DDoS", "Malware", "Phishing"})
	if err := TrendFrame(&buf, frame, 9, palette); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("Expected SVG output")
	}
}

func TestTrendFrame_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := TrendFrame(&buf, models.TrendFrame{}, 5, nil); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
}

func TestPalette_Stable(t *testing.T) {
	a := Palette([]string{"DDoS", "Malware", "Phishing"})
	b := Palette([]string{"DDoS", "Malware", "Phishing"})
	for k, v := range a {
		if b[k] != v {
			t.Errorf("Color for %s differs", k)
		}
	}
	if a["DDoS"] == a["Malware"] {
		t.Error("Different attack types should get different colors")
	}
}

func TestPlaceholder_EscapesMessage(t *testing.T) {
	var buf bytes.Buffer
	if err := Placeholder(&buf, "<none> & more"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "&lt;none&gt; &amp; more") {
		t.Errorf("Message was not escaped: %s", buf.String())
	}
}
