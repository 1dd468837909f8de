package services

import (
	"strings"
	"testing"
	"time"
)

func sampleReceipt() ReceiptData {
	return ReceiptData{
		PaymentID:     "42",
		MemberName:    "Ravi Kumar",
		MemberEmail:   "ravi@example.com",
		GymName:       "Ironworks Fitness",
		GymEmail:      "asha@ironworks.example",
		Amount:        2500.50,
		PlanType:      "Premium",
		Duration:      2,
		PaymentMethod: "Cash",
		PaymentDate:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		PeriodStart:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Notes:         "festival discount",
	}
}

func TestBuildReceiptBody(t *testing.T) {
	body := buildReceiptBody(sampleReceipt())

	for _, want := range []string{
		"Dear Ravi Kumar",
		"Ironworks Fitness",
		"Receipt No:     42",
		"₹2500.50",
		"Plan:     Premium",
		"Duration: 2 month(s)",
		"01 Jun 2026 to 01 Aug 2026",
		"Notes: festival discount",
		"asha@ironworks.example",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("receipt body missing %q\n%s", want, body)
		}
	}
}

func TestBuildReceiptBodyOmitsEmptyNotes(t *testing.T) {
	data := sampleReceipt()
	data.Notes = ""
	if strings.Contains(buildReceiptBody(data), "Notes:") {
		t.Error("receipt body should omit the notes section when empty")
	}
}

func TestSendReceiptUnconfigured(t *testing.T) {
	// No SMTP env in tests, so the service reports no-transporter instead
	// of erroring.
	svc := &EmailService{}
	result := svc.SendReceipt(sampleReceipt())
	if result.Sent {
		t.Error("expected unsent result without SMTP config")
	}
	if result.Reason != "no-transporter" {
		t.Errorf("reason = %q, want no-transporter", result.Reason)
	}
}

func TestFormatINR(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{500, "₹500.00"},
		{2500.5, "₹2500.50"},
		{0, "₹0.00"},
	}
	for _, tt := range tests {
		if got := formatINR(tt.amount); got != tt.want {
			t.Errorf("formatINR(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}
