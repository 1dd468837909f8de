package services

import (
	"fmt"
	"strings"
	"time"
)

// ReceiptData is everything needed to render a payment receipt email. It is
// built from the payment's immutable snapshots, never from live member or
// gym rows, so a receipt re-sent later still reflects the moment of payment.
type ReceiptData struct {
	PaymentID     string    `json:"payment_id"`
	MemberName    string    `json:"member_name"`
	MemberEmail   string    `json:"member_email"`
	GymName       string    `json:"gym_name"`
	GymEmail      string    `json:"gym_email"`
	Amount        float64   `json:"amount"`
	PlanType      string    `json:"plan_type"`
	Duration      int       `json:"duration"`
	PaymentMethod string    `json:"payment_method"`
	PaymentDate   time.Time `json:"payment_date"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
	Notes         string    `json:"notes,omitempty"`
}

// ReceiptResult reports whether a receipt went out and, if not, why. A
// skipped receipt is not an error; payment recording never depends on it.
type ReceiptResult struct {
	Sent   bool   `json:"sent"`
	Reason string `json:"reason,omitempty"`
}

// ReceiptTaskArgs is the argument payload stored on a send_receipt task.
type ReceiptTaskArgs struct {
	ReceiptData
	AttemptCount int `json:"attempt_count"`
}

// ReceiptSender delivers payment receipts. EmailService implements it; tests
// substitute a recording stub.
type ReceiptSender interface {
	SendReceipt(data ReceiptData) ReceiptResult
}

func formatINR(amount float64) string {
	return fmt.Sprintf("₹%.2f", amount)
}

// SendReceipt renders and sends a plain-text payment receipt. It returns a
// result rather than an error because delivery is best effort.
func (s *EmailService) SendReceipt(data ReceiptData) ReceiptResult {
	if !s.Configured() {
		return ReceiptResult{Sent: false, Reason: "no-transporter"}
	}
	if data.MemberEmail == "" {
		return ReceiptResult{Sent: false, Reason: "no-email"}
	}

	subject := fmt.Sprintf("Payment Receipt - %s", data.GymName)
	body := buildReceiptBody(data)

	if err := s.SendEmail([]string{data.MemberEmail}, subject, body); err != nil {
		return ReceiptResult{Sent: false, Reason: fmt.Sprintf("send-failed: %v", err)}
	}
	return ReceiptResult{Sent: true}
}

func buildReceiptBody(data ReceiptData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Dear %s,\n\n", data.MemberName)
	fmt.Fprintf(&b, "Thank you for your payment to %s.\n\n", data.GymName)

	b.WriteString("Payment Details\n")
	b.WriteString("---------------\n")
	fmt.Fprintf(&b, "Receipt No:     %s\n", data.PaymentID)
	fmt.Fprintf(&b, "Amount Paid:    %s\n", formatINR(data.Amount))
	fmt.Fprintf(&b, "Payment Method: %s\n", data.PaymentMethod)
	fmt.Fprintf(&b, "Payment Date:   %s\n\n", data.PaymentDate.Format("02 Jan 2006"))

	b.WriteString("Membership\n")
	b.WriteString("----------\n")
	fmt.Fprintf(&b, "Plan:     %s\n", data.PlanType)
	fmt.Fprintf(&b, "Duration: %d month(s)\n", data.Duration)
	fmt.Fprintf(&b, "Period:   %s to %s\n\n",
		data.PeriodStart.Format("02 Jan 2006"),
		data.PeriodEnd.Format("02 Jan 2006"))

	if data.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n\n", data.Notes)
	}

	fmt.Fprintf(&b, "For any queries, contact %s", data.GymName)
	if data.GymEmail != "" {
		fmt.Fprintf(&b, " at %s", data.GymEmail)
	}
	b.WriteString(".\n")

	return b.String()
}
