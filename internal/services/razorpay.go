package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	razorpay "github.com/razorpay/razorpay-go"
)

var (
	ErrRazorpayNotConfigured = errors.New("razorpay credentials not configured")
	ErrInvalidSignature      = errors.New("invalid payment signature")
)

// RazorpayService wraps the gateway client used for gym-owner subscription
// activation payments.
type RazorpayService struct {
	client    *razorpay.Client
	keyID     string
	keySecret string
}

// NewRazorpayService builds the client from RAZORPAY_KEY_ID and
// RAZORPAY_KEY_SECRET. Returns an error when either is missing so the
// server can keep running with the gateway routes disabled.
func NewRazorpayService() (*RazorpayService, error) {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	if keyID == "" || keySecret == "" {
		return nil, ErrRazorpayNotConfigured
	}
	return &RazorpayService{
		client:    razorpay.NewClient(keyID, keySecret),
		keyID:     keyID,
		keySecret: keySecret,
	}, nil
}

// PublicKey is the key id safe to hand to checkout clients.
func (s *RazorpayService) PublicKey() string {
	return s.keyID
}

// CreateOrder opens a gateway order for the given amount in rupees. The
// gateway expects the smallest currency unit, so the amount is converted to
// paise.
func (s *RazorpayService) CreateOrder(amount float64, receipt string, notes map[string]interface{}) (map[string]interface{}, error) {
	data := map[string]interface{}{
		"amount":   int64(amount * 100),
		"currency": "INR",
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	order, err := s.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}
	return order, nil
}

// VerifySignature checks the checkout callback signature: HMAC-SHA256 of
// "orderID|paymentID" under the key secret, hex encoded.
func (s *RazorpayService) VerifySignature(orderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
