package otp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fruitbid/server/internal/errs"
	"github.com/fruitbid/server/internal/model"
	"go.uber.org/zap"
)

// Sender delivers a one-time code to a contact identifier. Delivery is
// best-effort: a failed send is reported so the caller can fall back to
// showing the code in-app, it never aborts registration.
type Sender interface {
	Send(ctx context.Context, identifier string, kind model.ContactKind, code string) error
}

// SMSSender posts codes to a Twilio-style messaging API for phone-shaped
// identifiers. Email identifiers are not deliverable through it.
type SMSSender struct {
	client     *http.Client
	apiURL     string // e.g. https://api.twilio.com/2010-04-01/Accounts/<sid>/Messages.json
	accountSID string
	authToken  string
	from       string
	log        *zap.Logger
}

// NewSMSSender constructs an SMS sender. An empty apiURL yields a sender
// that always reports degraded delivery, which keeps local setups working
// without provider credentials.
func NewSMSSender(client *http.Client, apiURL, accountSID, authToken, from string, log *zap.Logger) *SMSSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &SMSSender{client: client, apiURL: apiURL, accountSID: accountSID, authToken: authToken, from: from, log: log}
}

// Send posts the code to the messaging provider.
func (s *SMSSender) Send(ctx context.Context, identifier string, kind model.ContactKind, code string) error {
	if kind != model.ContactMobile {
		return fmt.Errorf("%w: no sms route for %s", errs.ErrExternalDegraded, kind)
	}
	if s.apiURL == "" {
		return fmt.Errorf("%w: sms provider not configured", errs.ErrExternalDegraded)
	}

	form := url.Values{}
	form.Set("To", identifier)
	form.Set("From", s.from)
	form.Set("Body", fmt.Sprintf("Your FruitBid OTP is %s. It expires in 5 minutes.", code))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrExternalDegraded, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.accountSID, s.authToken)

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("sms send failed", zap.Error(err))
		return fmt.Errorf("%w: %v", errs.ErrExternalDegraded, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.log.Warn("sms provider rejected message", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: provider status %d", errs.ErrExternalDegraded, resp.StatusCode)
	}
	return nil
}
