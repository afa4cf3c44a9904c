// services/sms_service.go
package services

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/twilio/twilio-go"
	twilioClient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"golang.org/x/time/rate"

	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/models"
	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/utils"
)

// ErrTransportNotReady is returned (inside a failed outcome) when the
// Twilio credentials are absent. The engine never attempts network I/O
// in that state.
var ErrTransportNotReady = errors.New("sms transport not configured")

// Twilio error codes that mean the destination number itself is invalid
// or blocked. These are permanent: retrying cannot succeed.
var permanentTwilioCodes = map[int]bool{
	21211: true, // invalid 'To' number
	21408: true, // permission not enabled for region
	21610: true, // recipient has opted out (STOP)
	21614: true, // 'To' is not a mobile number
}

// DeliveryOutcome is the result of one Deliver call, terminal after any
// retries the engine performed internally.
type DeliveryOutcome struct {
	Status       string // models.ReminderStatusSent or ReminderStatusFailed
	MessageSID   string
	ErrorMessage string
}

func (o DeliveryOutcome) Sent() bool { return o.Status == models.ReminderStatusSent }

// messageCreator is the slice of the Twilio REST client the engine uses.
// *twilio.RestClient's Api service satisfies it.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSService sends reminder texts through Twilio with bounded retry.
// Transient failures back off exponentially (base, 2x, 4x, ...) up to
// maxAttempts; permanent failures return immediately. A rate limiter
// paces successive recipients independently of the retry backoff.
type SMSService struct {
	api         messageCreator
	from        string
	ready       bool
	maxAttempts int
	retryBase   time.Duration
	limiter     *rate.Limiter

	// sleep is swapped out in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSMSService reads the Twilio credentials from the environment.
// Missing credentials produce a not-configured engine whose Deliver
// short-circuits deterministically.
func NewSMSService(maxAttempts int, retryBase, recipientDelay time.Duration) *SMSService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_PHONE_NUMBER")

	s := &SMSService{
		from:        from,
		maxAttempts: maxAttempts,
		retryBase:   retryBase,
		limiter:     rate.NewLimiter(rate.Every(recipientDelay), 1),
		sleep:       sleepCtx,
	}

	if accountSid == "" || authToken == "" || from == "" {
		log.Println("Twilio credentials not configured; SMS delivery disabled")
		return s
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})
	s.api = client.Api
	s.ready = true
	return s
}

// Ready reports whether the transport is configured.
func (s *SMSService) Ready() bool { return s.ready }

// Pace blocks until the next recipient may be messaged, respecting the
// configured inter-recipient delay.
func (s *SMSService) Pace(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

// Deliver normalizes phone to E.164 and sends body, retrying transient
// transport failures up to the attempt budget. The returned outcome is
// terminal either way; Deliver never panics or returns a Go error.
func (s *SMSService) Deliver(ctx context.Context, phone, body string) DeliveryOutcome {
	if !s.ready {
		return DeliveryOutcome{Status: models.ReminderStatusFailed, ErrorMessage: ErrTransportNotReady.Error()}
	}

	to, err := utils.NormalizePhone(phone)
	if err != nil {
		// A number we cannot canonicalize is as permanent as an invalid
		// 'To' code from the API.
		return DeliveryOutcome{Status: models.ReminderStatusFailed, ErrorMessage: err.Error()}
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(to)
		params.SetFrom(s.from)
		params.SetBody(body)

		resp, err := s.api.CreateMessage(params)
		if err == nil {
			sid := ""
			if resp != nil && resp.Sid != nil {
				sid = *resp.Sid
			}
			return DeliveryOutcome{Status: models.ReminderStatusSent, MessageSID: sid}
		}
		lastErr = err

		if isPermanentTwilioError(err) {
			log.Printf("Permanent delivery failure for %s: %v", to, err)
			return DeliveryOutcome{Status: models.ReminderStatusFailed, ErrorMessage: err.Error()}
		}

		if attempt < s.maxAttempts {
			delay := s.retryBase << (attempt - 1)
			log.Printf("Transient delivery failure for %s (attempt %d/%d), retrying in %v: %v",
				to, attempt, s.maxAttempts, delay, err)
			if err := s.sleep(ctx, delay); err != nil {
				return DeliveryOutcome{Status: models.ReminderStatusFailed, ErrorMessage: err.Error()}
			}
		}
	}

	log.Printf("Delivery to %s failed after %d attempts: %v", to, s.maxAttempts, lastErr)
	return DeliveryOutcome{Status: models.ReminderStatusFailed, ErrorMessage: lastErr.Error()}
}

func isPermanentTwilioError(err error) bool {
	var restErr *twilioClient.TwilioRestError
	if errors.As(err, &restErr) {
		return permanentTwilioCodes[restErr.Code]
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
