// services/sms_service_test.go
package services

import (
	"context"
	"errors"
	"testing"
	"time"

	twilioClient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"golang.org/x/time/rate"

	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/models"
)

// fakeTwilioAPI scripts one response per attempt.
type fakeTwilioAPI struct {
	responses []error // nil means success
	calls     int
	gotTo     []string
	gotBody   []string
}

var _ messageCreator = (*fakeTwilioAPI)(nil)

func (f *fakeTwilioAPI) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	i := f.calls
	f.calls++
	if params.To != nil {
		f.gotTo = append(f.gotTo, *params.To)
	}
	if params.Body != nil {
		f.gotBody = append(f.gotBody, *params.Body)
	}
	if i < len(f.responses) && f.responses[i] != nil {
		return nil, f.responses[i]
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func newTestSMS(api messageCreator) *SMSService {
	return &SMSService{
		api:         api,
		from:        "+12025550100",
		ready:       true,
		maxAttempts: 3,
		retryBase:   time.Second,
		limiter:     rate.NewLimiter(rate.Every(time.Millisecond), 1),
		sleep:       func(ctx context.Context, d time.Duration) error { return nil },
	}
}

func permanentErr(code int) error {
	return &twilioClient.TwilioRestError{Code: code, Message: "permanent", Status: 400}
}

func TestDeliver_Success(t *testing.T) {
	t.Parallel()
	api := &fakeTwilioAPI{}
	sms := newTestSMS(api)

	outcome := sms.Deliver(context.Background(), "2025550123", "hello")
	if !outcome.Sent() {
		t.Fatalf("expected sent, got %+v", outcome)
	}
	if outcome.MessageSID != "SM123" {
		t.Errorf("MessageSID = %q, want SM123", outcome.MessageSID)
	}
	if api.calls != 1 {
		t.Errorf("calls = %d, want 1", api.calls)
	}
	if api.gotTo[0] != "+12025550123" {
		t.Errorf("destination = %q, want normalized +12025550123", api.gotTo[0])
	}
}

func TestDeliver_PermanentErrorNoRetry(t *testing.T) {
	t.Parallel()
	for _, code := range []int{21211, 21408, 21610, 21614} {
		api := &fakeTwilioAPI{responses: []error{permanentErr(code)}}
		sms := newTestSMS(api)

		outcome := sms.Deliver(context.Background(), "+12025550123", "hello")
		if outcome.Sent() {
			t.Fatalf("code %d: expected failure", code)
		}
		if api.calls != 1 {
			t.Errorf("code %d: calls = %d, want 1 (no retry)", code, api.calls)
		}
	}
}

func TestDeliver_TransientRetriesThenSuccess(t *testing.T) {
	t.Parallel()
	var slept []time.Duration
	api := &fakeTwilioAPI{responses: []error{
		errors.New("connection reset"),
		&twilioClient.TwilioRestError{Code: 20429, Message: "too many requests", Status: 429},
		nil,
	}}
	sms := newTestSMS(api)
	sms.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	outcome := sms.Deliver(context.Background(), "+12025550123", "hello")
	if !outcome.Sent() {
		t.Fatalf("expected success on third attempt, got %+v", outcome)
	}
	if api.calls != 3 {
		t.Errorf("calls = %d, want 3", api.calls)
	}
	if len(slept) != 2 || slept[0] != time.Second || slept[1] != 2*time.Second {
		t.Errorf("backoff = %v, want [1s 2s]", slept)
	}
}

func TestDeliver_TransientExhaustsAttempts(t *testing.T) {
	t.Parallel()
	transient := errors.New("timeout")
	api := &fakeTwilioAPI{responses: []error{transient, transient, transient, transient}}
	sms := newTestSMS(api)

	outcome := sms.Deliver(context.Background(), "+12025550123", "hello")
	if outcome.Sent() {
		t.Fatal("expected terminal failure")
	}
	if api.calls != 3 {
		t.Errorf("calls = %d, want maxAttempts=3", api.calls)
	}
	if outcome.ErrorMessage != "timeout" {
		t.Errorf("ErrorMessage = %q, want last failure", outcome.ErrorMessage)
	}
}

func TestDeliver_NotConfigured(t *testing.T) {
	t.Parallel()
	api := &fakeTwilioAPI{}
	sms := newTestSMS(api)
	sms.ready = false

	outcome := sms.Deliver(context.Background(), "+12025550123", "hello")
	if outcome.Sent() {
		t.Fatal("expected not-ready failure")
	}
	if outcome.ErrorMessage != ErrTransportNotReady.Error() {
		t.Errorf("ErrorMessage = %q, want %q", outcome.ErrorMessage, ErrTransportNotReady)
	}
	if api.calls != 0 {
		t.Errorf("calls = %d, want 0 (no network I/O when unconfigured)", api.calls)
	}
	if sms.Ready() {
		t.Error("Ready() should report false")
	}
}

func TestDeliver_UnnormalizablePhone(t *testing.T) {
	t.Parallel()
	api := &fakeTwilioAPI{}
	sms := newTestSMS(api)

	outcome := sms.Deliver(context.Background(), "not-a-number", "hello")
	if outcome.Status != models.ReminderStatusFailed {
		t.Fatalf("expected failed outcome, got %+v", outcome)
	}
	if api.calls != 0 {
		t.Errorf("calls = %d, want 0 (bad numbers never hit the transport)", api.calls)
	}
}

func TestPace_DelaysEverySuccessiveCall(t *testing.T) {
	t.Parallel()
	sms := newTestSMS(&fakeTwilioAPI{})
	sms.limiter = rate.NewLimiter(rate.Every(50*time.Millisecond), 1)

	// Three recipients: the first call rides the limiter's initial token,
	// the other two must each wait out the full delay.
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := sms.Pace(context.Background()); err != nil {
			t.Fatalf("Pace returned error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("3 paced calls took %v, want >= 100ms", elapsed)
	}
}

func TestNewSMSService_MissingCredentials(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_PHONE_NUMBER", "")

	sms := NewSMSService(3, time.Second, time.Second)
	if sms.Ready() {
		t.Fatal("expected not-ready without credentials")
	}
}
