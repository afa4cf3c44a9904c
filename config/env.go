package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ReminderConfig holds every tunable of the reminder pipeline. All values
// come from the environment with dealership-friendly defaults; only the
// Twilio credentials (read separately by the SMS service) are secret.
type ReminderConfig struct {
	// Timezone is the dealership's civil timezone. Every day window and
	// every daily fire time is interpreted in it, regardless of where the
	// server runs.
	Timezone string

	// Local fire times for the two daily kinds, "HH:MM" 24h clock.
	DayBeforeAt ClockTime
	DayOfAt     ClockTime

	// one_hour trigger: poll every PollInterval, looking at appointments
	// LeadTime ahead with a ±Tolerance band to absorb polling jitter.
	PollInterval time.Duration
	LeadTime     time.Duration
	Tolerance    time.Duration

	// Delivery engine tuning.
	MaxAttempts    int           // total attempts per send, including the first
	RetryBase      time.Duration // backoff after attempt 1; doubles each retry
	RecipientDelay time.Duration // pacing between successive recipients

	// AppointmentsURL is the deep link appended to every message.
	AppointmentsURL string
}

// ClockTime is a wall-clock time of day ("17:00") in the dealership zone.
type ClockTime struct {
	Hour   int
	Minute int
}

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// CronSpec renders the time as a standard 5-field cron expression.
func (t ClockTime) CronSpec() string {
	return fmt.Sprintf("%d %d * * *", t.Minute, t.Hour)
}

func LoadReminderConfig() (*ReminderConfig, error) {
	pollMinutes, err := getEnvInt("REMINDER_POLL_MINUTES", 5)
	if err != nil {
		return nil, err
	}
	leadMinutes, err := getEnvInt("REMINDER_LEAD_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	toleranceMinutes, err := getEnvInt("REMINDER_TOLERANCE_MINUTES", 5)
	if err != nil {
		return nil, err
	}
	maxAttempts, err := getEnvInt("SMS_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	retryBaseMs, err := getEnvInt("SMS_RETRY_BASE_MS", 1000)
	if err != nil {
		return nil, err
	}
	recipientDelayMs, err := getEnvInt("SMS_RECIPIENT_DELAY_MS", 1000)
	if err != nil {
		return nil, err
	}

	cfg := &ReminderConfig{
		Timezone:        getEnv("DEALERSHIP_TIMEZONE", "America/New_York"),
		PollInterval:    time.Duration(pollMinutes) * time.Minute,
		LeadTime:        time.Duration(leadMinutes) * time.Minute,
		Tolerance:       time.Duration(toleranceMinutes) * time.Minute,
		MaxAttempts:     maxAttempts,
		RetryBase:       time.Duration(retryBaseMs) * time.Millisecond,
		RecipientDelay:  time.Duration(recipientDelayMs) * time.Millisecond,
		AppointmentsURL: getEnv("APPOINTMENTS_URL", "https://dms.bbbautosales.com/appointments"),
	}

	if cfg.DayBeforeAt, err = parseClock(getEnv("REMINDER_DAY_BEFORE_AT", "17:00")); err != nil {
		return nil, fmt.Errorf("REMINDER_DAY_BEFORE_AT: %w", err)
	}
	if cfg.DayOfAt, err = parseClock(getEnv("REMINDER_DAY_OF_AT", "08:00")); err != nil {
		return nil, fmt.Errorf("REMINDER_DAY_OF_AT: %w", err)
	}

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("REMINDER_POLL_MINUTES must be > 0")
	}
	if cfg.LeadTime <= 0 {
		return nil, fmt.Errorf("REMINDER_LEAD_MINUTES must be > 0")
	}
	if cfg.Tolerance <= 0 {
		return nil, fmt.Errorf("REMINDER_TOLERANCE_MINUTES must be > 0")
	}
	if cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("SMS_MAX_ATTEMPTS must be > 0")
	}
	return cfg, nil
}

func parseClock(raw string) (ClockTime, error) {
	var t ClockTime
	if _, err := fmt.Sscanf(raw, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return ClockTime{}, fmt.Errorf("expected HH:MM, got %q", raw)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return ClockTime{}, fmt.Errorf("clock time %q out of range", raw)
	}
	return t, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: expected an integer, got %q", key, v)
	}
	return i, nil
}
