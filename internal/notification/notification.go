// Package notification sends desktop notifications for incoming messages.
// It uses the beeep library, which covers macOS, Linux and Windows.
package notification

import (
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"golang.org/x/time/rate"

	"github.com/zhubert/messly/internal/logger"
	"github.com/zhubert/messly/internal/metrics"
)

// AppName is the title prefix of every notification.
const AppName = "messly"

// previewLimit caps the message body shown in a notification.
const previewLimit = 120

var (
	mu       sync.Mutex
	notifier = beeep.Notify
	// One notification every 3s, bursts of 3.
	limiter = rate.NewLimiter(rate.Every(3*time.Second), 3)
)

// SetNotifier replaces the delivery function. Tests use it to avoid real
// notifications.
func SetNotifier(fn func(title, message string, icon any) error) {
	mu.Lock()
	defer mu.Unlock()
	notifier = fn
}

// ResetNotifier restores beeep delivery and a fresh rate limiter.
func ResetNotifier() {
	mu.Lock()
	defer mu.Unlock()
	notifier = beeep.Notify
	limiter = rate.NewLimiter(rate.Every(3*time.Second), 3)
}

// SetLimit replaces the rate limiter.
func SetLimit(every time.Duration, burst int) {
	mu.Lock()
	defer mu.Unlock()
	limiter = rate.NewLimiter(rate.Every(every), burst)
}

// Send delivers a notification without rate limiting.
func Send(title, message string) error {
	mu.Lock()
	fn := notifier
	mu.Unlock()

	log := logger.WithComponent("notification")
	log.Debug("sending notification", "title", title)
	if err := fn(title, message, ""); err != nil {
		metrics.IncNotification("failed")
		log.Warn("failed to send notification", "error", err)
		return err
	}
	metrics.IncNotification("sent")
	return nil
}

// NewMessage notifies about a message from author in chatName. It reports
// false when the notification was suppressed by the rate limit.
func NewMessage(chatName, author, content string) (bool, error) {
	mu.Lock()
	allowed := limiter.Allow()
	mu.Unlock()
	if !allowed {
		metrics.IncNotification("throttled")
		logger.WithComponent("notification").Debug("notification throttled", "chat", chatName)
		return false, nil
	}
	return true, Send(AppName+" · "+chatName, author+": "+preview(content))
}

func preview(content string) string {
	r := []rune(content)
	if len(r) <= previewLimit {
		return content
	}
	return string(r[:previewLimit-1]) + "…"
}
