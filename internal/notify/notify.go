// Package notify delivers hero alerts. Delivery is simulated: messages are
// written to a console writer and logged instead of reaching a mail or SMS
// gateway.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/questguild/questguild/internal/dependencies/clock"
	"github.com/questguild/questguild/internal/model"
)

var ErrUnknownContact = errors.New("contact is neither an email address nor a phone number")

// ContactKind is the channel a contact string is reachable on.
type ContactKind int

const (
	ContactUnknown ContactKind = iota
	ContactEmail
	ContactPhone
)

func (k ContactKind) String() string {
	switch k {
	case ContactEmail:
		return "EMAIL"
	case ContactPhone:
		return "SMS"
	default:
		return "UNKNOWN"
	}
}

const minPhoneDigits = 10

// Classify decides whether contact is an email address or a phone number.
func Classify(contact string) ContactKind {
	if strings.Contains(contact, "@") && strings.Contains(contact, ".") {
		return ContactEmail
	}
	digits := 0
	for _, r := range contact {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits >= minPhoneDigits {
		return ContactPhone
	}
	return ContactUnknown
}

// Notification is one delivered message.
type Notification struct {
	ID      string
	Kind    ContactKind
	To      string
	Message string
	SentAt  time.Time
}

// Config identifies the sending side of simulated deliveries.
type Config struct {
	FromEmail string `yaml:"from_email"`
	FromPhone string `yaml:"from_phone"`
	// Workers bounds concurrent deliveries during deadline checks.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the guild's default sender identity.
func DefaultConfig() Config {
	return Config{
		FromEmail: "guildmaster@questguild.local",
		FromPhone: "+10000000000",
		Workers:   4,
	}
}

// Sender delivers notifications to the console and keeps a history of what
// was sent. It is safe for concurrent use.
type Sender struct {
	cfg    Config
	out    io.Writer
	clock  clock.Clock
	logger *zap.Logger

	mu   sync.Mutex
	sent []Notification
}

// NewSender creates a Sender writing deliveries to out.
func NewSender(cfg Config, out io.Writer, clk clock.Clock, logger *zap.Logger) *Sender {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Sender{cfg: cfg, out: out, clock: clk, logger: logger}
}

// Send routes message to contact by its channel.
func (s *Sender) Send(ctx context.Context, message, contact string) (Notification, error) {
	if err := ctx.Err(); err != nil {
		return Notification{}, err
	}
	kind := Classify(contact)
	if kind == ContactUnknown {
		s.logger.Warn("unknown contact method", zap.String("contact", contact))
		return Notification{}, fmt.Errorf("%w: %q", ErrUnknownContact, contact)
	}

	n := Notification{
		ID:      uuid.NewString(),
		Kind:    kind,
		To:      contact,
		Message: message,
		SentAt:  s.clock.Now(),
	}
	from := s.cfg.FromEmail
	if kind == ContactPhone {
		from = s.cfg.FromPhone
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.out, "[%s] %s -> %s: %s\n", kind, from, contact, message); err != nil {
		return Notification{}, fmt.Errorf("failed to write notification: %w", err)
	}
	s.sent = append(s.sent, n)
	s.logger.Info("notification sent",
		zap.String("id", n.ID),
		zap.String("kind", kind.String()),
		zap.String("to", contact))
	return n, nil
}

// Sent returns a copy of the delivery history.
func (s *Sender) Sent() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.sent...)
}

// DeadlineMessage is the alert text for a quest close to its due date.
func DeadlineMessage(q *model.Quest) string {
	return fmt.Sprintf("URGENT: Hero, your quest '%s' must be completed by %s!", q.Title, q.DueDate.Format("January 02"))
}

// CheckDeadlines alerts every reachable contact of hero about each quest
// that is near its deadline, delivering concurrently. Contacts that are
// neither an email address nor a phone number are skipped. It returns the
// number of messages sent.
func (s *Sender) CheckDeadlines(ctx context.Context, hero *model.Hero, quests []*model.Quest) (int, error) {
	now := s.clock.Now()
	var contacts []string
	for _, contact := range hero.Contacts() {
		if Classify(contact) == ContactUnknown {
			s.logger.Warn("skipping unreachable contact",
				zap.String("hero", hero.Username),
				zap.String("contact", contact))
			continue
		}
		contacts = append(contacts, contact)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	var mu sync.Mutex
	count := 0
	for _, q := range quests {
		if !q.IsNearDeadline(now) {
			continue
		}
		msg := DeadlineMessage(q)
		for _, contact := range contacts {
			g.Go(func() error {
				if _, err := s.Send(ctx, msg, contact); err != nil {
					return err
				}
				mu.Lock()
				count++
				mu.Unlock()
				return nil
			})
		}
	}
	err := g.Wait()
	return count, err
}
