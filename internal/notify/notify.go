// Package notify emails the team when a red advisory fires. The mail names
// the rule that fired, never the profile it fired on: extracted page content
// stays in memory and is not transmitted anywhere.
package notify

import (
	"fmt"
	"log"
	"sync"
	"time"

	gomail "gopkg.in/mail.v2"

	"sourcing-advisor/internal/rules"
)

type Config struct {
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	From     string
	To       []string
}

// Mailer delivers red-advisory alerts over SMTP. Sends are asynchronous and
// deduplicated per rule within the cooldown, so a storm of scans over the
// same restricted profile produces one mail, not hundreds.
type Mailer struct {
	cfg      Config
	cooldown time.Duration
	send     func(*gomail.Message) error

	mu       sync.Mutex
	lastSent map[int64]time.Time
	wg       sync.WaitGroup
}

func NewMailer(cfg Config) *Mailer {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
	dialer.Timeout = 10 * time.Second
	return &Mailer{
		cfg:      cfg,
		cooldown: time.Hour,
		send: func(msg *gomail.Message) error {
			return dialer.DialAndSend(msg)
		},
		lastSent: map[int64]time.Time{},
	}
}

// RedAdvisory queues an alert for a rule that fired at red severity. Non-red
// results and repeats inside the cooldown are dropped silently.
func (m *Mailer) RedAdvisory(res rules.MatchResult) {
	if res.Severity != rules.SeverityRed || len(m.cfg.To) == 0 {
		return
	}

	now := time.Now()
	m.mu.Lock()
	if last, ok := m.lastSent[res.RuleID]; ok && now.Sub(last) < m.cooldown {
		m.mu.Unlock()
		return
	}
	m.lastSent[res.RuleID] = now
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.deliver(res, now)
	}()
}

func (m *Mailer) deliver(res rules.MatchResult, at time.Time) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.To...)
	msg.SetHeader("Subject", "Sourcing advisor: red restriction hit")
	msg.SetBody("text/plain", fmt.Sprintf(
		"A red sourcing restriction fired during scanning.\n\nRule ID: %d\nMessage: %s\nAt: %s\n",
		res.RuleID, res.Message, at.Format(time.RFC1123)))

	if err := m.send(msg); err != nil {
		log.Printf("[notify] send failed for rule %d: %v", res.RuleID, err)
		return
	}
	log.Printf("[notify] red advisory sent for rule %d", res.RuleID)
}

// Wait blocks until queued sends finish; used at shutdown.
func (m *Mailer) Wait() {
	m.wg.Wait()
}
