// Package mailer sends transactional email to listers.
package mailer

import (
	"context"
	"fmt"

	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// Mailer delivers mail over SMTP.
type Mailer struct {
	sender string
	send   func(...*gomail.Message) error
	logger *logger.Logger
}

func New(cfg Config, log *logger.Logger) *Mailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	sender := cfg.Sender
	if sender == "" {
		sender = cfg.Username
	}
	return &Mailer{sender: sender, send: d.DialAndSend, logger: log.Named("Mailer")}
}

// ListingCreated tells the lister their listing is live. Listers without an
// email address are skipped.
func (m *Mailer) ListingCreated(ctx context.Context, listing *domain.Listing) error {
	to := listing.ListedBy.Email
	if to == "" {
		m.logger.Debug("ListingCreated: lister has no email, skipping", zap.String("listing_id", listing.ID))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your listing is live")
	msg.SetBody("text/plain", listingCreatedBody(listing))

	if err := m.send(msg); err != nil {
		m.logger.Error("ListingCreated: failed to send", zap.String("listing_id", listing.ID), zap.Error(err))
		return fmt.Errorf("send listing created email: %w", err)
	}
	m.logger.Info("ListingCreated: email sent", zap.String("listing_id", listing.ID))
	return nil
}

func listingCreatedBody(l *domain.Listing) string {
	name := l.ListedBy.Name
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hi %s,\n\nYour listing %q in %s, %s has been published with id %s.\n",
		name, l.Title, l.Location.City, l.Location.State, l.ID)
}
