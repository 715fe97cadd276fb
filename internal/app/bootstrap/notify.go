package bootstrap

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"

	appconfig "github.com/wolfman30/venue-platform/internal/config"
	"github.com/wolfman30/venue-platform/internal/events"
	"github.com/wolfman30/venue-platform/internal/notify"
	"github.com/wolfman30/venue-platform/pkg/logging"
)

// BuildEmailSender picks the staff email transport. EMAIL_PROVIDER forces
// "sendgrid" or "ses"; otherwise SendGrid is used when keyed, then SES when
// a from address is set, and finally a logging stub.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	sendgrid := func() notify.EmailSender {
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			return s
		}
		return nil
	}
	ses := func() notify.EmailSender {
		if awsCfg == nil || cfg.SESFromEmail == "" {
			return nil
		}
		return notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
	}

	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		sender = sendgrid()
	case "ses":
		sender = ses()
	default:
		if sender = sendgrid(); sender == nil {
			sender = ses()
		}
	}
	if sender == nil {
		logger.Info("no email provider configured; staff notifications are logged only")
		return notify.NewStubEmailSender(logger)
	}
	return sender
}

// BuildStaffNotifier returns nil when no staff recipients are configured.
func BuildStaffNotifier(cfg *appconfig.Config, awsCfg *aws.Config, loc *time.Location, logger *logging.Logger) *notify.ReservationNotifier {
	if cfg == nil || len(cfg.StaffNotifyEmails) == 0 {
		return nil
	}
	sender := BuildEmailSender(cfg, awsCfg, logger)
	return notify.NewReservationNotifier(sender, cfg.StaffNotifyEmails, cfg.VenueName, loc, logger)
}

// BuildStaffOutbox routes staff notifications through the Postgres outbox.
// The returned deliverer must be started by the caller.
func BuildStaffOutbox(pool *pgxpool.Pool, staff *notify.ReservationNotifier, logger *logging.Logger) (*events.ReservationOutbox, *events.Deliverer) {
	if pool == nil || staff == nil {
		return nil, nil
	}
	store := events.NewOutboxStore(pool)
	return events.NewReservationOutbox(store), events.NewDeliverer(store, events.NewReservationDelivery(staff), logger)
}
