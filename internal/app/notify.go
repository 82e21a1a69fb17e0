package app

import (
	"context"

	"go.uber.org/zap"

	"spacebook/internal/config"
	"spacebook/internal/domain"
	"spacebook/internal/modules/notification"
	"spacebook/internal/repository"
)

// NewDispatcher registers a sender for every channel that has credentials.
// Types without one are recorded as failed when dispatched. pusher may be nil.
func NewDispatcher(ctx context.Context, cfg *config.Config, store repository.UnitOfWork, pusher notification.Pusher, log *zap.Logger) *notification.Dispatcher {
	d := notification.NewDispatcher(store, notification.DefaultTemplates(), log.Named("notification"))
	if pusher != nil {
		d.WithPusher(pusher)
	}

	if cfg.SMTPHost != "" {
		d.Register(domain.NotificationEmail, notification.NewSMTPSender(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}))
	}
	if cfg.SMSAPIURL != "" {
		d.Register(domain.NotificationSMS, notification.NewSMSSender(cfg.SMSAPIURL, cfg.SMSAPIKey, cfg.SMSSender))
	}
	if cfg.FirebaseCredentialsFile != "" {
		fcm, err := notification.NewFCMSender(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			log.Warn("push notifications disabled", zap.Error(err))
		} else {
			d.Register(domain.NotificationPush, fcm)
		}
	}
	return d
}
