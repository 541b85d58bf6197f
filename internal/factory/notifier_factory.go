package factory

import (
	"github.com/mikey/mail-insight/internal/adapters/notify"
	"github.com/mikey/mail-insight/internal/config"
	"github.com/mikey/mail-insight/internal/core"
	"go.uber.org/zap"
)

// NotifierFactory creates the configured result notifiers
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger) *NotifierFactory {
	return &NotifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateNotifiers returns every enabled notifier
func (f *NotifierFactory) CreateNotifiers() ([]core.Notifier, error) {
	notifyCfg := f.cfg.GetNotify()
	var notifiers []core.Notifier
	var problems []string

	if smtpCfg := notifyCfg.SMTP; smtpCfg.Enabled {
		if smtpCfg.Address == "" || smtpCfg.From == "" || len(smtpCfg.To) == 0 {
			problems = append(problems, "notify.smtp requires address, from and to")
		} else {
			notifiers = append(notifiers, notify.NewSMTPNotifier(
				smtpCfg.Address,
				smtpCfg.Username,
				smtpCfg.Password,
				smtpCfg.From,
				smtpCfg.To,
				f.logger,
			))
		}
	}

	if amqpCfg := notifyCfg.AMQP; amqpCfg.Enabled {
		if amqpCfg.URL == "" || amqpCfg.Exchange == "" {
			problems = append(problems, "notify.amqp requires url and exchange")
		} else {
			notifiers = append(notifiers, notify.NewAMQPNotifier(
				amqpCfg.URL,
				amqpCfg.Exchange,
				amqpCfg.RoutingKey,
				f.logger,
			))
		}
	}

	if len(problems) > 0 {
		return nil, &core.ConfigError{Problems: problems}
	}
	for _, n := range notifiers {
		f.logger.Info("Enabled result notifier", zap.String("notifier", n.Name()))
	}
	return notifiers, nil
}
