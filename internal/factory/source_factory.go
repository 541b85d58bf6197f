package factory

import (
	"github.com/mikey/mail-insight/internal/adapters/mailbox"
	"github.com/mikey/mail-insight/internal/config"
	"github.com/mikey/mail-insight/internal/core"
	"go.uber.org/zap"
)

// SourceFactory creates IMAP mail sources
type SourceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSourceFactory creates a new source factory
func NewSourceFactory(cfg *config.Config, logger *zap.Logger) *SourceFactory {
	return &SourceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMailSource creates a source from the mail section. Non-empty arguments replace the configured values.
func (f *SourceFactory) CreateMailSource(address, password, server string) (*mailbox.Source, error) {
	mailCfg, err := f.cfg.GetMail()
	if err != nil {
		return nil, &core.ConfigError{Problems: []string{err.Error()}}
	}
	if address != "" {
		mailCfg.Address = address
	}
	if password != "" {
		mailCfg.Password = password
	}
	if server != "" {
		mailCfg.IMAPServer = server
	}

	var problems []string
	if mailCfg.Address == "" {
		problems = append(problems, "mail.address is required")
	}
	if mailCfg.Password == "" {
		problems = append(problems, "mail.password is required")
	}
	if mailCfg.IMAPServer == "" {
		problems = append(problems, "mail.imap_server is required")
	}
	if len(problems) > 0 {
		return nil, &core.ConfigError{Problems: problems}
	}

	return mailbox.NewSource(
		mailCfg.IMAPServer,
		mailCfg.IMAPPort,
		mailCfg.Address,
		mailCfg.Password,
		mailCfg.StartTLS,
		mailCfg.Timeout,
		f.logger,
	), nil
}
