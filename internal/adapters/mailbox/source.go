package mailbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"slices"
	"strconv"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/mikey/mail-insight/internal/core"
	"go.uber.org/zap"
)

// Source fetches recent mail from an IMAP server
type Source struct {
	server   string
	port     int
	address  string
	password string
	startTLS bool
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSource creates a new IMAP mail source
func NewSource(
	server string,
	port int,
	address string,
	password string,
	startTLS bool,
	timeout time.Duration,
	logger *zap.Logger,
) *Source {
	return &Source{
		server:   server,
		port:     port,
		address:  address,
		password: password,
		startTLS: startTLS,
		timeout:  timeout,
		logger:   logger,
	}
}

func (s *Source) fail(err error) error {
	return &core.SourceError{Server: s.server, Err: err}
}

// connect dials and authenticates. The connection is closed when ctx ends, including
// while the TLS handshake or the server greeting is still pending.
func (s *Source) connect(ctx context.Context) (*imapclient.Client, func(), error) {
	addr := net.JoinHostPort(s.server, strconv.Itoa(s.port))
	tlsConfig := &tls.Config{ServerName: s.server}
	netDialer := &net.Dialer{Timeout: s.timeout}

	var conn net.Conn
	var err error
	if s.startTLS {
		conn, err = netDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = (&tls.Dialer{NetDialer: netDialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, nil, s.fail(fmt.Errorf("connecting to %s: %w", addr, err))
	}

	stop := context.AfterFunc(ctx, func() { conn.Close() })

	options := &imapclient.Options{TLSConfig: tlsConfig}
	var client *imapclient.Client
	if s.startTLS {
		client, err = imapclient.NewStartTLS(conn, options)
		if err != nil {
			stop()
			conn.Close()
			return nil, nil, s.fail(fmt.Errorf("starting TLS with %s: %w", addr, err))
		}
	} else {
		client = imapclient.New(conn, options)
	}

	if err := client.Login(s.address, s.password).Wait(); err != nil {
		stop()
		client.Close()
		return nil, nil, s.fail(fmt.Errorf("authentication failed for %s: %w", s.address, err))
	}

	s.logger.Info("Connected to IMAP server", zap.String("server", addr))

	release := func() {
		stop()
		if err := client.Logout().Wait(); err != nil {
			s.logger.Debug("IMAP logout failed", zap.Error(err))
		}
		client.Close()
	}
	return client, release, nil
}

func (s *Source) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Fetch returns the emails received in the last daysBack days, in folder order then UID order
func (s *Source) Fetch(ctx context.Context, folders []string, daysBack int) ([]core.RawEmail, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	client, release, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	since := time.Now().AddDate(0, 0, -daysBack)

	var emails []core.RawEmail
	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		found, err := s.fetchFolder(client, folder, since)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("Skipping folder", zap.String("folder", folder), zap.Error(err))
			continue
		}
		s.logger.Info("Fetched folder", zap.String("folder", folder), zap.Int("count", len(found)))
		emails = append(emails, found...)
	}

	s.logger.Info("Total emails fetched", zap.Int("count", len(emails)))
	return emails, nil
}

func (s *Source) fetchFolder(client *imapclient.Client, folder string, since time.Time) ([]core.RawEmail, error) {
	if _, err := client.Select(folder, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", folder, err)
	}

	searchData, err := client.UIDSearch(&imap.SearchCriteria{Since: since}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", folder, err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		Envelope:     true,
		InternalDate: true,
		UID:          true,
		BodySection:  []*imap.FetchItemBodySection{bodySection},
	})

	var buffers []*imapclient.FetchMessageBuffer
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}
		buf, err := msg.Collect()
		if err != nil {
			s.logger.Debug("Omitting unreadable message", zap.String("folder", folder), zap.Error(err))
			continue
		}
		buffers = append(buffers, buf)
	}
	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", folder, err)
	}

	slices.SortFunc(buffers, func(a, b *imapclient.FetchMessageBuffer) int {
		return int(a.UID) - int(b.UID)
	})

	emails := make([]core.RawEmail, 0, len(buffers))
	for _, buf := range buffers {
		email, ok := emailFromBuffer(folder, buf, buf.FindBodySection(bodySection))
		if !ok {
			s.logger.Debug("Omitting unparsable message", zap.String("folder", folder), zap.Uint32("uid", uint32(buf.UID)))
			continue
		}
		emails = append(emails, email)
	}
	return emails, nil
}

// ListFolders returns the mailbox names available on the server
func (s *Source) ListFolders(ctx context.Context) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	client, release, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	mailboxes, err := client.List("", "*", nil).Collect()
	if err != nil {
		return nil, s.fail(fmt.Errorf("listing folders: %w", err))
	}

	names := make([]string, 0, len(mailboxes))
	for _, mbox := range mailboxes {
		names = append(names, mbox.Mailbox)
	}
	return names, nil
}
