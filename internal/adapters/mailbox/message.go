package mailbox

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/mikey/mail-insight/internal/core"
)

// emailFromBuffer builds a RawEmail from fetched message data.
// It reports false when neither an envelope nor a body is present.
func emailFromBuffer(folder string, buf *imapclient.FetchMessageBuffer, raw []byte) (core.RawEmail, bool) {
	if buf.Envelope == nil && raw == nil {
		return core.RawEmail{}, false
	}

	email := core.RawEmail{Folder: folder}
	if env := buf.Envelope; env != nil {
		email.MessageID = env.MessageID
		email.Subject = env.Subject
		email.DateSent = env.Date
		email.SenderName, email.FromAddress = sender(env.From)
		email.ToAddress = joinAddresses(env.To)
	}

	if raw != nil {
		parsed := parseMessage(raw)
		if email.Subject == "" {
			email.Subject = parsed.subject
		}
		if email.DateSent.IsZero() {
			email.DateSent = parsed.date
		}
		if email.FromAddress == "" {
			email.SenderName, email.FromAddress = parsed.senderName, parsed.fromAddress
		}
		email.Body = parsed.body
	}

	email.DateReceived = buf.InternalDate
	if email.DateReceived.IsZero() {
		email.DateReceived = email.DateSent
	}
	return email, true
}

// sender returns the display name, or the address when no name is set, along with the address
func sender(from []imap.Address) (name, address string) {
	if len(from) == 0 {
		return "", ""
	}
	address = from[0].Addr()
	if from[0].Name != "" {
		return from[0].Name, address
	}
	return address, address
}

func joinAddresses(addrs []imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a.Name != "" {
			parts = append(parts, a.Name+" <"+a.Addr()+">")
		} else {
			parts = append(parts, a.Addr())
		}
	}
	return strings.Join(parts, ", ")
}

type parsedMessage struct {
	subject     string
	senderName  string
	fromAddress string
	date        time.Time
	body        string
}

// parseMessage extracts headers and the first text/plain part of an RFC 5322 message.
// Unparsable input is returned whole as the body.
func parseMessage(raw []byte) parsedMessage {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return parsedMessage{body: string(raw)}
	}
	defer mr.Close()

	var parsed parsedMessage
	parsed.subject, _ = mr.Header.Subject()
	parsed.date, _ = mr.Header.Date()
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		parsed.fromAddress = from[0].Address
		parsed.senderName = from[0].Name
		if parsed.senderName == "" {
			parsed.senderName = from[0].Address
		}
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		if contentType != "" && !strings.HasPrefix(contentType, "text/plain") {
			continue
		}
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		parsed.body = string(body)
		break
	}
	return parsed
}
