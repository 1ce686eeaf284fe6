// Package inbox implements the email ingestion channel: an IMAP poller that
// feeds unseen messages through the text extractor and records every
// transaction they settle.
package inbox

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"

	"github.com/retail-receipt-ingest/internal/config"
)

// Message is one fetched email, raw MIME plus the envelope fields the
// processor logs.
type Message struct {
	UID     uint32
	Subject string
	From    string
	Raw     []byte
}

// Fetcher retrieves unseen messages from the configured mailbox.
type Fetcher interface {
	FetchUnseen(max int) ([]Message, error)
}

// IMAPFetcher connects per poll; the interval is long enough that keeping a
// connection open across polls buys nothing.
type IMAPFetcher struct {
	cfg    *config.MailConfig
	logger *slog.Logger
}

func NewIMAPFetcher(cfg *config.MailConfig, logger *slog.Logger) *IMAPFetcher {
	return &IMAPFetcher{
		cfg:    cfg,
		logger: logger,
	}
}

// FetchUnseen returns up to max unseen messages and marks them seen so the
// next poll does not reprocess them.
func (f *IMAPFetcher) FetchUnseen(max int) ([]Message, error) {
	addr := fmt.Sprintf("%s:%d", f.cfg.Host, f.cfg.Port)

	var client *imapclient.Client
	var err error
	if f.cfg.TLS {
		client, err = imapclient.DialTLS(addr, &tls.Config{ServerName: f.cfg.Host})
	} else {
		client, err = imapclient.Dial(addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial IMAP server: %w", err)
	}
	defer client.Logout()

	if err := client.Login(f.cfg.Username, f.cfg.Password); err != nil {
		return nil, fmt.Errorf("failed to login to IMAP server: %w", err)
	}

	if _, err := client.Select(f.cfg.Mailbox, false); err != nil {
		return nil, fmt.Errorf("failed to select mailbox %s: %w", f.cfg.Mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	ids, err := client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search mailbox: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > max {
		ids = ids[len(ids)-max:]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}
	messages := make(chan *imap.Message, len(ids))
	fetchDone := make(chan error, 1)
	go func() { fetchDone <- client.Fetch(seqset, items, messages) }()

	out := make([]Message, 0, len(ids))
	for msg := range messages {
		if msg == nil {
			continue
		}
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("failed to read message body: %w", err)
		}

		m := Message{UID: msg.Uid, Raw: raw}
		if msg.Envelope != nil {
			m.Subject = msg.Envelope.Subject
			if len(msg.Envelope.From) > 0 {
				m.From = msg.Envelope.From[0].Address()
			}
		}
		out = append(out, m)

		single := new(imap.SeqSet)
		single.AddNum(msg.SeqNum)
		flagOp := imap.FormatFlagsOp(imap.AddFlags, true)
		if err := client.Store(single, flagOp, []interface{}{imap.SeenFlag}, nil); err != nil {
			f.logger.Warn("Failed to mark message seen", "uid", msg.Uid, "error", err)
		}
	}

	if err := <-fetchDone; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	return out, nil
}
