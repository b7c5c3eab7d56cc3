package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"autoinvoice/internal/domain"
)

// Client talks to the Gmail API on behalf of one user. The token source
// refreshes the access token transparently when it expires.
type Client struct {
	svc *gmailapi.Service
}

// NewClient builds a Gmail client from a user's OAuth tokens. The oauth
// config supplies the refresh endpoint.
func NewClient(ctx context.Context, oauthCfg *oauth2.Config, token *oauth2.Token) (*Client, error) {
	ts := oauthCfg.TokenSource(ctx, token)
	svc, err := gmailapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// ListMessages searches the user's mailbox and returns matching message refs.
func (c *Client) ListMessages(ctx context.Context, query string, maxResults int64) ([]domain.MessageRef, error) {
	resp, err := c.svc.Users.Messages.List("me").
		Q(query).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	refs := make([]domain.MessageRef, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		refs = append(refs, domain.MessageRef{ID: m.Id, ThreadID: m.ThreadId})
	}
	return refs, nil
}

// GetMessage fetches a message's headers and attachment refs.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*domain.MessageDetails, error) {
	msg, err := c.svc.Users.Messages.Get("me", messageID).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("fetching message %s: %w", messageID, err)
	}

	details := &domain.MessageDetails{ID: msg.Id}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch strings.ToLower(h.Name) {
			case "subject":
				details.Subject = h.Value
			case "date":
				details.Date = h.Value
			}
		}
		collectAttachments(messageID, msg.Payload.Parts, &details.Attachments)
	}
	return details, nil
}

// collectAttachments walks the MIME part tree. A part counts as an
// attachment when it carries both a filename and a server-side body id.
func collectAttachments(messageID string, parts []*gmailapi.MessagePart, out *[]domain.AttachmentRef) {
	for _, p := range parts {
		if p == nil {
			continue
		}
		if p.Filename != "" && p.Body != nil && p.Body.AttachmentId != "" {
			*out = append(*out, domain.AttachmentRef{
				MessageID:    messageID,
				AttachmentID: p.Body.AttachmentId,
				Filename:     p.Filename,
				MimeType:     p.MimeType,
			})
		}
		if len(p.Parts) > 0 {
			collectAttachments(messageID, p.Parts, out)
		}
	}
}

// GetAttachment downloads and decodes one attachment body.
func (c *Client) GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, int64, error) {
	att, err := c.svc.Users.Messages.Attachments.Get("me", messageID, attachmentID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, 0, fmt.Errorf("fetching attachment: %w", err)
	}

	data, err := base64.URLEncoding.DecodeString(att.Data)
	if err != nil {
		// Gmail uses unpadded base64url for some attachments.
		data, err = base64.RawURLEncoding.DecodeString(att.Data)
		if err != nil {
			return nil, 0, fmt.Errorf("decoding attachment data: %w", err)
		}
	}
	return data, int64(len(data)), nil
}
