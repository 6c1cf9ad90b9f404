package emailsvc

import (
	"fmt"

	"github.com/mailjet/mailjet-apiv3-go"
	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core"
)

type mailjetService struct {
	client     *mailjet.Client
	from       *mailjet.RecipientV31
	subjPrefix string
	logger     core.Logger
}

var (
	_ core.EmailService = (*mailjetService)(nil)
	_ core.EmailSender  = (*mailjetService)(nil)
)

func NewMailjetService(logger core.Logger) *mailjetService {
	from := core.Conf.DefaultFromEmail
	return &mailjetService{
		client:     mailjet.NewMailjetClient(core.Conf.Email.MailjetPublicKey, core.Conf.Email.MailjetPrivateKey),
		from:       &mailjet.RecipientV31{Email: from.Address, Name: from.Name},
		subjPrefix: "[" + core.Conf.AppName + "] ",
		logger:     logger,
	}
}

func (svc mailjetService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		msg := msg
		go func() {
			if err := svc.SendMessage(msg); err != nil {
				svc.logger.Error(fmt.Sprintf("sending email: %v", err), err)
			}
		}()
	}
}

func (svc mailjetService) SendMessage(msg *core.EmailMessage) error {
	if err := msg.Render(); err != nil {
		return errors.Wrap(err, "rendering email")
	}
	if !msg.HasRecipients() || !(msg.HasContent() || msg.HasAttachments()) {
		return nil
	}

	info := []mailjet.InfoMessagesV31{svc.prepare(*msg)}
	msgs := mailjet.MessagesV31{Info: info}
	if _, err := svc.client.SendMailV31(&msgs); err != nil {
		return errors.Wrap(err, "sending email")
	}
	return nil
}

func (svc mailjetService) prepare(msg core.EmailMessage) mailjet.InfoMessagesV31 {
	to := make(mailjet.RecipientsV31, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, mailjet.RecipientV31{Email: addr.Address, Name: addr.Name})
	}
	cc := make(mailjet.RecipientsV31, 0, len(msg.Cc))
	for _, addr := range msg.Cc {
		cc = append(cc, mailjet.RecipientV31{Email: addr.Address, Name: addr.Name})
	}
	bcc := make(mailjet.RecipientsV31, 0, len(msg.Bcc))
	for _, addr := range msg.Bcc {
		bcc = append(bcc, mailjet.RecipientV31{Email: addr.Address, Name: addr.Name})
	}

	info := mailjet.InfoMessagesV31{
		From:     svc.from,
		To:       &to,
		Subject:  svc.subjPrefix + msg.Subject,
		TextPart: msg.TextContent,
		HTMLPart: msg.HTMLContent,
	}
	if len(cc) > 0 {
		info.Cc = &cc
	}
	if len(bcc) > 0 {
		info.Bcc = &bcc
	}

	for _, at := range msg.Attachments {
		if info.Attachments == nil {
			info.Attachments = &mailjet.AttachmentsV31{}
		}
		*info.Attachments = append(*info.Attachments, mailjet.AttachmentV31{
			ContentType:   at.ContentType,
			Filename:      at.Filename,
			Base64Content: at.Content.String(),
		})
	}
	return info
}
