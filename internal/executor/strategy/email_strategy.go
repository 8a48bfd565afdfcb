package strategy

import (
	"context"
	"fmt"

	"email-datagen/internal/entity"
	"email-datagen/internal/executor/dto"
	"email-datagen/internal/executor/repository"
	"email-datagen/pkg/logger"
)

// senderStrategy posts to the sending backend. Variants differ only in how they fill the request.
type senderStrategy struct {
	emailType entity.EmailType
	sender    repository.SenderRepository
	logger    *logger.Logger
	build     func(req *DispatchRequest, body *dto.SendRequest) error
}

// NewPhishingStrategy sends phishing simulations using the payload's template.
func NewPhishingStrategy(sender repository.SenderRepository, log *logger.Logger) EmailDispatchStrategy {
	return &senderStrategy{
		emailType: entity.EmailTypePhishing,
		sender:    sender,
		logger:    log,
		build: func(req *DispatchRequest, body *dto.SendRequest) error {
			p, ok := req.Payload.(entity.PhishingPayload)
			if !ok {
				return fmt.Errorf("expected phishing payload, got %T", req.Payload)
			}
			body.TemplateType = p.TemplateType
			if body.TemplateType == "" {
				body.TemplateType = entity.PhishingTemplateWarning
			}
			return nil
		},
	}
}

// NewEICARStrategy sends the EICAR antivirus test signature.
func NewEICARStrategy(sender repository.SenderRepository, log *logger.Logger) EmailDispatchStrategy {
	return &senderStrategy{emailType: entity.EmailTypeEICAR, sender: sender, logger: log}
}

// NewCynicStrategy sends the Cynic sandbox test payload.
func NewCynicStrategy(sender repository.SenderRepository, log *logger.Logger) EmailDispatchStrategy {
	return &senderStrategy{emailType: entity.EmailTypeCynic, sender: sender, logger: log}
}

// NewGTUBEStrategy sends the GTUBE spam test string. It always sends a single message.
func NewGTUBEStrategy(sender repository.SenderRepository, log *logger.Logger) EmailDispatchStrategy {
	return &senderStrategy{
		emailType: entity.EmailTypeGTUBE,
		sender:    sender,
		logger:    log,
		build: func(_ *DispatchRequest, body *dto.SendRequest) error {
			body.Count = 1
			return nil
		},
	}
}

// NewCustomStrategy sends a caller-authored message.
func NewCustomStrategy(sender repository.SenderRepository, log *logger.Logger) EmailDispatchStrategy {
	return &senderStrategy{
		emailType: entity.EmailTypeCustom,
		sender:    sender,
		logger:    log,
		build: func(req *DispatchRequest, body *dto.SendRequest) error {
			p, ok := req.Payload.(entity.CustomPayload)
			if !ok {
				return fmt.Errorf("expected custom payload, got %T", req.Payload)
			}
			if p.Subject == "" || p.Body == "" {
				return fmt.Errorf("custom email requires subject and body")
			}
			body.Subject = p.Subject
			body.Body = p.Body
			body.TextBody = p.TextBody
			body.DisplayName = p.DisplayName
			body.AttachmentType = p.AttachmentType
			return nil
		},
	}
}

// GetType returns the email type this strategy handles.
func (s *senderStrategy) GetType() entity.EmailType {
	return s.emailType
}

// Dispatch builds the send request and posts it.
func (s *senderStrategy) Dispatch(ctx context.Context, req *DispatchRequest) (*entity.DispatchResult, error) {
	body := &dto.SendRequest{
		Count:      req.Count,
		Recipients: req.Recipients,
		ConfigName: req.ConfigName,
	}
	if body.Count < 1 {
		body.Count = 1
	}
	if s.build != nil {
		if err := s.build(req, body); err != nil {
			return nil, &DispatchError{EmailType: s.emailType, Err: err}
		}
	}

	resp, err := s.sender.Send(ctx, s.emailType, body)
	if err != nil {
		s.logger.Error("Send request failed",
			logger.StringField("schedule_id", req.ScheduleID),
			logger.StringField("email_type", string(s.emailType)),
			logger.ErrorField(err))
		return nil, &DispatchError{EmailType: s.emailType, Err: err}
	}

	s.logger.Info("Send request completed",
		logger.StringField("schedule_id", req.ScheduleID),
		logger.StringField("email_type", string(s.emailType)),
		logger.Field("success", resp.Success),
		logger.IntField("sent", resp.Sent),
		logger.IntField("failed", resp.Failed))
	return &entity.DispatchResult{
		Success:    resp.Success,
		Sent:       resp.Sent,
		Failed:     resp.Failed,
		Errors:     resp.Errors,
		ConfigName: req.ConfigName,
	}, nil
}

// DefaultStrategies returns one strategy per supported email type.
func DefaultStrategies(sender repository.SenderRepository, log *logger.Logger) []EmailDispatchStrategy {
	return []EmailDispatchStrategy{
		NewPhishingStrategy(sender, log),
		NewEICARStrategy(sender, log),
		NewCynicStrategy(sender, log),
		NewGTUBEStrategy(sender, log),
		NewCustomStrategy(sender, log),
	}
}
