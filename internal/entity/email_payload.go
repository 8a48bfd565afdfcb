package entity

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

// Phishing body templates.
const (
	PhishingTemplateWarning      = "warning"
	PhishingTemplateUrgent       = "urgent"
	PhishingTemplateNotification = "notification"
)

// PhishingTemplates lists the accepted phishing template types.
var PhishingTemplates = []string{PhishingTemplateWarning, PhishingTemplateUrgent, PhishingTemplateNotification}

// AttachmentTypes lists the dummy attachment extensions a custom email may carry.
var AttachmentTypes = []string{".zip", ".com", ".scr", ".pdf", ".bat"}

// EmailPayload is the type-specific part of a schedule. Each email type has its own variant.
type EmailPayload interface {
	EmailType() EmailType
}

// PhishingPayload selects the phishing body template.
type PhishingPayload struct {
	TemplateType string `json:"template_type"`
}

// EICARPayload carries no options; the EICAR signature is fixed.
type EICARPayload struct{}

// CynicPayload carries no options.
type CynicPayload struct{}

// GTUBEPayload carries no options; the GTUBE string is fixed.
type GTUBEPayload struct{}

// CustomPayload is a caller-authored message.
type CustomPayload struct {
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	TextBody       string `json:"text_body,omitempty"`
	DisplayName    string `json:"display_name,omitempty"`
	AttachmentType string `json:"attachment_type,omitempty"`
}

func (PhishingPayload) EmailType() EmailType { return EmailTypePhishing }
func (EICARPayload) EmailType() EmailType    { return EmailTypeEICAR }
func (CynicPayload) EmailType() EmailType    { return EmailTypeCynic }
func (GTUBEPayload) EmailType() EmailType    { return EmailTypeGTUBE }
func (CustomPayload) EmailType() EmailType   { return EmailTypeCustom }

// EncodePayload serializes a payload for the jsonb column.
func EncodePayload(p EmailPayload) (datatypes.JSON, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", p.EmailType(), err)
	}
	return datatypes.JSON(b), nil
}

// DecodePayload reads the payload variant for t. An empty raw value yields the zero variant.
func DecodePayload(t EmailType, raw []byte) (EmailPayload, error) {
	var p EmailPayload
	switch t {
	case EmailTypePhishing:
		v := PhishingPayload{}
		if err := unmarshalOptional(raw, &v); err != nil {
			return nil, err
		}
		if v.TemplateType == "" {
			v.TemplateType = PhishingTemplateWarning
		}
		p = v
	case EmailTypeEICAR:
		p = EICARPayload{}
	case EmailTypeCynic:
		p = CynicPayload{}
	case EmailTypeGTUBE:
		p = GTUBEPayload{}
	case EmailTypeCustom:
		v := CustomPayload{}
		if err := unmarshalOptional(raw, &v); err != nil {
			return nil, err
		}
		p = v
	default:
		return nil, fmt.Errorf("unsupported email type: %s", t)
	}
	return p, nil
}

// DecodedPayload decodes the schedule's payload variant.
func (s *Schedule) DecodedPayload() (EmailPayload, error) {
	return DecodePayload(s.EmailType, s.Payload)
}

func unmarshalOptional(raw []byte, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
