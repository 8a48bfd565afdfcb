package dto

// SendRequest is the body of POST /api/send/{email_type} on the sending backend.
type SendRequest struct {
	Count          int      `json:"count"`
	Recipients     []string `json:"recipients"`
	ConfigName     string   `json:"config_name,omitempty"`
	TemplateType   string   `json:"template_type,omitempty"`
	Subject        string   `json:"subject,omitempty"`
	Body           string   `json:"body,omitempty"`
	TextBody       string   `json:"text_body,omitempty"`
	DisplayName    string   `json:"display_name,omitempty"`
	AttachmentType string   `json:"attachment_type,omitempty"`
}

// SendResponse is the sending backend's report for one send request.
type SendResponse struct {
	Success bool     `json:"success"`
	Sent    int      `json:"sent"`
	Failed  int      `json:"failed"`
	Total   int      `json:"total"`
	Errors  []string `json:"errors"`
	Error   string   `json:"error,omitempty"`
}

// ProfileResponse names one credential profile.
type ProfileResponse struct {
	Name string `json:"name"`
}

// ProfileListResponse is the body of GET /api/email/configs.
type ProfileListResponse struct {
	Configs []ProfileResponse `json:"configs"`
}
