package models

// Visitor field names follow the API, including its "bussiness_name" spelling.
type Visitor struct {
	ID           FlexString `json:"id"`
	VisitorName  string     `json:"visitor_name"`
	BusinessName string     `json:"bussiness_name,omitempty"`
	Mobile       string     `json:"mobile"`
	Phone        string     `json:"phone,omitempty"`
	WhatsappNo   string     `json:"whatsapp_no,omitempty"`
	Email        string     `json:"email"`
	City         string     `json:"city,omitempty"`
	Town         string     `json:"town,omitempty"`
	Village      string     `json:"village,omitempty"`
	Remark       string     `json:"remark,omitempty"`
	QRCodeURL    string     `json:"qr_code_url,omitempty"`
	CreatedAt    FlexTime   `json:"created_at"`
}

// VisitorForm is the public registration form posted to /visitors.
type VisitorForm struct {
	VisitorName  string `json:"visitor_name" validate:"required"`
	BusinessName string `json:"bussiness_name"`
	Mobile       string `json:"mobile" validate:"required"`
	Phone        string `json:"phone"`
	WhatsappNo   string `json:"whatsapp_no"`
	Email        string `json:"email" validate:"required"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Remark       string `json:"remark"`
}

type QRCodeMetadata struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Mobile            string `json:"mobile"`
	Business          string `json:"business"`
	GeneratedAt       string `json:"generated_at"`
	FrontendGenerated bool   `json:"frontend_generated"`
}

type VisitorQRCodeRequest struct {
	VisitorID  string         `json:"visitor_id"`
	QRCodeData string         `json:"qr_code_data"`
	Metadata   QRCodeMetadata `json:"qr_code_metadata"`
}
