package dto

type SubscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type SubscribeResponse struct {
	OK                bool `json:"ok"`
	AlreadySubscribed bool `json:"already_subscribed,omitempty"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

type ContactResponse struct {
	OK        bool  `json:"ok"`
	MessageID int64 `json:"message_id"`
}
