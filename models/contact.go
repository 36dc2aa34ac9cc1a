package models

import "time"

// ContactMessage is an inquiry submitted through the site's contact form
type ContactMessage struct {
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"receivedAt"`
	RemoteAddr string    `json:"-"`
}

// ReplyTo is the address an answer should go to, empty when only a phone was given
func (m ContactMessage) ReplyTo() string {
	return m.Email
}
