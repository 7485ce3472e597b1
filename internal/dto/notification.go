package dto

// NotificationEmailPayload is the queued e-mail job body.
type NotificationEmailPayload struct {
	NotificationID string   `json:"notificationId"`
	To             []string `json:"to"`
	Subject        string   `json:"subject"`
	HTML           string   `json:"html"`
}
