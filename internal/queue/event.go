// Package queue defines message payloads exchanged over the message
// broker and the background consumer that drains them.
package queue

// MailQueueName is the durable queue carrying outbound mail requests.
const MailQueueName = "mail.requested"

// MailRequestedEvent is published whenever the application wants an
// email delivered: registration captchas, password-reset captchas
// and booking urge reminders. The consumer delivers it over SMTP so
// request handlers never block on the mail server.
type MailRequestedEvent struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	HTML        string `json:"html"`
	RequestedAt string `json:"requested_at"`
}
