// Package notify delivers credential messages (reset links, invites, OTP
// codes) to users by email or SMS.
//
// Delivery is decoupled from the request that triggered it: a Dispatcher
// hands messages to a Notifier in the background and only logs failures.
package notify

import (
	"context"
	"fmt"
	"time"
)

// Channel is the medium a message is delivered over.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Message is one outbound notification. To is an email address or an E.164
// phone number depending on Channel.
type Message struct {
	Channel Channel
	To      string
	Subject string
	Body    string
}

// Notifier delivers a message synchronously.
type Notifier interface {
	Deliver(ctx context.Context, msg Message) error
}

// Router dispatches messages to a per-channel Notifier.
type Router struct {
	Email Notifier
	SMS   Notifier
}

func (r *Router) Deliver(ctx context.Context, msg Message) error {
	var n Notifier
	switch msg.Channel {
	case ChannelEmail:
		n = r.Email
	case ChannelSMS:
		n = r.SMS
	}
	if n == nil {
		return fmt.Errorf("no notifier for channel %q", msg.Channel)
	}
	return n.Deliver(ctx, msg)
}

// ResetLinkEmail builds the forgot-password email.
func ResetLinkEmail(to, link string, ttl time.Duration) Message {
	return Message{
		Channel: ChannelEmail,
		To:      to,
		Subject: "Reset your password",
		Body:    fmt.Sprintf("Use the link below to reset your password. It expires in %s.\n\n%s", FormatTTL(ttl), link),
	}
}

// InviteEmail builds the tenant-admin invitation.
func InviteEmail(to, name, tenant, link string, ttl time.Duration) Message {
	return Message{
		Channel: ChannelEmail,
		To:      to,
		Subject: "You have been invited to " + tenant,
		Body:    fmt.Sprintf("Hello %s,\n\nan administrator account was created for you on %s. Set your password within %s here:\n\n%s", name, tenant, FormatTTL(ttl), link),
	}
}

// OTPSMS builds the text message carrying a one-time code.
func OTPSMS(to, purpose, code string, ttl time.Duration) Message {
	return Message{
		Channel: ChannelSMS,
		To:      to,
		Body:    fmt.Sprintf("Your %s code is %s. It expires in %s.", purpose, code, FormatTTL(ttl)),
	}
}

// FormatTTL renders a lifetime in whole hours or minutes when it divides
// evenly, and as a Go duration otherwise.
func FormatTTL(d time.Duration) string {
	plural := func(n int64, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int64(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int64(d/time.Minute), "minute")
	}
	return d.String()
}
