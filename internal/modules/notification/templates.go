package notification

import (
	"fmt"
	"strings"
	"text/template"

	"spacebook/internal/domain"
)

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

// Templates renders named subject/body pairs. Every key referenced by a
// template must be present in the data.
type Templates struct {
	byName map[string]messageTemplate
}

var defaultTemplates = map[string][2]string{
	domain.ChannelBookingCreated: {
		"Booking #{{.booking_id}} received",
		"Hi {{.name}}, we received your booking for {{.date}} {{.start_time}}-{{.end_time}}. Total: {{.total_price}}. It is pending until payment.",
	},
	domain.ChannelBookingConfirmation: {
		"Booking #{{.booking_id}} confirmed",
		"Hi {{.name}}, your booking on {{.date}} from {{.start_time}} to {{.end_time}} is confirmed.",
	},
	domain.ChannelBookingCancelled: {
		"Booking #{{.booking_id}} cancelled",
		"Hi {{.name}}, your booking on {{.date}} from {{.start_time}} to {{.end_time}} was cancelled.",
	},
	domain.ChannelBookingCompleted: {
		"Thanks for visiting",
		"Hi {{.name}}, booking #{{.booking_id}} on {{.date}} is complete.",
	},
	domain.ChannelPaymentReceipt: {
		"Payment received for booking #{{.booking_id}}",
		"Hi {{.name}}, we received {{.amount}} for your booking on {{.date}} {{.start_time}}-{{.end_time}}.",
	},
	domain.ChannelPaymentFailed: {
		"Payment failed for booking #{{.booking_id}}",
		"Hi {{.name}}, your payment of {{.amount}} could not be processed{{if .reason}} ({{.reason}}){{end}}. You can try again.",
	},
	domain.ChannelPaymentRefunded: {
		"Refund for booking #{{.booking_id}}",
		"Hi {{.name}}, {{.amount}} has been refunded for your booking on {{.date}}.",
	},
}

func DefaultTemplates() *Templates {
	t, err := NewTemplates(defaultTemplates)
	if err != nil {
		panic(err)
	}
	return t
}

func NewTemplates(src map[string][2]string) (*Templates, error) {
	t := &Templates{byName: make(map[string]messageTemplate, len(src))}
	for name, parts := range src {
		subj, err := template.New(name + ".subject").Option("missingkey=error").Parse(parts[0])
		if err != nil {
			return nil, fmt.Errorf("template %s subject: %w", name, err)
		}
		body, err := template.New(name + ".body").Option("missingkey=error").Parse(parts[1])
		if err != nil {
			return nil, fmt.Errorf("template %s body: %w", name, err)
		}
		t.byName[name] = messageTemplate{subject: subj, body: body}
	}
	return t, nil
}

func (t *Templates) Render(name string, data map[string]any) (subject, body string, err error) {
	mt, ok := t.byName[name]
	if !ok {
		return "", "", fmt.Errorf("unknown template %q", name)
	}
	var sb, bb strings.Builder
	if err := mt.subject.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := mt.body.Execute(&bb, data); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", name, err)
	}
	return sb.String(), bb.String(), nil
}
