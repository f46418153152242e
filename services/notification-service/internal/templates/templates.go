package templates

import (
	"strings"
	"text/template"
	"time"
)

// Message is a rendered notification, ready for any channel. SMS uses Body
// only.
type Message struct {
	Subject string
	Body    string
}

type BookingData struct {
	CustomerName string
	ServiceName  string
	StartTime    time.Time
	EndTime      time.Time
	Reason       string
}

var confirmedEmail = template.Must(template.New("confirmed_email").Parse(
	`Hi{{if .CustomerName}} {{.CustomerName}}{{end}},

Your booking is confirmed for {{.Start}}.
{{- if .ServiceName}}
Service: {{.ServiceName}}
{{- end}}

See you then!
`))

var cancelledEmail = template.Must(template.New("cancelled_email").Parse(
	`Hi{{if .CustomerName}} {{.CustomerName}}{{end}},

Your booking for {{.Start}} has been cancelled.
{{- if .Reason}}
Reason: {{.Reason}}
{{- end}}

You can book a new time at any point.
`))

type renderData struct {
	CustomerName string
	ServiceName  string
	Start        string
	Reason       string
}

func Confirmed(d BookingData) (Message, error) {
	body, err := render(confirmedEmail, d)
	if err != nil {
		return Message{}, err
	}
	return Message{Subject: "Booking confirmed for " + formatStart(d.StartTime), Body: body}, nil
}

func Cancelled(d BookingData) (Message, error) {
	body, err := render(cancelledEmail, d)
	if err != nil {
		return Message{}, err
	}
	return Message{Subject: "Booking cancelled", Body: body}, nil
}

// ConfirmedSMS keeps the message inside a single segment where possible.
func ConfirmedSMS(d BookingData) string {
	return "Booking confirmed for " + formatStart(d.StartTime) + "."
}

func CancelledSMS(d BookingData) string {
	msg := "Booking for " + formatStart(d.StartTime) + " was cancelled."
	if r := strings.TrimSpace(d.Reason); r != "" {
		msg += " Reason: " + r
	}
	return msg
}

func render(t *template.Template, d BookingData) (string, error) {
	var sb strings.Builder
	err := t.Execute(&sb, renderData{
		CustomerName: strings.TrimSpace(d.CustomerName),
		ServiceName:  strings.TrimSpace(d.ServiceName),
		Start:        formatStart(d.StartTime),
		Reason:       strings.TrimSpace(d.Reason),
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

func formatStart(t time.Time) string {
	return t.UTC().Format("Mon, 02 Jan 2006 15:04 MST")
}
