package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"outingpass/internal/booking"
	"outingpass/internal/directory"
	"outingpass/pkg/mailer"
)

type Sender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Dispatcher emails the parent contact of a booking after it is handled.
type Dispatcher struct {
	Mailer Sender
}

var subjects = map[booking.Status]string{
	booking.StatusStillOut:  "%s has left the hostel",
	booking.StatusConfirmed: "Outing request approved for %s",
	booking.StatusRejected:  "Outing request declined for %s",
}

var bodies = template.Must(template.New("mail").Parse(`
{{define "still_out"}}<p>Dear Parent,</p>
<p>{{.B.Name}} ({{.B.HostelName}}{{if .B.RoomNumber}}, room {{.B.RoomNumber}}{{end}}) has checked out of the hostel on {{.B.OutDate}} at {{.B.OutTime}} and is expected back on {{.B.InDate}} by {{.B.InTime}}.</p>
<p>Reason given: {{.B.Reason}}</p>
{{template "signature" .}}{{end}}

{{define "confirmed"}}<p>Dear Parent,</p>
<p>The outing request of {{.B.Name}} ({{.B.HostelName}}) from {{.B.OutDate}} {{.B.OutTime}} to {{.B.InDate}} {{.B.InTime}} has been approved.</p>
<p>Reason given: {{.B.Reason}}</p>
{{template "signature" .}}{{end}}

{{define "rejected"}}<p>Dear Parent,</p>
<p>The outing request of {{.B.Name}} ({{.B.HostelName}}) for {{.B.OutDate}} has been declined.</p>
<p>Reason: {{.B.RejectionReason}}</p>
{{template "signature" .}}{{end}}

{{define "signature"}}<p>Regards,<br>{{.Signature}}</p>{{end}}
`))

// Signature names the office a parent should contact, based on who acted.
func Signature(actor booking.Actor, hostel string) string {
	switch actor.Role {
	case directory.RoleWarden:
		return "Warden, " + hostel
	case directory.RoleSuperadmin:
		return "Hostel Administration"
	default:
		return "Hostel Office, " + hostel
	}
}

// Render builds the parent email for b's current status.
func Render(b *booking.Booking, actor booking.Actor) (mailer.Message, error) {
	subject, ok := subjects[b.Status]
	if !ok {
		return mailer.Message{}, fmt.Errorf("no notification for status %s", b.Status)
	}
	var buf bytes.Buffer
	data := struct {
		B         *booking.Booking
		Signature string
	}{b, Signature(actor, b.HostelName)}
	if err := bodies.ExecuteTemplate(&buf, string(b.Status), data); err != nil {
		return mailer.Message{}, fmt.Errorf("render %s: %w", b.Status, err)
	}
	return mailer.Message{
		To:      b.ParentEmail,
		Subject: fmt.Sprintf(subject, b.Name),
		HTML:    buf.String(),
	}, nil
}

func (d Dispatcher) Notify(ctx context.Context, b *booking.Booking, actor booking.Actor) error {
	if b.ParentEmail == "" {
		return fmt.Errorf("booking %s has no parent email", b.ID)
	}
	msg, err := Render(b, actor)
	if err != nil {
		return err
	}
	return d.Mailer.Send(ctx, msg)
}
