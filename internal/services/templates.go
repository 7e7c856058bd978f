package services

import (
	htmltemplate "html/template"
	texttemplate "text/template"
)

type emailTemplate struct {
	subject *texttemplate.Template
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

func mustEmailTemplate(name, subject, html, text string) emailTemplate {
	return emailTemplate{
		subject: texttemplate.Must(texttemplate.New(name + ".subject").Parse(subject)),
		html:    htmltemplate.Must(htmltemplate.New(name + ".html").Parse(layoutHTML + html)),
		text:    texttemplate.Must(texttemplate.New(name + ".text").Parse(text)),
	}
}

const layoutHTML = `{{define "footer"}}<div style="background:#2d3748;color:#fff;padding:24px;text-align:center">
<p style="margin:0;font-size:14px">Questions? <a href="mailto:{{.SupportEmail}}" style="color:#63b3ed">{{.SupportEmail}}</a></p>
</div>{{end}}`

var confirmationTemplate = mustEmailTemplate("confirmation",
	`🎫 Booking Confirmed - {{.Booking.EventTitle}} | Ref: {{.Booking.Reference}}`,
	`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
<h1>Booking Confirmed</h1>
<p>Hi {{.Booking.CustomerName}}, your tickets for <strong>{{.Booking.EventTitle}}</strong> are confirmed.</p>
<table>
<tr><td>Reference</td><td><strong>{{.Booking.Reference}}</strong></td></tr>
<tr><td>Date</td><td>{{.Date}} at {{.Booking.EventTime}}</td></tr>
<tr><td>Venue</td><td>{{.Booking.VenueName}}{{if .Booking.VenueAddress}}, {{.Booking.VenueAddress}}{{end}}</td></tr>
<tr><td>Seats</td><td>{{range $i, $s := .Booking.SeatLabels}}{{if $i}}, {{end}}{{$s}}{{end}}</td></tr>
<tr><td>Total paid</td><td>${{.Total}}</td></tr>
</table>
<p>Show this code at the entrance:</p>
<img src="{{.QRImageURL}}" alt="Ticket QR code for {{.Booking.Reference}}" width="250" height="250">
</div>
{{template "footer" .}}`,
	`Booking confirmed: {{.Booking.EventTitle}} on {{.Date}} at {{.Booking.EventTime}}, {{.Booking.VenueName}}.
Reference: {{.Booking.Reference}}
Seats: {{range $i, $s := .Booking.SeatLabels}}{{if $i}}, {{end}}{{$s}}{{end}}
Total paid: ${{.Total}}
QR code: {{.QRImageURL}}
`)

var reminderTemplate = mustEmailTemplate("reminder",
	`⏰ Reminder: {{.Booking.EventTitle}} is {{.When}}! | Ref: {{.Booking.Reference}}`,
	`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
<h1>{{.Booking.EventTitle}} is {{.When}}</h1>
<p>Hi {{.Booking.CustomerName}}, this is a reminder for your booking {{.Booking.Reference}}.</p>
<p>{{.Date}} at {{.Booking.EventTime}}, {{.Booking.VenueName}}</p>
<p>Seats: {{range $i, $s := .Booking.SeatLabels}}{{if $i}}, {{end}}{{$s}}{{end}}</p>
<p>Don't forget your ticket and ID.</p>
<img src="{{.QRImageURL}}" alt="Ticket QR code for {{.Booking.Reference}}" width="250" height="250">
<p>Have an amazing time at <strong>{{.Booking.EventTitle}}</strong>!</p>
</div>
{{template "footer" .}}`,
	`Event Reminder: {{.Booking.EventTitle}} is {{.When}} at {{.Booking.EventTime}} at {{.Booking.VenueName}}. Don't forget your ticket and ID!
Reference: {{.Booking.Reference}}
`)

var cancellationTemplate = mustEmailTemplate("cancellation",
	`❌ Booking Cancelled - {{.Booking.EventTitle}} | Refund Processing | Ref: {{.Booking.Reference}}`,
	`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
<h1>Booking Cancelled</h1>
<p>Hi {{.Booking.CustomerName}}, your booking {{.Booking.Reference}} for <strong>{{.Booking.EventTitle}}</strong> has been cancelled.</p>
<table>
<tr><td>Original total</td><td>${{.Total}}</td></tr>
<tr><td>Cancellation fee</td><td>${{.Fee}}</td></tr>
<tr><td>Refund</td><td><strong>${{.Refund}}</strong></td></tr>
</table>
<p>The refund will be processed to your original payment method within 5-7 business days.</p>
</div>
{{template "footer" .}}`,
	`Your booking {{.Booking.Reference}} for {{.Booking.EventTitle}} has been cancelled.
Refund of ${{.Refund}} (cancellation fee ${{.Fee}}) will be processed within 5-7 business days.
`)

var welcomeTemplate = mustEmailTemplate("welcome",
	`🎉 Welcome to TicketHub - Your Entertainment Journey Starts Here!`,
	`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
<h1>Welcome to TicketHub, {{.Name}}!</h1>
<p>Discover movies, concerts, sports and theater near you, pick your seats and book in a few clicks.</p>
</div>
{{template "footer" .}}`,
	`Welcome to TicketHub, {{.Name}}! Discover amazing events and book tickets with ease. Browse movies, concerts, sports, and theater events. Get started today!
`)
