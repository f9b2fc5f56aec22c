package email

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// EventDetails describes when and where the event takes place.
type EventDetails struct {
	Date     string
	Time     string
	Location string
}

// DefaultEvent returns the details of the scheduled sports day.
func DefaultEvent() EventDetails {
	return EventDetails{
		Date:     "17th August 2025",
		Time:     "8:00 AM - 6:00 PM",
		Location: "Adnec Abu Dhabi Summer Sports hall 9",
	}
}

// KidLine is one child listed in a confirmation.
type KidLine struct {
	Name       string
	Age        int
	Gender     string
	TshirtSize string
}

// Confirmation is the flat view of a registration that the message shows.
type Confirmation struct {
	FullName   string
	Email      string
	Phone      string
	Department string
	Gender     string
	TshirtSize string

	BringingKids bool
	NumberOfKids string
	Kids         []KidLine

	EntertainmentSports   []string
	InterestedInCompeting bool
	CompetitiveSports     []string

	LastExercise      string
	MedicalConditions []string

	Event EventDetails
}

const confirmationBody = `# 🏆 Registration Confirmed!

Dear {{esc .FullName}},

Thank you for registering for our Company Sports Day Event! Your registration has been successfully received.

## Registration Details

- Full Name: {{esc .FullName}}
- Email: {{esc .Email}}
- Phone: {{esc .Phone}}
- Department: {{esc .Department}}
- Gender: {{esc .Gender}}
- T-Shirt Size: {{esc .TshirtSize}}

## Family Information

- Bringing Kids: {{yesno .BringingKids}}
{{- if .BringingKids}}
- Number of Kids: {{esc (or .NumberOfKids "Not specified")}}
- Kids Details:{{range .Kids}}
  - {{esc .Name}} (Age: {{.Age}}, Gender: {{esc .Gender}}, T-Shirt: {{esc .TshirtSize}}){{else}} None{{end}}
{{- end}}

## Sports Preferences

- Entertainment Sports: {{esc (list .EntertainmentSports)}}
- Interested in Competing: {{yesno .InterestedInCompeting}}
{{- if .InterestedInCompeting}}
- Competitive Sports: {{esc (list .CompetitiveSports)}}
{{- end}}

## Health Information

- Last Exercise: {{esc (or .LastExercise "Not specified")}}
- Medical Conditions: {{esc (list .MedicalConditions)}}

## Event Details

- Date: {{esc .Event.Date}}
- Time: {{esc .Event.Time}}
- Location: {{esc .Event.Location}}

## Important Notes

- Please arrive 15 minutes before the event starts
- All participants will receive their event t-shirts on the day
- Medical staff will be available throughout the event
- Refreshments and snacks will be provided

If you have any questions, please contact the event organizers.

We look forward to seeing you at the Sports Day!

Best regards,
The Sports Day Team
`

const htmlLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
h1 { color: #fff; background: #667eea; padding: 24px; border-radius: 10px; text-align: center; }
h2 { color: #667eea; border-bottom: 2px solid #667eea; padding-bottom: 5px; }
</style>
</head>
<body>
<div class="container">
%s</div>
</body>
</html>
`

var baseFuncs = template.FuncMap{
	"esc":   func(s string) string { return s },
	"yesno": yesNo,
	"list":  listOrNone,
}

var (
	textTemplate = template.Must(template.New("confirmation").Funcs(baseFuncs).Parse(confirmationBody))
	// Same body, with user values escaped so they render as literal text.
	markdownTemplate = template.Must(textTemplate.Clone()).Funcs(template.FuncMap{"esc": escapeMarkdown})
)

// mdRenderer leaves WithUnsafe off so raw HTML never reaches the output.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderConfirmation builds the confirmation message for one registrant.
// PRE: c.Email is the registrant's address
// POST: Returns a Message with subject, plain text and HTML bodies
// INVARIANT: User-supplied values never become markup in the HTML body
func RenderConfirmation(c Confirmation) (Message, error) {
	var text bytes.Buffer
	if err := textTemplate.Execute(&text, c); err != nil {
		return Message{}, fmt.Errorf("render confirmation text: %w", err)
	}

	var md, body bytes.Buffer
	if err := markdownTemplate.Execute(&md, c); err != nil {
		return Message{}, fmt.Errorf("render confirmation markdown: %w", err)
	}
	if err := mdRenderer.Convert(md.Bytes(), &body); err != nil {
		return Message{}, fmt.Errorf("convert confirmation markdown: %w", err)
	}

	return Message{
		To:      []string{c.Email},
		Subject: ConfirmationSubject,
		Text:    text.String(),
		HTML:    fmt.Sprintf(htmlLayout, html.EscapeString(ConfirmationSubject), body.String()),
	}, nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

// escapeMarkdown backslash-escapes ASCII punctuation and flattens newlines.
func escapeMarkdown(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			sb.WriteByte(' ')
		case r < 128 && strings.ContainsRune("\\`*_{}[]()<>#+-.!|&~\"'", r):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
