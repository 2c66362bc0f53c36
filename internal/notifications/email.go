package notifications

import (
	"bytes"
	"html/template"
)

const notificationEmailTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Hello {{.Name}},</p>
  <p><strong>{{.Title}}</strong></p>
  <p>{{.Message}}</p>
  <p>Sent {{.SentAt}}.</p>
  <p>You can manage your appointments any time from your CuraLink dashboard.</p>
  <p>The CuraLink team</p>
</body>
</html>`

var notificationEmailTmpl = template.Must(template.New("notification_email").Parse(notificationEmailTemplate))

type notificationEmailData struct {
	Name    string
	Title   string
	Message string
	SentAt  string
}

func buildNotificationHTML(name string, n Notification) (string, error) {
	data := notificationEmailData{
		Name:    name,
		Title:   n.Title,
		Message: n.Message,
		SentAt:  n.CreatedAt.Format("Jan 2, 2006 at 3:04 PM"),
	}
	var buf bytes.Buffer
	if err := notificationEmailTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
