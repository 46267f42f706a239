package mail

import (
	"html/template"
	"strings"

	"github.com/agendou/backend/internal/model"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<div style="font-family: sans-serif; max-width: 600px;">
	<h2>Olá, {{.ClientName}}!</h2>
	<p>Recebemos seu agendamento. Confira os detalhes:</p>
	<ul>
		<li><strong>Serviço:</strong> {{.Service}}</li>
		<li><strong>Profissional:</strong> {{.Professional}}</li>
		<li><strong>Data:</strong> {{.Date}}</li>
		<li><strong>Horário:</strong> {{.Time}}</li>
	</ul>
	<p>Se precisar cancelar ou remarcar, entre em contato conosco.</p>
	<p>Até breve!</p>
</div>
`))

var reminderTmpl = template.Must(template.New("reminder").Parse(`
<div style="font-family: sans-serif; max-width: 600px;">
	<h2>Olá, {{.ClientName}}!</h2>
	<p>Passando para lembrar do seu horário amanhã:</p>
	<ul>
		<li><strong>Serviço:</strong> {{.Service}}</li>
		<li><strong>Profissional:</strong> {{.Professional}}</li>
		<li><strong>Data:</strong> {{.Date}}</li>
		<li><strong>Horário:</strong> {{.Time}}</li>
	</ul>
	<p>Te esperamos!</p>
</div>
`))

var contactTmpl = template.Must(template.New("contact").Parse(`
<div style="font-family: sans-serif; max-width: 600px;">
	<h2>Nova mensagem pelo site</h2>
	<ul>
		<li><strong>Nome:</strong> {{.Name}}</li>
		<li><strong>Email:</strong> {{.Email}}</li>
		{{if .Phone}}<li><strong>Telefone:</strong> {{.Phone}}</li>{{end}}
		<li><strong>Assunto:</strong> {{.Subject}}</li>
	</ul>
	<p>{{.Message}}</p>
</div>
`))

func renderConfirmation(appt model.Appointment) (string, error) {
	var b strings.Builder
	if err := confirmationTmpl.Execute(&b, appt); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderReminder(appt model.Appointment) (string, error) {
	var b strings.Builder
	if err := reminderTmpl.Execute(&b, appt); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderContact(msg ContactMessage) (string, error) {
	var b strings.Builder
	if err := contactTmpl.Execute(&b, msg); err != nil {
		return "", err
	}
	return b.String(), nil
}
