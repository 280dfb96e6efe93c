package email

import (
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
)

// Customer-facing mails are Hungarian, matching the rest of the studio's
// communication. The admin summary stays plain text so it survives any mail
// client.

var subjects = map[Template]string{
	TemplateConfirmed:      "Foglalásod megerősítve – #%d",
	TemplateProforma:       "Díjbekérő a foglalásodhoz – #%d",
	TemplatePaid:           "Fizetés beérkezett – #%d",
	TemplateCompleted:      "Köszönjük, hogy nálunk fotóztattál! – #%d",
	TemplateCancelled:      "Foglalásod lemondva – #%d",
	TemplateAdminCancelled: "Lemondott foglalás – #%d",
}

var htmlBodies = map[Template]*template.Template{
	TemplateConfirmed: template.Must(template.New("confirmed").Parse(`
<p>Kedves {{.Name}}!</p>
<p>Foglalásodat megerősítettük: <b>{{.BookingDate}}</b>, {{.SlotName}}.</p>
<p>A fotózás díja: <b>{{.TotalPrice}} Ft</b>.</p>
<p>Hamarosan küldjük a díjbekérőt is.</p>`)),

	TemplateProforma: template.Must(template.New("proforma").Parse(`
<p>Kedves {{.Name}}!</p>
<p>Elkészült a díjbekérő a(z) {{.BookingDate}} napi foglalásodhoz.</p>
<p>Sorszám: <b>{{.ProformaNumber}}</b>{{if .ProformaURL}} – <a href="{{.ProformaURL}}">letöltés</a>{{end}}</p>
<p>Fizetendő: <b>{{.TotalPrice}} Ft</b>.</p>`)),

	TemplatePaid: template.Must(template.New("paid").Parse(`
<p>Kedves {{.Name}}!</p>
<p>A fizetésed megérkezett, a foglalásod végleges.</p>
{{if .InvoiceNumber}}<p>Számla: <b>{{.InvoiceNumber}}</b>{{if .InvoiceURL}} – <a href="{{.InvoiceURL}}">letöltés</a>{{end}}</p>{{end}}
<p>Találkozunk {{.BookingDate}}-n!</p>`)),

	TemplateCompleted: template.Must(template.New("completed").Parse(`
<p>Kedves {{.Name}}!</p>
<p>Köszönjük, hogy nálunk fotóztattál! A képeket hamarosan küldjük.</p>`)),

	TemplateCancelled: template.Must(template.New("cancelled").Parse(`
<p>Kedves {{.Name}}!</p>
<p>A(z) {{.BookingDate}} napi foglalásod lemondásra került.</p>
{{if gt .CancellationFee 0}}<p>Lemondási díj: <b>{{.CancellationFee}} Ft</b>.</p>{{end}}
{{if .WasPaid}}<p>Visszatérítés: <b>{{.Refund}} Ft</b> (a befizetett összegből a lemondási díj levonása után).</p>{{end}}
{{if .Reason}}<p>Megjegyzés: {{.Reason}}</p>{{end}}`)),
}

var adminCancelledBody = texttemplate.Must(texttemplate.New("admin_cancelled").Parse(
	`Lemondott foglalas #{{.BookingID}}
Datum: {{.BookingDate}} ({{.SlotName}})
Ugyfel: {{.Name}}
Teljes ar: {{.TotalPrice}} Ft
Lemondasi dij: {{.CancellationFee}} Ft
{{if .WasPaid}}Visszateritendo: {{.Refund}} Ft (manualis utalas!)
{{end}}{{if .Reason}}Indok: {{.Reason}}
{{end}}`))

func render(tpl Template, data Data) (subject, body string, html bool, err error) {
	subjectFmt, ok := subjects[tpl]
	if !ok {
		return "", "", false, fmt.Errorf("unknown email template %q", tpl)
	}
	subject = fmt.Sprintf(subjectFmt, data.BookingID)

	var sb strings.Builder
	if tpl == TemplateAdminCancelled {
		if err := adminCancelledBody.Execute(&sb, data); err != nil {
			return "", "", false, fmt.Errorf("render %s email: %w", tpl, err)
		}
		return subject, sb.String(), false, nil
	}

	t := htmlBodies[tpl]
	if err := t.Execute(&sb, data); err != nil {
		return "", "", false, fmt.Errorf("render %s email: %w", tpl, err)
	}
	return subject, sb.String(), true, nil
}
