package pages

import (
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	"maragu.dev/gomponents/html"
)

// Contact renders the feedback form. Submissions go to /api/email and the
// result fragment replaces #contact-result.
func Contact() g.Node {
	return html.Section(html.ID("contact-section"), html.Class("max-w-xl mx-auto flex flex-col text-center gap-8"),
		html.H1(html.Class("text-3xl font-semibold"), g.Text("Contact")),
		html.Form(
			hx.Post("/api/email"),
			hx.Target("#contact-result"),
			html.Class("text-left"),
			field("Name", "name", "text", "", html.Required()),
			field("Email", "email", "email", "", html.Required()),
			html.Div(html.Class("mb-4"),
				html.Label(html.For("message"), html.Class("block mb-1"), g.Text("Message")),
				html.Textarea(html.ID("message"), html.Name("message"), html.Rows("5"), html.Class(inputClass), html.Required()),
			),
			html.Button(html.Type("submit"), html.Class(buttonClass), g.Text("Send")),
		),
		html.Div(html.ID("contact-result")),
		html.P(html.Class("text-lg text-gray-600"), g.Text("Reach out! Don't hesitate to share valuable feedback with the development team.")),
	)
}

// ContactResult is the fragment returned to htmx after a submission.
func ContactResult(ok bool, message string) g.Node {
	class := "p-3 rounded bg-red-100 text-red-800"
	if ok {
		class = "p-3 rounded bg-green-100 text-green-800"
	}
	return html.Div(html.Class(class), g.Text(message))
}
