// Package emails holds the HTML bodies of outgoing mail.
package emails

import (
	"bytes"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// ContactEmail is the message forwarded to the team for a contact form
// submission.
func ContactEmail(name, email, message string) g.Node {
	return html.Div(
		html.H2(g.Text("New contact form submission")),
		html.P(html.Strong(g.Text("Name: ")), g.Text(name)),
		html.P(html.Strong(g.Text("Email: ")), g.Text(email)),
		html.P(html.Strong(g.Text("Message:"))),
		html.P(html.Style("white-space: pre-wrap"), g.Text(message)),
	)
}

// Render renders node to a string for use as an email body.
func Render(node g.Node) (string, error) {
	var buf bytes.Buffer
	if err := node.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
