package pages

import (
	"github.com/nfrund/clashhub/internal/authform"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// PasswordFeedback renders the requirement checklist and the match
// indicator for the given field values.
func PasswordFeedback(password, confirm string) g.Node {
	reqs := authform.PasswordRequirements(password)
	match := authform.PasswordsMatch(password, confirm)
	return g.Group{
		html.Ul(html.ID("password-requirements"), html.Class("text-sm mb-2"),
			g.Map(reqs, requirementItem),
		),
		matchIndicator(match),
	}
}

func requirementItem(r authform.Requirement) g.Node {
	mark, class := "✗", "text-gray-500"
	if r.Satisfied {
		mark, class = "✓", "text-green-700"
	}
	return html.Li(html.Class(class), g.Attr("data-requirement", string(r.ID)),
		g.Attr("data-satisfied", boolAttr(r.Satisfied)),
		g.Text(mark+" "+r.Text),
	)
}

func matchIndicator(m authform.Match) g.Node {
	switch m {
	case authform.MatchTrue:
		return html.P(html.ID("password-match"), html.Class("text-sm text-green-700"), g.Text("Passwords match"))
	case authform.MatchFalse:
		return html.P(html.ID("password-match"), html.Class("text-sm text-red-700"), g.Text("Passwords do not match"))
	}
	return html.P(html.ID("password-match"))
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
