package pages

import (
	"github.com/nfrund/clashhub/internal/domain"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// Home renders the landing page. The status line is kept current over the
// session websocket.
func Home(user *domain.Session) g.Node {
	return html.Div(html.Class("max-w-2xl mx-auto text-center"),
		html.H1(html.Class("text-4xl font-extrabold mb-4"), g.Text("Clashhub")),
		html.P(html.Class("mb-6"), g.Text("Track your Clash of Clans accounts in one place.")),
		html.P(html.ID("session-status"),
			g.If(user != nil, g.Textf("Signed in as %s", displayName(user))),
			g.If(user == nil, g.Text("You are not signed in.")),
		),
		html.Script(g.Raw(sessionSocketScript)),
	)
}

// Account renders the signed-in user's account page.
func Account(user *domain.Session) g.Node {
	return card("Account Settings",
		html.Dl(
			html.Dt(html.Class("font-semibold"), g.Text("Email")),
			html.Dd(html.Class("mb-2"), g.Text(displayName(user))),
			html.Dt(html.Class("font-semibold"), g.Text("Signed in with")),
			html.Dd(html.Class("mb-2"), g.Text(user.Provider)),
		),
		html.A(html.Href("/logout"), html.Class(buttonClass+" block text-center"), g.Text("Sign Out")),
	)
}

func displayName(user *domain.Session) string {
	if user.Email != "" {
		return user.Email
	}
	return user.UserID
}

const sessionSocketScript = `
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws/session");
  ws.onmessage = function (ev) {
    var state = JSON.parse(ev.data);
    var el = document.getElementById("session-status");
    if (el) {
      el.textContent = state.signed_in ? "Signed in as " + state.email : "You are not signed in.";
    }
  };
})();
`
