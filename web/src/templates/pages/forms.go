package pages

import (
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	"maragu.dev/gomponents/html"
)

// FormData is the view model shared by the credential forms. Email is the
// address pre-filled after a failed submission. The Google button is only
// shown when GoogleClientID is set.
type FormData struct {
	Email          string
	GoogleClientID string
}

const (
	inputClass  = "w-full border rounded p-2"
	buttonClass = "w-full bg-indigo-600 text-white rounded p-2 mt-4"
	cardClass   = "max-w-md mx-auto bg-white shadow rounded-xl p-8"
)

func card(title string, children ...g.Node) g.Node {
	return html.Div(html.Class(cardClass),
		html.H1(html.Class("text-2xl font-bold mb-6"), g.Text(title)),
		g.Group(children),
	)
}

func field(label, id, typ, value string, extra ...g.Node) g.Node {
	return html.Div(html.Class("mb-4"),
		html.Label(html.For(id), html.Class("block mb-1"), g.Text(label)),
		html.Input(html.Type(typ), html.ID(id), html.Name(id), html.Class(inputClass),
			g.If(value != "", html.Value(value)),
			g.Group(extra),
		),
	)
}

// passwordFields renders the password and confirmation inputs with live
// requirement feedback fetched from /auth/password-check.
func passwordFields() g.Node {
	live := g.Group{
		hx.Post("/auth/password-check"),
		hx.Trigger("input changed delay:150ms"),
		hx.Target("#password-feedback"),
		hx.Include("#password, #confirm-password"),
	}
	return g.Group{
		field("Password", "password", "password", "", html.Required(), html.AutoComplete("new-password"), live),
		field("Confirm password", "confirm-password", "password", "", html.Required(), html.AutoComplete("new-password"), live),
		html.Div(html.ID("password-feedback"), PasswordFeedback("", "")),
	}
}

// Login renders the sign-in form and the Google sign-in form.
func Login(data FormData) g.Node {
	return card("Log In",
		html.Form(html.Method("post"), html.Action("/login"),
			field("Email", "email", "email", data.Email, html.Required(), html.AutoComplete("email")),
			field("Password", "password", "password", "", html.Required(), html.AutoComplete("current-password")),
			html.Button(html.Type("submit"), html.Class(buttonClass), g.Text("Log In")),
		),
		googleForm(data.GoogleClientID),
		html.P(html.Class("mt-4 text-sm"),
			html.A(html.Href("/forgot-password"), g.Text("Forgot your password?")),
		),
		html.P(html.Class("mt-2 text-sm"),
			g.Text("No account yet? "),
			html.A(html.Href("/signup"), g.Text("Sign up")),
		),
	)
}

const googleClientScript = "https://accounts.google.com/gsi/client"

// onGoogleCredential receives the ID token from Google Identity Services and
// posts it to /auth/google.
const onGoogleCredential = `function onGoogleCredential(response) {
  document.getElementById("google-credential").value = response.credential;
  document.getElementById("google-form").submit();
}`

func googleForm(clientID string) g.Node {
	if clientID == "" {
		return nil
	}
	return html.Div(html.Class("mt-6 border-t pt-4"),
		html.Script(html.Src(googleClientScript), html.Async(), html.Defer()),
		html.Script(g.Raw(onGoogleCredential)),
		html.Div(html.ID("g_id_onload"),
			html.Data("client_id", clientID),
			html.Data("callback", "onGoogleCredential"),
			html.Data("auto_prompt", "false"),
		),
		html.Div(html.Class("g_id_signin"), html.Data("type", "standard"), html.Data("text", "continue_with")),
		html.Form(html.ID("google-form"), html.Method("post"), html.Action("/auth/google"),
			html.Input(html.Type("hidden"), html.Name("credential"), html.ID("google-credential")),
		),
	)
}

// Signup renders the account creation form.
func Signup(data FormData) g.Node {
	return card("Sign Up",
		html.Form(html.Method("post"), html.Action("/signup"),
			field("Email", "email", "email", data.Email, html.Required(), html.AutoComplete("email")),
			passwordFields(),
			html.Button(html.Type("submit"), html.Class(buttonClass), g.Text("Create Account")),
		),
		googleForm(data.GoogleClientID),
		html.P(html.Class("mt-4 text-sm"),
			g.Text("Already have an account? "),
			html.A(html.Href("/login"), g.Text("Log in")),
		),
	)
}

// ForgotPassword renders the reset request form.
func ForgotPassword(data FormData) g.Node {
	return card("Forgot Password",
		html.Form(html.Method("post"), html.Action("/forgot-password"),
			field("Email", "email", "email", data.Email, html.Required(), html.AutoComplete("email")),
			html.Button(html.Type("submit"), html.Class(buttonClass), g.Text("Send Reset Link")),
		),
		html.P(html.Class("mt-4 text-sm"),
			html.A(html.Href("/login"), g.Text("Back to log in")),
		),
	)
}

// ResetPassword renders the form reached from a reset link.
func ResetPassword(token string) g.Node {
	return card("Choose a New Password",
		html.Form(html.Method("post"), html.Action("/reset-password"),
			html.Input(html.Type("hidden"), html.Name("token"), html.Value(token)),
			passwordFields(),
			html.Button(html.Type("submit"), html.Class(buttonClass), g.Text("Reset Password")),
		),
	)
}
