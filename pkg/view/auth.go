package view

type LoginForm struct {
	UsernameOrEmail string
}

type SignupForm struct {
	Username    string
	Email       string
	ShopName    string
	Location    string
	PhoneNumber string
	Bio         string
}

// AuthPage backs both the login and the signup page.
type AuthPage struct {
	Flash    *Flash
	ReturnTo string
	Login    LoginForm
	Signup   SignupForm
	Errors   map[string]string
	// Message is a page-level error, e.g. bad credentials.
	Message string
}
