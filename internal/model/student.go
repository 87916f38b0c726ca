package model

// Student identity. The ID doubles as the login name; passwords are compared
// in plaintext by the login flow, which is an accepted limitation here.
type Student struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Password string `json:"password"`
}
