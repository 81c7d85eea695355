package prober

import "iter"

// Variant selects the request body and the success rule.
type Variant string

const (
	// VariantPassword posts {"password": p}; a 200 status is success.
	VariantPassword Variant = "password"
	// VariantUserPass posts {"username": u, "password": p}; success needs a
	// 200 status and "status": "success" in the JSON body.
	VariantUserPass Variant = "userpass"
)

// Credential is one candidate. Username is empty for VariantPassword.
type Credential struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// String renders the credential as user:password, or the bare password.
func (c Credential) String() string {
	if c.Username == "" {
		return c.Password
	}
	return c.Username + ":" + c.Password
}

// Source is an ordered sequence of credentials.
type Source interface {
	Variant() Variant
	Candidates() iter.Seq[Credential]
	Len() int
}

type passwordSource struct {
	words []string
}

// Passwords returns a password-only source over words, in order.
func Passwords(words []string) Source {
	return passwordSource{words: words}
}

func (s passwordSource) Variant() Variant { return VariantPassword }
func (s passwordSource) Len() int         { return len(s.words) }

func (s passwordSource) Candidates() iter.Seq[Credential] {
	return func(yield func(Credential) bool) {
		for _, p := range s.words {
			if !yield(Credential{Password: p}) {
				return
			}
		}
	}
}

type crossSource struct {
	users     []string
	passwords []string
}

// CrossProduct returns every username×password pair, usernames in the
// outer loop.
func CrossProduct(usernames, passwords []string) Source {
	return crossSource{users: usernames, passwords: passwords}
}

func (s crossSource) Variant() Variant { return VariantUserPass }
func (s crossSource) Len() int         { return len(s.users) * len(s.passwords) }

func (s crossSource) Candidates() iter.Seq[Credential] {
	return func(yield func(Credential) bool) {
		for _, u := range s.users {
			for _, p := range s.passwords {
				if !yield(Credential{Username: u, Password: p}) {
					return
				}
			}
		}
	}
}
