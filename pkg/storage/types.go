package storage

import "strings"

// Session is what a successful login leaves behind.
type Session struct {
	Token     string
	UserID    string
	Email     string
	FirstName string
	LastName  string
}

func (s Session) Valid() bool {
	return s.Token != "" && s.UserID != ""
}

// DisplayName is "First Last" when both are known.
func (s Session) DisplayName() string {
	if s.FirstName == "" || s.LastName == "" {
		return ""
	}
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}
