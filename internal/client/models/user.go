// Package models defines the data carried between the Evento client layers
// and the REST API.
package models

// User is the identity snapshot owned by the session provider.
type User struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// Account is a user record as returned by the admin endpoints.
type Account struct {
	ID        string `json:"_id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Photo     string `json:"photo,omitempty"`
	Role      string `json:"role,omitempty"`
	UID       string `json:"uid,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}
