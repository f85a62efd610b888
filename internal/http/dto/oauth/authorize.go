// Package oauth contiene los DTOs de los endpoints /oauth2/*.
package oauth

// AuthorizeRequest son los parámetros de /oauth2/authorize.
type AuthorizeRequest struct {
	ResponseType string
	ClientID     string // public client id
	RedirectURI  string
	Scope        string // short name del servicio
	State        *string
}

// AuthorizeResult es el destino del 302.
type AuthorizeResult struct {
	RedirectURL string
}
