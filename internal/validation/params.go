// Package validation contiene las reglas sintácticas de los parámetros que
// llegan por HTTP o CLI.
package validation

import "regexp"

// response_type: letras, "_" y "-". Ej: code, id_token, code-token.
var responseTypeRe = regexp.MustCompile(`^[A-Za-z_-]+$`)

// Short name de servicio: alfanumérico más "_" y "-", 1..100.
// Ej: acme_api, moodle_mobile_app, svc-2.
var serviceNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,100}$`)

// ValidResponseType reporta si v es sintácticamente un response_type.
func ValidResponseType(v string) bool {
	return responseTypeRe.MatchString(v)
}

// ValidServiceName reporta si v puede ser el short name de un servicio
// (y por lo tanto el scope de /oauth2/authorize).
func ValidServiceName(v string) bool {
	return serviceNameRe.MatchString(v)
}
