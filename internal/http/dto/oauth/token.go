package oauth

// TokenRequest son los parámetros de POST /oauth2/token. Acepta form o JSON.
type TokenRequest struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse es la respuesta exitosa del token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokenTypeBearer es el único token_type que emite el servicio.
const TokenTypeBearer = "bearer"
