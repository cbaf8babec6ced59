package auth

// Claims representa la información extraída del token.
// UserID es el agente que registra las acciones.
type Claims struct {
	UserID    string
	Email     string
	NurseryID string
}
