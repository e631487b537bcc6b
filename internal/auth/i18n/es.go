package i18n

import "golang.org/x/text/language"

var spanish = &Catalog{
	locale: "es",
	tag:    language.Spanish,
	messages: map[string]string{
		"INVALID_CREDENTIALS": "Correo o contraseña incorrectos",
		"USER_ALREADY_EXISTS": "Este correo ya está registrado",
		"EMAIL_NOT_VERIFIED":  "Debes verificar tu correo antes de iniciar sesión",
		"WEAK_PASSWORD":       "La contraseña debe tener al menos 6 caracteres",
		"NETWORK_ERROR":       "Error de conexión. Verifica tu internet",
		"UNKNOWN_ERROR":       "Ocurrió un error inesperado. Intenta de nuevo",
		"SESSION_EXPIRED":     "Tu sesión ha expirado. Inicia sesión nuevamente",
		"INVALID_TOKEN":       "El enlace no es válido o ha expirado",
	},
}
