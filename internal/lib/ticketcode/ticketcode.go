// Package ticketcode генерирует человекочитаемые коды билетов.
//
// Код имеет вид PREF-XXXXXXXX: префикс из первых символов идентификатора
// события и восемь случайных символов A-Z0-9. Код — единственный вход
// операции регистрации на событии, поэтому уникальность по всему
// реестру билетов обеспечивает хранилище (уникальный индекс).
package ticketcode

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const (
	prefixLen = 4
	randomLen = 8
)

// Generate возвращает новый код билета для события с данным ID.
func Generate(eventID string) (string, error) {
	const op = "ticketcode.Generate"

	prefix := strings.ToUpper(eventID)
	if len(prefix) > prefixLen {
		prefix = prefix[:prefixLen]
	}

	buf := make([]byte, randomLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return prefix + "-" + string(buf), nil
}
