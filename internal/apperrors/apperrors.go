// Package apperrors определяет доменные ошибки-сентинели, общие для
// сервисов, хранилищ и HTTP-обработчиков. Обработчики сопоставляют их
// с HTTP-статусами через errors.Is, не разбирая текст ошибки.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound — событие, билет, тариф или пользователь не найдены.
	ErrNotFound = errors.New("not found")
	// ErrForbidden — проверка роли или владения не пройдена.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized — токен отсутствует, невалиден или истек.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidState — операция недопустима в текущем состоянии:
	// неопубликованное событие, уже зарегистрированный билет и т.п.
	ErrInvalidState = errors.New("invalid state")
	// ErrValidation — некорректные или отсутствующие входные данные.
	ErrValidation = errors.New("validation failed")
	// ErrCapacityExceeded — покупка превысила бы вместимость тарифа.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrUpstream — внешний discovery API недоступен или вернул ошибку.
	ErrUpstream = errors.New("upstream failure")

	// ErrDuplicateCode — внутренний сентинель хранилища: сгенерированный
	// код билета уже занят. Сервис генерирует новый код и повторяет вставку;
	// до клиента эта ошибка не доходит.
	ErrDuplicateCode = errors.New("duplicate ticket code")
)

// HTTPStatus возвращает HTTP-статус для доменной ошибки.
// Неизвестные ошибки считаются внутренними.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrCapacityExceeded):
		return http.StatusBadRequest
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
