// Package models содержит также структуры фильтрации каталога событий,
// передаваемые из HTTP-слоя в слой доступа к данным.
package models

import "time"

// EventFilter — параметры фильтрации списка событий.
// Строковые поля Name и City трактуются как подстроки без учета регистра.
// Указатели nil означают отсутствие фильтра по соответствующему полю.
type EventFilter struct {
	Name      string     // Подстрока имени события
	EventType string     // Точное совпадение типа
	City      string     // Подстрока города
	StartDate *time.Time // События, начинающиеся не раньше
	EndDate   *time.Time // События, заканчивающиеся не позже
	Published *bool      // Флаг публикации
	Organizer string     // ID организатора
	Limit     int
	Offset    int
}
