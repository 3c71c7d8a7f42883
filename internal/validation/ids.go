// Package validation содержит функции валидации входных данных.
package validation

import "unicode"

// Столы нумеруются от 1 до 99.
const maxTableNumber = 99

// IsValidTableNumber проверяет, что номер стола попадает в допустимый диапазон.
func IsValidTableNumber(number int) bool {
	return number >= 1 && number <= maxTableNumber
}

// IsValidStaffID проверяет формат идентификатора официанта: STF и три цифры.
func IsValidStaffID(id string) bool {
	return hasDigitSuffix(id, "STF", 3)
}

// IsValidManagerID проверяет формат идентификатора менеджера: MGR и две цифры.
func IsValidManagerID(id string) bool {
	return hasDigitSuffix(id, "MGR", 2)
}

func hasDigitSuffix(id, prefix string, digits int) bool {
	if len(id) != len(prefix)+digits {
		return false
	}
	if id[:len(prefix)] != prefix {
		return false
	}
	for _, ch := range id[len(prefix):] {
		if !unicode.IsDigit(ch) {
			return false
		}
	}
	return true
}
