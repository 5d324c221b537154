package domain

import "errors"

// ErrConflict возвращается при вставке записи с уже занятым первичным ключом.
// Для пайплайна это штатная ситуация: работу уже выполнил другой писатель.
var ErrConflict = errors.New("запись уже существует")

// ErrNotFound возвращается, если запись не найдена.
var ErrNotFound = errors.New("запись не найдена")
