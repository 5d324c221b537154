package summarizer

import "errors"

// ErrProvider означает транспортную или HTTP-ошибку провайдера.
// Запись остаётся необработанной и будет повторена на следующем проходе.
var ErrProvider = errors.New("ошибка провайдера")

// ErrBadResponse означает, что ответ провайдера не разобрался в ожидаемую форму.
var ErrBadResponse = errors.New("некорректный ответ провайдера")
