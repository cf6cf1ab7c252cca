package repository

// ICounterRepo счётчики оставшихся генераций по id (пользователь или группа)
type ICounterRepo interface {
	// Get текущий остаток, 0 для неизвестного id
	Get(id string) int
	// Decrement уменьшает остаток на 1, не опускаясь ниже нуля
	Decrement(id string) (int, error)
	// Add увеличивает остаток и возвращает новое значение
	Add(id string, amount int) (int, error)
}
