package repository

// ICheckinRepo журнал последних дат отметок, дата в формате YYYY-MM-DD
type ICheckinRepo interface {
	LastDate(userID string) string
	Mark(userID, date string) error
	// PruneBefore удаляет записи с датой раньше date, возвращает количество удалённых
	PruneBefore(date string) (int, error)
}
