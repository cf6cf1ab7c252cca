package cache

// IDedupCache помнит недавно обработанные ключи
type IDedupCache interface {
	// Seen отмечает ключ и возвращает true, если он уже встречался
	Seen(key string) bool
}
