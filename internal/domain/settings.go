package domain

// Settings содержимое settings.json
type Settings struct {
	APIKeys    []string `json:"api_keys"`
	PromptList []string `json:"prompt_list"`
}

// QuotaScope область учёта квоты
type QuotaScope string

const (
	ScopeUser  QuotaScope = "user"
	ScopeGroup QuotaScope = "group"
)

func (s QuotaScope) IsValid() bool {
	return s == ScopeUser || s == ScopeGroup
}
