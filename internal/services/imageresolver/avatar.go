package imageresolver

import (
	"context"
	"fmt"
	"strings"
)

// TemplateAvatars аватар по шаблону ссылки с одним %s под числовой id
type TemplateAvatars struct {
	Template string
}

func (t TemplateAvatars) AvatarURL(_ context.Context, userID string) (string, error) {
	if userID == "" || strings.Trim(userID, "0123456789") != "" {
		return "", fmt.Errorf("user id %q is not numeric", userID)
	}
	return fmt.Sprintf(t.Template, userID), nil
}
