package telegram

import (
	"context"
	"encoding/json"
)

type menuButtonWebApp struct {
	Type   string     `json:"type"`
	Text   string     `json:"text"`
	WebApp WebAppInfo `json:"web_app"`
}

// SetChatMenuButton делает кнопку меню бота кнопкой WebApp.
func (s *Service) SetChatMenuButton(ctx context.Context, text, url string) error {
	payload := map[string]interface{}{
		"menu_button": menuButtonWebApp{Type: "web_app", Text: text, WebApp: WebAppInfo{URL: url}},
	}
	return s.sendRequest(ctx, "setChatMenuButton", payload, nil)
}

func (s *Service) SetMyDescription(ctx context.Context, description string) error {
	return s.sendRequest(ctx, "setMyDescription", map[string]string{"description": description}, nil)
}

func (s *Service) SetMyShortDescription(ctx context.Context, short string) error {
	return s.sendRequest(ctx, "setMyShortDescription", map[string]string{"short_description": short}, nil)
}

func (s *Service) DeleteWebhook(ctx context.Context) error {
	return s.sendRequest(ctx, "deleteWebhook", map[string]bool{"drop_pending_updates": false}, nil)
}

// Update - минимальное представление апдейта: боту достаточно update_id.
type Update struct {
	UpdateID int64           `json:"update_id"`
	Message  json.RawMessage `json:"message,omitempty"`
}

// GetUpdates - long polling; timeout в секундах.
func (s *Service) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	payload := map[string]interface{}{
		"offset":  offset,
		"timeout": timeout,
	}
	var updates []Update
	if err := s.sendRequest(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}
