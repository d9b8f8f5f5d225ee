package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// BotClient 基于 Bot API 的 HTTP 实现
type BotClient struct {
	apiBase    string
	token      string
	httpClient *http.Client
}

func NewBotClient(apiBase, token string, timeout time.Duration) *BotClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &BotClient{
		apiBase: apiBase,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type sendMessageRequest struct {
	ChatID      string                `json:"chat_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type messageResult struct {
	MessageID int64 `json:"message_id"`
}

func (c *BotClient) SendMessage(ctx context.Context, chatID, text string, markup *InlineKeyboardMarkup) (*SendResponse, error) {
	req := sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   "Markdown",
		ReplyMarkup: markup,
	}

	var result messageResult
	if err := c.call(ctx, "sendMessage", req, &result); err != nil {
		return nil, err
	}

	return &SendResponse{
		MessageID: result.MessageID,
		ChatID:    chatID,
	}, nil
}

func (c *BotClient) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	req := answerCallbackRequest{
		CallbackQueryID: callbackQueryID,
		Text:            text,
	}

	return c.call(ctx, "answerCallbackQuery", req, nil)
}

func (c *BotClient) call(ctx context.Context, method string, body interface{}, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("telegram %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read telegram response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("failed to decode telegram response (status %d): %w", resp.StatusCode, err)
	}

	if !apiResp.OK {
		return fmt.Errorf("telegram %s rejected: %s (status %d)", method, apiResp.Description, resp.StatusCode)
	}

	if result != nil && len(apiResp.Result) > 0 {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("failed to decode telegram result: %w", err)
		}
	}

	return nil
}
