// Package telegram is a minimal Bot API client covering what the grievance
// bot needs: long polling for updates, sending messages, and downloading
// user photos.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const apiBase = "https://api.telegram.org"

// Client talks to the Telegram Bot API with a single bot token.
type Client struct {
	botToken string
	baseURL  string
	client   *http.Client
}

// NewClient registers the bot token. The HTTP timeout leaves headroom over
// the long-poll window so GetUpdates calls do not get cut off client-side.
func NewClient(botToken string) *Client {
	return &Client{
		botToken: botToken,
		baseURL:  apiBase,
		client:   &http.Client{Timeout: 70 * time.Second},
	}
}

// Update is one incoming event from getUpdates.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an incoming chat message. Photo holds the available
// resolutions of a sent picture, smallest first.
type Message struct {
	MessageID int64       `json:"message_id"`
	From      *User       `json:"from"`
	Chat      Chat        `json:"chat"`
	Text      string      `json:"text"`
	Photo     []PhotoSize `json:"photo"`
	Caption   string      `json:"caption"`
}

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type PhotoSize struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int    `json:"file_size"`
}

type File struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// GetUpdates long-polls for new updates past the given offset. timeout is
// the server-side hold in seconds.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	form := url.Values{}
	form.Set("offset", strconv.FormatInt(offset, 10))
	form.Set("timeout", strconv.Itoa(timeout))

	raw, err := c.call(ctx, "getUpdates", form)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("parse updates: %w", err)
	}
	return updates, nil
}

// SendMessage posts a plain-text message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", text)

	_, err := c.call(ctx, "sendMessage", form)
	return err
}

// GetFile resolves a file_id into a downloadable path.
func (c *Client) GetFile(ctx context.Context, fileID string) (File, error) {
	form := url.Values{}
	form.Set("file_id", fileID)

	raw, err := c.call(ctx, "getFile", form)
	if err != nil {
		return File{}, err
	}

	var file File
	if err := json.Unmarshal(raw, &file); err != nil {
		return File{}, fmt.Errorf("parse file info: %w", err)
	}
	return file, nil
}

// DownloadFile fetches the bytes of a previously resolved file path.
func (c *Client) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.botToken, filePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram file error: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// DownloadPhoto fetches the highest-resolution variant of a photo message.
func (c *Client) DownloadPhoto(ctx context.Context, sizes []PhotoSize) ([]byte, error) {
	if len(sizes) == 0 {
		return nil, fmt.Errorf("message has no photo")
	}
	// Telegram orders sizes ascending, the last one is the largest.
	file, err := c.GetFile(ctx, sizes[len(sizes)-1].FileID)
	if err != nil {
		return nil, err
	}
	return c.DownloadFile(ctx, file.FilePath)
}

func (c *Client) call(ctx context.Context, method string, form url.Values) (json.RawMessage, error) {
	if c.botToken == "" {
		return nil, fmt.Errorf("telegram client misconfigured: empty bot token")
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response (%s): %w", resp.Status, err)
	}
	if !apiResp.OK {
		return nil, fmt.Errorf("telegram error on %s: %s", method, apiResp.Description)
	}
	return apiResp.Result, nil
}
