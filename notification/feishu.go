package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/itqwq/tmonitor/model"
)

type feishuPayload struct {
	MsgType string        `json:"msg_type"`
	Content feishuContent `json:"content"`
}

type feishuContent struct {
	Text string `json:"text"`
}

type feishuResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Feishu 飞书群机器人 webhook 推送
type Feishu struct {
	webhook string
	client  *http.Client
	timeout time.Duration
}

type FeishuOption func(*Feishu)

func WithFeishuHTTPClient(client *http.Client) FeishuOption {
	return func(f *Feishu) {
		f.client = client
	}
}

func WithFeishuTimeout(timeout time.Duration) FeishuOption {
	return func(f *Feishu) {
		f.timeout = timeout
	}
}

func NewFeishu(settings model.FeishuSettings, options ...FeishuOption) *Feishu {
	feishu := &Feishu{
		webhook: strings.TrimSpace(settings.WebhookURL),
		client:  http.DefaultClient,
		timeout: 10 * time.Second,
	}
	for _, option := range options {
		option(feishu)
	}
	return feishu
}

// Send 推送一条文本消息，webhook 为空时直接跳过
func (f *Feishu) Send(ctx context.Context, text string) error {
	if f.webhook == "" {
		log.Infof("[飞书推送跳过] webhook 未配置: %s", text)
		return nil
	}

	body, err := json.Marshal(feishuPayload{MsgType: "text", Content: feishuContent{Text: text}})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.webhook, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feishu: status %d: %s", resp.StatusCode, content)
	}

	var result feishuResponse
	if err := json.Unmarshal(content, &result); err == nil && result.Code != 0 {
		return fmt.Errorf("feishu: code %d: %s", result.Code, result.Msg)
	}
	return nil
}

func (f *Feishu) Notify(text string) {
	if err := f.Send(context.Background(), text); err != nil {
		log.WithError(err).Error("notification/feishu: couldnt send message")
	}
}

func (f *Feishu) OnSignal(signal model.Signal) {
	f.Notify(FormatSignal(signal))
}

func (f *Feishu) OnError(err error) {
	f.Notify(fmt.Sprintf("🛑 ERROR\n-----\n%s", err))
}
