package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/itqwq/tmonitor/model"
)

func TestFeishu_Send(t *testing.T) {
	var payload feishuPayload
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, _ = w.Write([]byte(`{"code":0,"msg":"success"}`))
	}))
	defer server.Close()

	feishu := NewFeishu(model.FeishuSettings{Enabled: true, WebhookURL: server.URL})
	require.NoError(t, feishu.Send(context.Background(), "hello"))
	require.Equal(t, "application/json", contentType)
	require.Equal(t, "text", payload.MsgType)
	require.Equal(t, "hello", payload.Content.Text)

	feishu.OnSignal(testSignal())
	require.Contains(t, payload.Content.Text, "SELL信号！")
}

func TestFeishu_Errors(t *testing.T) {
	t.Run("empty webhook", func(t *testing.T) {
		feishu := NewFeishu(model.FeishuSettings{})
		require.NoError(t, feishu.Send(context.Background(), "skipped"))
	})

	t.Run("bad status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		err := NewFeishu(model.FeishuSettings{WebhookURL: server.URL}).Send(context.Background(), "x")
		require.Error(t, err)
		require.Contains(t, err.Error(), "status 500")
	})

	t.Run("error code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"code":19001,"msg":"param invalid"}`))
		}))
		defer server.Close()

		err := NewFeishu(model.FeishuSettings{WebhookURL: server.URL}).Send(context.Background(), "x")
		require.Error(t, err)
		require.Contains(t, err.Error(), "param invalid")
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		feishu := NewFeishu(model.FeishuSettings{WebhookURL: server.URL}, WithFeishuTimeout(20*time.Millisecond))
		require.Error(t, feishu.Send(context.Background(), "x"))
	})
}
