package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sinaResponse = `/*<script>location.href='//sina.com';</script>*/
var__sh600869_1=([{"day":"2025-08-28 09:31:00","open":"10.000","high":"10.200","low":"9.900","close":"10.100","volume":"100000"},
{"day":"2025-08-28 09:32:00","open":"10.100","high":"10.400","low":"10.000","close":"10.300","volume":"120000"},
{"day":"2025-08-28 09:33:00","open":"10.300","high":"10.400","low":"10.100","close":"10.300","volume":"20000"}]);`

func TestSina_BarsByLimit(t *testing.T) {
	var path, query, referer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, query, referer = r.URL.Path, r.URL.RawQuery, r.Header.Get("Referer")
		_, _ = w.Write([]byte(sinaResponse))
	}))
	defer server.Close()

	// 09:33 的K线还没走完
	now := time.Date(2025, 8, 28, 9, 32, 30, 0, Location)
	sina, err := NewSina("1m", WithSinaHost(server.URL), WithSinaClock(func() time.Time { return now }))
	require.NoError(t, err)

	bars, err := sina.BarsByLimit(context.Background(), "600869", 5)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	require.Equal(t, "600869", bars[0].Symbol)
	require.Equal(t, 10.4, bars[1].High)
	require.Equal(t, 10.0, bars[1].Low)
	require.Equal(t, 10.3, bars[1].Close)
	require.Equal(t, 120000.0, bars[1].Volume)

	require.True(t, strings.HasSuffix(path, "/CN_MarketDataService.getKLineData"))
	require.Contains(t, query, "symbol=sh600869")
	require.Contains(t, query, "scale=1")
	require.Contains(t, query, "datalen=6")
	require.Equal(t, sinaReferer, referer)

	bars, err = sina.BarsByLimit(context.Background(), "600869", 1)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	require.Equal(t, 10.3, bars[0].Close)
}

func TestSina_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("symbol") {
		case "sh600000":
			_, _ = w.Write([]byte("var__sh600000_5=([]);"))
		case "sh600001":
			_, _ = w.Write([]byte("null"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	sina, err := NewSina("5m", WithSinaHost(server.URL))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = sina.BarsByLimit(ctx, "600000", 10)
	require.ErrorIs(t, err, ErrNoData)

	_, err = sina.BarsByLimit(ctx, "600001", 10)
	require.Error(t, err)

	_, err = sina.BarsByLimit(ctx, "000001", 10)
	require.Error(t, err)

	_, err = sina.BarsByLimit(ctx, "123", 10)
	require.ErrorIs(t, err, ErrInvalidSymbol)

	_, err = NewSina("10s")
	require.Error(t, err)
}
