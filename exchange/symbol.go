package exchange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidSymbol = errors.New("invalid symbol")

// Location A股交易所时区
var Location = time.FixedZone("CST", 8*60*60)

type Market string

const (
	MarketSH Market = "sh"
	MarketSZ Market = "sz"
	MarketBJ Market = "bj"
)

// MarketOf 根据代码首位判断市场：6、9 开头为上海，0、3 开头为深圳，4、8 开头为北京
func MarketOf(code string) (Market, error) {
	code = Code(code)
	if len(code) != 6 {
		return "", fmt.Errorf("%w: %s", ErrInvalidSymbol, code)
	}

	switch code[0] {
	case '6', '9':
		return MarketSH, nil
	case '0', '3':
		return MarketSZ, nil
	case '4', '8':
		return MarketBJ, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidSymbol, code)
}

// Code 去掉市场前缀，sh600869 -> 600869
func Code(symbol string) string {
	symbol = strings.ToLower(strings.TrimSpace(symbol))
	for _, prefix := range []Market{MarketSH, MarketSZ, MarketBJ} {
		symbol = strings.TrimPrefix(symbol, string(prefix))
	}
	return symbol
}

// FullSymbol 带市场前缀的代码，600869 -> sh600869
func FullSymbol(code string) (string, error) {
	market, err := MarketOf(code)
	if err != nil {
		return "", err
	}
	return string(market) + Code(code), nil
}
