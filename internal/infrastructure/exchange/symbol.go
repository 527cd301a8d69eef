package exchange

import (
	"strings"
)

// BuildSymbols 生成交易对列表（币种 x 计价币种）
// 例: [BTC ETH] x [USDT BUSD] -> BTCUSDT BTCBUSD ETHUSDT ETHBUSD
func BuildSymbols(coins, quotes []string) []string {
	out := make([]string, 0, len(coins)*len(quotes))
	for _, coin := range coins {
		coin = strings.ToUpper(strings.TrimSpace(coin))
		if coin == "" {
			continue
		}
		for _, quote := range quotes {
			quote = strings.ToUpper(strings.TrimSpace(quote))
			if quote == "" {
				continue
			}
			out = append(out, coin+quote)
		}
	}
	return out
}
