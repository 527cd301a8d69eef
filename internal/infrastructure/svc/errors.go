package svc

import "errors"

// ErrNoHistoryStore 错误：没有可用的成交历史存储
var ErrNoHistoryStore = errors.New("no history store available")

// ErrNoSymbols 错误：币种与计价币组合后没有交易对
var ErrNoSymbols = errors.New("no trading pairs configured")
