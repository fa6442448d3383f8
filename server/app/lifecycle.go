// Package app 管理長期運行元件的生命週期：啟動、等待訊號、依序優雅關閉。
package app

import "context"

// Component 可啟動 / 可關閉的長生命週期元件，例如 HTTP Server。
//   - Run() 阻塞直到元件停止；正常關閉回傳 nil。
//   - Shutdown(ctx) 要求優雅關閉，需尊重 ctx 的 deadline。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}
