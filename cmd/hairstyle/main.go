// Package main は髪型試着ツールの CLI です。
//
// Usage:
//
//	hairstyle [flags] <command> [args]
//
// Commands:
//
//	generate - 写真から髪型を変えた画像を生成する
//	serve    - ブラウザ向けのフォームと API を起動する
//	catalog  - 髪型・カラー・顔型アドバイスの一覧を表示する
//
// Configuration:
//
//	.env または環境変数の GEMINI_API_KEY を使います。
package main

import (
	"fmt"
	"os"

	"github.com/shouni/hairstyle-kit/cmd/hairstyle/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
