// Package web はHTMLテンプレートと既定の静的ファイルを埋め込みで提供します。
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates は全ページのテンプレートを読み込みます。
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

// Static は埋め込みの静的ファイル（static/ 直下をルートとする）を返します。
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// 埋め込みパスはビルド時に確定しているため到達しない
		panic(err)
	}
	return sub
}
