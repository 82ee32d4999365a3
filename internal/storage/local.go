// Package storage は静的ファイルの配信元を提供します。
package storage

import (
	"io/fs"
	"net/http"
	"os"

	"github.com/yourusername/fs-auth/internal/web"
)

// Assets は静的ファイルのファイルシステムを返します。
// dir がディレクトリとして存在すればローカルのファイルを、なければ埋め込みの既定ファイルを使います。
func Assets(dir string) http.FileSystem {
	return http.FS(AssetsFS(dir))
}

// AssetsFS は Assets の fs.FS 版です。
func AssetsFS(dir string) fs.FS {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir)
		}
	}
	return web.Static()
}
