package altupdater

import "os"

func SetWriteFile(u *DefaultUpdater, fn func(name string, data []byte, perm os.FileMode) error) {
	u.writeFile = fn
}
