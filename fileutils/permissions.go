package fileutils

import (
	"errors"
	"os"
)

// VerifyWritable returns nil if dirPath is a directory in which entries can be
// created and removed, which is what deleting artifacts from it requires.
func VerifyWritable(dirPath string) error {
	fil, err := os.CreateTemp(dirPath, ".ssret-probe-")
	if err != nil {
		return err
	}
	return errors.Join(fil.Close(), os.Remove(fil.Name()))
}
