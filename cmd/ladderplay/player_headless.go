//go:build headless

package main

import (
	"errors"
	"io"
)

func play(int, io.Reader) error {
	return errors.New("built without audio output, use -out")
}
