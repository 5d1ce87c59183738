//go:build !linux

package main

import "errors"

func enterRawTerm() error {
	return errors.New("raw terminal mode is only supported on linux")
}

func exitRawTerm() {}
