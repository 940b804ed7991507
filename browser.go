package main

import (
	"errors"
	"os/exec"
	"runtime"
)

var openURL = defaultOpenURL

func defaultOpenURL(target string) error {
	return defaultOpenURLForOS(runtime.GOOS, target)
}

func defaultOpenURLForOS(goos string, target string) error {
	if target == "" {
		return errors.New("empty url")
	}
	cmdName, args := openCommandForOS(goos, target)
	if cmdName == "" {
		return errors.New("unsupported platform")
	}
	return exec.Command(cmdName, args...).Start()
}

func openCommandForOS(goos string, target string) (string, []string) {
	switch goos {
	case "unsupported":
		return "", nil
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}
