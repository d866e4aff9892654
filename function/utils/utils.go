package utils

import (
	"net/url"
	"strings"
)

// normalize path for windows compability
func NormalizePath(str string) string {
	str = strings.ReplaceAll(str, "\\", "/")
	return str
}

func UrlJoinPath(base string, path ...string) string {
	res, err := url.JoinPath(base, path...)
	if err != nil {
		panic(err)
	}
	return res
}

// HostName returns the host part of rawURL, or rawURL itself when it does not parse.
func HostName(rawURL string) string {
	res, err := url.Parse(rawURL)
	if err != nil || res.Hostname() == "" {
		return rawURL
	}
	return res.Hostname()
}
