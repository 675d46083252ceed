package handlers

import (
	"mime"
	"net/http"
	"regexp"
)

var clockTimeRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// "HH:MM", 24 часа
func isValidClockTime(value string) bool {
	return clockTimeRe.MatchString(value)
}
