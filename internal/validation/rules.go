// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe    = regexp.MustCompile(`^\+?[1-9]\d{7,14}$`)
	phoneStrip = regexp.MustCompile(`[^\d+]`)
	deviceRe   = regexp.MustCompile(`^[a-zA-Z0-9\s\-_]+$`)
	versionRe  = regexp.MustCompile(`^[vV]?\d+\.\d+(?:\.\d+)?(?:[-\w]*)?$`)
)

// Username validates and trims a username.
func Username(v string) (string, error) {
	v = strings.TrimSpace(v)
	if len(v) < 3 {
		return "", fmt.Errorf("username must be at least 3 characters long")
	}
	if len(v) > 50 {
		return "", fmt.Errorf("username must not exceed 50 characters")
	}
	if !usernameRe.MatchString(v) {
		return "", fmt.Errorf("username can only contain letters, numbers, and underscores")
	}
	return v, nil
}

// Email validates and lowercases an email address.
func Email(v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" || len(v) > 255 || !emailRe.MatchString(v) {
		return "", fmt.Errorf("invalid email address")
	}
	return v, nil
}

// FullName validates and trims a full name.
func FullName(v string) (string, error) {
	v = strings.TrimSpace(v)
	if len(v) < 2 {
		return "", fmt.Errorf("full name must be at least 2 characters long")
	}
	if len(v) > 100 {
		return "", fmt.Errorf("full name must not exceed 100 characters")
	}
	return v, nil
}

// Phone normalizes a phone number to +?digits form and validates it.
// Formatting characters (spaces, dashes, parentheses) are stripped first.
func Phone(v string) (string, error) {
	cleaned := phoneStrip.ReplaceAllString(v, "")
	if !phoneRe.MatchString(cleaned) {
		return "", fmt.Errorf("phone number must be 8-15 digits, optionally starting with +")
	}
	return cleaned, nil
}

// Password validates a raw password before hashing.
func Password(v string) error {
	if len(v) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}
	if len(v) > 100 {
		return fmt.Errorf("password must not exceed 100 characters")
	}
	return nil
}

// PostHeader validates and trims a post header.
func PostHeader(v string) (string, error) {
	v = strings.TrimSpace(v)
	if len(v) < 3 {
		return "", fmt.Errorf("header must be at least 3 characters long")
	}
	if len(v) > 200 {
		return "", fmt.Errorf("header must not exceed 200 characters")
	}
	return v, nil
}

// PostDescription validates and trims a post description.
func PostDescription(v string) (string, error) {
	v = strings.TrimSpace(v)
	if len(v) < 10 {
		return "", fmt.Errorf("description must be at least 10 characters long")
	}
	if len(v) > 5000 {
		return "", fmt.Errorf("description must not exceed 5000 characters")
	}
	return v, nil
}

// DeviceName validates and trims a device name.
func DeviceName(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("device name cannot be empty")
	}
	if len(v) > 200 {
		return "", fmt.Errorf("device name must not exceed 200 characters")
	}
	if !deviceRe.MatchString(v) {
		return "", fmt.Errorf("device name can only contain letters, numbers, spaces, hyphens, and underscores")
	}
	return v, nil
}

// DeviceVersion validates and trims a device version string.
func DeviceVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("version cannot be empty")
	}
	if len(v) > 50 {
		return "", fmt.Errorf("version must not exceed 50 characters")
	}
	if !versionRe.MatchString(v) {
		return "", fmt.Errorf("version must follow format like 1.0, v1.2.3, or 2.0.1-beta")
	}
	return v, nil
}

// DeviceDescription validates an optional device description.
func DeviceDescription(v string) (string, error) {
	v = strings.TrimSpace(v)
	if len(v) > 1000 {
		return "", fmt.Errorf("description must not exceed 1000 characters")
	}
	return v, nil
}
