package security

import (
	"strings"
	"testing"
)

func TestValidateForDeletion(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"normal file", "/home/user/downloads/copy.txt", false},
		{"deep system subpath ok", "/var/tmp/scan/dup.txt", false},
		{"relative path", "relative/file.txt", true},
		{"traversal", "/home/user/../../etc/passwd", true},
		{"trailing slash", "/home/user/file.txt/", true},
		{"null byte", "/home/user/file\x00.txt", true},
		{"root", "/", true},
		{"protected dir itself", "/etc", true},
		{"direct child of protected", "/etc/passwd", true},
		{"direct child of usr", "/usr/local", true},
	}

	pv := NewPathValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pv.ValidateForDeletion(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForDeletion(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateForDeletionScope(t *testing.T) {
	pv := NewPathValidator()
	pv.SetScope("/home/user/photos")

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"inside scope", "/home/user/photos/dup.jpg", false},
		{"nested inside scope", "/home/user/photos/2024/dup.jpg", false},
		{"outside scope", "/home/user/documents/dup.jpg", true},
		{"parent of scope", "/home/user", true},
		{"scope prefix but different dir", "/home/user/photos2/dup.jpg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pv.ValidateForDeletion(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForDeletion(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}

	// Clearing the scope lifts the restriction.
	pv.SetScope("")
	if err := pv.ValidateForDeletion("/home/user/documents/dup.jpg"); err != nil {
		t.Errorf("unscoped validation error = %v, want nil", err)
	}
}

func TestIsProtectedPath(t *testing.T) {
	pv := NewPathValidator()

	if !pv.IsProtectedPath("/etc/ssh/sshd_config") {
		t.Error("path under /etc should be protected")
	}
	if pv.IsProtectedPath("/home/user/file.txt") {
		t.Error("home path should not be protected")
	}
}

func TestAddProtectedPath(t *testing.T) {
	pv := NewPathValidator()
	pv.AddProtectedPath("/home/user/keep")

	err := pv.ValidateForDeletion("/home/user/keep/important.txt")
	if err == nil {
		t.Fatal("expected error for custom protected path")
	}
	if !strings.Contains(err.Error(), "critical system path") && !strings.Contains(err.Error(), "protected path") {
		t.Errorf("unexpected error: %v", err)
	}
}
