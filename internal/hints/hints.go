// Package hints builds the "hint:" lines the CLI appends to error messages.
// Every hint is rendered as "\n  hint: <text>" so it lines up under the error.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-cvbuilder/internal/fileutil"
)

// IsInContainer reports whether the process runs in a Docker container.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

func inCI() bool {
	for _, key := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect explains how to reach a working Chrome when the PDF
// engine cannot start one.
func ForBrowserConnect() string {
	var parts []string
	if (inCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		parts = append(parts, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		parts = append(parts, "set ROD_BROWSER_BIN to an installed Chrome")
	}
	parts = append(parts, "or export with --print to use the system browser")
	return join(parts)
}

// ForTimeout suggests a longer timeout for slow rasterization.
func ForTimeout() string {
	return format("large photos slow rendering down, try --timeout 1m")
}

// ForConfigNotFound suggests --config, or creating the first user-level
// path that was searched.
func ForConfigNotFound(searched []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searched {
		if strings.Contains(p, ".config/go-cvbuilder") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory is shown when an output file cannot be written.
func ForOutputDirectory() string {
	return format("check the output directory exists and is writable")
}

// ForTemplateNotFound lists the template keys that do exist.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForPopupBlocked is shown when the print page cannot be opened.
func ForPopupBlocked(path string) string {
	if path == "" {
		return format("set BROWSER to a browser command")
	}
	return format("open " + path + " manually and print it to PDF")
}

// ForEmptyPreview is shown when a document renders to nothing.
func ForEmptyPreview() string {
	return format("fill in at least a name or some content, or run 'cvbuilder draft show'")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func join(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return format(strings.Join(parts, "; "))
}
