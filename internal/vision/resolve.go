package vision

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var firstNumberPattern = regexp.MustCompile(`\d+`)

// ResolveImageRef maps a user-supplied image reference to a filesystem path.
// The input may be a real path or a vague reference like "image 1" or
// "1st xray". Resolution order:
//
//  1. the input itself, if it names an existing file
//  2. the input joined against the configured image directory
//  3. the first embedded integer tried against a fixed list of filename
//     patterns in the image directory
//  4. the input unchanged; the caller surfaces the not-found error
//
// The function has no side effects beyond filesystem existence checks.
func (c *Classifier) ResolveImageRef(userInput string) string {
	clean := strings.TrimSpace(userInput)
	clean = strings.Trim(clean, `"'`)

	if fileExists(clean) {
		return clean
	}

	direct := filepath.Join(c.imageDir, clean)
	if fileExists(direct) {
		return direct
	}

	if number := firstNumberPattern.FindString(clean); number != "" {
		candidates := []string{
			fmt.Sprintf("img%s.jpg", number),
			fmt.Sprintf("image%s.jpg", number),
			fmt.Sprintf("%s.jpg", number),
			fmt.Sprintf("img%s.png", number),
		}
		for _, name := range candidates {
			full := filepath.Join(c.imageDir, name)
			if fileExists(full) {
				return full
			}
		}
	}

	return clean
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
