package download

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	maxTitleRunes   = 50
	matchTitleRunes = 30
)

var titleSeparators = strings.NewReplacer(" ", "_", "：", "_", "，", "_")

// CleanTitle turns an episode title into a file-name fragment: letters,
// digits, space, '-', '_', and full-width '：' and '，' survive; spaces and
// the full-width marks become '_'; the result is at most 50 runes.
func CleanTitle(title string) string {
	title = norm.NFC.String(title)

	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(" -_：，", r) {
			b.WriteRune(r)
		}
	}

	cleaned := titleSeparators.Replace(strings.TrimSpace(b.String()))
	return truncateRunes(cleaned, maxTitleRunes)
}

// AudioFileName is NN_<id>_<cleanTitle>.mp3 with a two-digit minimum counter.
func AudioFileName(counter int, episodeID, cleanTitle string) string {
	return fmt.Sprintf("%02d_%s_%s.mp3", counter, episodeID, cleanTitle)
}

// alreadyDownloaded reports whether any existing file name mentions the
// episode id or starts its title the same way.
func alreadyDownloaded(existing []string, episodeID, cleanTitle string) bool {
	prefix := truncateRunes(cleanTitle, matchTitleRunes)
	for _, name := range existing {
		if episodeID != "" && strings.Contains(name, episodeID) {
			return true
		}
		if prefix != "" && strings.Contains(name, prefix) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
