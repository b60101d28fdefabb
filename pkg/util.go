package pkg

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	log "github.com/sirupsen/logrus"
)

const maxNicknameLength = 24

// InitLog sends the standard logger to dest. The terminal belongs to the UI
// so nothing may be logged to stderr while it runs.
func InitLog(dest, prefix string, debug bool) error {
	f, err := os.OpenFile(dest, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("error opening log file: %w", err)
	}

	log.SetOutput(f)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: true})
	if debug {
		log.SetLevel(log.DebugLevel)
	}
	if prefix != "" {
		log.AddHook(prefixHook(prefix))
	}
	return nil
}

// prefixHook tags every entry with the binary that wrote it
type prefixHook string

func (h prefixHook) Levels() []log.Level { return log.AllLevels }

func (h prefixHook) Fire(e *log.Entry) error {
	e.Data["app"] = string(h)
	return nil
}

func sanitizeNickname(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) && r != '[' && r != ']' {
			return r
		}
		return -1
	}, strings.TrimSpace(name))

	if r := []rune(name); len(r) > maxNicknameLength {
		name = string(r[:maxNicknameLength])
	}
	return name
}
