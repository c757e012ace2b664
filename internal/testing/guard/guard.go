package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("GEMDESK_TEST_MODE") == "" {
			_ = os.Setenv("GEMDESK_TEST_MODE", "1")
		}
	})
}
