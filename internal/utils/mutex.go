package utils

import "sync"

var mu sync.Mutex

// ExecuteWithMutex serializes fn with every other caller. GDAL handles are
// not safe for concurrent use, so every godal call goes through here.
func ExecuteWithMutex(fn func()) {
	mu.Lock()
	defer mu.Unlock()
	fn()
}
